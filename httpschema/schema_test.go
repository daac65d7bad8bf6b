package httpschema

import (
	"testing"

	"github.com/pardonhq/pardon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerObj(pairs ...string) *pardon.OrderedObject {
	obj := pardon.NewOrderedObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		obj.Set(pairs[i], pairs[i+1])
	}
	return obj
}

func TestMergeTemplateSensesJSONBody(t *testing.T) {
	template := pardon.NewOrderedObject()
	template.Set(FieldMethod, "POST")
	template.Set(FieldHeaders, headerObj("content-type", "application/json"))
	body := pardon.NewOrderedObject()
	body.Set("x", float64(7))
	template.Set(FieldBody, body)

	result := MergeTemplate(pardon.MergeOptions{Mode: pardon.ModeMerge, Phase: pardon.PhaseValidate}, NewSchema(), template, nil)
	require.Empty(t, result.Diagnostics)
	require.NotNil(t, result.Schema)
	assert.Equal(t, pardon.KindEncoding, result.Schema.Properties[FieldBody].Kind)

	req, err := Render(result.Schema, pardon.NewMapEnvironment("t", nil))
	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, `{"x":7}`, req.Body)
	id, ok := req.Meta.Get("id")
	require.True(t, ok)
	assert.NotEmpty(t, id)
}

func TestMergeTemplatePlainTextBodyWithoutContentType(t *testing.T) {
	template := pardon.NewOrderedObject()
	template.Set(FieldMethod, "GET")
	template.Set(FieldBody, "hello")

	result := MergeTemplate(pardon.MergeOptions{Mode: pardon.ModeMerge, Phase: pardon.PhaseValidate}, NewSchema(), template, nil)
	require.Empty(t, result.Diagnostics)
	assert.Equal(t, pardon.KindScalar, result.Schema.Properties[FieldBody].Kind)

	req, err := Render(result.Schema, pardon.NewMapEnvironment("t", nil))
	require.NoError(t, err)
	assert.Equal(t, "hello", req.Body)
}

func TestCodecForVariants(t *testing.T) {
	assert.Equal(t, "json", codecFor("application/json; charset=utf-8").Name())
	assert.Equal(t, "json", codecFor("application/vnd.api+json").Name())
	assert.Equal(t, "form", codecFor("application/x-www-form-urlencoded").Name())
	assert.Equal(t, "base64", codecFor("application/octet-stream").Name())
	assert.Equal(t, "text", codecFor("text/plain").Name())
}
