package pardon

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodecRoundTrip(t *testing.T) {
	schema := NewEncodingSchema(JSONCodec{}, NewStubSchema())
	inner := objTemplate("id", "{{id}}")
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, schema, inner, nil)
	require.Empty(t, result.Diagnostics)

	env := NewMapEnvironment("test", map[string]any{"id": "7"})
	val, err := RenderSchema(result.Schema, env)
	require.NoError(t, err)
	assert.Contains(t, val.(string), `"id":"7"`)
}

func TestJSONCodecDecodeFromString(t *testing.T) {
	schema := NewEncodingSchema(JSONCodec{}, NewStubSchema())
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, schema, `{"id":"{{id}}"}`, nil)
	require.Empty(t, result.Diagnostics)

	env := NewMapEnvironment("test", map[string]any{"id": "9"})
	val, err := RenderSchema(result.Schema, env)
	require.NoError(t, err)
	assert.Contains(t, val.(string), `"id":"9"`)
}

func TestJSONCodecEncodePreservesMultiKeyOrder(t *testing.T) {
	obj := NewOrderedObject()
	obj.Set("z", "last")
	obj.Set("a", "first")
	obj.Set("m", "middle")

	encoded, err := JSONCodec{}.Encode(obj, Policy{})
	require.NoError(t, err)
	assert.Equal(t, `{"z":"last","a":"first","m":"middle"}`, encoded)
}

func TestBase64StackedWithJSON(t *testing.T) {
	inner := NewEncodingSchema(JSONCodec{}, NewStubSchema())
	outer := NewEncodingSchema(Base64Codec{}, inner)

	tmpl := objTemplate("id", "{{id}}")
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, outer, tmpl, nil)
	require.Empty(t, result.Diagnostics)

	env := NewMapEnvironment("test", map[string]any{"id": "5"})
	val, err := RenderSchema(result.Schema, env)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(val.(string))
	require.NoError(t, err)
	assert.Contains(t, string(decoded), `"id":"5"`)
}

func TestFormCodecRoundTrip(t *testing.T) {
	codec := FormCodec{}
	decoded, err := codec.Decode("a=1&b=2")
	require.NoError(t, err)
	obj, ok := decoded.(*OrderedObject)
	require.True(t, ok)
	v, _ := obj.Get("a")
	assert.Equal(t, "1", v)

	encoded, err := codec.Encode(obj, Policy{})
	require.NoError(t, err)
	assert.Contains(t, encoded, "a=1")
	assert.Contains(t, encoded, "b=2")
}

func TestEncodeOrderedJSONPreservesKeyOrder(t *testing.T) {
	obj := NewOrderedObject()
	obj.Set("z", float64(1))
	obj.Set("a", float64(2))
	obj.Set("nested", func() *OrderedObject {
		inner := NewOrderedObject()
		inner.Set("second", true)
		inner.Set("first", false)
		return inner
	}())

	data, err := EncodeOrderedJSON(obj, false)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":2,"nested":{"second":true,"first":false}}`, string(data))
}

func TestTextCodecIdentity(t *testing.T) {
	codec := TextCodec{}
	v, err := codec.Decode("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", v)

	s, err := codec.Encode("plain", Policy{})
	require.NoError(t, err)
	assert.Equal(t, "plain", s)
}
