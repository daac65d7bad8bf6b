package pardon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func objTemplate(pairs ...any) *OrderedObject {
	obj := NewOrderedObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		obj.Set(pairs[i].(string), pairs[i+1])
	}
	return obj
}

func TestMergeObjectBasic(t *testing.T) {
	tmpl := objTemplate("name", "{{name}}", "age", "{{age}}")
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, NewStubSchema(), tmpl, nil)
	require.Empty(t, result.Diagnostics)
	assert.Equal(t, KindObject, result.Schema.Kind)
	assert.Equal(t, []string{"name", "age"}, result.Schema.PropOrder)
}

func TestRenderObjectOmitsOptionalUndefined(t *testing.T) {
	tmpl := objTemplate("name", "{{name}}", "nickname?", "{{nickname}}")
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, NewStubSchema(), tmpl, nil)
	require.Empty(t, result.Diagnostics)

	env := NewMapEnvironment("test", map[string]any{"name": "alice"})
	val, err := RenderSchema(result.Schema, env)
	require.NoError(t, err)

	out, ok := val.(*OrderedObject)
	require.True(t, ok)
	name, present := out.Get("name")
	require.True(t, present)
	assert.Equal(t, "alice", name)
	_, present = out.Get("nickname")
	assert.False(t, present)
}

func TestMergeObjectFlatInlinesNestedFields(t *testing.T) {
	group := objTemplate("host", "{{host}}", "port", "{{port}}")
	tmpl := objTemplate("method", "GET", "$flat", group)
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, NewStubSchema(), tmpl, nil)
	require.Empty(t, result.Diagnostics)
	assert.Equal(t, []string{"method", "host", "port"}, result.Schema.PropOrder)
	_, hasFlatKey := result.Schema.Properties["$flat"]
	assert.False(t, hasFlatKey)

	env := NewMapEnvironment("test", map[string]any{"host": "example.com", "port": "443"})
	val, err := RenderSchema(result.Schema, env)
	require.NoError(t, err)
	out, ok := val.(*OrderedObject)
	require.True(t, ok)
	host, present := out.Get("host")
	require.True(t, present)
	assert.Equal(t, "example.com", host)
}

func TestMergeObjectNestedKeyLocation(t *testing.T) {
	inner := objTemplate("id", "{{!id}}")
	tmpl := objTemplate("user", inner)
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseValidate}, NewStubSchema(), tmpl, nil)
	require.NotEmpty(t, result.Diagnostics)
	assert.Contains(t, result.Diagnostics[0].Loc, "user")
}
