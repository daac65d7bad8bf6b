package pardon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTuplePositional(t *testing.T) {
	tmpl := []any{"{{first}}", "{{second}}"}
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, NewStubSchema(), tmpl, nil)
	require.Empty(t, result.Diagnostics)
	assert.Equal(t, KindTuple, result.Schema.Kind) // mergeIntoStub defaults []any templates to positional tuple

	env := NewMapEnvironment("test", map[string]any{"first": "a", "second": "b"})
	val, err := RenderSchema(result.Schema, env)
	require.NoError(t, err)
	list, ok := val.([]any)
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestMergeKeyedListSingleValued(t *testing.T) {
	base := NewKeyedListSchema("key", false, NewStubSchema())

	elements := []any{
		objTemplate("key", "a", "v", "1"),
		objTemplate("key", "b", "v", "2"),
	}
	ctx := NewContext(ModeMerge, PhaseBuild, NewRootScope(), nil)
	merged, err := base.mergeKeyedList(ctx, elements)
	require.NoError(t, err)
	assert.False(t, ctx.Failed())
	assert.Equal(t, KindKeyedList, merged.Kind)
}

func TestMergeKeyedListDuplicateKeyFails(t *testing.T) {
	base := NewKeyedListSchema("key", false, NewStubSchema())
	elements := []any{
		objTemplate("key", "a", "v", "1"),
		objTemplate("key", "a", "v", "2"),
	}
	ctx := NewContext(ModeMerge, PhaseBuild, NewRootScope(), nil)
	_, err := base.mergeKeyedList(ctx, elements)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMergeKeyedListMultivaluedAllowsDuplicates(t *testing.T) {
	base := NewKeyedListSchema("key", true, NewStubSchema())
	elements := []any{
		objTemplate("key", "a", "v", "1"),
		objTemplate("key", "a", "v", "2"),
	}
	ctx := NewContext(ModeMerge, PhaseBuild, NewRootScope(), nil)
	_, err := base.mergeKeyedList(ctx, elements)
	require.NoError(t, err)
}
