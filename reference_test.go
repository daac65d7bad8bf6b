package pardon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceBindsToSiblingValue(t *testing.T) {
	ref := &Schema{Kind: KindReference, RefName: "x"}
	env := NewMapEnvironment("test", map[string]any{"x": "hello"})

	ctx := NewContext(ModeMerge, PhaseBuild, NewRootScope(), env)
	merged, err := ref.mergeReference(ctx, nil)
	require.NoError(t, err)

	val, err := merged.renderReference(NewContext(ModeRender, PhaseValidate, ctx.Scope, env))
	require.NoError(t, err)
	assert.Equal(t, "hello", val)
}

func TestReferenceUnresolvedRaisesInValidatePhase(t *testing.T) {
	ref := &Schema{Kind: KindReference, RefName: "missing"}
	ctx := NewContext(ModeMerge, PhaseBuild, NewRootScope(), NewMapEnvironment("test", nil))
	merged, err := ref.mergeReference(ctx, nil)
	require.NoError(t, err)

	_, err = merged.renderReference(NewContext(ModeRender, PhaseValidate, ctx.Scope, NewMapEnvironment("test", nil)))
	assert.ErrorIs(t, err, ErrUnresolvedReference)
}
