package pardon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewSchemaLeavesUndefinedAsSource(t *testing.T) {
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, NewStubSchema(), "/users/{{id}}", nil)
	require.Empty(t, result.Diagnostics)

	val, err := PreviewSchema(result.Schema, nil)
	require.NoError(t, err)
	assert.Equal(t, "/users/{{id}}", val)
}

func TestRenderSchemaRequiredMissingRaises(t *testing.T) {
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, NewStubSchema(), "{{!id}}", nil)
	require.Empty(t, result.Diagnostics)

	_, err := RenderSchema(result.Schema, nil)
	assert.Error(t, err)
}

func TestMergeMatchModeMismatchReportsDiagnostic(t *testing.T) {
	env := NewMapEnvironment("test", map[string]any{"id": "1"})
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, NewStubSchema(), "{{id}}", env)
	require.Empty(t, result.Diagnostics)

	matchResult := MergeSchema(MergeOptions{Mode: ModeMatch, Phase: PhaseValidate}, result.Schema, "2", env)
	assert.NotEmpty(t, matchResult.Diagnostics)
}

func TestRenderSchemaValuesReturnsResolvedBag(t *testing.T) {
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, NewStubSchema(), "/users/{{id}}", nil)
	require.Empty(t, result.Diagnostics)

	env := NewMapEnvironment("test", map[string]any{"id": "42"})
	val, values, err := RenderSchemaValues(result.Schema, env)
	require.NoError(t, err)
	assert.Equal(t, "/users/42", val)
	assert.Equal(t, "42", values["id"])
}

func TestRenderIdempotenceOnEqualInput(t *testing.T) {
	result := MergeSchema(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, NewStubSchema(), "/users/{{id}}", nil)
	require.Empty(t, result.Diagnostics)

	env := NewMapEnvironment("test", map[string]any{"id": "3"})
	first, err := RenderSchema(result.Schema, env)
	require.NoError(t, err)
	second, err := RenderSchema(result.Schema, env)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
