package pardon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyLayersFoldsSuccessfulLayers(t *testing.T) {
	layers := []Layer{
		{Name: "service", Template: objTemplate("host", "api.example.com")},
		{Name: "endpoint", Template: objTemplate("path", "/users/{{id}}")},
	}
	result := ApplyLayers(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, NewStubSchema(), layers, nil)
	require.Empty(t, result.Rejected)
	assert.Equal(t, []string{"service", "endpoint"}, result.Applied)
	assert.Contains(t, result.Schema.Properties, "host")
	assert.Contains(t, result.Schema.Properties, "path")
}

func TestApplyLayersRollsBackSingleFailure(t *testing.T) {
	layers := []Layer{
		{Name: "base", Template: objTemplate("id", "{{id}}")},
		{Name: "conflicting-type", Template: "not-an-object"},
		{Name: "extra", Template: objTemplate("extra", "1")},
	}
	result := ApplyLayers(MergeOptions{Mode: ModeMerge, Phase: PhaseBuild}, NewStubSchema(), layers, nil)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "conflicting-type", result.Rejected[0].Layer)
	assert.Equal(t, []string{"base", "extra"}, result.Applied)
}
