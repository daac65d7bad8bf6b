package pardon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeDefineIdempotent(t *testing.T) {
	scope := NewRootScope()
	ctx := NewContext(ModeMerge, PhaseBuild, scope, nil)

	_, err := scope.define(ctx, "id", "42")
	require.NoError(t, err)
	_, err = scope.define(ctx, "id", "42")
	require.NoError(t, err)
	assert.False(t, ctx.Failed())
}

func TestScopeDefineConflictReportsDiagnostic(t *testing.T) {
	scope := NewRootScope()
	ctx := NewContext(ModeMerge, PhaseBuild, scope, nil)

	_, err := scope.define(ctx, "id", "42")
	require.NoError(t, err)
	_, err = scope.define(ctx, "id", "43")
	require.NoError(t, err)
	assert.True(t, ctx.Failed())
}

func TestScopeDefineConflictHardErrorInRender(t *testing.T) {
	scope := NewRootScope()
	ctx := NewContext(ModeRender, PhaseValidate, scope, nil)

	_, err := scope.define(ctx, "id", "42")
	require.NoError(t, err)
	_, err = scope.define(ctx, "id", "43")
	assert.ErrorIs(t, err, ErrRedefinedIdentifier)
}

func TestScopeLookupWalksAncestors(t *testing.T) {
	root := NewRootScope()
	ctx := NewContext(ModeMerge, PhaseBuild, root, nil)
	_, err := root.define(ctx, "token", "abc")
	require.NoError(t, err)

	child := root.subscope("body", ScopeIndex{Type: "field"})
	vd := child.lookup("token")
	require.NotNil(t, vd)
	assert.Equal(t, "abc", vd.Value)
}

func TestScopeRenderingDetectsCycle(t *testing.T) {
	scope := NewRootScope()
	ctx := NewContext(ModeRender, PhaseValidate, scope, nil)

	var body func() (any, error)
	body = func() (any, error) {
		return scope.rendering(ctx, "x", body)
	}
	_, err := scope.rendering(ctx, "x", body)
	assert.ErrorIs(t, err, ErrCircularDefinition)
}

func TestScopeSubscopeIsStable(t *testing.T) {
	scope := NewRootScope()
	a := scope.subscope("items", ScopeIndex{Type: "element", Key: "0"})
	b := scope.subscope("items", ScopeIndex{Type: "element", Key: "0"})
	assert.Same(t, a, b)
}

func TestScopeResolvedValuesFiltersSecrets(t *testing.T) {
	scope := NewRootScope()
	ctx := NewContext(ModeMerge, PhaseBuild, scope, nil)
	scope.Declarations["token"] = &Declaration{Name: "token", Hint: Hint{Secret: true}}
	_, err := scope.define(ctx, "token", "s3cr3t")
	require.NoError(t, err)

	values := scope.resolvedValues(ResolvedValuesOptions{Secrets: false})
	_, present := values["token"]
	assert.False(t, present)

	values = scope.resolvedValues(ResolvedValuesOptions{Secrets: true})
	assert.Equal(t, "s3cr3t", values["token"])
}

func TestScopeExportValuesFlattensOwnBindings(t *testing.T) {
	root := NewRootScope()
	ctx := NewContext(ModeRender, PhaseValidate, root, nil)
	root.Declarations["token"] = &Declaration{Name: "token", Hint: Hint{Secret: true}}
	root.Declarations["id"] = &Declaration{Name: "id"}
	_, err := root.define(ctx, "token", "s3cr3t")
	require.NoError(t, err)
	_, err = root.define(ctx, "id", "42")
	require.NoError(t, err)

	exported := root.ExportValues(ctx, ExportValuesOptions{Secrets: false})
	_, present := exported["token"]
	assert.False(t, present)
	assert.Equal(t, "42", exported["id"])
}
