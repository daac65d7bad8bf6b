package pardon

// Layer is one template in a progressive match, plus a label used only for
// diagnostics (e.g. the service config, the endpoint template, a mixin).
type Layer struct {
	Name     string
	Template any
}

// LayerFailure records why a single layer was rolled back during layering
// (§4.6).
type LayerFailure struct {
	Layer       string
	Diagnostics []*Diagnostic
}

// LayerResult is the outcome of folding a sequence of layers into one
// schema.
type LayerResult struct {
	Schema   *Schema
	Applied  []string
	Rejected []LayerFailure
}

// ApplyLayers implements §4.6 progressive matcher: templates are folded
// into a shared schema one at a time. After each successful layer, captured
// bindings become visible to subsequent layers (they share one root
// scope). A single layer's mismatch rolls back only that layer; its
// failure is recorded and the next layer is tried against the
// last-successful schema.
func ApplyLayers(opts MergeOptions, base *Schema, layers []Layer, env Environment) *LayerResult {
	result := &LayerResult{Schema: base}
	scope := NewRootScope()

	for _, layer := range layers {
		ctx := NewContext(opts.Mode, opts.Phase, scope, env)
		candidate, err := mergeNode(ctx, result.Schema, layer.Template)
		if err != nil {
			result.Rejected = append(result.Rejected, LayerFailure{
				Layer:       layer.Name,
				Diagnostics: []*Diagnostic{NewDiagnostic(ctx.Loc(), err)},
			})
			continue
		}
		if ctx.Failed() {
			result.Rejected = append(result.Rejected, LayerFailure{
				Layer:       layer.Name,
				Diagnostics: *ctx.Diagnostics,
			})
			continue
		}
		result.Schema = candidate
		result.Applied = append(result.Applied, layer.Name)
	}

	return result
}
