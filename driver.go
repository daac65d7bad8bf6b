package pardon

import "fmt"

// MergeOptions configures a single mergeSchema call (§4.5).
type MergeOptions struct {
	Mode  Mode
	Phase Phase
}

// MergeResult is what mergeSchema returns: the new schema on success; the
// schema together with the diagnostics when failures were only reported;
// or a nil schema with the context and diagnostics when the merge aborted
// with an error (§4.5).
type MergeResult struct {
	Schema      *Schema
	Context     *Context
	Diagnostics []*Diagnostic
}

// mergeNode dispatches merge(ctx, template) by schema Kind. It is the
// engine's single recursion point: every node kind's merge calls back into
// mergeNode for its children.
func mergeNode(ctx *Context, schema *Schema, template any) (*Schema, error) {
	if schema == nil {
		schema = NewStubSchema()
	}
	if tschema, ok := template.(*Schema); ok && tschema.Kind == KindStub {
		return schema, nil
	}
	switch schema.Kind {
	case KindStub:
		return mergeIntoStub(ctx, template)
	case KindScalar:
		return schema.mergeScalar(ctx, template)
	case KindObject:
		return schema.mergeObject(ctx, template)
	case KindTuple:
		return schema.mergeTuple(ctx, template)
	case KindArraySpread:
		return schema.mergeArraySpread(ctx, template)
	case KindKeyedList:
		return schema.mergeKeyedList(ctx, template)
	case KindEncoding:
		return schema.mergeEncoding(ctx, template)
	case KindReference:
		return schema.mergeReference(ctx, template)
	case KindHidden:
		wrapped, err := mergeNode(ctx, schema.Wrapped, template)
		if err != nil {
			return nil, err
		}
		return NewHiddenSchema(wrapped), nil
	default:
		return nil, fmt.Errorf("%w: unknown schema kind", ErrTypeMismatch)
	}
}

// mergeIntoStub infers the concrete node kind the first time a stub
// schema receives a real template, since a stub matches anything (§4.4.6).
func mergeIntoStub(ctx *Context, template any) (*Schema, error) {
	switch t := template.(type) {
	case *Schema:
		return mergeNode(ctx, t.clone(), template)
	case *OrderedObject:
		return NewObjectSchema().mergeObject(ctx, t)
	case map[string]any:
		return NewObjectSchema().mergeObject(ctx, t)
	case []any:
		// A plain JSON array template defaults to positional (tuple)
		// merge; array-spread and keyed-list forms apply only when the
		// prior schema was already constructed as such (§9 decision: raw
		// template syntax carries no spread/tuple marker of its own).
		return NewTupleSchema().mergeTuple(ctx, t)
	default:
		// Number and boolean literals keep their type when rendered.
		typ := TypeUntyped
		switch t.(type) {
		case float64, int:
			typ = TypeNumber
		case bool:
			typ = TypeBoolean
		}
		return NewScalarSchema(typ).mergeScalar(ctx, t)
	}
}

// renderNode dispatches render(ctx) by schema Kind.
func renderNode(ctx *Context, schema *Schema) (any, error) {
	if schema == nil {
		return nil, nil
	}
	switch schema.Kind {
	case KindStub:
		return nil, nil
	case KindScalar:
		return schema.renderScalar(ctx)
	case KindObject:
		return schema.renderObject(ctx)
	case KindTuple:
		return schema.renderTuple(ctx)
	case KindArraySpread:
		return schema.renderArraySpread(ctx)
	case KindKeyedList:
		return schema.renderKeyedList(ctx)
	case KindEncoding:
		return schema.renderEncoding(ctx)
	case KindReference:
		return schema.renderReference(ctx)
	case KindHidden:
		if _, err := renderNode(ctx, schema.Wrapped); err != nil {
			return nil, err
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown schema kind", ErrTypeMismatch)
	}
}

// MergeSchema runs the scope pass then merge, per §4.5. On success it
// returns the new schema. When the merge aborts with an error it returns
// the partially-constructed context carrying diagnostics, with a nil
// schema; when failures were only reported as diagnostics (e.g. a
// redefinition or a value mismatch in match mode), the merged schema is
// returned alongside them.
func MergeSchema(opts MergeOptions, schema *Schema, template any, env Environment) *MergeResult {
	scope := NewRootScope()
	ctx := NewContext(opts.Mode, opts.Phase, scope, env)

	merged, err := mergeNode(ctx, schema, template)
	if err != nil {
		return &MergeResult{Context: ctx, Diagnostics: *ctx.Diagnostics}
	}
	if ctx.Failed() {
		return &MergeResult{Schema: merged, Context: ctx, Diagnostics: *ctx.Diagnostics}
	}
	return &MergeResult{Schema: merged, Context: ctx}
}

// PreviewSchema performs a best-effort render: undefined values are left as
// their pattern source text rather than raising (§4.5, §6.3 preview).
func PreviewSchema(schema *Schema, env Environment) (any, error) {
	scope := NewRootScope()
	ctx := NewContext(ModePreview, PhaseBuild, scope, env)
	val, err := renderNodeBestEffort(ctx, schema)
	if err != nil {
		return nil, err
	}
	return val, nil
}

func renderNodeBestEffort(ctx *Context, schema *Schema) (any, error) {
	val, err := renderNode(ctx, schema)
	if err == nil {
		return val, nil
	}
	if schema != nil && schema.Kind == KindScalar && len(schema.Patterns) > 0 {
		return schema.Patterns[0].Source, nil
	}
	return nil, err
}

// RenderSchema performs a full render, raising if any required value is
// missing (§4.5, §6.3 render).
func RenderSchema(schema *Schema, env Environment) (any, error) {
	scope := NewRootScope()
	ctx := NewContext(ModeRender, PhaseValidate, scope, env)
	return renderNode(ctx, schema)
}

// RenderSchemaValues runs a full render like RenderSchema and additionally
// returns the resolved value bag the render produced (§6.3 render output:
// "value + resolved values map"), for hosts (e.g. cmd/pardon) that need
// both halves of the render result rather than just the rendered value.
func RenderSchemaValues(schema *Schema, env Environment) (any, map[string]any, error) {
	scope := NewRootScope()
	ctx := NewContext(ModeRender, PhaseValidate, scope, env)
	val, err := renderNode(ctx, schema)
	if err != nil {
		return nil, nil, err
	}
	// Bindings live in whichever scope rendered them (object fields and
	// array elements render in subscopes), so the whole tree is walked:
	// root first, subscopes in sorted key order, first binding of a name wins.
	values := make(map[string]any)
	var collect func(s *EvaluationScope)
	collect = func(s *EvaluationScope) {
		for name, vd := range s.Values {
			if _, seen := values[name]; !seen {
				values[name] = vd.Value
			}
		}
		for _, key := range sortedKeys(s.Subscopes) {
			collect(s.Subscopes[key])
		}
	}
	collect(scope)
	return val, values, nil
}

// PostrenderSchema runs a second-pass render over an already-rendered tree,
// used to recompute redactions or apply late bindings (§4.5).
func PostrenderSchema(schema *Schema, env Environment) (any, error) {
	scope := NewRootScope()
	ctx := NewContext(ModePostrender, PhaseValidate, scope, env)
	return renderNode(ctx, schema)
}
