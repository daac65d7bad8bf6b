package pardon

import "fmt"

// mergeReference implements §4.4.5: a bare identifier at a template
// position declares the identifier and binds its value to whatever sibling
// branch resolves it first. When the template is itself a reference
// (`a = b`), the template's name is declared with a Resolved fallback that
// resolves this reference's name, so b takes a's value; a does not resolve
// from b.
func (s *Schema) mergeReference(ctx *Context, template any) (*Schema, error) {
	next := s.clone()

	decl := &Declaration{
		Name: next.RefName,
		Path: append(append([]string(nil), ctx.Scope.Path...), next.RefName),
	}
	if err := ctx.Scope.declare(next.RefName, decl); err != nil {
		return nil, err
	}

	if lit, ok := templateLiteral(template); ok && lit != nil {
		if _, err := ctx.Scope.define(ctx, next.RefName, lit); err != nil {
			return nil, err
		}
	} else if tschema, ok := template.(*Schema); ok && tschema.Kind == KindReference {
		// a = b: unify the two names by aliasing one declaration onto the
		// other's resolved/rendered fallbacks.
		aliasDecl := &Declaration{
			Name: tschema.RefName,
			Resolved: func(rctx *Context) (any, bool, error) {
				v, ok, err := rctx.Scope.resolve(rctx, next.RefName)
				return v, ok, err
			},
		}
		if err := ctx.Scope.declare(tschema.RefName, aliasDecl); err != nil {
			return nil, err
		}
	}

	return next, nil
}

// renderReference implements §4.4.5 render: look the identifier up.
func (s *Schema) renderReference(ctx *Context) (any, error) {
	v, err := renderIdentifier(ctx, s.RefName)
	if err != nil {
		if ctx.Phase == PhaseValidate {
			return nil, fmt.Errorf("%w: %q", ErrUnresolvedReference, s.RefName)
		}
		return nil, nil
	}
	return v, nil
}
