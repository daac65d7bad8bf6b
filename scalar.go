package pardon

import "fmt"

// scopeScalar declares every pattern variable found on the scalar so later
// passes (and sibling schemas referencing the same name) can resolve or
// render it (§4.4.1 scope).
func (s *Schema) scopeScalar(ctx *Context) error {
	for _, p := range s.Patterns {
		for _, v := range p.Vars {
			if v.Param == "" {
				continue
			}
			pat := p
			varName := v.Param
			decl := &Declaration{
				Name:       varName,
				Path:       append(append([]string(nil), ctx.Scope.Path...), varName),
				Expression: v.Expr,
				Source:     pat.Source,
				Hint:       v.Hint,
			}
			// Only a trivial pattern's resolved/rendered value IS the
			// value of its one variable; a simple/expressive pattern
			// merely consumes the variable to build a derived string, so
			// attaching this schema's own resolveScalar/render as the
			// variable's fallback would feed the derived value back in as
			// the variable's own value. See §9 design note on this
			// simplification.
			if pat.Kind == KindTrivial {
				decl.Resolved = func(rctx *Context) (any, bool, error) {
					return s.resolveScalar(rctx)
				}
				decl.Rendered = func(rctx *Context) (any, bool, error) {
					v, err := s.renderScalarValue(rctx)
					if err != nil {
						return nil, false, err
					}
					return v, v != nil, nil
				}
			}
			if err := ctx.Scope.declare(varName, decl); err != nil {
				return err
			}
		}
	}
	if ctx.Mode != ModeMerge {
		if _, _, err := s.resolveScalar(ctx); err != nil {
			return err
		}
	}
	return nil
}

// resolveScalar attempts to produce the scalar's current resolved value by
// trying each surviving pattern in order (§4.4.1 "resolved" fallback).
func (s *Schema) resolveScalar(ctx *Context) (any, bool, error) {
	patterns := s.Patterns
	if ctx.Environment != nil {
		patterns = ctx.Environment.Match(ctx, patterns)
	}
	for _, p := range patterns {
		args := make(map[string]string, len(p.Vars))
		ok := true
		for _, v := range p.Vars {
			if v.Param == "" {
				ok = false
				break
			}
			val, found, err := ctx.Scope.resolve(ctx, v.Param)
			if err != nil {
				return nil, false, err
			}
			if !found {
				if v.Hint.Optional {
					continue
				}
				ok = false
				break
			}
			args[v.Param] = toStringValue(val)
		}
		if !ok {
			continue
		}
		rendered, ok := patternRender(p, args)
		if !ok {
			continue
		}
		converted, err := convertScalar(rendered, s.ScalarType)
		if err != nil {
			continue
		}
		return converted, true, nil
	}
	return nil, false, nil
}

// mergeScalar implements §4.4.1 merge.
func (s *Schema) mergeScalar(ctx *Context, template any) (*Schema, error) {
	next := s.clone()

	lit, litOK := templateLiteral(template)
	if tschema, ok := template.(*Schema); ok && tschema.Kind == KindScalar {
		for _, p := range tschema.Patterns {
			if err := next.addPattern(ctx, p); err != nil {
				return nil, err
			}
		}
	} else if litOK {
		p, err := patternize(toStringValue(lit), next.reLookup())
		if err != nil {
			ctx.Report(err)
			return next, nil
		}
		if err := next.addPattern(ctx, p); err != nil {
			return nil, err
		}
	}

	if err := next.scopeScalar(ctx); err != nil {
		return nil, err
	}

	value, found, err := next.resolveScalar(ctx)
	if err != nil {
		return nil, err
	}

	if ctx.Mode == ModeMatch {
		if litOK && found && !fuzzyEqual(value, lit) {
			ctx.Report(fmt.Errorf("%w: %v != %v", ErrExpectedValueMismatch, lit, value))
			return next, nil
		}
		if !found && next.allPatternsRequired() {
			ctx.Report(ErrRequiredWithoutBinding)
			return next, nil
		}
	}

	if found {
		if err := next.defineMatchesInScope(ctx, value); err != nil {
			return nil, err
		}
	} else if ctx.Phase == PhaseValidate && next.allPatternsRequired() {
		ctx.Report(ErrRequiredWithoutBinding)
	}

	return next, nil
}

func (s *Schema) reLookup() ReLookup {
	if s.CustomRe != nil {
		return s.CustomRe
	}
	return nil
}

func (s *Schema) addPattern(ctx *Context, p *Pattern) error {
	for _, existing := range s.Patterns {
		if existing.Source == p.Source {
			return nil
		}
		if !patternsMatch(existing, p) {
			if existing.Kind != KindTrivial || p.Kind == KindTrivial {
				return fmt.Errorf("%w: %q vs %q", ErrPatternConflict, existing.Source, p.Source)
			}
		}
	}
	if p.Kind == KindTrivial {
		for _, existing := range s.Patterns {
			if existing.Kind != KindTrivial && existing.Kind != KindLiteral {
				return fmt.Errorf("%w: trivial pattern after non-trivial", ErrPatternConflict)
			}
		}
	}
	s.Patterns = append(s.Patterns, p)
	return nil
}

func (s *Schema) allPatternsRequired() bool {
	if len(s.Patterns) == 0 {
		return false
	}
	for _, p := range s.Patterns {
		required := false
		for _, v := range p.Vars {
			if v.Hint.Required {
				required = true
			}
		}
		if len(p.Vars) == 0 {
			required = true
		}
		if !required {
			return false
		}
	}
	return true
}

// defineMatchesInScope pushes every variable captured from every surviving
// pattern into the scope (§4.4.1 step 6).
func (s *Schema) defineMatchesInScope(ctx *Context, value any) error {
	str := toStringValue(value)
	for _, p := range s.Patterns {
		captured, ok := patternMatch(p, str)
		if !ok {
			continue
		}
		for name, cap := range captured {
			if name == "" {
				continue
			}
			if _, err := ctx.Scope.define(ctx, name, cap); err != nil {
				return fmt.Errorf("%w: %v", ErrPatternMatchFailure, err)
			}
		}
	}
	return nil
}

// renderScalar implements §4.4.1 render.
func (s *Schema) renderScalar(ctx *Context) (any, error) {
	value, err := s.renderScalarValue(ctx)
	if err != nil {
		// Preview is best-effort: an unrenderable scalar shows its source.
		if ctx.Mode == ModePreview && len(s.Patterns) > 0 {
			return s.Patterns[0].Source, nil
		}
		return nil, err
	}
	if value == nil {
		if s.allPatternsRequired() {
			return nil, fmt.Errorf("%w", ErrNoValidConfigurations)
		}
		return nil, nil
	}
	if err := s.defineMatchesInScope(ctx, value); err != nil {
		return nil, err
	}
	if ctx.Environment != nil && !ctx.Environment.Policy().Secrets {
		value = ctx.Environment.Redact(ctx, value, s.Patterns)
	}
	return value, nil
}

func (s *Schema) renderScalarValue(ctx *Context) (any, error) {
	patterns := s.Patterns
	if ctx.Environment != nil {
		patterns = ctx.Environment.ReconfigurePatterns(ctx, patterns)
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	for _, p := range patterns {
		if p.Kind == KindLiteral {
			return convertScalar(p.Source, s.ScalarType)
		}
	}

	for _, p := range patterns {
		args, ok := renderPatternArgs(ctx, p)
		if !ok {
			continue
		}
		rendered, ok := patternRender(p, args)
		if !ok {
			continue
		}
		return convertScalar(rendered, s.ScalarType)
	}
	return nil, fmt.Errorf("%w", ErrNoValidConfigurations)
}

func renderPatternArgs(ctx *Context, p *Pattern) (map[string]string, bool) {
	args := make(map[string]string, len(p.Vars))
	for _, v := range p.Vars {
		if v.Param == "" {
			continue
		}
		val, err := renderOrEvaluate(ctx, v)
		if err != nil {
			if v.Hint.Optional {
				continue
			}
			return nil, false
		}
		if val == nil {
			if v.Hint.Optional {
				continue
			}
			return nil, false
		}
		args[v.Param] = toStringValue(val)
	}
	return args, true
}

func renderOrEvaluate(ctx *Context, v PatternVar) (any, error) {
	scope := ctx.Scope
	if v.Expr != "" {
		result, err := scope.rendering(ctx, v.Param, func() (any, error) {
			if ctx.Environment != nil {
				return ctx.Environment.Evaluate(ctx, v.Param, v.Expr, func(name string) (any, error) {
					val, err := renderIdentifier(ctx, name)
					return val, err
				})
			}
			return evalExpression(v.Expr, func(name string) (any, error) {
				return renderIdentifier(ctx, name)
			})
		})
		return result, err
	}
	return renderIdentifier(ctx, v.Param)
}

// renderIdentifier resolves or renders a bare identifier during expression
// evaluation / pattern rendering: already-bound values win, otherwise the
// declaration's Rendered fallback runs under cycle protection.
func renderIdentifier(ctx *Context, name string) (any, error) {
	if vd := ctx.Scope.lookup(name); vd != nil {
		return vd.Value, nil
	}
	// Prefer the cheap synchronous path (a Resolved callback or the
	// environment) before falling into a full Rendered computation: this
	// also sidesteps false circular-definition failures when a pattern
	// references its own bound name more than once (e.g. "{{id}}/{{id}}"),
	// since the second occurrence finds the value resolve already defined.
	if v, ok, err := ctx.Scope.resolve(ctx, name); err != nil {
		return nil, err
	} else if ok {
		return v, nil
	}
	decl := ctx.Scope.lookupDeclaration(name)
	if decl != nil && decl.Rendered != nil {
		return ctx.Scope.rendering(ctx, name, func() (any, error) {
			v, ok, err := decl.Rendered(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUndefined, name)
			}
			return v, nil
		})
	}
	return nil, fmt.Errorf("%w: %q", ErrUndefined, name)
}

// templateLiteral extracts a literal scalar value from a raw (non-Schema)
// template node: strings, numbers, booleans, and nil all qualify.
func templateLiteral(template any) (any, bool) {
	switch template.(type) {
	case string, float64, int, bool, nil:
		return template, true
	default:
		return nil, false
	}
}
