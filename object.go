package pardon

import (
	"errors"
	"fmt"
	"strings"
)

// mergeObject implements §4.4.2 merge: template is a key -> subtemplate map
// (OrderedObject), iterated in insertion order. Meta-keys `$flat`,
// `...spread`, and `field?` are recognized per §6.1/§4.4.2. `$flat` merges a
// nested object template's keys directly into this object at the same
// level, as if they had been written inline here, rather than nesting them
// under a named field - useful for composing a reusable group of fields
// without a spread's export wrapper.
func (s *Schema) mergeObject(ctx *Context, template any) (*Schema, error) {
	next := s.clone()
	if next.Properties == nil {
		next.Properties = make(map[string]*Schema)
		next.Optional = make(map[string]bool)
		next.Spreads = make(map[string]string)
	}

	if template == nil {
		return next, nil
	}
	obj, ok := asOrderedObject(template)
	if !ok {
		return nil, fmt.Errorf("%w: expected object template", ErrTypeMismatch)
	}

	for _, rawKey := range obj.Keys {
		val, _ := obj.Get(rawKey)

		if rawKey == "$flat" {
			merged, err := next.mergeObject(ctx, val)
			if err != nil {
				return nil, err
			}
			next = merged
			continue
		}

		key, optional, spreadName := parseObjectKey(rawKey)

		if spreadName != "" {
			if err := next.mergeSpread(ctx, spreadName, val); err != nil {
				return nil, err
			}
			continue
		}

		existing, had := next.Properties[key]
		if !had {
			existing = NewStubSchema()
			next.PropOrder = append(next.PropOrder, key)
		}
		if optional {
			next.Optional[key] = true
		}

		childCtx := ctx.WithScope(ctx.Scope.subscope(key, ScopeIndex{Type: "field"})).WithKey(key)
		merged, err := mergeNode(childCtx, existing, val)
		if err != nil {
			return nil, wrapKeyError(key, err)
		}
		next.Properties[key] = merged
	}

	return next, nil
}

func (s *Schema) mergeSpread(ctx *Context, spreadName string, val any) error {
	s.Spreads[spreadName] = spreadName
	childScope := ctx.Scope.subscope(spreadName, ScopeIndex{Type: "field"})
	childCtx := ctx.WithScope(childScope).WithKey(spreadName)
	existing, had := s.Properties[spreadName]
	if !had {
		existing = NewStubSchema()
		s.PropOrder = append(s.PropOrder, spreadName)
	}
	merged, err := mergeNode(childCtx, existing, val)
	if err != nil {
		return wrapKeyError(spreadName, err)
	}
	s.Properties[spreadName] = merged
	return nil
}

// parseObjectKey splits a raw template key into its base name plus the
// `?` optional suffix and `...` spread prefix (§6.1).
func parseObjectKey(raw string) (key string, optional bool, spread string) {
	if strings.HasPrefix(raw, "...") {
		return "", false, strings.TrimPrefix(raw, "...")
	}
	if strings.HasSuffix(raw, "?") {
		return strings.TrimSuffix(raw, "?"), true, ""
	}
	return raw, false, ""
}

func wrapKeyError(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(".%s: %w", key, err)
}

// renderObject implements §4.4.2 render: declared keys render in insertion
// order; a key marked optional is omitted when its render yields nil or
// fails for lack of a value (ErrUndefined / ErrNoValidConfigurations).
func (s *Schema) renderObject(ctx *Context) (any, error) {
	out := NewOrderedObject()
	for _, key := range s.PropOrder {
		child := s.Properties[key]
		childScope := ctx.Scope.subscope(key, ScopeIndex{Type: "field"})
		childCtx := ctx.WithScope(childScope).WithKey(key)
		val, err := renderNode(childCtx, child)
		if err != nil {
			if s.Optional[key] && (errors.Is(err, ErrUndefined) || errors.Is(err, ErrNoValidConfigurations)) {
				continue
			}
			return nil, wrapKeyError(key, err)
		}
		if val == nil && s.Optional[key] {
			continue
		}
		out.Set(key, val)
	}
	return out, nil
}

func asOrderedObject(template any) (*OrderedObject, bool) {
	switch v := template.(type) {
	case *OrderedObject:
		return v, true
	case map[string]any:
		obj := NewOrderedObject()
		for _, k := range sortedKeys(v) {
			obj.Set(k, v[k])
		}
		return obj, true
	default:
		return nil, false
	}
}
