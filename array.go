package pardon

import (
	"fmt"
	"strconv"
)

// mergeTuple implements the fixed-length positional form of §4.4.3: each
// position is a subscope with index {type: element, key: i}.
func (s *Schema) mergeTuple(ctx *Context, template any) (*Schema, error) {
	next := s.clone()
	list, ok := template.([]any)
	if !ok {
		if template == nil {
			return next, nil
		}
		return nil, fmt.Errorf("%w: expected array template", ErrTypeMismatch)
	}
	for i, val := range list {
		var existing *Schema
		if i < len(next.Elements) {
			existing = next.Elements[i]
		} else {
			existing = NewStubSchema()
		}
		idxKey := strconv.Itoa(i)
		childScope := ctx.Scope.subscope("", ScopeIndex{Type: "element", Key: idxKey})
		childCtx := ctx.WithScope(childScope).WithKey("[" + idxKey + "]")
		merged, err := mergeNode(childCtx, existing, val)
		if err != nil {
			return nil, err
		}
		if i < len(next.Elements) {
			next.Elements[i] = merged
		} else {
			next.Elements = append(next.Elements, merged)
		}
	}
	return next, nil
}

func (s *Schema) renderTuple(ctx *Context) (any, error) {
	out := make([]any, 0, len(s.Elements))
	for i, el := range s.Elements {
		idxKey := strconv.Itoa(i)
		childScope := ctx.Scope.subscope("", ScopeIndex{Type: "element", Key: idxKey})
		childCtx := ctx.WithScope(childScope).WithKey("[" + idxKey + "]")
		val, err := renderNode(childCtx, el)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

// mergeArraySpread implements the archetype form of §4.4.3: one subtemplate
// applied to every element of the incoming list.
func (s *Schema) mergeArraySpread(ctx *Context, template any) (*Schema, error) {
	next := s.clone()
	list, ok := template.([]any)
	if !ok {
		if template == nil {
			return next, nil
		}
		return nil, fmt.Errorf("%w: expected array template", ErrTypeMismatch)
	}
	for i, val := range list {
		idxKey := strconv.Itoa(i)
		childScope := ctx.Scope.subscope("", ScopeIndex{Type: "element", Key: idxKey})
		childCtx := ctx.WithScope(childScope).WithKey("[" + idxKey + "]")
		merged, err := mergeNode(childCtx, next.Archetype, val)
		if err != nil {
			return nil, err
		}
		next.Archetype = merged
	}
	return next, nil
}

func (s *Schema) renderArraySpread(ctx *Context) (any, error) {
	// The archetype is rendered once per observed element subscope; the
	// count of elements lives in the scope's element subscopes, whose
	// index keys are the element positions.
	count := 0
	for _, child := range ctx.Scope.Subscopes {
		if child.Index.Type != "element" {
			continue
		}
		if idx := parseElementIndex(child.Index.Key); idx >= count {
			count = idx + 1
		}
	}
	out := make([]any, 0, count)
	for i := 0; i < count; i++ {
		idxKey := strconv.Itoa(i)
		childScope := ctx.Scope.subscope("", ScopeIndex{Type: "element", Key: idxKey})
		childCtx := ctx.WithScope(childScope).WithKey("[" + idxKey + "]")
		val, err := renderNode(childCtx, s.Archetype)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

func parseElementIndex(subscopeKey string) int {
	return parseIntSafe(subscopeKey)
}

// mergeKeyedList implements `{keyExpr} * [...archetype]` / `** ` of
// §4.4.3: each element's key is evaluated via keyExpr; single-valued (`*`)
// rejects duplicate keys, multi-valued (`**`) appends.
func (s *Schema) mergeKeyedList(ctx *Context, template any) (*Schema, error) {
	next := s.clone()
	list, ok := template.([]any)
	if !ok {
		if template == nil {
			return next, nil
		}
		return nil, fmt.Errorf("%w: expected array template", ErrTypeMismatch)
	}
	seenKeys := make(map[string]bool)
	for _, val := range list {
		key, err := evaluateKeyExpr(ctx, next.KeyExpr, val)
		if err != nil {
			return nil, err
		}
		if !next.Multivalue && seenKeys[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, key)
		}
		seenKeys[key] = true

		childScope := ctx.Scope.subscope("", ScopeIndex{Type: "element", Key: key})
		childCtx := ctx.WithScope(childScope).WithKey("{" + key + "}")
		merged, err := mergeNode(childCtx, next.Archetype, val)
		if err != nil {
			return nil, err
		}
		next.Archetype = merged
	}
	return next, nil
}

func (s *Schema) renderKeyedList(ctx *Context) (any, error) {
	out := NewOrderedObject()
	for key := range ctx.Scope.Subscopes {
		idx := ctx.Scope.Subscopes[key].Index
		if idx.Type != "element" || idx.Key == "" {
			continue
		}
		childScope := ctx.Scope.subscope("", idx)
		childCtx := ctx.WithScope(childScope).WithKey("{" + idx.Key + "}")
		val, err := renderNode(childCtx, s.Archetype)
		if err != nil {
			return nil, err
		}
		out.Set(idx.Key, val)
	}
	return out, nil
}

func evaluateKeyExpr(ctx *Context, keyExpr string, element any) (string, error) {
	if keyExpr == "" {
		return "", fmt.Errorf("%w: empty key expression", ErrInvalidPattern)
	}
	binding := func(name string) (any, error) {
		if obj, ok := asOrderedObject(element); ok {
			if v, found := obj.Get(name); found {
				return v, nil
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrUndefined, name)
	}
	v, err := evalExpression(keyExpr, binding)
	if err != nil {
		if s, ok := templateLiteral(element); ok {
			return toStringValue(s), nil
		}
		return "", err
	}
	return toStringValue(v), nil
}
