package pardon

import "fmt"

// mergeEncoding implements §4.4.4: an encoding schema pairs an outer
// string-typed schema with an inner schema of the decoded shape. Merging a
// decoded value merges the inner schema directly; merging a string value
// decodes first. Encodings stack (base64+json is common) because Inner may
// itself be a KindEncoding schema.
func (s *Schema) mergeEncoding(ctx *Context, template any) (*Schema, error) {
	next := s.clone()

	if str, ok := template.(string); ok {
		decoded, err := next.Codec.Decode(str)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncodingDecode, err)
		}
		merged, err := mergeNode(ctx, next.Inner, decoded)
		if err != nil {
			return nil, err
		}
		next.Inner = merged
		return next, nil
	}

	if tschema, ok := template.(*Schema); ok && tschema.Kind == KindEncoding {
		merged, err := mergeNode(ctx, next.Inner, tschema.Inner)
		if err != nil {
			return nil, err
		}
		next.Inner = merged
		return next, nil
	}

	merged, err := mergeNode(ctx, next.Inner, template)
	if err != nil {
		return nil, err
	}
	next.Inner = merged
	return next, nil
}

// renderEncoding implements §4.4.4 render: render the inner schema to
// produce the decoded value, then encode it through the outer string form.
func (s *Schema) renderEncoding(ctx *Context) (any, error) {
	inner, err := renderNode(ctx, s.Inner)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, nil
	}
	var policy Policy
	if ctx.Environment != nil {
		policy = ctx.Environment.Policy()
	}
	encoded, err := s.Codec.Encode(inner, policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodingEncode, err)
	}
	return encoded, nil
}
