package pardon

import "net/url"

// FormCodec implements Codec for the `form(...)` encoding of §4.4.4:
// application/x-www-form-urlencoded, multi-valued by default when the
// environment's Multivalue policy is set (§4.7 policies).
type FormCodec struct {
	Multivalue bool
}

func (FormCodec) Name() string { return "form" }

func (FormCodec) Decode(s string) (any, error) {
	values, err := url.ParseQuery(s)
	if err != nil {
		return nil, err
	}
	obj := NewOrderedObject()
	for _, key := range sortedKeys(values) {
		vs := values[key]
		if len(vs) == 1 {
			obj.Set(key, vs[0])
		} else {
			list := make([]any, len(vs))
			for i, v := range vs {
				list[i] = v
			}
			obj.Set(key, list)
		}
	}
	return obj, nil
}

func (c FormCodec) Encode(v any, policy Policy) (string, error) {
	values := url.Values{}
	obj, ok := asOrderedObject(v)
	if !ok {
		return "", nil
	}
	multi := c.Multivalue || policy.Multivalue
	for _, key := range obj.Keys {
		val, _ := obj.Get(key)
		switch t := val.(type) {
		case []any:
			if multi {
				for _, e := range t {
					values.Add(key, toStringValue(e))
				}
			} else if len(t) > 0 {
				values.Set(key, toStringValue(t[len(t)-1]))
			}
		default:
			values.Set(key, toStringValue(val))
		}
	}
	return values.Encode(), nil
}
