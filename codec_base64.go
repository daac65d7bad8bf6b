package pardon

import "encoding/base64"

// Base64Codec implements Codec for the `base64(...)` encoding of §4.4.4: a
// string of bytes. The inner schema typically decodes further (e.g.
// base64(json(...))), so Decode/Encode here only cross the byte boundary.
type Base64Codec struct{}

func (Base64Codec) Name() string { return "base64" }

func (Base64Codec) Decode(s string) (any, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (Base64Codec) Encode(v any, policy Policy) (string, error) {
	s, ok := v.(string)
	if !ok {
		s = toStringValue(v)
	}
	return base64.StdEncoding.EncodeToString([]byte(s)), nil
}
