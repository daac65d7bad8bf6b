package pardon

import (
	"bytes"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// JSONCodec implements Codec for the `json(...)` encoding of §4.4.4:
// object/array/scalar, preserving key order via jsontext rather than
// encoding/json's unordered map[string]any.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Decode(s string) (any, error) {
	return DecodeTemplate([]byte(s))
}

func (JSONCodec) Encode(v any, policy Policy) (string, error) {
	data, err := EncodeOrderedJSON(v, policy.PrettyPrint)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EncodeOrderedJSON renders v as JSON honoring OrderedObject key order
// exactly, per §4.4.4's JSON codec contract ("object/array/scalar; preserves
// key-order"). Both the `json(...)` wire codec (JSONCodec.Encode) and hosts
// that display a rendered request or response - cmd/pardon's merge/render/
// match subcommands - use this.
func EncodeOrderedJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	var opts []jsontext.Options
	if pretty {
		opts = append(opts, jsontext.Multiline(true), jsontext.WithIndent("  "))
	}
	enc := jsontext.NewEncoder(&buf, opts...)
	if err := writeOrderedValue(enc, v); err != nil {
		return nil, err
	}
	// The encoder ends each top-level value with a newline; drop it.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func writeOrderedValue(enc *jsontext.Encoder, v any) error {
	switch t := v.(type) {
	case *OrderedObject:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, k := range t.Keys {
			if err := enc.WriteToken(jsontext.String(k)); err != nil {
				return err
			}
			val, _ := t.Get(k)
			if err := writeOrderedValue(enc, val); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	case []any:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, e := range t {
			if err := writeOrderedValue(enc, e); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		return enc.WriteValue(jsontext.Value(data))
	}
}
