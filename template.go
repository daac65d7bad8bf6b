package pardon

import (
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

// OrderedObject preserves a JSON object's original key order, since object
// merge/render must iterate template keys in insertion order (§4.4.2,
// §3.3 invariant 6). Plain Go maps cannot make that guarantee, so template
// decoding produces OrderedObject wherever the source was a JSON object.
type OrderedObject struct {
	Keys   []string
	Fields map[string]any
}

// Get returns the value bound to key and whether it was present.
func (o *OrderedObject) Get(key string) (any, bool) {
	v, ok := o.Fields[key]
	return v, ok
}

// Set installs value under key, appending key to Keys if it is new.
func (o *OrderedObject) Set(key string, value any) {
	if o.Fields == nil {
		o.Fields = make(map[string]any)
	}
	if _, ok := o.Fields[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Fields[key] = value
}

// NewOrderedObject builds an empty OrderedObject.
func NewOrderedObject() *OrderedObject {
	return &OrderedObject{Fields: make(map[string]any)}
}

// DecodeTemplate parses JSON data into a template tree using jsontext's
// token-level decoder so object key order survives (ordinary
// encoding/json or json.Unmarshal into map[string]any would not).
func DecodeTemplate(data []byte) (any, error) {
	dec := jsontext.NewDecoder(bytesReader(data))
	v, err := decodeTemplateValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return v, nil
}

func decodeTemplateValue(dec *jsontext.Decoder) (any, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case '{':
		obj := NewOrderedObject()
		for {
			peek, err := dec.PeekKind()
			if err != nil {
				return nil, err
			}
			if peek == '}' {
				if _, err := dec.ReadToken(); err != nil {
					return nil, err
				}
				return obj, nil
			}
			keyTok, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			val, err := decodeTemplateValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(keyTok.String(), val)
		}
	case '[':
		var list []any
		for {
			peek, err := dec.PeekKind()
			if err != nil {
				return nil, err
			}
			if peek == ']' {
				if _, err := dec.ReadToken(); err != nil {
					return nil, err
				}
				return list, nil
			}
			val, err := decodeTemplateValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
	case '"':
		return tok.String(), nil
	case '0':
		return tok.Float(), nil
	case 't', 'f':
		return tok.Bool(), nil
	case 'n':
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected token kind %v", tok.Kind())
	}
}

type byteReader struct {
	data []byte
	pos  int
}

func bytesReader(data []byte) io.Reader {
	return &byteReader{data: data}
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
