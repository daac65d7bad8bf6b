// Package httpschema assembles pardon's schema primitives into the
// domain-specific shape of an HTTP request/response: method, origin,
// pathname, searchParams, headers, body, meta. It senses the body's
// encoding (json/form/base64/text) from a Content-Type header the same way
// the core schema stacks encodings (§4.4.4, §2 item 9).
package httpschema

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pardonhq/pardon"
)

// Field names of the request/response object schema, in canonical order.
const (
	FieldMethod       = "method"
	FieldOrigin       = "origin"
	FieldPathname     = "pathname"
	FieldSearchParams = "searchParams"
	FieldHeaders      = "headers"
	FieldBody         = "body"
	FieldMeta         = "meta"
)

// NewSchema builds the empty `{ method, origin, pathname, searchParams,
// headers, body, meta }` object schema (§2 item 9). Every field starts as
// an optional stub; body only takes on a concrete encoding once a
// Content-Type is known (see MergeTemplate).
func NewSchema() *pardon.Schema {
	s := pardon.NewObjectSchema()
	for _, field := range []string{FieldMethod, FieldOrigin, FieldPathname, FieldSearchParams, FieldHeaders, FieldBody, FieldMeta} {
		s.Properties[field] = pardon.NewStubSchema()
		s.PropOrder = append(s.PropOrder, field)
		s.Optional[field] = true
	}
	return s
}

// MergeTemplate merges template into base, sensing the body's encoding from
// a Content-Type header in the template's own headers; headers bound by an
// earlier layer are not consulted. It mutates base's "body" property
// in place before delegating to pardon.MergeSchema, so the codec is chosen
// exactly once, the first time a Content-Type becomes visible.
func MergeTemplate(opts pardon.MergeOptions, base *pardon.Schema, template any, env pardon.Environment) *pardon.MergeResult {
	if base == nil {
		base = NewSchema()
	}
	if existing, ok := base.Properties[FieldBody]; !ok || existing == nil || existing.Kind == pardon.KindStub {
		if ct, found := sniffContentType(template); found {
			base.Properties[FieldBody] = pardon.NewEncodingSchema(codecFor(ct), pardon.NewStubSchema())
		}
	}
	return pardon.MergeSchema(opts, base, template, env)
}

// codecFor maps a Content-Type header value to the encoding adapter that
// decodes/encodes the request body (§4.4.4).
func codecFor(contentType string) pardon.Codec {
	mediaType := contentType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return pardon.JSONCodec{}
	case mediaType == "application/x-www-form-urlencoded":
		return pardon.FormCodec{}
	case mediaType == "application/base64" || mediaType == "application/octet-stream":
		return pardon.Base64Codec{}
	default:
		return pardon.TextCodec{}
	}
}

// sniffContentType looks for a case-insensitive "content-type" header
// inside template's "headers" field.
func sniffContentType(template any) (string, bool) {
	obj, ok := objectField(template, FieldHeaders)
	if !ok {
		return "", false
	}
	headers, ok := asObject(obj)
	if !ok {
		return "", false
	}
	for _, key := range headers.Keys {
		if strings.EqualFold(key, "content-type") {
			v, _ := headers.Get(key)
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// objectField reads field out of an object-shaped template (OrderedObject
// or plain map[string]any), without requiring the caller to know which.
func objectField(template any, field string) (any, bool) {
	obj, ok := asObject(template)
	if !ok {
		return nil, false
	}
	return obj.Get(field)
}

// asObject normalizes template into an *pardon.OrderedObject, building one
// from a plain map if necessary (key order is then merely map-iteration
// order, which is fine for the read-only sniffing this package does).
func asObject(template any) (*pardon.OrderedObject, bool) {
	switch t := template.(type) {
	case *pardon.OrderedObject:
		return t, true
	case map[string]any:
		obj := pardon.NewOrderedObject()
		for k, v := range t {
			obj.Set(k, v)
		}
		return obj, true
	default:
		return nil, false
	}
}

// Request is the rendered, concrete shape produced by Render: every pattern
// resolved, every encoding applied.
type Request struct {
	Method       string
	Origin       string
	Pathname     string
	SearchParams *pardon.OrderedObject
	Headers      *pardon.OrderedObject
	Body         any
	Meta         *pardon.OrderedObject
}

// Render runs pardon.RenderSchema over schema and assembles the result into
// a Request, generating meta.id via uuid when the ask never supplied one
// (§2 item 9, mirroring how moby/moby's daemon API stamps request IDs when
// a client omits one).
func Render(schema *pardon.Schema, env pardon.Environment) (*Request, error) {
	val, err := pardon.RenderSchema(schema, env)
	if err != nil {
		return nil, err
	}
	obj, _ := asObject(val)
	if obj == nil {
		obj = pardon.NewOrderedObject()
	}

	req := &Request{}
	if v, ok := obj.Get(FieldMethod); ok {
		req.Method, _ = v.(string)
	}
	if v, ok := obj.Get(FieldOrigin); ok {
		req.Origin, _ = v.(string)
	}
	if v, ok := obj.Get(FieldPathname); ok {
		req.Pathname, _ = v.(string)
	}
	if v, ok := obj.Get(FieldSearchParams); ok {
		req.SearchParams, _ = asObject(v)
	}
	if v, ok := obj.Get(FieldHeaders); ok {
		req.Headers, _ = asObject(v)
	}
	if v, ok := obj.Get(FieldBody); ok {
		req.Body = v
	}
	if v, ok := obj.Get(FieldMeta); ok {
		req.Meta, _ = asObject(v)
	}
	if req.Meta == nil {
		req.Meta = pardon.NewOrderedObject()
	}
	if id, ok := req.Meta.Get("id"); !ok || id == nil || id == "" {
		req.Meta.Set("id", uuid.NewString())
	}
	return req, nil
}
