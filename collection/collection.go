// Package collection loads the YAML template documents a Pardon collection
// is made of (§1, §6.1 "external collaborator") into the same template
// value shape the schema engine consumes: strings carrying `{{…}}`
// patterns, nested in *pardon.OrderedObject / []any / scalar values. It
// intentionally implements only the loader/decoder, not the directory- and
// mixin-layer resolution the original engine performs around it (§9 design
// notes: "rough solution", preserve observable behavior, not the internal
// algorithm).
package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/pardonhq/pardon"
)

// Document is one loaded template file: its collection-relative name plus
// the decoded template value, ready to be merged via pardon.MergeSchema or
// httpschema.MergeTemplate.
type Document struct {
	Name     string
	Template any
}

// extensions recognized as Pardon template documents; ".https" is the
// domain-specific extension named in §1 for request/response templates,
// ".yaml"/".yml" are the general template format, and ".json" is decoded
// with goccy/go-json rather than the YAML parser.
var extensions = map[string]bool{".yaml": true, ".yml": true, ".https": true, ".json": true}

// Load reads and decodes a single template file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("collection: read %s: %w", path, err)
	}
	return LoadBytes(filepath.Base(path), data)
}

// LoadBytes decodes a collection document already read into memory, under
// name (used only for diagnostics and for LoadDir's result ordering). A
// ".json" name is decoded with goccy/go-json; everything else (".yaml",
// ".yml", ".https") is decoded as YAML, which is a superset of JSON syntax.
func LoadBytes(name string, data []byte) (*Document, error) {
	var raw any
	var err error
	if strings.ToLower(filepath.Ext(name)) == ".json" {
		err = gojson.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("collection: parse %s: %w", name, err)
	}
	return &Document{Name: name, Template: toTemplate(raw)}, nil
}

// LoadDir loads every recognized template file directly inside dir (not
// recursive), sorted by name for deterministic layering order when the
// caller folds them through pardon.ApplyLayers.
func LoadDir(dir string) ([]*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("collection: read dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	docs := make([]*Document, 0, len(names))
	for _, name := range names {
		doc, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Layers converts docs into pardon.Layer values, named after each
// document's base name (without extension) for use with pardon.ApplyLayers
// (§4.6 progressive matcher).
func Layers(docs []*Document) []pardon.Layer {
	layers := make([]pardon.Layer, 0, len(docs))
	for _, doc := range docs {
		name := strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name))
		layers = append(layers, pardon.Layer{Name: name, Template: doc.Template})
	}
	return layers
}

// toTemplate recursively converts goccy/go-yaml's decoded value tree into
// Pardon's template shape: map[string]any becomes *pardon.OrderedObject
// (keys sorted, since plain Go maps carry no file order and yaml.Unmarshal
// into `any` does not preserve one either - §3.3 invariant 6 is therefore
// only upheld for object keys written directly as JSON in a template
// string, not for top-level YAML mapping order), []any is converted
// element-wise, and int-family YAML scalars are normalized to float64 to
// match the JSON numeric representation the rest of the engine expects
// (value.go's convertScalar).
func toTemplate(v any) any {
	switch t := v.(type) {
	case map[string]any:
		obj := pardon.NewOrderedObject()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, toTemplate(t[k]))
		}
		return obj
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toTemplate(e)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return t
	}
}
