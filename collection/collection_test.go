package collection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pardonhq/pardon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBytesDecodesNestedTemplate(t *testing.T) {
	doc, err := LoadBytes("service.yaml", []byte("host: api.example.com\nport: 443\npaths:\n  - /users/{{id}}\n  - /orders/{{id}}\n"))
	require.NoError(t, err)

	obj, ok := doc.Template.(*pardon.OrderedObject)
	require.True(t, ok)

	host, _ := obj.Get("host")
	assert.Equal(t, "api.example.com", host)

	port, _ := obj.Get("port")
	assert.Equal(t, float64(443), port)

	paths, _ := obj.Get("paths")
	list, ok := paths.([]any)
	require.True(t, ok)
	assert.Equal(t, "/users/{{id}}", list[0])
}

func TestLoadBytesDecodesJSONDocument(t *testing.T) {
	doc, err := LoadBytes("service.json", []byte(`{"host": "api.example.com", "port": 443, "paths": ["/users/{{id}}"]}`))
	require.NoError(t, err)

	obj, ok := doc.Template.(*pardon.OrderedObject)
	require.True(t, ok)
	host, _ := obj.Get("host")
	assert.Equal(t, "api.example.com", host)
	port, _ := obj.Get("port")
	assert.Equal(t, float64(443), port)
}

func TestLoadDirOrdersByNameAndBuildsLayers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-endpoint.https"), []byte("path: /b\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-service.yaml"), []byte("host: api.example.com\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not a template"), 0o644))

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a-service.yaml", docs[0].Name)
	assert.Equal(t, "b-endpoint.https", docs[1].Name)

	layers := Layers(docs)
	require.Len(t, layers, 2)
	assert.Equal(t, "a-service", layers[0].Name)
	assert.Equal(t, "b-endpoint", layers[1].Name)
}
