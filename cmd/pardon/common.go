package main

import (
	"os"

	"github.com/pardonhq/pardon"
	"github.com/pardonhq/pardon/collection"
	"github.com/pardonhq/pardon/kvtext"
)

// loadTemplate reads a single template file (YAML, or a `.https` file in
// the same shape) into a Pardon template value.
func loadTemplate(path string) (any, error) {
	doc, err := collection.Load(path)
	if err != nil {
		return nil, err
	}
	return doc.Template, nil
}

// loadValues reads a KV-text value bag, or returns an empty bag when path
// is empty (the merge/render/match commands all treat the value bag as
// optional).
func loadValues(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return kvtext.Decode(data)
}

// printDiagnostics writes one diagnostic per line to stderr.
func printDiagnostics(diags []*pardon.Diagnostic) {
	for _, d := range diags {
		os.Stderr.WriteString(d.Error())
		os.Stderr.WriteString("\n")
	}
}
