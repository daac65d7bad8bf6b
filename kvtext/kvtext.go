// Package kvtext implements the value-bag (KV) text format named in §6.2:
// a line-oriented `key=value` format for the named values an ask supplies
// to the schema engine's environment. The core spec leaves this format
// unspecified beyond "a map of scalar or structured values, serialized as
// consumers see fit" - this package picks the common env-file convention
// (one binding per line, '#' comments, blank lines ignored), with
// structured values carried as JSON via bytedance/sonic.
package kvtext

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
)

// Decode parses a KV-text document into a value bag. A line's value is
// tried as JSON first (so structured values - objects, arrays, numbers,
// booleans - round-trip), falling back to the raw trimmed string.
func Decode(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, raw, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("kvtext: line %d: missing '=': %q", lineNo, line)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("kvtext: line %d: empty key", lineNo)
		}
		values[key] = decodeValue(strings.TrimSpace(raw))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("kvtext: %w", err)
	}
	return values, nil
}

func decodeValue(raw string) any {
	if raw == "" {
		return ""
	}
	var v any
	if err := sonic.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

// Encode renders a value bag back to KV text, one `key=value` binding per
// line in sorted key order for deterministic output. Non-string values are
// rendered as compact JSON so Decode can recover their shape.
func Encode(values map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		rendered, err := encodeValue(values[k])
		if err != nil {
			return nil, fmt.Errorf("kvtext: encode %q: %w", k, err)
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(rendered)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func encodeValue(v any) (string, error) {
	if s, ok := v.(string); ok && !ambiguous(s) {
		return s, nil
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ambiguous reports whether a plain string value would be misread as a
// different JSON type on the next Decode (e.g. "true", "null", "7", or
// anything starting with '{'/'['/'"') and therefore must be written as an
// explicit JSON-quoted string instead of bare text.
func ambiguous(s string) bool {
	switch s {
	case "true", "false", "null", "":
		return true
	}
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") || strings.HasPrefix(s, "\"") {
		return true
	}
	var f float64
	return sonic.Unmarshal([]byte(s), &f) == nil
}
