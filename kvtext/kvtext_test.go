package kvtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeScalarsAndStructuredValues(t *testing.T) {
	data := []byte("# a comment\nname=alice\ncount=7\nactive=true\n\nmeta={\"role\":\"admin\"}\n")
	values, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "alice", values["name"])
	assert.Equal(t, float64(7), values["count"])
	assert.Equal(t, true, values["active"])
	assert.Equal(t, map[string]any{"role": "admin"}, values["meta"])
}

func TestDecodeRejectsLineWithoutEquals(t *testing.T) {
	_, err := Decode([]byte("not-a-binding"))
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := map[string]any{
		"name":   "alice",
		"count":  float64(7),
		"weird":  "true",
		"nested": map[string]any{"x": float64(1)},
	}
	text, err := Encode(values)
	require.NoError(t, err)

	back, err := Decode(text)
	require.NoError(t, err)
	assert.Equal(t, values, back)
}
