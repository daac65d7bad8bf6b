package pardon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticTranslateFallsBackWithoutLocalizer(t *testing.T) {
	d := NewDiagnosticAt(":body.id", []string{"body", "id"}, ErrUndefined)
	assert.Equal(t, d.Error(), d.Translate(nil))
}

func TestDiagnosticTranslateUsesBundle(t *testing.T) {
	bundle, err := NewDiagnosticsBundle()
	require.NoError(t, err)

	localizer := bundle.NewLocalizer("en")
	d := NewDiagnosticAt(":body.id", []string{"body", "id"}, ErrUndefined)
	msg := d.Translate(localizer)
	assert.Contains(t, msg, ":body.id")
	assert.Contains(t, msg, "undefined")
}

func TestDiagnosticTranslateZhHans(t *testing.T) {
	bundle, err := NewDiagnosticsBundle()
	require.NoError(t, err)

	localizer := bundle.NewLocalizer("zh-Hans")
	d := NewDiagnosticAt(":body.id", []string{"body", "id"}, ErrDuplicateKey)
	msg := d.Translate(localizer)
	assert.Contains(t, msg, ":body.id")
}
