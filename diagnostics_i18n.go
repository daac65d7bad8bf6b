package pardon

import (
	"embed"
	"errors"

	"github.com/kaptinlin/go-i18n"
)

//go:embed locales/*.json
var localesFS embed.FS

// NewDiagnosticsBundle returns an initialized internationalization bundle
// with embedded locales, for translating Diagnostic messages into a human
// language at the host's boundary.
func NewDiagnosticsBundle() (*i18n.I18n, error) {
	bundle := i18n.NewBundle(
		i18n.WithDefaultLocale("en"),
		i18n.WithLocales("en", "zh-Hans"),
	)
	err := bundle.LoadFS(localesFS, "locales/*.json")
	return bundle, err
}

// diagnosticMessageKey maps a sentinel error to its translation key in
// locales/*.json. Unrecognized errors fall back to a generic key.
func diagnosticMessageKey(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPattern):
		return "pattern.invalid"
	case errors.Is(err, ErrPatternConflict):
		return "pattern.conflict"
	case errors.Is(err, ErrExpectedValueMismatch):
		return "merge.expected_value_mismatch"
	case errors.Is(err, ErrPatternMatchFailure):
		return "merge.pattern_match_failure"
	case errors.Is(err, ErrRedeclaredIdentifier):
		return "merge.redeclared_identifier"
	case errors.Is(err, ErrRequiredWithoutBinding):
		return "merge.required_without_binding"
	case errors.Is(err, ErrTypeMismatch):
		return "merge.type_mismatch"
	case errors.Is(err, ErrDuplicateKey):
		return "merge.duplicate_key"
	case errors.Is(err, ErrCircularDefinition):
		return "render.circular_definition"
	case errors.Is(err, ErrUndefined):
		return "render.undefined"
	case errors.Is(err, ErrUnevaluated):
		return "render.unevaluated"
	case errors.Is(err, ErrNoValidConfigurations):
		return "render.no_valid_configurations"
	case errors.Is(err, ErrMismatchAtLocation):
		return "render.mismatch_at_location"
	case errors.Is(err, ErrEvaluationFailure):
		return "render.evaluation_failure"
	case errors.Is(err, ErrRedefinedIdentifier):
		return "consistency.redefined_identifier"
	case errors.Is(err, ErrUnresolvedReference):
		return "reference.unresolved"
	case errors.Is(err, ErrEncodingDecode):
		return "encoding.decode_failed"
	case errors.Is(err, ErrEncodingEncode):
		return "encoding.encode_failed"
	default:
		return "generic.failure"
	}
}

// Translate renders d's message for locale using localizer, falling back to
// d.Error() when localizer is nil (e.g. tests that skip NewDiagnosticsBundle
// / NewLocalizer entirely).
func (d *Diagnostic) Translate(localizer *i18n.Localizer) string {
	if localizer == nil {
		return d.Error()
	}
	return localizer.Get(diagnosticMessageKey(d.Err), i18n.Vars(map[string]any{
		"location": d.Loc,
		"error":    d.Err.Error(),
	}))
}
