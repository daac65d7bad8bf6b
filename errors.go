package pardon

import (
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonpointer"
)

// === Pattern parse errors ===
var (
	// ErrInvalidPattern is returned when a `{{...}}` pattern fails to parse.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrPatternConflict is returned when two patterns merged onto the same
	// scalar are mutually incompatible under current bindings.
	ErrPatternConflict = errors.New("pattern conflict")
)

// === Merge errors ===
var (
	// ErrExpectedValueMismatch is returned in match mode when a template
	// literal disagrees with an already-defined value.
	ErrExpectedValueMismatch = errors.New("expected value mismatch")

	// ErrPatternMatchFailure is returned when a captured sub-pattern
	// disagrees with an equal literal value.
	ErrPatternMatchFailure = errors.New("pattern match failure")

	// ErrRedeclaredIdentifier is returned when the same name is declared
	// twice in a scope with unequal expressions.
	ErrRedeclaredIdentifier = errors.New("redeclared identifier")

	// ErrRequiredWithoutBinding is returned when a required pattern has no
	// satisfying value during the validate phase.
	ErrRequiredWithoutBinding = errors.New("required value has no binding")

	// ErrTypeMismatch is returned when a template's shape is incompatible
	// with the schema it is merged into (e.g. object template over array
	// schema).
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrDuplicateKey is returned when a single-valued keyed list (`*`)
	// produces the same key from two elements.
	ErrDuplicateKey = errors.New("duplicate key")
)

// === Render errors ===
var (
	// ErrCircularDefinition is returned when rendering a name re-enters its
	// own not-yet-complete render.
	ErrCircularDefinition = errors.New("circular definition")

	// ErrUndefined is returned when a required value has no binding and no
	// environment fallback at render time.
	ErrUndefined = errors.New("undefined")

	// ErrUnevaluated is returned when a required pattern could not be
	// evaluated in any configuration.
	ErrUnevaluated = errors.New("unevaluated")

	// ErrNoValidConfigurations is returned when every surviving pattern on a
	// scalar fails to resolve or render.
	ErrNoValidConfigurations = errors.New("no valid pattern configurations")

	// ErrMismatchAtLocation is returned when a rendered value disagrees with
	// a value already bound at the same location.
	ErrMismatchAtLocation = errors.New("value mismatch at location")

	// ErrEvaluationFailure wraps a failure raised by the expression
	// evaluator.
	ErrEvaluationFailure = errors.New("expression evaluation failed")
)

// === Consistency errors ===
var (
	// ErrRedefinedIdentifier is returned when a name already bound to value
	// A is redefined with an unequal value A'.
	ErrRedefinedIdentifier = errors.New("redefined identifier")
)

// === Reference / encoding errors ===
var (
	// ErrUnresolvedReference is returned when a reference identifier never
	// receives a binding from any sibling branch.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrEncodingDecode is returned when an encoding adapter fails to decode
	// its outer string representation.
	ErrEncodingDecode = errors.New("encoding decode failed")

	// ErrEncodingEncode is returned when an encoding adapter fails to encode
	// its inner rendered value.
	ErrEncodingEncode = errors.New("encoding encode failed")
)

// Diagnostic is the unit of failure reporting across merge, render, and
// match operations. Loc follows the "name?:scopes|keys" shape from the
// schema's error handling design: scope segments are prefixed with ':',
// key segments are prefixed with '.'.
type Diagnostic struct {
	Loc  string   // location, e.g. ".body.id" or ":element[2].name"
	Keys []string // the key path alone, for Pointer()
	Err  error     // the causing error, usually one of the sentinels above
}

// Error implements the error interface so a Diagnostic can be used wherever
// a plain error is expected (e.g. errors.Join).
func (d *Diagnostic) Error() string {
	if d.Loc == "" {
		return d.Err.Error()
	}
	return fmt.Sprintf("%s: %s", d.Loc, d.Err.Error())
}

// Unwrap exposes the causing error for errors.Is/errors.As.
func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// NewDiagnostic builds a Diagnostic at the given location.
func NewDiagnostic(loc string, err error) *Diagnostic {
	return &Diagnostic{Loc: loc, Err: err}
}

// NewDiagnosticAt builds a Diagnostic carrying both the §7 location string
// and the raw key path, so callers that want a JSON-Pointer representation
// can use Pointer() instead of parsing Loc back apart.
func NewDiagnosticAt(loc string, keys []string, err error) *Diagnostic {
	return &Diagnostic{Loc: loc, Keys: keys, Err: err}
}

// Pointer renders the diagnostic's key path as a JSON Pointer ("#/body/id"),
// for hosts that want to highlight the offending field in a rendered
// request body rather than display the §7 scope/key location string.
func (d *Diagnostic) Pointer() string {
	if len(d.Keys) == 0 {
		return "#"
	}
	return "#" + jsonpointer.Format(d.Keys...)
}

// locName renders a scope-path/key-path pair into the §7 location shape.
func locName(scopePath []string, keys []string) string {
	loc := ""
	for _, s := range scopePath {
		loc += ":" + s
	}
	for _, k := range keys {
		loc += "." + k
	}
	return loc
}
