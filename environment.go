package pardon

// Environment is the capability interface a schema walk consults whenever it
// needs information the template itself does not carry: unresolved
// identifiers, pattern narrowing against known values, and redaction policy
// (§4.7, and the REDESIGN FLAGS note replacing "duck-typed environment" with
// an explicit interface).
//
// Implementations are read-only for the duration of a single render; the
// engine never mutates environment state directly.
type Environment interface {
	// Name identifies the environment for diagnostics (§4.7 name()).
	Name() string

	// Resolve returns a known value for identifier, or (nil, false) if the
	// environment has no opinion.
	Resolve(ctx *Context, identifier string) (any, bool)

	// Evaluate runs identifier's bound expression (already parsed by the
	// caller) and returns its value. binding looks up another identifier's
	// value, resolving or rendering it as needed; the evaluator is
	// synchronous in this Go port (§9 decision: no JS-style lazy promises).
	Evaluate(ctx *Context, identifier string, expr string, binding func(name string) (any, error)) (any, error)

	// Match narrows the candidate pattern set against currently known
	// values, returning the subset that remain viable.
	Match(ctx *Context, patterns []*Pattern) []*Pattern

	// ReconfigurePatterns is Match's render-time counterpart: patterns are
	// narrowed again once more identifiers have been rendered.
	ReconfigurePatterns(ctx *Context, patterns []*Pattern) []*Pattern

	// Redact returns a possibly-masked copy of value when ctx/patterns
	// indicate a secret should not render verbatim.
	Redact(ctx *Context, value any, patterns []*Pattern) any

	// Policy exposes the per-request knobs from §4.7.
	Policy() Policy
}

// Policy holds the per-request configuration knobs an Environment exposes.
type Policy struct {
	// Secrets, when true, allows redacted patterns to render real values
	// (e.g. when previewing a request for the operator who owns the
	// secret).
	Secrets bool

	// PrettyPrint hints that encoders should format output for humans
	// (indented JSON) rather than wire-compact.
	PrettyPrint bool

	// Multivalue controls whether form/search-param encodings default to
	// repeating keys (true) or last-value-wins (false).
	Multivalue bool
}

// MapEnvironment is a minimal Environment backed by a flat value bag: it
// evaluates expressions with the built-in evaluator, does no pattern
// narrowing, and masks values of @secret patterns as "***" unless
// Policies.Secrets is set.
type MapEnvironment struct {
	Values    map[string]any
	Id        string
	Policies  Policy
	RedactSet map[string]bool
}

// NewMapEnvironment builds a MapEnvironment over values, named id.
func NewMapEnvironment(id string, values map[string]any) *MapEnvironment {
	return &MapEnvironment{Values: values, Id: id}
}

func (e *MapEnvironment) Name() string { return e.Id }

func (e *MapEnvironment) Resolve(ctx *Context, identifier string) (any, bool) {
	v, ok := e.Values[identifier]
	return v, ok
}

func (e *MapEnvironment) Evaluate(ctx *Context, identifier string, expr string, binding func(name string) (any, error)) (any, error) {
	return evalExpression(expr, binding)
}

func (e *MapEnvironment) Match(ctx *Context, patterns []*Pattern) []*Pattern {
	return patterns
}

func (e *MapEnvironment) ReconfigurePatterns(ctx *Context, patterns []*Pattern) []*Pattern {
	return patterns
}

func (e *MapEnvironment) Redact(ctx *Context, value any, patterns []*Pattern) any {
	if e.Policies.Secrets {
		return value
	}
	for _, p := range patterns {
		for _, v := range p.Vars {
			if v.Hint.Secret {
				return "***"
			}
		}
	}
	return value
}

func (e *MapEnvironment) Policy() Policy { return e.Policies }
