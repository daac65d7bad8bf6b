package pardon

// Mode selects how a schema walk treats a template: merging new information
// in, matching an existing value against expectations, or producing output
// (§3.1 Context).
type Mode int

const (
	ModeMerge Mode = iota
	ModeMatch
	ModeRender
	ModePreview
	ModePrerender
	ModePostrender
)

func (m Mode) String() string {
	switch m {
	case ModeMerge:
		return "merge"
	case ModeMatch:
		return "match"
	case ModeRender:
		return "render"
	case ModePreview:
		return "preview"
	case ModePrerender:
		return "prerender"
	case ModePostrender:
		return "postrender"
	default:
		return "unknown"
	}
}

// Phase distinguishes a best-effort structural pass (build) from the final
// pass that enforces required bindings (validate).
type Phase int

const (
	PhaseBuild Phase = iota
	PhaseValidate
)

func (p Phase) String() string {
	if p == PhaseValidate {
		return "validate"
	}
	return "build"
}

// Context is the per-visit cursor threaded through every schema/scope
// operation. It is cheap to clone: Keys is copied, Scope/Environment are
// shared pointers, Diagnostics/Cycles are shared slices/sets that accumulate
// across the whole walk.
type Context struct {
	Mode        Mode
	Phase       Phase
	Keys        []string
	Scope       *EvaluationScope
	Environment Environment
	Diagnostics *[]*Diagnostic
	Cycles      map[string]bool
}

// NewContext starts a fresh walk rooted at scope, under the given mode,
// phase, and environment.
func NewContext(mode Mode, phase Phase, scope *EvaluationScope, env Environment) *Context {
	diags := make([]*Diagnostic, 0)
	return &Context{
		Mode:        mode,
		Phase:       phase,
		Scope:       scope,
		Environment: env,
		Diagnostics: &diags,
		Cycles:      make(map[string]bool),
	}
}

// WithKey returns a clone of c with key appended to Keys, for descending
// into a field or element.
func (c *Context) WithKey(key string) *Context {
	next := *c
	next.Keys = append(append([]string(nil), c.Keys...), key)
	return &next
}

// WithScope returns a clone of c pointed at a different scope (e.g. a
// subscope), keeping Keys reset to the scope-relative path.
func (c *Context) WithScope(scope *EvaluationScope) *Context {
	next := *c
	next.Scope = scope
	next.Keys = nil
	return &next
}

// Loc renders the current scope path plus key path into the §7 location
// shape.
func (c *Context) Loc() string {
	var scopePath []string
	if c.Scope != nil {
		scopePath = c.Scope.Path
	}
	return locName(scopePath, c.Keys)
}

// Report appends a diagnostic at the current location. In merge/match modes
// this is how failures accumulate without aborting the whole walk; render
// modes treat the first diagnostic as fatal.
func (c *Context) Report(err error) {
	*c.Diagnostics = append(*c.Diagnostics, NewDiagnosticAt(c.Loc(), c.Keys, err))
}

// Failed reports whether any diagnostic has been recorded so far.
func (c *Context) Failed() bool {
	return len(*c.Diagnostics) > 0
}
