package pardon

import (
	"fmt"
	"sort"
	"strings"
)

// ScopeIndex identifies why a subscope exists: as an object field or as an
// array/keyed-list element, optionally keyed (§3.1 EvaluationScope.index).
type ScopeIndex struct {
	Type string // "field" or "element"
	Key  string // element key, or "" for a plain field
}

// Declaration is a known name together with how to compute it (§3.1).
type Declaration struct {
	Name       string
	Path       []string
	Expression string
	Source     string
	Hint       Hint
	Rendered   func(ctx *Context) (any, bool, error)
	Resolved   func(ctx *Context) (any, bool, error)
}

// ValueDefinition is a resolved binding, set once per name per scope
// (§3.1). Later defines of an equal value are idempotent.
type ValueDefinition struct {
	Name        string
	Value       any
	Path        []string
	Declaration *Declaration
}

// EvaluationScope is a node in the runtime scope tree, indexed by the
// template's structure (§3.1, §4.2).
type EvaluationScope struct {
	Parent       *EvaluationScope
	Path         []string
	Index        ScopeIndex
	Declarations map[string]*Declaration
	Values       map[string]*ValueDefinition
	Subscopes    map[string]*EvaluationScope
	cache        map[string]any
	pending      map[string]bool
}

// NewRootScope creates the root of a fresh scope tree for one render.
func NewRootScope() *EvaluationScope {
	return newScope(nil, nil, ScopeIndex{})
}

func newScope(parent *EvaluationScope, path []string, index ScopeIndex) *EvaluationScope {
	return &EvaluationScope{
		Parent:       parent,
		Path:         path,
		Index:        index,
		Declarations: make(map[string]*Declaration),
		Values:       make(map[string]*ValueDefinition),
		Subscopes:    make(map[string]*EvaluationScope),
		cache:        make(map[string]any),
		pending:      make(map[string]bool),
	}
}

// declare registers or merges a declaration for name (§4.2 declare).
// Duplicate declarations with an equal Expression are idempotent; with an
// unequal Expression the call raises ErrRedeclaredIdentifier. Rendered and
// Resolved fallbacks are combined so the first non-nil result wins.
func (s *EvaluationScope) declare(name string, decl *Declaration) error {
	existing, ok := s.Declarations[name]
	if !ok {
		s.Declarations[name] = decl
		return nil
	}
	if existing.Expression != "" && decl.Expression != "" && existing.Expression != decl.Expression {
		return fmt.Errorf("%w: %q", ErrRedeclaredIdentifier, name)
	}
	if existing.Expression == "" {
		existing.Expression = decl.Expression
	}
	if existing.Source == "" {
		existing.Source = decl.Source
	}
	existing.Hint = mergeHints(existing.Hint, decl.Hint)
	if existing.Rendered == nil {
		existing.Rendered = decl.Rendered
	} else if decl.Rendered != nil {
		first, second := existing.Rendered, decl.Rendered
		existing.Rendered = func(ctx *Context) (any, bool, error) {
			v, ok, err := first(ctx)
			if err != nil || ok {
				return v, ok, err
			}
			return second(ctx)
		}
	}
	if existing.Resolved == nil {
		existing.Resolved = decl.Resolved
	} else if decl.Resolved != nil {
		first, second := existing.Resolved, decl.Resolved
		existing.Resolved = func(ctx *Context) (any, bool, error) {
			v, ok, err := first(ctx)
			if err != nil || ok {
				return v, ok, err
			}
			return second(ctx)
		}
	}
	return nil
}

func mergeHints(a, b Hint) Hint {
	return Hint{
		Optional: a.Optional || b.Optional,
		Required: a.Required || b.Required,
		Hidden:   a.Hidden || b.Hidden,
		Secret:   a.Secret || b.Secret,
		Export:   a.Export || b.Export,
		Flow:     a.Flow || b.Flow,
		Nonempty: a.Nonempty || b.Nonempty,
	}
}

func (s *EvaluationScope) pathFor(name string) []string {
	return append(append([]string(nil), s.Path...), name)
}

// define installs a binding for name under ctx (§4.2 define). An existing
// equal binding (fuzzyEqual) is a no-op; an unequal one raises
// ErrRedefinedIdentifier. In merge and match modes it is reported as a
// diagnostic and the existing binding is kept, so those walks can keep
// collecting other failures; in every other mode it is returned.
func (s *EvaluationScope) define(ctx *Context, name string, value any) (*ValueDefinition, error) {
	if existing, ok := s.Values[name]; ok {
		if fuzzyEqual(existing.Value, value) {
			return existing, nil
		}
		err := fmt.Errorf("%w: %q", ErrRedefinedIdentifier, name)
		if ctx.Mode == ModeMerge || ctx.Mode == ModeMatch {
			ctx.Report(err)
			return existing, nil
		}
		return nil, err
	}
	vd := &ValueDefinition{Name: name, Value: value, Path: append(append([]string(nil), s.Path...), name), Declaration: s.Declarations[name]}
	s.Values[name] = vd
	return vd, nil
}

// lookup returns the first in-scope ValueDefinition for name, walking
// upward through ancestor scopes, else nil (§4.2 lookup).
func (s *EvaluationScope) lookup(name string) *ValueDefinition {
	for cur := s; cur != nil; cur = cur.Parent {
		if vd, ok := cur.Values[name]; ok {
			return vd
		}
	}
	return nil
}

// lookupDeclaration returns the nearest declaration for name, walking
// upward.
func (s *EvaluationScope) lookupDeclaration(name string) *Declaration {
	for cur := s; cur != nil; cur = cur.Parent {
		if d, ok := cur.Declarations[name]; ok {
			return d
		}
	}
	return nil
}

// resolve synchronously resolves name: a declaration's Resolved callback
// wins first, then the environment, caching the outcome either way (§4.2
// resolve).
func (s *EvaluationScope) resolve(ctx *Context, name string) (any, bool, error) {
	if vd := s.lookup(name); vd != nil {
		return vd.Value, true, nil
	}
	cacheKey := "resolve:" + name
	if v, ok := s.cache[cacheKey]; ok {
		if v == nil {
			return nil, false, nil
		}
		return v, true, nil
	}
	decl := s.lookupDeclaration(name)
	if decl != nil && decl.Resolved != nil && !ctx.Cycles[name] {
		ctx.Cycles[name] = true
		v, ok, err := decl.Resolved(ctx)
		delete(ctx.Cycles, name)
		if err != nil {
			return nil, false, err
		}
		if ok {
			if _, err := s.define(ctx, name, v); err != nil {
				return nil, false, err
			}
			s.cache[cacheKey] = v
			return v, true, nil
		}
	}
	if ctx.Environment != nil {
		if v, ok := ctx.Environment.Resolve(ctx, name); ok {
			if _, err := s.define(ctx, name, v); err != nil {
				return nil, false, err
			}
			s.cache[cacheKey] = v
			return v, true, nil
		}
	}
	s.cache[cacheKey] = nil
	return nil, false, nil
}

// rendering runs body to produce name's rendered value, guarding against
// cycles by installing a pending marker before body runs (§3.3 invariant 3,
// §4.2 rendering). The original spec's asynchronous "second arrivals wait on
// the same placeholder" becomes, in this synchronous port, "second arrivals
// observe the already-defined value" since body always completes before
// rendering returns.
func (s *EvaluationScope) rendering(ctx *Context, name string, body func() (any, error)) (any, error) {
	if vd := s.lookup(name); vd != nil {
		return vd.Value, nil
	}
	if s.pending[name] {
		return nil, fmt.Errorf("%w: %q", ErrCircularDefinition, name)
	}
	s.pending[name] = true
	defer delete(s.pending, name)

	v, err := body()
	if err != nil {
		return nil, err
	}
	if _, err := s.define(ctx, name, v); err != nil {
		return nil, err
	}
	return v, nil
}

// cached memoizes body's result under the join of ctx.Keys and keys (§4.2
// cached).
func (s *EvaluationScope) cached(ctx *Context, keys []string, body func() (any, error)) (any, error) {
	full := append(append([]string(nil), ctx.Keys...), keys...)
	cacheKey := strings.Join(full, "\x1f")
	if v, ok := s.cache[cacheKey]; ok {
		return v, nil
	}
	v, err := body()
	if err != nil {
		return nil, err
	}
	s.cache[cacheKey] = v
	return v, nil
}

// subscope returns the child scope for name/index, creating it if absent
// (§4.2 subscope).
func (s *EvaluationScope) subscope(name string, index ScopeIndex) *EvaluationScope {
	key := name
	if index.Key != "" {
		key = name + "\x1f" + index.Key
	}
	if child, ok := s.Subscopes[key]; ok {
		return child
	}
	child := newScope(s, append(append([]string(nil), s.Path...), name), index)
	s.Subscopes[key] = child
	return child
}

// rescope transplants this scope's path onto a parallel root, used when a
// declaration lives in a scope whose parent chain has been replaced by a
// later merge layer (§4.2 rescope).
func (s *EvaluationScope) rescope(otherRoot *EvaluationScope) *EvaluationScope {
	cur := otherRoot
	for _, seg := range s.Path {
		cur = cur.subscope(seg, ScopeIndex{})
	}
	return cur
}

// ResolvedValuesOptions filters resolvedValues output (§4.2
// resolvedValues).
type ResolvedValuesOptions struct {
	Secrets      bool
	ExportsOnly  bool
	DeclaredOnly bool
}

// ResolvedValues is the exported form of resolvedValues, for hosts that
// need the flattened name->value bag a render produced (§6.3 render:
// "value + resolved values map").
func (s *EvaluationScope) ResolvedValues(opts ResolvedValuesOptions) map[string]any {
	return s.resolvedValues(opts)
}

// resolvedValues flattens owned and ancestor bindings into one map (§4.2).
func (s *EvaluationScope) resolvedValues(opts ResolvedValuesOptions) map[string]any {
	out := make(map[string]any)
	var scopes []*EvaluationScope
	for cur := s; cur != nil; cur = cur.Parent {
		scopes = append(scopes, cur)
	}
	for i := len(scopes) - 1; i >= 0; i-- {
		cur := scopes[i]
		for name, vd := range cur.Values {
			if opts.DeclaredOnly && cur.Declarations[name] == nil {
				continue
			}
			if decl := cur.Declarations[name]; decl != nil {
				if decl.Hint.Secret && !opts.Secrets {
					continue
				}
				if opts.ExportsOnly && decl.Hint.Hidden && !decl.Hint.Export {
					continue
				}
			}
			out[name] = vd.Value
		}
	}
	return out
}

// ExportValuesOptions controls exportValues (§4.2 exportValues).
type ExportValuesOptions struct {
	Secrets bool
}

// ExportValues is the exported form of exportValues, flattening this
// scope's own declared bindings into one map. Nested object/array/keyed-list
// shape is reconstructed by render (see RenderSchemaValues), not by walking
// the scope tree a second time here: §4.2.1's generic subscope-walking
// reconstruction conflated object-field subscopes with array-element
// subscopes (both carry a ScopeIndex) and was dropped rather than shipped
// half-right - see DESIGN.md.
func (s *EvaluationScope) ExportValues(ctx *Context, opts ExportValuesOptions) map[string]any {
	return s.exportValues(ctx, opts)
}

// exportValues exports this scope's own declared, defined bindings (§4.2).
func (s *EvaluationScope) exportValues(ctx *Context, opts ExportValuesOptions) map[string]any {
	out := make(map[string]any)
	for name, decl := range s.Declarations {
		if decl.Hint.Secret && !opts.Secrets {
			continue
		}
		if vd, ok := s.Values[name]; ok {
			out[name] = vd.Value
		}
	}
	return out
}

func parseIntSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// sortedKeys returns m's keys in a deterministic order, used wherever
// template iteration must be reproducible (§5 ordering, §3.3 invariant 6).
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
