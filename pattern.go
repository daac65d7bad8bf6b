package pardon

import (
	"regexp"
	"strings"
)

// PatternKind classifies a parsed Pattern, per §4.1.
type PatternKind int

const (
	// KindLiteral patterns contain no variables.
	KindLiteral PatternKind = iota
	// KindTrivial patterns are a single variable covering the entire source.
	KindTrivial
	// KindSimple patterns hold exactly one variable surrounded by literal text.
	KindSimple
	// KindExpressive patterns contain at least one variable with an expr.
	KindExpressive
	// KindRegex patterns are compiled out purely for matching.
	KindRegex
)

// Hint is the flag set recorded on a pattern variable: '?' optional,
// '!' required, '-' hidden, "@secret", "@export", "@flow", "@nonempty".
type Hint struct {
	Optional bool
	Required bool
	Hidden   bool
	Secret   bool
	Export   bool
	Flow     bool
	Nonempty bool
}

// PatternVar is one `{{...}}` block found in a pattern's source.
type PatternVar struct {
	Param string // bound name, possibly dotted, possibly ".@key" / ".@value"
	Hint  Hint
	Expr  string // raw expression text from `{{var = expr}}` or `{{= expr}}`
	Re    string // regex fragment for structured captures
}

// Pattern is an immutable parsed `{{...}}` template string (§4.1).
type Pattern struct {
	Source string
	Parts  []string     // alternating literal segments; len(Parts) == len(Vars)+1
	Vars   []PatternVar // variables in source order
	Kind   PatternKind

	compiled *regexp.Regexp
}

// ReLookup supplies a default regex fragment for a named variable, mirroring
// `building.re(var)` from §4.1. A nil ReLookup falls back to the default
// rule (".+" if the variable is marked @nonempty, ".*" otherwise).
type ReLookup func(name string) string

var patternToken = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// patternize parses s into a Pattern, consulting lookup for each variable's
// default regex fragment.
func patternize(s string, lookup ReLookup) (*Pattern, error) {
	p := &Pattern{Source: s}
	last := 0
	matches := patternToken.FindAllStringSubmatchIndex(s, -1)
	for _, m := range matches {
		start, end := m[0], m[1]
		body := s[m[2]:m[3]]
		p.Parts = append(p.Parts, s[last:start])
		v, err := parsePatternVar(body)
		if err != nil {
			return nil, err
		}
		if v.Re == "" {
			if lookup != nil {
				v.Re = lookup(v.Param)
			}
			if v.Re == "" {
				if v.Hint.Nonempty {
					v.Re = ".+"
				} else {
					v.Re = ".*"
				}
			}
		}
		p.Vars = append(p.Vars, v)
		last = end
	}
	p.Parts = append(p.Parts, s[last:])

	p.Kind = classifyPattern(p)
	return p, nil
}

func classifyPattern(p *Pattern) PatternKind {
	if len(p.Vars) == 0 {
		return KindLiteral
	}
	for _, v := range p.Vars {
		if v.Expr != "" {
			return KindExpressive
		}
	}
	if len(p.Vars) == 1 && p.Parts[0] == "" && p.Parts[len(p.Parts)-1] == "" {
		return KindTrivial
	}
	return KindSimple
}

// parsePatternVar parses the inside of a single `{{...}}` block.
func parsePatternVar(body string) (PatternVar, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return PatternVar{}, ErrInvalidPattern
	}

	var v PatternVar
	rest := body

	for {
		switch {
		case strings.HasPrefix(rest, "@secret"):
			v.Hint.Secret = true
			rest = strings.TrimSpace(strings.TrimPrefix(rest, "@secret"))
		case strings.HasPrefix(rest, "@export"):
			v.Hint.Export = true
			rest = strings.TrimSpace(strings.TrimPrefix(rest, "@export"))
		case strings.HasPrefix(rest, "@flow"):
			v.Hint.Flow = true
			rest = strings.TrimSpace(strings.TrimPrefix(rest, "@flow"))
		case strings.HasPrefix(rest, "@nonempty"):
			v.Hint.Nonempty = true
			rest = strings.TrimSpace(strings.TrimPrefix(rest, "@nonempty"))
		default:
			goto flags
		}
	}
flags:
	if strings.HasPrefix(rest, "?") {
		v.Hint.Optional = true
		rest = strings.TrimSpace(rest[1:])
	} else if strings.HasPrefix(rest, "!") {
		v.Hint.Required = true
		rest = strings.TrimSpace(rest[1:])
	} else if strings.HasPrefix(rest, "-") {
		v.Hint.Hidden = true
		rest = strings.TrimSpace(rest[1:])
	}

	if eq := strings.Index(rest, "="); eq >= 0 {
		name := strings.TrimSpace(rest[:eq])
		v.Expr = strings.TrimSpace(rest[eq+1:])
		v.Param = name
		if v.Param == "" {
			v.Param = "" // `{{= expr}}` form: anonymous expression result
		}
		return v, nil
	}

	if colon := strings.Index(rest, ":"); colon >= 0 {
		v.Param = strings.TrimSpace(rest[:colon])
		v.Re = strings.TrimSpace(rest[colon+1:])
		return v, nil
	}

	v.Param = rest
	if v.Param == "" {
		return PatternVar{}, ErrInvalidPattern
	}
	return v, nil
}

// quoteLiteral escapes a literal segment for embedding in a compiled regex.
func quoteLiteral(s string) string {
	return regexp.QuoteMeta(s)
}

func (p *Pattern) compile() (*regexp.Regexp, error) {
	if p.compiled != nil {
		return p.compiled, nil
	}
	var b strings.Builder
	b.WriteString("^")
	for i, lit := range p.Parts {
		b.WriteString(quoteLiteral(lit))
		if i < len(p.Vars) {
			v := p.Vars[i]
			if v.Param == "" {
				b.WriteString("(?:" + v.Re + ")")
			} else {
				b.WriteString("(?P<" + sanitizeGroupName(v.Param, i) + ">" + v.Re + ")")
			}
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, ErrInvalidPattern
	}
	p.compiled = re
	return re, nil
}

// sanitizeGroupName produces a regexp-safe capture group name, since param
// may contain dots (e.g. "m.@key").
func sanitizeGroupName(param string, idx int) string {
	var b strings.Builder
	b.WriteString("v")
	for _, r := range param {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	b.WriteString("_")
	b.WriteString(string(rune('0' + idx%10)))
	return b.String()
}

// patternMatch matches input against p, returning a map of param -> captured
// string, or ok=false if input does not conform.
func patternMatch(p *Pattern, input string) (map[string]string, bool) {
	if p.Kind == KindLiteral {
		if input == p.Parts[0] {
			return map[string]string{}, true
		}
		return nil, false
	}
	re, err := p.compile()
	if err != nil {
		return nil, false
	}
	m := re.FindStringSubmatch(input)
	if m == nil {
		return nil, false
	}
	names := re.SubexpNames()
	groupToParam := make(map[string]string, len(p.Vars))
	for i, v := range p.Vars {
		if v.Param != "" {
			groupToParam[sanitizeGroupName(v.Param, i)] = v.Param
		}
	}
	out := make(map[string]string, len(p.Vars))
	for i, name := range names {
		if name == "" || i == 0 {
			continue
		}
		if param, ok := groupToParam[name]; ok {
			out[param] = m[i]
		}
	}
	return out, true
}

// patternRender substitutes args (param -> rendered string) back into p's
// template, producing the final interpolated string.
func patternRender(p *Pattern, args map[string]string) (string, bool) {
	var b strings.Builder
	for i, lit := range p.Parts {
		b.WriteString(lit)
		if i < len(p.Vars) {
			v := p.Vars[i]
			val, ok := args[v.Param]
			if !ok {
				if v.Hint.Optional {
					continue
				}
				return "", false
			}
			b.WriteString(val)
		}
	}
	return b.String(), true
}

// patternsMatch reports whether p and q are compatible for merging onto the
// same scalar: both literal and equal, trivial with matching param names, or
// equal regex trivia.
func patternsMatch(p, q *Pattern) bool {
	if p.Kind == KindLiteral && q.Kind == KindLiteral {
		return p.Source == q.Source
	}
	if p.Kind == KindTrivial && q.Kind == KindTrivial {
		return p.Vars[0].Param == q.Vars[0].Param
	}
	if p.Source == q.Source {
		return true
	}
	return false
}
