package domain

import (
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

var (
	placeholderNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	placeholderRefRE  = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
)

// segment is either a fixed piece of text or a named placeholder.
type segment struct {
	literal     string
	placeholder string
}

// Pattern is a compiled target name.
//
// A pattern is a sequence of literal text and named placeholders written as
// {name}. Literal braces are written as {{ and }}. Placeholders must be
// separated by at least one literal character and may appear only once.
// A pattern without placeholders is a literal pattern and matches only its
// own text.
type Pattern struct {
	raw      string
	segments []segment
	names    []string
	literals int
	re       *regexp.Regexp
}

// ParsePattern compiles a target name into a Pattern.
func ParsePattern(raw string) (Pattern, error) {
	if raw == "" {
		return Pattern{}, zerr.With(Tagged(ErrInvalidPattern), "reason", "empty pattern")
	}

	p := Pattern{raw: raw}
	seen := make(map[string]bool)
	var lit strings.Builder

	flush := func() {
		if lit.Len() == 0 {
			return
		}
		p.segments = append(p.segments, segment{literal: lit.String()})
		p.literals += lit.Len()
		lit.Reset()
	}

	invalid := func(reason string, pos int) error {
		return zerr.With(zerr.With(zerr.With(Tagged(ErrInvalidPattern), "pattern", raw), "reason", reason), "offset", pos)
	}

	for i := 0; i < len(raw); {
		c := raw[i]
		switch {
		case c == '{' && i+1 < len(raw) && raw[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(raw) && raw[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				return Pattern{}, invalid("unterminated placeholder", i)
			}
			name := raw[i+1 : i+1+end]
			if !placeholderNameRE.MatchString(name) {
				return Pattern{}, invalid("invalid placeholder name", i)
			}
			if seen[name] {
				return Pattern{}, invalid("duplicate placeholder", i)
			}
			if lit.Len() == 0 && len(p.segments) > 0 && p.segments[len(p.segments)-1].placeholder != "" {
				return Pattern{}, invalid("adjacent placeholders", i)
			}
			flush()
			seen[name] = true
			p.segments = append(p.segments, segment{placeholder: name})
			p.names = append(p.names, name)
			i += end + 2
		case c == '}':
			return Pattern{}, invalid("unmatched closing brace", i)
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()

	if len(p.names) > 0 {
		var expr strings.Builder
		expr.WriteString("(?s)^")
		for _, seg := range p.segments {
			if seg.placeholder != "" {
				expr.WriteString("(.+?)")
				continue
			}
			expr.WriteString(regexp.QuoteMeta(seg.literal))
		}
		expr.WriteString("$")
		p.re = regexp.MustCompile(expr.String())
	}

	return p, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(raw string) Pattern {
	p, err := ParsePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as it was written.
func (p Pattern) String() string {
	return p.raw
}

// IsTemplate reports whether the pattern contains placeholders.
func (p Pattern) IsTemplate() bool {
	return len(p.names) > 0
}

// Placeholders returns the placeholder names in order of appearance.
func (p Pattern) Placeholders() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Literals returns the number of fixed characters in the pattern.
func (p Pattern) Literals() int {
	return p.literals
}

// Match reports whether name matches the pattern and returns the captured substitutions.
// Literal patterns return an empty, non-nil Substitutions on success.
func (p Pattern) Match(name string) (Substitutions, bool) {
	if p.re == nil {
		if len(p.segments) == 1 && p.segments[0].literal == name {
			return Substitutions{}, true
		}
		return nil, false
	}

	groups := p.re.FindStringSubmatch(name)
	if groups == nil {
		return nil, false
	}
	subs := make(Substitutions, len(p.names))
	for i, placeholder := range p.names {
		subs[placeholder] = groups[i+1]
	}
	return subs, true
}

// Expand renders the pattern with the given substitutions.
// The result is the invocation key of a task registered under this pattern.
func (p Pattern) Expand(subs Substitutions) (string, error) {
	var b strings.Builder
	for _, seg := range p.segments {
		if seg.placeholder == "" {
			b.WriteString(seg.literal)
			continue
		}
		v, ok := subs[seg.placeholder]
		if !ok || v == "" {
			return "", zerr.With(zerr.With(Tagged(ErrMissingSubstitution), "pattern", p.raw), "placeholder", seg.placeholder)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// Render replaces {name} references in text with values from subs.
// References without a value are left untouched.
func Render(text string, subs Substitutions) string {
	if len(subs) == 0 || !strings.Contains(text, "{") {
		return text
	}
	return placeholderRefRE.ReplaceAllStringFunc(text, func(ref string) string {
		if v, ok := subs[ref[1:len(ref)-1]]; ok {
			return v
		}
		return ref
	})
}

// References returns the placeholder names referenced by text, in order of
// appearance.
func References(text string) []string {
	var names []string
	for _, m := range placeholderRefRE.FindAllStringSubmatch(text, -1) {
		names = append(names, m[1])
	}
	return names
}
