package domain

import (
	"maps"
	"slices"
	"strings"
)

// Substitutions maps placeholder names to the values captured when a concrete
// target matched a template pattern. It is empty for literal matches.
type Substitutions map[string]string

// Clone returns a copy of the substitutions.
func (s Substitutions) Clone() Substitutions {
	if s == nil {
		return Substitutions{}
	}
	return maps.Clone(s)
}

// String renders the substitutions as sorted key=value pairs.
func (s Substitutions) String() string {
	keys := slices.Sorted(maps.Keys(s))
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s[k])
	}
	b.WriteByte('}')
	return b.String()
}
