package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tasker/internal/core/domain"
)

func TestParsePattern_Literal(t *testing.T) {
	p, err := domain.ParsePattern("build")
	require.NoError(t, err)

	assert.False(t, p.IsTemplate())
	assert.Equal(t, "build", p.String())
	assert.Equal(t, 5, p.Literals())

	subs, ok := p.Match("build")
	require.True(t, ok)
	assert.Empty(t, subs)
	assert.NotNil(t, subs)

	_, ok = p.Match("build2")
	assert.False(t, ok)
}

func TestParsePattern_Template(t *testing.T) {
	p, err := domain.ParsePattern("a:{a}")
	require.NoError(t, err)

	assert.True(t, p.IsTemplate())
	assert.Equal(t, []string{"a"}, p.Placeholders())
	assert.Equal(t, 2, p.Literals())

	for _, v := range []string{"1", "2", "3"} {
		subs, ok := p.Match("a:" + v)
		require.True(t, ok)
		assert.Equal(t, domain.Substitutions{"a": v}, subs)
	}

	_, ok := p.Match("a:")
	assert.False(t, ok, "placeholders capture at least one character")

	_, ok = p.Match("b:1")
	assert.False(t, ok)
}

func TestParsePattern_MultiplePlaceholders(t *testing.T) {
	p := domain.MustParsePattern("{target}-{shard}.out")

	subs, ok := p.Match("x-y-z.out")
	require.True(t, ok)
	assert.Equal(t, domain.Substitutions{"target": "x", "shard": "y-z"}, subs)

	subs, ok = p.Match("a.out-1.out")
	require.True(t, ok)
	assert.Equal(t, domain.Substitutions{"target": "a.out", "shard": "1"}, subs)
}

func TestPattern_MatchMultiline(t *testing.T) {
	subs, ok := domain.MustParsePattern("a:{a}").Match("a:x\ny")
	require.True(t, ok)
	assert.Equal(t, domain.Substitutions{"a": "x\ny"}, subs)

	subs, ok = domain.MustParsePattern("{a}:{b}").Match("1\n:2\n")
	require.True(t, ok)
	assert.Equal(t, domain.Substitutions{"a": "1\n", "b": "2\n"}, subs)
}

func TestReferences(t *testing.T) {
	assert.Equal(t, []string{"pkg", "os"}, domain.References("build:{pkg}-{os}"))
	assert.Empty(t, domain.References("build:plain"))
	assert.Empty(t, domain.References("{1x}"))
}

func TestParsePattern_EscapedBraces(t *testing.T) {
	p, err := domain.ParsePattern("{{lit}}:{x}")
	require.NoError(t, err)

	subs, ok := p.Match("{lit}:42")
	require.True(t, ok)
	assert.Equal(t, "42", subs["x"])

	literal := domain.MustParsePattern("a{{b}}")
	assert.False(t, literal.IsTemplate())
	_, ok = literal.Match("a{b}")
	assert.True(t, ok)
}

func TestParsePattern_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{name: "empty", pattern: ""},
		{name: "unterminated", pattern: "a:{a"},
		{name: "stray close", pattern: "a}"},
		{name: "bad name", pattern: "a:{1x}"},
		{name: "empty name", pattern: "a:{}"},
		{name: "duplicate", pattern: "{a}-{a}"},
		{name: "adjacent", pattern: "{a}{b}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParsePattern(tt.pattern)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidPattern))
		})
	}
}

func TestPattern_Expand(t *testing.T) {
	p := domain.MustParsePattern("test:{pkg}:{mode}")

	key, err := p.Expand(domain.Substitutions{"pkg": "core", "mode": "race"})
	require.NoError(t, err)
	assert.Equal(t, "test:core:race", key)

	_, err = p.Expand(domain.Substitutions{"pkg": "core"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingSubstitution))

	literal := domain.MustParsePattern("plain")
	key, err = literal.Expand(nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", key)
}

func TestPattern_ExpandRoundTrip(t *testing.T) {
	p := domain.MustParsePattern("shard-{n}/of-{total}")
	subs, ok := p.Match("shard-3/of-8")
	require.True(t, ok)

	key, err := p.Expand(subs)
	require.NoError(t, err)
	assert.Equal(t, "shard-3/of-8", key)
}

func TestRender(t *testing.T) {
	subs := domain.Substitutions{"pkg": "engine"}

	assert.Equal(t, "./engine/...", domain.Render("./{pkg}/...", subs))
	assert.Equal(t, "{other}", domain.Render("{other}", subs))
	assert.Equal(t, "no refs", domain.Render("no refs", subs))
	assert.Equal(t, "{pkg}", domain.Render("{pkg}", nil))
}

func TestSubstitutions_String(t *testing.T) {
	s := domain.Substitutions{"b": "2", "a": "1"}
	assert.Equal(t, "{a=1,b=2}", s.String())
	assert.Equal(t, "{}", domain.Substitutions(nil).String())

	clone := s.Clone()
	clone["c"] = "3"
	assert.Len(t, s, 2)
}
