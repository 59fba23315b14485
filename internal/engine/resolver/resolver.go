// Package resolver maps target names onto registered patterns.
package resolver

import (
	"iter"
	"slices"
	"sync"

	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/zerr"
)

// Match is a successful resolution of a target name.
type Match[T any] struct {
	// Pattern is the registered pattern that matched.
	Pattern domain.Pattern
	// Data is the value registered with the pattern.
	Data T
	// Substitutions holds the captured placeholder values. It is empty for
	// literal matches.
	Substitutions domain.Substitutions
}

// Exact reports whether the match came from a literal pattern.
func (m Match[T]) Exact() bool {
	return !m.Pattern.IsTemplate()
}

// Result is one element of EvaluateAll: either a match or the unresolved name.
type Result[T any] struct {
	Name  string
	Match Match[T]
	ok    bool
}

// Resolved reports whether Name matched a registered pattern.
func (r Result[T]) Resolved() bool {
	return r.ok
}

type entry[T any] struct {
	pattern domain.Pattern
	data    T
	seq     int
}

// Resolver is a registry of target patterns.
//
// Literal patterns are matched first by exact lookup. Template patterns are
// then tried from the most literal characters to the fewest, ties broken by
// registration order.
type Resolver[T any] struct {
	equal func(a, b T) bool

	mu        sync.RWMutex
	byRaw     map[string]*entry[T]
	literals  map[string]*entry[T]
	templates []*entry[T]
	order     []*entry[T]
}

// New creates an empty Resolver. equal decides whether re-registering a
// pattern with new data is a no-op or a conflict.
func New[T any](equal func(a, b T) bool) *Resolver[T] {
	return &Resolver[T]{
		equal:    equal,
		byRaw:    make(map[string]*entry[T]),
		literals: make(map[string]*entry[T]),
	}
}

// Register associates pattern with data.
//
// It returns true when the association is new and false when the identical
// pattern is already registered with equal data. Registering it with
// different data fails with domain.ErrPatternConflict.
func (r *Resolver[T]) Register(pattern string, data T) (bool, error) {
	p, err := domain.ParsePattern(pattern)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byRaw[pattern]; ok {
		if r.equal(existing.data, data) {
			return false, nil
		}
		return false, zerr.With(domain.Tagged(domain.ErrPatternConflict), "pattern", pattern)
	}

	e := &entry[T]{pattern: p, data: data, seq: len(r.order)}
	r.byRaw[pattern] = e
	r.order = append(r.order, e)

	if !p.IsTemplate() {
		// Literal patterns expand to their unescaped text.
		text, _ := p.Expand(nil)
		r.literals[text] = e
		return true, nil
	}

	r.templates = append(r.templates, e)
	slices.SortStableFunc(r.templates, func(a, b *entry[T]) int {
		if a.pattern.Literals() != b.pattern.Literals() {
			return b.pattern.Literals() - a.pattern.Literals()
		}
		return a.seq - b.seq
	})
	return true, nil
}

// Evaluate resolves name against the registered patterns.
func (r *Resolver[T]) Evaluate(name string) (Match[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.literals[name]; ok {
		return Match[T]{Pattern: e.pattern, Data: e.data, Substitutions: domain.Substitutions{}}, true
	}

	for _, e := range r.templates {
		if subs, ok := e.pattern.Match(name); ok {
			return Match[T]{Pattern: e.pattern, Data: e.data, Substitutions: subs}, true
		}
	}
	return Match[T]{}, false
}

// EvaluateAll lazily resolves each name.
func (r *Resolver[T]) EvaluateAll(names []string) iter.Seq[Result[T]] {
	return func(yield func(Result[T]) bool) {
		for _, name := range names {
			m, ok := r.Evaluate(name)
			if !yield(Result[T]{Name: name, Match: m, ok: ok}) {
				return
			}
		}
	}
}

// Patterns returns the registered patterns in registration order.
func (r *Resolver[T]) Patterns() []domain.Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Pattern, len(r.order))
	for i, e := range r.order {
		out[i] = e.pattern
	}
	return out
}

// Len returns the number of registered patterns.
func (r *Resolver[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
