// Package task defines the unit of work dispatched by the manager.
package task

import (
	"context"

	"go.trai.ch/tasker/internal/core/domain"
)

// Task is a unit of work identified by a name that may be a template pattern.
type Task interface {
	// Name returns the name the task was registered under.
	Name() string
	// Pattern returns the compiled form of Name.
	Pattern() domain.Pattern
	// DependOnAll replaces the wired predecessor set.
	DependOnAll(preds []Invocation, opts ...Option)
	// Predecessors returns the wired predecessor set.
	Predecessors() []Invocation
	// Resolved reports whether the work for an invocation key has completed.
	Resolved(key string) bool
	// Dispatch waits for every predecessor and then performs the work for the
	// invocation identified by subs, unless it is already resolved.
	Dispatch(ctx context.Context, subs domain.Substitutions, opts ...Option) error
}

// Invocation is a task together with the substitutions of one concrete request.
type Invocation struct {
	Task          Task
	Substitutions domain.Substitutions
}

// Key returns the invocation key.
func (i Invocation) Key() (string, error) {
	return i.Task.Pattern().Expand(i.Substitutions)
}

// String returns the invocation key, or the task name when it cannot be expanded.
func (i Invocation) String() string {
	if key, err := i.Key(); err == nil {
		return key
	}
	return i.Task.Name()
}

// Dispatch dispatches the task with the invocation's substitutions.
func (i Invocation) Dispatch(ctx context.Context, opts ...Option) error {
	return i.Task.Dispatch(ctx, i.Substitutions, opts...)
}

// Config holds the per-call options of DependOnAll and Dispatch.
type Config struct {
	// InitOnly wires and walks predecessors without performing any work.
	InitOnly bool
	// Values are free-form settings forwarded to runners.
	Values map[string]string
}

// Option configures a Config.
type Option func(*Config)

// WithInitOnly sets Config.InitOnly.
func WithInitOnly(initOnly bool) Option {
	return func(c *Config) {
		c.InitOnly = initOnly
	}
}

// WithValue adds a free-form value.
func WithValue(key, value string) Option {
	return func(c *Config) {
		if c.Values == nil {
			c.Values = make(map[string]string)
		}
		c.Values[key] = value
	}
}

// NewConfig applies opts to an empty Config.
func NewConfig(opts ...Option) Config {
	var c Config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Fingerprinter is implemented by tasks whose behavior can be summarized by a hash.
type Fingerprinter interface {
	Fingerprint() uint64
}

// Equal reports whether two tasks can be registered under the same name.
// Tasks are equal when they are the same value or carry the same fingerprint.
func Equal(a, b Task) bool {
	if a == b {
		return true
	}
	fa, ok := a.(Fingerprinter)
	if !ok {
		return false
	}
	fb, ok := b.(Fingerprinter)
	if !ok {
		return false
	}
	return fa.Fingerprint() == fb.Fingerprint()
}
