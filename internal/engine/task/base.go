package task

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/tasker/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Call describes one invocation handed to a Runner.
type Call struct {
	Key           string
	Substitutions domain.Substitutions
	Config        Config
	Stdout        io.Writer
	Stderr        io.Writer
}

// Runner performs the work of a task for one invocation.
type Runner func(ctx context.Context, call Call) error

var _ Task = (*Base)(nil)

// anonymous is used to give tasks without a behavioral fingerprint a unique one.
var anonymous atomic.Uint64

// Base implements Task around a Runner.
//
// Completion is tracked per invocation key. Concurrent dispatches of the same
// key share one execution.
type Base struct {
	pattern     domain.Pattern
	run         Runner
	fingerprint uint64

	mu       sync.RWMutex
	preds    []Invocation
	resolved map[string]struct{}
	inflight singleflight.Group
}

// New creates a task named name that runs run.
// Two tasks created by New are never equal unless they are the same value.
func New(name string, run Runner) (*Base, error) {
	return newBase(name, run, nil)
}

// MustNew is like New but panics when name is not a valid pattern.
func MustNew(name string, run Runner) *Base {
	b, err := New(name, run)
	if err != nil {
		panic(err)
	}
	return b
}

// newBase creates a Base. When identity is non-nil the fingerprint hashes the
// name followed by identity, so equally configured tasks compare equal.
func newBase(name string, run Runner, identity []string) (*Base, error) {
	p, err := domain.ParsePattern(name)
	if err != nil {
		return nil, err
	}

	if run == nil {
		run = noop
	}

	b := &Base{
		pattern:  p,
		run:      run,
		resolved: make(map[string]struct{}),
	}
	if identity == nil {
		b.fingerprint = anonymous.Add(1)
		return b, nil
	}

	d := xxhash.New()
	_, _ = d.WriteString(name)
	for _, part := range identity {
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(part)
	}
	b.fingerprint = d.Sum64()
	return b, nil
}

// Name returns the name the task was created with.
func (b *Base) Name() string {
	return b.pattern.String()
}

// Pattern returns the compiled name.
func (b *Base) Pattern() domain.Pattern {
	return b.pattern
}

// Fingerprint returns a hash of the task's behavior.
func (b *Base) Fingerprint() uint64 {
	return b.fingerprint
}

// DependOnAll replaces the wired predecessor set.
func (b *Base) DependOnAll(preds []Invocation, _ ...Option) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.preds = append([]Invocation(nil), preds...)
}

// Predecessors returns a copy of the wired predecessor set.
func (b *Base) Predecessors() []Invocation {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Invocation(nil), b.preds...)
}

// Resolved reports whether the work for key has completed.
func (b *Base) Resolved(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.resolved[key]
	return ok
}

func (b *Base) markResolved(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resolved[key] = struct{}{}
}

// Dispatch runs the invocation identified by subs after all predecessors.
func (b *Base) Dispatch(ctx context.Context, subs domain.Substitutions, opts ...Option) error {
	key, err := b.pattern.Expand(subs)
	if err != nil {
		return err
	}

	sched := scheduler.FromContext(ctx)
	if b.Resolved(key) {
		sched.Cached(ctx, key)
		return nil
	}

	cfg := NewConfig(opts...)
	flight := key
	if cfg.InitOnly {
		flight += "\x00init"
	}

	_, err, _ = b.inflight.Do(flight, func() (any, error) {
		return nil, b.dispatch(ctx, sched, key, subs, cfg, opts)
	})
	return err
}

func (b *Base) dispatch(
	ctx context.Context,
	sched *scheduler.Scheduler,
	key string,
	subs domain.Substitutions,
	cfg Config,
	opts []Option,
) error {
	// A concurrent flight for the same key may have finished in between.
	if b.Resolved(key) {
		sched.Cached(ctx, key)
		return nil
	}

	ctx, inv := sched.Begin(ctx, key)

	preds := b.Predecessors()
	units := make([]scheduler.Unit, 0, len(preds))
	for _, pred := range preds {
		predSubs := bind(pred.Substitutions, subs)
		units = append(units, func(ctx context.Context) error {
			return pred.Task.Dispatch(ctx, predSubs, opts...)
		})
	}
	if err := sched.Join(ctx, units...); err != nil {
		inv.Finish(err)
		return err
	}

	if cfg.InitOnly {
		inv.Skip()
		return nil
	}

	inv.Running()
	err := b.run(ctx, Call{
		Key:           key,
		Substitutions: subs.Clone(),
		Config:        cfg,
		Stdout:        inv.Stdout(),
		Stderr:        inv.Stderr(),
	})
	if err != nil {
		err = zerr.With(domain.Tagged(fmt.Errorf("%w: %w", domain.ErrTaskFailed, err)), "task", key)
		inv.Finish(err)
		return err
	}

	b.markResolved(key)
	inv.Finish(nil)
	return nil
}

// bind renders placeholder references in a predecessor's substitutions with
// the values of the dependent invocation.
func bind(pred, outer domain.Substitutions) domain.Substitutions {
	if len(pred) == 0 || len(outer) == 0 {
		return pred
	}
	out := make(domain.Substitutions, len(pred))
	for k, v := range pred {
		out[k] = domain.Render(v, outer)
	}
	return out
}
