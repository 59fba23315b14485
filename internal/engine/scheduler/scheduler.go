// Package scheduler implements the cooperative scheduler that drives task dispatch.
package scheduler

import (
	"context"
	"io"
	"maps"
	"sync"

	"go.trai.ch/tasker/internal/adapters/telemetry" //nolint:depguard // Default telemetry for unwired schedulers
	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/tasker/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Unit is one concurrent unit of work joined by the scheduler.
type Unit func(ctx context.Context) error

// Scheduler drives task dispatch for a single manager and tracks the status of
// every invocation key it has seen.
type Scheduler struct {
	telemetry ports.Telemetry

	mu         sync.RWMutex
	taskStatus map[domain.InternedString]domain.Status
}

type schedulerKey struct{}

var defaultScheduler = &Scheduler{telemetry: telemetry.NewNoOp()}

// New creates a new Scheduler. A nil telemetry records nothing.
func New(tel ports.Telemetry) *Scheduler {
	if tel == nil {
		tel = telemetry.NewNoOp()
	}
	return &Scheduler{
		telemetry:  tel,
		taskStatus: make(map[domain.InternedString]domain.Status),
	}
}

// FromContext returns the scheduler driving ctx. Outside of Run it returns a
// process default that records nothing.
func FromContext(ctx context.Context) *Scheduler {
	if s, ok := ctx.Value(schedulerKey{}).(*Scheduler); ok {
		return s
	}
	return defaultScheduler
}

// Run drives fn to completion with the scheduler installed in its context.
func (s *Scheduler) Run(ctx context.Context, name string, fn Unit) error {
	ctx = context.WithValue(ctx, schedulerKey{}, s)
	ctx, vertex := s.telemetry.Record(ctx, name)

	err := fn(ctx)
	vertex.Complete(err)
	return err
}

// Join runs every unit concurrently and waits for them.
//
// The first failure is returned as soon as it occurs. Siblings are not
// cancelled; they keep running and their results are discarded.
func (s *Scheduler) Join(ctx context.Context, units ...Unit) error {
	switch len(units) {
	case 0:
		return nil
	case 1:
		return units[0](ctx)
	}

	var g errgroup.Group
	errCh := make(chan error, len(units))
	for _, unit := range units {
		g.Go(func() error {
			err := unit(ctx)
			if err != nil {
				errCh <- err
			}
			return err
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-errCh:
		return err
	case err := <-done:
		return err
	}
}

// Begin records a new invocation of key in the pending state.
// The returned context carries the invocation's telemetry vertex.
func (s *Scheduler) Begin(ctx context.Context, key string) (context.Context, *Invocation) {
	ctx, vertex := s.telemetry.Record(ctx, key)
	inv := &Invocation{
		s:      s,
		key:    domain.NewInternedString(key),
		vertex: vertex,
	}
	s.updateStatus(inv.key, domain.StatusPending)
	return ctx, inv
}

// Cached records that key was requested while already resolved.
// A key that completed on this scheduler keeps its completed status.
func (s *Scheduler) Cached(ctx context.Context, key string) {
	_, vertex := s.telemetry.Record(ctx, key)
	vertex.Cached()
	vertex.Complete(nil)

	name := domain.NewInternedString(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taskStatus == nil || s.taskStatus[name] == domain.StatusCompleted {
		return
	}
	s.taskStatus[name] = domain.StatusCached
}

// Status returns the last recorded status of an invocation key.
func (s *Scheduler) Status(key string) (domain.Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.taskStatus[domain.NewInternedString(key)]
	return st, ok
}

// Snapshot returns a copy of every recorded invocation status.
func (s *Scheduler) Snapshot() map[string]domain.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Status, len(s.taskStatus))
	for k, v := range maps.All(s.taskStatus) {
		out[k.String()] = v
	}
	return out
}

func (s *Scheduler) updateStatus(key domain.InternedString, status domain.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taskStatus == nil {
		return
	}
	s.taskStatus[key] = status
}

// Invocation tracks one dispatch of an invocation key.
type Invocation struct {
	s      *Scheduler
	key    domain.InternedString
	vertex ports.Vertex
}

// Key returns the invocation key.
func (i *Invocation) Key() string {
	return i.key.String()
}

// Running marks the work as started.
func (i *Invocation) Running() {
	i.s.updateStatus(i.key, domain.StatusRunning)
}

// Skip marks the invocation as wired only.
func (i *Invocation) Skip() {
	i.s.updateStatus(i.key, domain.StatusSkipped)
	i.vertex.Log(domain.LogLevelInfo, "skipped: init only")
	i.vertex.Complete(nil)
}

// Finish marks the invocation completed, or failed when err is non-nil.
func (i *Invocation) Finish(err error) {
	if err != nil {
		i.s.updateStatus(i.key, domain.StatusFailed)
		i.vertex.Log(domain.LogLevelError, err.Error())
	} else {
		i.s.updateStatus(i.key, domain.StatusCompleted)
	}
	i.vertex.Complete(err)
}

// Stdout returns the writer for the invocation's standard output.
func (i *Invocation) Stdout() io.Writer {
	return i.vertex.Stdout()
}

// Stderr returns the writer for the invocation's error output.
func (i *Invocation) Stderr() io.Writer {
	return i.vertex.Stderr()
}
