// Package manager implements the task registry and batch execution.
package manager

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/tasker/internal/adapters/logger"    //nolint:depguard // Default logger for unwired managers
	"go.trai.ch/tasker/internal/adapters/telemetry" //nolint:depguard // Default telemetry for unwired managers
	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/tasker/internal/core/ports"
	"go.trai.ch/tasker/internal/engine/resolver"
	"go.trai.ch/tasker/internal/engine/scheduler"
	"go.trai.ch/tasker/internal/engine/task"
	"go.trai.ch/zerr"
)

// Executor drives a prepared batch to completion.
type Executor = scheduler.Unit

// Manager owns the task registry, the pending dependency map and the
// scheduler that executes requested targets.
//
// Registration and Finalize are not safe for concurrent use. A Manager must
// not be mutated while an Executor it returned is running.
type Manager struct {
	resolver  *resolver.Resolver[task.Task]
	scheduler *scheduler.Scheduler
	logger    ports.Logger
	telemetry ports.Telemetry

	tasks map[domain.InternedString]task.Task
	deps  map[domain.InternedString][]string

	// unresolved holds, per task, the dependency names that matched nothing
	// during the last Finalize.
	unresolved map[domain.InternedString][]string
	finalized  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithResolver sets the target resolver.
func WithResolver(r *resolver.Resolver[task.Task]) Option {
	return func(m *Manager) {
		m.resolver = r
	}
}

// WithScheduler sets the scheduler used by Execute.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(m *Manager) {
		m.scheduler = s
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithTelemetry sets the telemetry used by the default scheduler.
// It has no effect when WithScheduler is also given.
func WithTelemetry(t ports.Telemetry) Option {
	return func(m *Manager) {
		m.telemetry = t
	}
}

// New creates a Manager. Its scheduler is created here and reused by every
// Execute call.
func New(opts ...Option) *Manager {
	m := &Manager{
		tasks:      make(map[domain.InternedString]task.Task),
		deps:       make(map[domain.InternedString][]string),
		unresolved: make(map[domain.InternedString][]string),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.resolver == nil {
		m.resolver = resolver.New(task.Equal)
	}
	if m.logger == nil {
		m.logger = logger.Discard()
	}
	if m.telemetry == nil {
		m.telemetry = telemetry.NewNoOp()
	}
	if m.scheduler == nil {
		m.scheduler = scheduler.New(m.telemetry)
	}
	return m
}

// Register adds t to the registry and unions deps into its dependency set.
//
// target is the pattern t is addressable by and defaults to t.Name(). It
// returns true when t was not registered before. Registering a name again
// with a task that is not equal fails with domain.ErrTaskConflict and leaves
// the manager unchanged.
func (m *Manager) Register(t task.Task, deps []string, target ...string) (bool, error) {
	name := domain.NewInternedString(t.Name())

	existing, exists := m.tasks[name]
	if exists {
		if !task.Equal(existing, t) {
			return false, zerr.With(domain.Tagged(domain.ErrTaskConflict), "task", t.Name())
		}
		t = existing
	}

	pattern := t.Name()
	if len(target) > 0 && target[0] != "" {
		pattern = target[0]
	}
	if _, err := m.resolver.Register(pattern, t); err != nil {
		return false, zerr.With(err, "task", t.Name())
	}

	if !exists {
		m.tasks[name] = t
	}
	for _, dep := range deps {
		if !slices.Contains(m.deps[name], dep) {
			m.deps[name] = append(m.deps[name], dep)
		}
	}
	m.finalized = false

	return !exists, nil
}

// RegisterTo adds deps to the task registered under name.
func (m *Manager) RegisterTo(name string, deps []string) (bool, error) {
	t, ok := m.tasks[domain.NewInternedString(name)]
	if !ok {
		return false, zerr.With(domain.Tagged(domain.ErrTaskNotFound), "task", name)
	}
	return m.Register(t, deps)
}

// Finalize wires every task's predecessors from the dependency map.
//
// It is a no-op while no registration happened since the last successful
// call. Dependency names are resolved like requested targets; names that
// match nothing are remembered and reported by Evaluate.
func (m *Manager) Finalize(opts ...task.Option) error {
	if m.finalized {
		return nil
	}

	graph := domain.NewGraph()
	unresolved := make(map[domain.InternedString][]string)

	for _, name := range m.sortedNames() {
		t := m.tasks[name]
		deps := m.deps[name]
		placeholders := t.Pattern().Placeholders()

		preds := make([]task.Invocation, 0, len(deps))
		predNames := make([]domain.InternedString, 0, len(deps))
		for res := range m.resolver.EvaluateAll(deps) {
			if !res.Resolved() || !bound(res.Match.Substitutions, placeholders) {
				unresolved[name] = append(unresolved[name], res.Name)
				continue
			}
			preds = append(preds, task.Invocation{
				Task:          res.Match.Data,
				Substitutions: res.Match.Substitutions,
			})
			predNames = append(predNames, domain.NewInternedString(res.Match.Data.Name()))
		}

		t.DependOnAll(preds, opts...)
		graph.AddNode(name, predNames...)
	}

	if err := graph.Validate(); err != nil {
		return err
	}

	for _, name := range m.sortedNames() {
		if names, ok := unresolved[name]; ok {
			m.logger.Warn("task " + name.String() + " has unresolved dependencies: " + strings.Join(names, ", "))
		}
	}

	m.unresolved = unresolved
	m.finalized = true
	return nil
}

// Evaluate finalizes the manager and resolves targets.
//
// It returns one invocation per distinct invocation key and the sorted set of
// names that matched nothing. The unresolved set also contains dependency
// names of reachable tasks that matched nothing.
func (m *Manager) Evaluate(targets []string, opts ...task.Option) ([]task.Invocation, []string, error) {
	if err := m.Finalize(opts...); err != nil {
		return nil, nil, err
	}

	var invocations []task.Invocation
	var unresolved []string
	seen := make(map[string]bool)

	for res := range m.resolver.EvaluateAll(targets) {
		if !res.Resolved() {
			unresolved = append(unresolved, res.Name)
			continue
		}

		inv := task.Invocation{Task: res.Match.Data, Substitutions: res.Match.Substitutions}
		key, err := inv.Key()
		if err != nil {
			return nil, nil, zerr.With(err, "target", res.Name)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		invocations = append(invocations, inv)
	}

	unresolved = append(unresolved, m.unresolvedFrom(invocations)...)
	slices.Sort(unresolved)
	return invocations, slices.Compact(unresolved), nil
}

// unresolvedFrom collects the unresolved dependency names of every task
// reachable from invocations.
func (m *Manager) unresolvedFrom(invocations []task.Invocation) []string {
	if len(m.unresolved) == 0 {
		return nil
	}

	var out []string
	visited := make(map[task.Task]bool)
	var visit func(t task.Task)
	visit = func(t task.Task) {
		if visited[t] {
			return
		}
		visited[t] = true
		out = append(out, m.unresolved[domain.NewInternedString(t.Name())]...)
		for _, pred := range t.Predecessors() {
			visit(pred.Task)
		}
	}
	for _, inv := range invocations {
		visit(inv.Task)
	}
	return out
}

// PrepareExecute evaluates targets and builds, without starting it, an
// Executor that dispatches every resolved invocation concurrently and waits
// for all of them.
//
// The Executor uses the scheduler found in its context; Execute drives it on
// the manager's own scheduler.
func (m *Manager) PrepareExecute(targets []string, opts ...task.Option) ([]string, Executor, error) {
	invocations, unresolved, err := m.Evaluate(targets, opts...)
	if err != nil {
		return nil, nil, err
	}

	exec := func(ctx context.Context) error {
		units := make([]scheduler.Unit, 0, len(invocations))
		for _, inv := range invocations {
			units = append(units, func(ctx context.Context) error {
				return inv.Dispatch(ctx, opts...)
			})
		}
		return scheduler.FromContext(ctx).Join(ctx, units...)
	}
	return unresolved, exec, nil
}

// Execute runs targets to completion on the manager's scheduler and returns
// the unresolved names. Any task failure fails the whole call.
func (m *Manager) Execute(ctx context.Context, targets []string, opts ...task.Option) ([]string, error) {
	unresolved, exec, err := m.PrepareExecute(targets, opts...)
	if err != nil {
		return nil, err
	}

	if err := m.scheduler.Run(ctx, strings.Join(targets, " "), exec); err != nil {
		return nil, err
	}
	return unresolved, nil
}

// Task returns the task registered under name.
func (m *Manager) Task(name string) (task.Task, bool) {
	t, ok := m.tasks[domain.NewInternedString(name)]
	return t, ok
}

// Tasks returns every registered task sorted by name.
func (m *Manager) Tasks() []task.Task {
	names := m.sortedNames()
	out := make([]task.Task, len(names))
	for i, name := range names {
		out[i] = m.tasks[name]
	}
	return out
}

// Dependencies returns the dependency names recorded for a task.
func (m *Manager) Dependencies(name string) []string {
	return slices.Clone(m.deps[domain.NewInternedString(name)])
}

// Targets returns every registered target pattern in registration order.
func (m *Manager) Targets() []string {
	patterns := m.resolver.Patterns()
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.String()
	}
	return out
}

// Finalized reports whether the dependency graph is wired.
func (m *Manager) Finalized() bool {
	return m.finalized
}

// Invalidate marks the dependency graph stale so the next Finalize rewires it.
func (m *Manager) Invalidate() {
	m.finalized = false
}

// Scheduler returns the manager's scheduler.
func (m *Manager) Scheduler() *scheduler.Scheduler {
	return m.scheduler
}

// bound reports whether every placeholder referenced by subs is one the
// dependent task can supply.
func bound(subs domain.Substitutions, placeholders []string) bool {
	for _, v := range subs {
		for _, ref := range domain.References(v) {
			if !slices.Contains(placeholders, ref) {
				return false
			}
		}
	}
	return true
}

func (m *Manager) sortedNames() []domain.InternedString {
	return slices.SortedFunc(maps.Keys(m.tasks), func(a, b domain.InternedString) int {
		return cmp.Compare(a.String(), b.String())
	})
}
