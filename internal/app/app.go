// Package app implements the application layer for tasker.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/tasker/internal/core/ports"
	"go.trai.ch/tasker/internal/engine/manager"
	"go.trai.ch/tasker/internal/engine/scheduler"
	"go.trai.ch/tasker/internal/engine/task"
	"go.trai.ch/zerr"
)

// AllTarget expands to every literal task of the taskfile.
const AllTarget = "all"

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	scheduler    *scheduler.Scheduler
	logger       ports.Logger
	out          io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	sched *scheduler.Scheduler,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		scheduler:    sched,
		logger:       logger,
		out:          os.Stdout,
	}
}

// WithOutput sets the writer summaries and listings are printed to.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// RunOptions configures a run.
type RunOptions struct {
	// File is the taskfile, or a directory to search from. Defaults to ".".
	File string
	// InitOnly wires and walks the requested tasks without running any work.
	InitOnly bool
	// AllowUnresolved runs the resolved targets even when some names match nothing.
	AllowUnresolved bool
	// JSON prints the summary as JSON.
	JSON bool
}

// Run executes the requested targets defined in the taskfile.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	// 1. Load the taskfile
	tf, err := a.configLoader.Load(orDefault(opts.File))
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	// 2. Register the tasks
	m, err := Build(tf, a.executor, manager.WithScheduler(a.scheduler), manager.WithLogger(a.logger))
	if err != nil {
		return err
	}

	var taskOpts []task.Option
	if opts.InitOnly {
		taskOpts = append(taskOpts, task.WithInitOnly(true))
	}

	// 3. Resolve targets
	targets := expandAll(targetNames, tf)
	unresolved, exec, err := m.PrepareExecute(targets, taskOpts...)
	if err != nil {
		return err
	}
	if len(unresolved) > 0 {
		if !opts.AllowUnresolved {
			return zerr.With(domain.Tagged(domain.ErrUnresolvedTargets), "targets", strings.Join(unresolved, ", "))
		}
		a.logger.Warn("skipping unresolved targets: " + strings.Join(unresolved, ", "))
	}

	// 4. Execute on the manager's scheduler
	runErr := m.Scheduler().Run(ctx, strings.Join(targetNames, " "), exec)

	summary := newSummary(m.Scheduler().Snapshot(), unresolved, runErr)
	if err := a.report(summary, opts.JSON); err != nil {
		a.logger.Error(err)
	}

	if runErr != nil {
		return errors.Join(domain.ErrBuildExecutionFailed, runErr)
	}
	return nil
}

// ListOptions configures a listing.
type ListOptions struct {
	File string
	JSON bool
}

// List prints the tasks defined in the taskfile.
func (a *App) List(_ context.Context, opts ListOptions) error {
	tf, err := a.configLoader.Load(orDefault(opts.File))
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if opts.JSON {
		return writeJSON(a.out, newListing(tf))
	}
	return renderList(a.out, tf)
}

func (a *App) report(s summary, asJSON bool) error {
	if asJSON {
		return writeJSON(a.out, s)
	}
	return renderSummary(a.out, s)
}

// expandAll replaces the "all" target with every literal task name.
func expandAll(targets []string, tf *domain.Taskfile) []string {
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		if target != AllTarget {
			out = append(out, target)
			continue
		}
		for _, def := range tf.Tasks {
			if p, err := domain.ParsePattern(def.Name); err == nil && !p.IsTemplate() {
				out = append(out, def.Name)
			}
		}
	}
	return out
}

func orDefault(path string) string {
	if path == "" {
		return "."
	}
	return path
}
