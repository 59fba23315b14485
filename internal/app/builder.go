package app

import (
	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/tasker/internal/core/ports"
	"go.trai.ch/tasker/internal/engine/manager"
	"go.trai.ch/tasker/internal/engine/task"
	"go.trai.ch/zerr"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

// NewComponents creates a new Components struct from dependencies.
func NewComponents(app *App, logger ports.Logger, telemetry ports.Telemetry) *Components {
	return &Components{
		App:       app,
		Logger:    logger,
		Telemetry: telemetry,
	}
}

// Build creates a manager holding one task per definition of tf.
//
// Definitions with a command run it through executor, definitions with a
// sleep wait, and the rest only join their dependencies.
func Build(tf *domain.Taskfile, executor ports.Executor, opts ...manager.Option) (*manager.Manager, error) {
	m := manager.New(opts...)

	for _, def := range tf.Tasks {
		t, err := newTask(def, executor)
		if err != nil {
			return nil, zerr.With(err, "task", def.Name)
		}
		if _, err := m.Register(t, def.DependsOn); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func newTask(def domain.TaskDefinition, executor ports.Executor) (task.Task, error) {
	if _, err := domain.ParsePattern(def.Name); err != nil {
		return nil, err
	}

	switch {
	case !def.Command.IsZero():
		return task.Command(def.Name, def.Command, executor)
	case def.Sleep > 0:
		return task.Sleep(def.Name, def.Sleep), nil
	default:
		return task.Noop(def.Name), nil
	}
}
