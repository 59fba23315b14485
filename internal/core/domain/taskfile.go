package domain

import (
	"strings"
	"time"
)

// TaskFileName is the name of the taskfile discovered by the loader.
const TaskFileName = "tasker.yaml"

// Taskfile is the validated content of a tasker.yaml file.
type Taskfile struct {
	// Root is the directory containing the file. Commands run relative to it.
	Root string
	// Tasks holds the definitions sorted by name.
	Tasks []TaskDefinition
}

// TaskDefinition describes one task declared in a taskfile.
type TaskDefinition struct {
	// Name is the task name, possibly a template pattern.
	Name string
	// Description is shown by the list command.
	Description string
	// DependsOn lists dependency targets, which may be template instances.
	DependsOn []string
	// Command is run when the task is dispatched. It may be empty for
	// aggregate tasks that only join their dependencies.
	Command Command
	// Sleep makes the task wait instead of running a command.
	Sleep time.Duration
}

// Summary returns a short description of the work the task performs.
func (d TaskDefinition) Summary() string {
	switch {
	case d.Description != "":
		return d.Description
	case !d.Command.IsZero():
		return strings.Join(d.Command.Args, " ")
	case d.Sleep > 0:
		return "sleep " + d.Sleep.String()
	default:
		return "-"
	}
}

// Command is an external process invocation.
// Arguments and environment values may reference placeholders of the owning
// task; they are rendered from the invocation's substitutions.
type Command struct {
	Args        []string
	Environment map[string]string
	Dir         string
}

// IsZero reports whether the command has nothing to run.
func (c Command) IsZero() bool {
	return len(c.Args) == 0
}

// Render returns a copy of the command with placeholders substituted.
func (c Command) Render(subs Substitutions) Command {
	out := Command{
		Args: make([]string, len(c.Args)),
		Dir:  Render(c.Dir, subs),
	}
	for i, arg := range c.Args {
		out.Args[i] = Render(arg, subs)
	}
	if c.Environment != nil {
		out.Environment = make(map[string]string, len(c.Environment))
		for k, v := range c.Environment {
			out.Environment[k] = Render(v, subs)
		}
	}
	return out
}
