package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskConflict is returned when a task name is registered again with a different task.
	ErrTaskConflict = zerr.New("task already registered with a different definition")

	// ErrTaskNotFound is returned when a task is looked up by a name that was never registered.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrPatternConflict is returned when a target pattern is already associated with different data.
	ErrPatternConflict = zerr.New("target pattern already registered")

	// ErrInvalidPattern is returned when a target pattern cannot be parsed.
	ErrInvalidPattern = zerr.New("invalid target pattern")

	// ErrMissingSubstitution is returned when a template is expanded without a value for one of its placeholders.
	ErrMissingSubstitution = zerr.New("missing substitution")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskFailed is returned when the work of a task fails during dispatch.
	ErrTaskFailed = zerr.New("task failed")

	// ErrBuildExecutionFailed is returned when a batch of requested targets does not complete.
	ErrBuildExecutionFailed = zerr.New("execution failed")

	// ErrUnresolvedTargets is returned by callers that treat unresolved target names as an error.
	ErrUnresolvedTargets = zerr.New("unresolved targets")

	// ErrNoTargetsSpecified is returned when no targets are specified for the run command.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrReservedTaskName is returned when a task uses a reserved name (e.g., "all").
	ErrReservedTaskName = zerr.New("task name 'all' is reserved")

	// ErrCommandFailed is returned when a task command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no config file can be found.
	ErrConfigNotFound = zerr.New("could not find tasker.yaml")

	// ErrUnsupportedVersion is returned when the config file declares an unknown schema version.
	ErrUnsupportedVersion = zerr.New("unsupported config version")

	// ErrInvalidTaskDefinition is returned when a task definition in the config is inconsistent.
	ErrInvalidTaskDefinition = zerr.New("invalid task definition")
)

// Tagged returns an error that reads and matches like sentinel but is a
// distinct value, so metadata attached with zerr.With stays on the copy and
// errors.Is still finds sentinel.
func Tagged(sentinel error) error {
	return zerr.Wrap(sentinel, "")
}
