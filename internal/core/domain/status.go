package domain

import "strings"

// Status is the lifecycle state of one task invocation.
type Status string

const (
	// StatusPending indicates the invocation is waiting for its predecessors.
	StatusPending Status = "pending"
	// StatusRunning indicates the invocation's work is executing.
	StatusRunning Status = "running"
	// StatusCompleted indicates the work finished and the invocation key is resolved.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the work signaled a failure.
	StatusFailed Status = "failed"
	// StatusCached indicates the invocation key was already resolved and nothing ran.
	StatusCached Status = "cached"
	// StatusSkipped indicates the invocation was only wired (init-only) and no work ran.
	StatusSkipped Status = "skipped"
)

// IsTerminal reports whether no further transition is expected for the invocation.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCached, StatusSkipped:
		return true
	default:
		return false
	}
}

// NormalizeStatus converts a string to a Status, defaulting to pending if unknown.
func NormalizeStatus(s string) Status {
	switch st := Status(strings.ToLower(s)); st {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCached, StatusSkipped:
		return st
	default:
		return StatusPending
	}
}

// LogLevel represents the severity of a log line, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
