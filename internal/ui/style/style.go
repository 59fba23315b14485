// Package style provides shared UI styling primitives including brand colors
// and status icons for consistent presentation across the CLI.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/tasker/internal/core/domain"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Circle  = "○"
)

// StatusIcon returns the icon and color used to show an invocation status.
func StatusIcon(s domain.Status) (string, lipgloss.Color) {
	switch s {
	case domain.StatusCompleted:
		return Check, Green
	case domain.StatusFailed:
		return Cross, Red
	case domain.StatusCached:
		return Tilde, Slate
	case domain.StatusSkipped:
		return Circle, Slate
	case domain.StatusRunning:
		return Dot, Iris
	default:
		return Circle, Yellow
	}
}
