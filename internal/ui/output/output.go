// Package output provides lipgloss renderers with consistent color profile
// and TTY handling across the CLI.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorProfile returns the color profile for interactive environments.
// It returns Ascii when NO_COLOR is set and otherwise detects the terminal's
// capabilities.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// ColorProfileANSI returns the color profile for CI/non-interactive environments.
func ColorProfileANSI() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// New creates a lipgloss renderer writing to w. Terminals get the detected
// profile, CI logs get plain ANSI and everything else is uncolored.
func New(w io.Writer) *lipgloss.Renderer {
	switch {
	case IsTerminal(w):
		return NewWithProfile(w, ColorProfile)
	case isCI():
		return NewWithProfile(w, ColorProfileANSI)
	default:
		return NewWithProfile(w, func() termenv.Profile { return termenv.Ascii })
	}
}

func isCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}

// NewWithProfile creates a lipgloss renderer with a custom profile selector.
func NewWithProfile(w io.Writer, profileFn func() termenv.Profile) *lipgloss.Renderer {
	if w == nil {
		w = os.Stderr
	}

	r := lipgloss.NewRenderer(w, termenv.WithProfile(profileFn()), termenv.WithTTY(true))
	r.SetColorProfile(profileFn())
	return r
}
