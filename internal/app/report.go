package app

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/tasker/internal/ui/output"
	"go.trai.ch/tasker/internal/ui/style"
)

type invocationResult struct {
	Key    string        `json:"key"`
	Status domain.Status `json:"status"`
}

type summary struct {
	Invocations []invocationResult `json:"invocations"`
	Unresolved  []string           `json:"unresolved,omitempty"`
	Error       string             `json:"error,omitempty"`
}

func newSummary(statuses map[string]domain.Status, unresolved []string, err error) summary {
	s := summary{
		Invocations: make([]invocationResult, 0, len(statuses)),
		Unresolved:  unresolved,
	}
	for _, key := range slices.Sorted(maps.Keys(statuses)) {
		s.Invocations = append(s.Invocations, invocationResult{Key: key, Status: statuses[key]})
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

type listedTask struct {
	Name        string   `json:"name"`
	DependsOn   []string `json:"dependsOn,omitempty"`
	Description string   `json:"description"`
}

func newListing(tf *domain.Taskfile) []listedTask {
	out := make([]listedTask, len(tf.Tasks))
	for i, def := range tf.Tasks {
		out[i] = listedTask{Name: def.Name, DependsOn: def.DependsOn, Description: def.Summary()}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderSummary(w io.Writer, s summary) error {
	r := output.New(w)
	keyStyle := r.NewStyle().Bold(true)

	var b strings.Builder
	for _, inv := range s.Invocations {
		icon, color := style.StatusIcon(inv.Status)
		fmt.Fprintf(&b, "%s %s %s\n",
			r.NewStyle().Foreground(color).Render(icon),
			keyStyle.Render(inv.Key),
			r.NewStyle().Foreground(style.Slate).Render(string(inv.Status)),
		)
	}
	for _, name := range s.Unresolved {
		fmt.Fprintf(&b, "%s %s %s\n",
			r.NewStyle().Foreground(style.Yellow).Render(style.Warning),
			keyStyle.Render(name),
			r.NewStyle().Foreground(style.Slate).Render("unresolved"),
		)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderList(w io.Writer, tf *domain.Taskfile) error {
	r := output.New(w)
	listing := newListing(tf)

	nameWidth, depsWidth := len("TASK"), len("DEPENDS ON")
	for _, t := range listing {
		nameWidth = max(nameWidth, lipgloss.Width(t.Name))
		depsWidth = max(depsWidth, lipgloss.Width(strings.Join(t.DependsOn, ", ")))
	}

	nameCol := r.NewStyle().Width(nameWidth + 2)
	depsCol := r.NewStyle().Width(depsWidth + 2)
	header := r.NewStyle().Bold(true).Foreground(style.Iris)

	var b strings.Builder
	b.WriteString(header.Render(nameCol.Render("TASK") + depsCol.Render("DEPENDS ON") + "RUNS"))
	b.WriteByte('\n')
	for _, t := range listing {
		deps := strings.Join(t.DependsOn, ", ")
		if deps == "" {
			deps = "-"
		}
		b.WriteString(nameCol.Render(t.Name) + depsCol.Render(deps) + t.Description)
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}
