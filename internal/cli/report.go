package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/GNPower/Vitis/internal/activeproject"
	"github.com/GNPower/Vitis/internal/synth"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	kindStyle   = lipgloss.NewStyle().Width(22)
	entityStyle = lipgloss.NewStyle().Width(28)
	faintStyle  = lipgloss.NewStyle().Faint(true)

	outcomeColors = map[synth.Outcome]lipgloss.Color{
		synth.Created:    lipgloss.Color("2"),
		synth.Configured: lipgloss.Color("2"),
		synth.Patched:    lipgloss.Color("3"),
		synth.Built:      lipgloss.Color("2"),
		synth.Reused:     lipgloss.Color("8"),
		synth.Unchanged:  lipgloss.Color("8"),
		synth.Skipped:    lipgloss.Color("3"),
		synth.Failed:     lipgloss.Color("1"),
	}
)

func outcomeStyle(o synth.Outcome) lipgloss.Style {
	s := lipgloss.NewStyle().Width(11)
	if c, ok := outcomeColors[o]; ok {
		s = s.Foreground(c)
	}
	if o == synth.Failed {
		s = s.Bold(true)
	}
	return s
}

// renderReport prints one line per step followed by the failures. A nil
// report prints nothing.
func renderReport(w io.Writer, r *synth.Report) {
	if r == nil {
		return
	}
	fmt.Fprintln(w, headerStyle.Render("Project "+r.Project)+" "+faintStyle.Render("run "+r.RunID))

	for _, s := range r.Steps {
		line := kindStyle.Render(string(s.Kind)) +
			entityStyle.Render(s.Entity) +
			outcomeStyle(s.Outcome).Render(string(s.Outcome))
		if s.Duration > 0 {
			line += faintStyle.Render(s.Duration.Round(time.Millisecond).String())
		}
		if s.Detail != "" {
			line += " " + faintStyle.Render(s.Detail)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}

	for _, s := range r.Steps {
		if s.Err == nil {
			continue
		}
		var stepErr *synth.StepError
		if errors.As(s.Err, &stepErr) {
			fmt.Fprintf(w, "%s %s %s: %v\n",
				outcomeStyle(synth.Failed).UnsetWidth().Render("error:"),
				stepErr.Step, stepErr.Entity, stepErr.Err)
			continue
		}
		fmt.Fprintf(w, "error: %v\n", s.Err)
	}
}

func renderActivation(w io.Writer, res *activeproject.Result) {
	fmt.Fprintf(w, "%s is active (%d entries from %s)\n",
		headerStyle.Render(res.Project), res.Entries, strings.Join(res.Projects, ", "))
	fmt.Fprintln(w, faintStyle.Render(res.Ancestor))
}
