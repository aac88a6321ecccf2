package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/govlist/pkg/runner"
)

// FormatOutcome formats one file's simulation as a single line for text output.
func (s *Styles) FormatOutcome(file runner.FileOutcome) string {
	var builder strings.Builder

	builder.WriteString("  " + s.FilePath.Render(file.Path) + "  " + s.Kind.Render(string(file.Kind)) + "  ")

	switch {
	case file.Error != nil:
		builder.WriteString(s.Failure.Render("error") + "  " + file.Error.Error())
	case file.Skipped:
		builder.WriteString(s.Dim.Render("empty"))
	case file.Simulation != nil:
		sim := file.Simulation
		builder.WriteString(s.FormatStatus(sim.Converged))
		builder.WriteString(fmt.Sprintf("  %d items  %d %s  %d updates  height %s -> %s",
			sim.Items,
			sim.Passes, Plural(sim.Passes, "pass", "passes"),
			sim.Updates(),
			s.Number.Render(FormatPixels(sim.EstimatedHeight)),
			s.Number.Render(FormatPixels(sim.TotalHeight)),
		))
	}
	builder.WriteString("\n")

	return builder.String()
}

// FormatStatus returns a styled convergence marker.
func (s *Styles) FormatStatus(converged bool) string {
	if converged {
		return s.Success.Render("converged")
	}
	return s.Warning.Render("unconverged")
}

// FormatPixels renders a pixel value without trailing zeros.
func FormatPixels(px float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", px), "0"), ".")
}
