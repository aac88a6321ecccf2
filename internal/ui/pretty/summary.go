package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/govlist/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

// Plural returns one when n is 1 and many otherwise.
func Plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files converged, 120 items, 87 updates, cache hit rate 62.5%".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	var parts []string

	settled := stats.FilesProcessed - stats.FilesUnconverged
	head := fmt.Sprintf("%d %s converged", settled, Plural(settled, wordFile, wordFiles))
	if stats.FilesUnconverged == 0 && stats.FilesErrored == 0 {
		head = s.Success.Render(head)
	}
	parts = append(parts, head)

	if stats.FilesUnconverged > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d unconverged", stats.FilesUnconverged)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Dim.Render(fmt.Sprintf("%d empty", stats.FilesSkipped)))
	}

	parts = append(parts,
		fmt.Sprintf("%d items", stats.ItemsTotal),
		fmt.Sprintf("%d updates", stats.UpdatesTotal),
		s.Dim.Render(fmt.Sprintf("cache hit rate %.1f%%", stats.Cache.HitRate())),
	)

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files simulated:   " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)) + "\n")

	if stats.FilesSkipped > 0 {
		builder.WriteString("  Files empty:       " +
			s.Dim.Render(strconv.Itoa(stats.FilesSkipped)) + "\n")
	}
	if stats.FilesErrored > 0 {
		builder.WriteString("  Files failed:      " +
			s.Failure.Render(strconv.Itoa(stats.FilesErrored)) + "\n")
	}
	if stats.FilesUnconverged > 0 {
		builder.WriteString("  Files unconverged: " +
			s.Warning.Render(strconv.Itoa(stats.FilesUnconverged)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Items:             " +
		s.SummaryValue.Render(strconv.Itoa(stats.ItemsTotal)) + "\n")
	builder.WriteString("  Height updates:    " +
		s.SummaryValue.Render(strconv.Itoa(stats.UpdatesTotal)) + "\n")
	builder.WriteString("  Scroll passes:     " +
		s.SummaryValue.Render(strconv.Itoa(stats.PassesTotal)) + "\n")
	builder.WriteString("  Cache hit rate:    " +
		s.SummaryValue.Render(fmt.Sprintf("%.1f%%", stats.Cache.HitRate())) + "\n")

	builder.WriteString("\n")

	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Simulation failed"))
	case stats.FilesUnconverged > 0:
		builder.WriteString(s.Warning.Render("Simulation stopped before heights settled"))
	default:
		builder.WriteString(s.Success.Render("All heights settled"))
	}
	builder.WriteString("\n")

	return builder.String()
}
