package pretty

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yaklabco/govlist/pkg/runner"
	"github.com/yaklabco/govlist/pkg/virtual"
)

// Table formatting constants.
const (
	tablePadding     = 2
	overscanSymbol   = "~"
	minFileWidth     = 20
	numberWidth      = 10
	heavySeparator   = "="
	defaultTermWidth = 100
)

// Viewport is the pixel window a range table marks items against.
type Viewport struct {
	Offset float64
	Height float64
}

// intersects reports whether [start, end) overlaps the viewport.
func (v Viewport) intersects(start, end float64) bool {
	return end > v.Offset && start < v.Offset+v.Height
}

// TableFormatter formats visible ranges and simulation results as styled tables.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// FormatRange formats the items of a visible range, one row per item.
// Items that fall outside view are overscan and are marked as such.
func (t *TableFormatter) FormatRange(visible *virtual.VisibleRange, view Viewport) string {
	if visible == nil || visible.Len() == 0 {
		return ""
	}

	columns := []string{"INDEX", "START", "SIZE", "END"}
	width := len(columns)*(numberWidth+tablePadding) + tablePadding

	var builder strings.Builder

	builder.WriteString(t.styles.TableHeader.Render(t.numberRow(columns, " ")))
	builder.WriteString("\n")
	builder.WriteString(t.separator(width, heavySeparator))
	builder.WriteString("\n")

	overscanned := 0
	for item := range visible.All() {
		cells := []string{
			strconv.Itoa(item.Index),
			FormatPixels(item.Start),
			FormatPixels(item.Size),
			FormatPixels(item.End),
		}

		style, marker := t.styles.TableVisible, " "
		if !view.intersects(item.Start, item.End) {
			style, marker = t.styles.TableOverscan, overscanSymbol
			overscanned++
		}
		builder.WriteString(style.Render(t.numberRow(cells, marker)))
		builder.WriteString("\n")
	}

	builder.WriteString(t.separator(width, heavySeparator))
	builder.WriteString("\n")
	legend := overscanSymbol
	if t.colorEnabled {
		legend = t.styles.TableOverscan.Render("dimmed")
	}
	builder.WriteString(t.styles.TableLegend.Render(fmt.Sprintf(
		" %s, %d in viewport, %d overscan (%s)",
		visible.String(), visible.Len()-overscanned, overscanned, legend,
	)))
	builder.WriteString("\n")

	return builder.String()
}

func (t *TableFormatter) numberRow(cells []string, marker string) string {
	var builder strings.Builder
	builder.WriteString(marker)
	for _, cell := range cells {
		builder.WriteString(strings.Repeat(" ", tablePadding))
		builder.WriteString(fmt.Sprintf("%*s", numberWidth, cell))
	}
	return builder.String()
}

// FormatSimulations formats one row per file of a simulation run.
func (t *TableFormatter) FormatSimulations(result *runner.Result) string {
	if result == nil || len(result.Files) == 0 {
		return ""
	}

	fileWidth := t.fileColumnWidth(result.Files)
	columns := []string{"ITEMS", "PASSES", "UPDATES", "ESTIMATE", "HEIGHT", "HIT%"}
	width := fileWidth + len(columns)*(numberWidth+tablePadding) + tablePadding + len("unconverged") + tablePadding

	var builder strings.Builder

	header := fmt.Sprintf(" %-*s", fileWidth, "FILE") + t.numberRow(columns, "") + "  STATUS"
	builder.WriteString(t.styles.TableHeader.Render(header))
	builder.WriteString("\n")
	builder.WriteString(t.separator(width, heavySeparator))
	builder.WriteString("\n")

	for _, file := range result.Files {
		builder.WriteString(t.simulationRow(file, fileWidth))
		builder.WriteString("\n")
	}

	builder.WriteString(t.separator(width, heavySeparator))
	builder.WriteString("\n")
	builder.WriteString(t.FormatTableSummary(result.Stats, ""))
	builder.WriteString("\n")

	return builder.String()
}

func (t *TableFormatter) simulationRow(file runner.FileOutcome, fileWidth int) string {
	path := fmt.Sprintf(" %-*s", fileWidth, truncateFilePath(file.Path, fileWidth))

	switch {
	case file.Error != nil:
		return t.styles.Failure.Render(path + "  " + truncateString(file.Error.Error(), t.termWidth-fileWidth-tablePadding))
	case file.Skipped || file.Simulation == nil:
		return t.styles.Dim.Render(path + "  empty")
	}

	sim := file.Simulation
	cells := []string{
		strconv.Itoa(sim.Items),
		strconv.Itoa(sim.Passes),
		strconv.Itoa(sim.Updates()),
		FormatPixels(sim.EstimatedHeight),
		FormatPixels(sim.TotalHeight),
		fmt.Sprintf("%.1f", sim.Cache.HitRate()),
	}

	return path + t.numberRow(cells, "") + "  " + t.styles.FormatStatus(sim.Converged)
}

func (t *TableFormatter) fileColumnWidth(files []runner.FileOutcome) int {
	width := minFileWidth
	for _, file := range files {
		width = max(width, len(file.Path))
	}

	budget := t.termWidth - 6*(numberWidth+tablePadding) - len("unconverged") - 2*tablePadding
	return max(minFileWidth, min(width, budget))
}

func (t *TableFormatter) separator(width int, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, width))
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats, duration string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%d files simulated", stats.FilesProcessed))

	if stats.FilesUnconverged > 0 {
		parts = append(parts, t.styles.Warning.Render(fmt.Sprintf("%d unconverged", stats.FilesUnconverged)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, t.styles.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}
	parts = append(parts, fmt.Sprintf("%d updates", stats.UpdatesTotal))

	if duration != "" {
		parts = append(parts, t.styles.Dim.Render(duration))
	}

	return " " + strings.Join(parts, " | ")
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	path = filepath.ToSlash(path)
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
