package rowsource

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultTabWidth is the tab stop interval used when wrapping rows.
const DefaultTabWidth = 4

// Measurer reports the rendered height of a row.
type Measurer interface {
	Measure(row string) float64
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(row string) float64

// Measure implements Measurer.
func (f MeasureFunc) Measure(row string) float64 {
	return f(row)
}

// WrapMeasurer measures rows as a terminal draws them: soft-wrapped at Width
// display cells, each display line LineHeight tall.
type WrapMeasurer struct {
	// Width is the column count. Zero or less disables wrapping.
	Width int
	// LineHeight is the height of one display line.
	LineHeight float64
	// TabWidth is the tab stop interval; zero means DefaultTabWidth.
	TabWidth int
}

// Measure implements Measurer.
func (m WrapMeasurer) Measure(row string) float64 {
	return float64(m.LineCount(row)) * m.LineHeight
}

// LineCount returns how many display lines row occupies. An empty row still
// occupies one.
func (m WrapMeasurer) LineCount(row string) int {
	return len(m.Wrap(row))
}

// Wrap splits row into display lines no wider than Width cells. Tabs are
// expanded to spaces. Wide runes are never split across lines.
func (m WrapMeasurer) Wrap(row string) []string {
	tabWidth := m.TabWidth
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}

	var out []string
	for _, line := range strings.Split(row, "\n") {
		out = append(out, m.wrapLine(strings.TrimSuffix(line, "\r"), tabWidth)...)
	}
	return out
}

func (m WrapMeasurer) wrapLine(line string, tabWidth int) []string {
	var (
		out   []string
		cur   strings.Builder
		cells int
	)

	flush := func() {
		out = append(out, cur.String())
		cur.Reset()
		cells = 0
	}

	for _, r := range line {
		if r == '\t' {
			spaces := tabWidth - cells%tabWidth
			if m.Width > 0 && cells+spaces > m.Width {
				spaces = m.Width - cells
			}
			cur.WriteString(strings.Repeat(" ", spaces))
			cells += spaces
			if m.Width > 0 && cells >= m.Width {
				flush()
			}
			continue
		}

		w := cellWidth(r)
		if m.Width > 0 && cells+w > m.Width && cells > 0 {
			flush()
		}
		cur.WriteRune(r)
		cells += w
	}

	if cur.Len() > 0 || len(out) == 0 {
		flush()
	}

	return out
}

// cellWidth returns the display width of r. Control and zero-width runes
// take one cell so the cursor always advances.
func cellWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w < 1 {
		return 1
	}
	return w
}

// StringWidth returns the display width of s as Wrap counts it, without tabs.
func StringWidth(s string) int {
	total := 0
	for _, r := range s {
		total += cellWidth(r)
	}
	return total
}
