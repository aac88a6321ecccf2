// Package viewer is a full-screen terminal pager over a virtualized list.
//
// One screen cell is one unit of height. Rows start at the estimated height,
// are drawn at their computed start offset, measured by how many display
// lines they wrapped into, and reported back to the calculator. The next draw
// places them correctly.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/yaklabco/govlist/internal/logging"
	"github.com/yaklabco/govlist/pkg/rowsource"
	"github.com/yaklabco/govlist/pkg/virtual"
)

// maxSettle bounds how many times one draw re-lays out rows whose measured
// height differed from what the calculator assumed.
const maxSettle = 4

// ErrNoSource is returned when a viewer is created without rows.
var ErrNoSource = errors.New("viewer needs a row source")

// Options configure a Viewer.
type Options struct {
	// Title is shown in the status line.
	Title string

	// TabWidth is the tab stop interval used when wrapping rows.
	TabWidth int

	// Reload re-reads the source when the user presses r. Nil disables reloading.
	Reload func() (rowsource.Source, error)

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// Viewer draws a row source onto a tcell screen.
type Viewer struct {
	screen  tcell.Screen
	factory virtual.Factory
	opts    Options
	logger  *log.Logger

	src          rowsource.Source
	fingerprints []uint64
	calc         *virtual.Calculator
	measurer     rowsource.WrapMeasurer

	offset float64
	width  int
	height int

	bodyStyle   tcell.Style
	statusStyle tcell.Style
}

// New creates a viewer for src. The factory should produce calculators whose
// estimated item height is in cells.
func New(screen tcell.Screen, factory virtual.Factory, src rowsource.Source, opts Options) (*Viewer, error) {
	if src == nil {
		return nil, ErrNoSource
	}

	calc, err := factory(src.Len())
	if err != nil {
		return nil, fmt.Errorf("create calculator: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	v := &Viewer{
		screen:       screen,
		factory:      factory,
		opts:         opts,
		logger:       logger,
		src:          src,
		fingerprints: rowsource.Fingerprints(src),
		calc:         calc,
		bodyStyle:    tcell.StyleDefault,
		statusStyle:  tcell.StyleDefault.Reverse(true),
	}
	v.syncSize()

	return v, nil
}

// Offset returns the current scroll offset in cells.
func (v *Viewer) Offset() float64 { return v.offset }

// Calculator returns the calculator backing the current source.
func (v *Viewer) Calculator() *virtual.Calculator { return v.calc }

// viewportHeight is the number of rows available for the list; the last
// screen row holds the status line.
func (v *Viewer) viewportHeight() int {
	return max(v.height-1, 0)
}

// maxOffset is the furthest the list can scroll.
func (v *Viewer) maxOffset() float64 {
	return math.Max(v.calc.TotalHeight()-float64(v.viewportHeight()), 0)
}

// ScrollBy moves the viewport by delta cells, clamped to the list.
func (v *Viewer) ScrollBy(delta float64) {
	v.ScrollToOffset(v.offset + delta)
}

// ScrollToOffset moves the viewport to offset, clamped to the list.
func (v *Viewer) ScrollToOffset(offset float64) {
	v.offset = math.Min(math.Max(offset, 0), v.maxOffset())
}

// ScrollToIndex brings item index into view with the given alignment.
func (v *Viewer) ScrollToIndex(index int, align virtual.Align) error {
	offset, err := v.calc.ScrollTarget(index, float64(v.viewportHeight()), align)
	if err != nil {
		return err
	}
	v.offset = offset
	return nil
}

// Draw renders the visible rows and the status line. Rows whose wrapped
// height disagrees with the calculator are reported, and the frame is laid
// out again until it stops changing.
func (v *Viewer) Draw() error {
	for range maxSettle {
		changed, err := v.drawFrame()
		if err != nil {
			return err
		}
		if changed == 0 {
			break
		}
		v.ScrollToOffset(v.offset)
	}

	v.drawStatus()
	v.screen.Show()
	return nil
}

// drawFrame paints one layout of the body and returns how many heights
// changed once the painted rows were measured. A row is measured while it
// still has the estimated height or while the calculator marks it dirty;
// rows measured in an earlier frame keep their height.
func (v *Viewer) drawFrame() (int, error) {
	v.screen.Clear()

	viewport := v.viewportHeight()
	if viewport == 0 {
		return 0, nil
	}

	visible := v.calc.VisibleRange(v.offset, float64(viewport))
	estimate := v.calc.EstimatedItemHeight()

	var updates []virtual.HeightUpdate
	for item := range visible.All() {
		lines := v.measurer.Wrap(v.src.Row(item.Index))

		top := int(math.Round(item.Start - v.offset))
		for i, line := range lines {
			v.drawLine(top+i, line, v.bodyStyle)
		}

		if item.Size != estimate && !v.calc.IsDirtyInRange(item.Index, item.Index+1) {
			continue
		}
		if measured := float64(len(lines)); measured != item.Size {
			updates = append(updates, virtual.HeightUpdate{Index: item.Index, Height: measured})
		}
	}

	changed, err := v.calc.UpdateHeights(updates)
	if err != nil {
		return 0, fmt.Errorf("report measured rows: %w", err)
	}

	if dirty, ok := v.calc.ConsumeDirtyRange(); ok {
		v.logger.Debug("rows measured",
			logging.FieldStart, dirty.Start,
			logging.FieldEnd, dirty.End,
			logging.FieldUpdates, changed,
			logging.FieldTotalHeight, v.calc.TotalHeight(),
		)
	}

	return changed, nil
}

// drawLine paints text on screen row y, skipping rows outside the viewport.
func (v *Viewer) drawLine(y int, text string, style tcell.Style) {
	if y < 0 || y >= v.viewportHeight() {
		return
	}
	putString(v.screen, 0, y, v.width, text, style)
}

func (v *Viewer) drawStatus() {
	y := v.height - 1
	if y < 0 {
		return
	}

	top := v.calc.IndexAtOffset(v.offset)
	status := fmt.Sprintf(" %s  row %d/%d  %g/%g  v%d",
		v.opts.Title, min(top+1, v.calc.ItemCount()), v.calc.ItemCount(),
		v.offset, v.calc.TotalHeight(), v.calc.Version())

	for x := range v.width {
		v.screen.SetContent(x, y, ' ', nil, v.statusStyle)
	}
	putString(v.screen, 0, y, v.width, status, v.statusStyle)
}

// putString writes text from column x, stopping at width cells.
func putString(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	for _, r := range text {
		w := rowsource.StringWidth(string(r))
		if x+w > width {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x += w
	}
}

// syncSize reads the screen size. A width change invalidates every
// measurement, so the list is rebuilt at estimated heights and the item at
// the top of the viewport stays there.
func (v *Viewer) syncSize() {
	width, height := v.screen.Size()
	v.height = height

	if width == v.width {
		return
	}
	v.width = width
	v.measurer = rowsource.WrapMeasurer{Width: width, LineHeight: 1, TabWidth: v.opts.TabWidth}

	if v.calc.ExplicitCount() == 0 {
		return
	}

	top := v.calc.IndexAtOffset(v.offset)
	calc, err := v.factory(v.src.Len())
	if err != nil {
		v.logger.Warn("rebuild after resize", logging.FieldError, err)
		return
	}
	v.calc = calc

	if v.src.Len() > 0 {
		if pos, err := v.calc.ScrollPosition(top); err == nil {
			v.offset = pos
		}
	}
	v.logger.Debug("width changed", logging.FieldWidth, width, logging.FieldStart, top)
}

// Reload swaps in a new version of the source. The calculator is resized to
// the new row count, keeping heights already measured, and rows whose content
// changed are measured again straight away.
func (v *Viewer) Reload(src rowsource.Source) error {
	if src == nil {
		return ErrNoSource
	}

	prints := rowsource.Fingerprints(src)
	changed := rowsource.Changed(v.fingerprints, prints)

	calc := v.calc
	if src.Len() != calc.ItemCount() {
		resized, err := calc.Resize(src.Len())
		if err != nil {
			return fmt.Errorf("resize list: %w", err)
		}
		calc = resized
	}

	updates := make([]virtual.HeightUpdate, 0, len(changed))
	for _, index := range changed {
		updates = append(updates, virtual.HeightUpdate{
			Index:  index,
			Height: v.measurer.Measure(src.Row(index)),
		})
	}
	if _, err := calc.UpdateHeights(updates); err != nil {
		return fmt.Errorf("measure changed rows: %w", err)
	}

	v.src = src
	v.fingerprints = prints
	v.calc = calc
	v.ScrollToOffset(v.offset)

	v.logger.Debug("source reloaded", logging.FieldItems, src.Len(), logging.FieldUpdates, len(changed))
	return nil
}

// HandleEvent applies one terminal event. It reports false when the viewer
// should exit.
func (v *Viewer) HandleEvent(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
		v.syncSize()
		v.ScrollToOffset(v.offset)
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventInterrupt:
		return false, nil
	}
	return true, nil
}

func (v *Viewer) handleKey(ev *tcell.EventKey) (bool, error) {
	page := float64(max(v.viewportHeight()-1, 1))

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false, nil
	case tcell.KeyUp:
		v.ScrollBy(-1)
	case tcell.KeyDown, tcell.KeyEnter:
		v.ScrollBy(1)
	case tcell.KeyPgUp:
		v.ScrollBy(-page)
	case tcell.KeyPgDn:
		v.ScrollBy(page)
	case tcell.KeyHome:
		v.ScrollToOffset(0)
	case tcell.KeyEnd:
		v.ScrollToOffset(v.maxOffset())
	case tcell.KeyRune:
		return v.handleRune(ev.Rune(), page)
	}
	return true, nil
}

func (v *Viewer) handleRune(r rune, page float64) (bool, error) {
	last := v.calc.ItemCount() - 1

	switch r {
	case 'q':
		return false, nil
	case 'k':
		v.ScrollBy(-1)
	case 'j':
		v.ScrollBy(1)
	case 'b':
		v.ScrollBy(-page)
	case ' ', 'f':
		v.ScrollBy(page)
	case 'g':
		if last >= 0 {
			return true, v.ScrollToIndex(0, virtual.AlignStart)
		}
	case 'G':
		if last >= 0 {
			return true, v.ScrollToIndex(last, virtual.AlignEnd)
		}
	case 'n':
		if next := v.calc.IndexAtOffset(v.offset) + 1; next <= last {
			return true, v.ScrollToIndex(next, virtual.AlignStart)
		}
	case 'p':
		if prev := v.calc.IndexAtOffset(v.offset) - 1; prev >= 0 {
			return true, v.ScrollToIndex(prev, virtual.AlignStart)
		}
	case 'r':
		if v.opts.Reload == nil {
			return true, nil
		}
		src, err := v.opts.Reload()
		if err != nil {
			return true, fmt.Errorf("reload: %w", err)
		}
		return true, v.Reload(src)
	}
	return true, nil
}

// Run draws and handles events until the user quits or ctx is cancelled.
// The caller owns the screen's Init and Fini.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 10)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	if err := v.Draw(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			keepGoing, err := v.HandleEvent(ev)
			if err != nil {
				return err
			}
			if !keepGoing {
				return nil
			}
			if err := v.Draw(); err != nil {
				return err
			}
		}
	}
}
