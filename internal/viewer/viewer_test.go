package viewer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/govlist/internal/viewer"
	"github.com/yaklabco/govlist/pkg/rowsource"
	"github.com/yaklabco/govlist/pkg/virtual"
)

func sampleRows() rowsource.Lines {
	return rowsource.Lines{"alpha", "0123456789abcd", "gamma", "delta", "eps"}
}

func newScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(width, height)

	return screen
}

func newViewer(t *testing.T, screen tcell.Screen, src rowsource.Source, opts viewer.Options) *viewer.Viewer {
	t.Helper()

	engine, err := virtual.Configure(1, 1)
	require.NoError(t, err)

	v, err := viewer.New(screen, engine.Factory(), src, opts)
	require.NoError(t, err)

	return v
}

func readLine(screen tcell.Screen, y int) string {
	width, _ := screen.Size()
	var b strings.Builder
	for x := range width {
		r, _, _, _ := screen.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestNew_NilSource(t *testing.T) {
	t.Parallel()

	engine, err := virtual.Configure(1, 0)
	require.NoError(t, err)

	_, err = viewer.New(newScreen(t, 10, 4), engine.Factory(), nil, viewer.Options{})
	require.ErrorIs(t, err, viewer.ErrNoSource)
}

func TestNew_FactoryError(t *testing.T) {
	t.Parallel()

	factoryErr := errors.New("boom")
	factory := func(int) (*virtual.Calculator, error) { return nil, factoryErr }

	_, err := viewer.New(newScreen(t, 10, 4), factory, sampleRows(), viewer.Options{})
	require.ErrorIs(t, err, factoryErr)
}

func TestDraw_MeasuresWrappedRows(t *testing.T) {
	t.Parallel()

	screen := newScreen(t, 10, 4)
	v := newViewer(t, screen, sampleRows(), viewer.Options{Title: "t"})

	require.NoError(t, v.Draw())

	assert.Equal(t, "alpha", readLine(screen, 0))
	assert.Equal(t, "0123456789", readLine(screen, 1))
	assert.Equal(t, "abcd", readLine(screen, 2))
	assert.True(t, strings.HasPrefix(readLine(screen, 3), " t  row 1/"), readLine(screen, 3))

	calc := v.Calculator()
	height, err := calc.GetHeight(1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, height, 0)
	assert.InDelta(t, 6.0, calc.TotalHeight(), 0)
	assert.Equal(t, 1, calc.ExplicitCount())

	_, dirty := calc.ConsumeDirtyRange()
	assert.False(t, dirty, "draw consumes the dirty range it produced")
}

func TestDraw_StableSecondDraw(t *testing.T) {
	t.Parallel()

	screen := newScreen(t, 10, 4)
	v := newViewer(t, screen, sampleRows(), viewer.Options{})

	require.NoError(t, v.Draw())
	version := v.Calculator().Version()

	require.NoError(t, v.Draw())
	assert.Equal(t, version, v.Calculator().Version())
}

func TestDraw_RemeasuresOnlyDirtyRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		consume    bool
		wantHeight float64
	}{
		{name: "dirty row is measured again", consume: false, wantHeight: 2},
		{name: "consumed row keeps its height", consume: true, wantHeight: 3},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			screen := newScreen(t, 10, 6)
			v := newViewer(t, screen, sampleRows(), viewer.Options{})
			require.NoError(t, v.Draw())

			calc := v.Calculator()
			changed, err := calc.UpdateHeight(1, 3)
			require.NoError(t, err)
			require.True(t, changed)
			if testCase.consume {
				calc.ConsumeDirtyRange()
			}

			require.NoError(t, v.Draw())

			height, err := calc.GetHeight(1)
			require.NoError(t, err)
			assert.InDelta(t, testCase.wantHeight, height, 0)
			assert.False(t, calc.IsDirtyInRange(0, calc.ItemCount()), "draw leaves nothing dirty")
		})
	}
}

func TestDraw_EmptySource(t *testing.T) {
	t.Parallel()

	screen := newScreen(t, 20, 3)
	v := newViewer(t, screen, rowsource.Lines{}, viewer.Options{Title: "empty"})

	require.NoError(t, v.Draw())
	assert.Empty(t, readLine(screen, 0))
	assert.Contains(t, readLine(screen, 2), "row 0/0")

	keepGoing, err := v.HandleEvent(runeKey('G'))
	require.NoError(t, err)
	assert.True(t, keepGoing)
	assert.Zero(t, v.Offset())
}

func TestHandleEvent_Scrolling(t *testing.T) {
	t.Parallel()

	// After the first draw the heights are 1, 2, 1, 1, 1 with a three row
	// viewport, so the list scrolls from 0 to 3.
	tests := []struct {
		name   string
		start  float64
		event  tcell.Event
		offset float64
	}{
		{name: "down", start: 0, event: key(tcell.KeyDown), offset: 1},
		{name: "j", start: 0, event: runeKey('j'), offset: 1},
		{name: "up", start: 2, event: key(tcell.KeyUp), offset: 1},
		{name: "up clamps", start: 0, event: runeKey('k'), offset: 0},
		{name: "page down", start: 0, event: key(tcell.KeyPgDn), offset: 2},
		{name: "page down clamps", start: 2, event: runeKey(' '), offset: 3},
		{name: "page up", start: 3, event: key(tcell.KeyPgUp), offset: 1},
		{name: "b", start: 1, event: runeKey('b'), offset: 0},
		{name: "end", start: 0, event: key(tcell.KeyEnd), offset: 3},
		{name: "home", start: 3, event: key(tcell.KeyHome), offset: 0},
		{name: "G aligns last item to bottom", start: 0, event: runeKey('G'), offset: 3},
		{name: "g", start: 3, event: runeKey('g'), offset: 0},
		{name: "next item", start: 0, event: runeKey('n'), offset: 1},
		{name: "previous item", start: 3, event: runeKey('p'), offset: 1},
		{name: "previous at top", start: 0, event: runeKey('p'), offset: 0},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			v := newViewer(t, newScreen(t, 10, 4), sampleRows(), viewer.Options{})
			require.NoError(t, v.Draw())
			v.ScrollToOffset(testCase.start)

			keepGoing, err := v.HandleEvent(testCase.event)
			require.NoError(t, err)
			assert.True(t, keepGoing)
			assert.InDelta(t, testCase.offset, v.Offset(), 0)
		})
	}
}

func TestHandleEvent_Quit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event tcell.Event
	}{
		{name: "q", event: runeKey('q')},
		{name: "escape", event: key(tcell.KeyEscape)},
		{name: "ctrl-c", event: key(tcell.KeyCtrlC)},
		{name: "interrupt", event: tcell.NewEventInterrupt(nil)},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			v := newViewer(t, newScreen(t, 10, 4), sampleRows(), viewer.Options{})

			keepGoing, err := v.HandleEvent(testCase.event)
			require.NoError(t, err)
			assert.False(t, keepGoing)
		})
	}
}

func TestHandleEvent_ResizeRemeasures(t *testing.T) {
	t.Parallel()

	screen := newScreen(t, 10, 4)
	v := newViewer(t, screen, sampleRows(), viewer.Options{})
	require.NoError(t, v.Draw())

	screen.SetSize(5, 4)
	keepGoing, err := v.HandleEvent(tcell.NewEventResize(5, 4))
	require.NoError(t, err)
	assert.True(t, keepGoing)
	assert.Zero(t, v.Calculator().ExplicitCount(), "a new width discards old measurements")

	require.NoError(t, v.Draw())

	height, err := v.Calculator().GetHeight(1)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, height, 0)
	assert.Equal(t, "alpha", readLine(screen, 0))
	assert.Equal(t, "01234", readLine(screen, 1))
	assert.Equal(t, "56789", readLine(screen, 2))
}

func TestReload_RemeasuresChangedRows(t *testing.T) {
	t.Parallel()

	v := newViewer(t, newScreen(t, 10, 4), sampleRows(), viewer.Options{})
	require.NoError(t, v.Draw())

	next := rowsource.Lines{"alpha", "short", "gamma", "delta", "eps", "zeta"}
	require.NoError(t, v.Reload(next))

	calc := v.Calculator()
	assert.Equal(t, 6, calc.ItemCount())

	height, err := calc.GetHeight(1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, height, 0)
	assert.InDelta(t, 6.0, calc.TotalHeight(), 0)
}

func TestReload_Nil(t *testing.T) {
	t.Parallel()

	v := newViewer(t, newScreen(t, 10, 4), sampleRows(), viewer.Options{})
	require.ErrorIs(t, v.Reload(nil), viewer.ErrNoSource)
}

func TestHandleEvent_ReloadKey(t *testing.T) {
	t.Parallel()

	t.Run("reloads", func(t *testing.T) {
		t.Parallel()

		calls := 0
		opts := viewer.Options{Reload: func() (rowsource.Source, error) {
			calls++
			return rowsource.Lines{"one", "two"}, nil
		}}
		v := newViewer(t, newScreen(t, 10, 4), sampleRows(), opts)

		keepGoing, err := v.HandleEvent(runeKey('r'))
		require.NoError(t, err)
		assert.True(t, keepGoing)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 2, v.Calculator().ItemCount())
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		reloadErr := errors.New("gone")
		opts := viewer.Options{Reload: func() (rowsource.Source, error) {
			return nil, reloadErr
		}}
		v := newViewer(t, newScreen(t, 10, 4), sampleRows(), opts)

		_, err := v.HandleEvent(runeKey('r'))
		require.ErrorIs(t, err, reloadErr)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		v := newViewer(t, newScreen(t, 10, 4), sampleRows(), viewer.Options{})

		keepGoing, err := v.HandleEvent(runeKey('r'))
		require.NoError(t, err)
		assert.True(t, keepGoing)
		assert.Equal(t, 5, v.Calculator().ItemCount())
	})
}

func TestScrollToIndex_OutOfRange(t *testing.T) {
	t.Parallel()

	v := newViewer(t, newScreen(t, 10, 4), sampleRows(), viewer.Options{})
	require.Error(t, v.ScrollToIndex(99, virtual.AlignStart))
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("quits on q", func(t *testing.T) {
		t.Parallel()

		screen := newScreen(t, 10, 4)
		v := newViewer(t, screen, sampleRows(), viewer.Options{})

		screen.InjectKey(tcell.KeyDown, 0, tcell.ModNone)
		screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

		require.NoError(t, v.Run(context.Background()))
		assert.InDelta(t, 1.0, v.Offset(), 0)
	})

	t.Run("stops on cancel", func(t *testing.T) {
		t.Parallel()

		screen := newScreen(t, 10, 4)
		v := newViewer(t, screen, sampleRows(), viewer.Options{})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, v.Run(ctx))
		assert.Equal(t, "alpha", readLine(screen, 0))
	})
}
