package virtual_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/govlist/pkg/heightindex"
	"github.com/yaklabco/govlist/pkg/virtual"
)

// newCalc builds the calculator used by most tests:
// 1000 items, 36px estimate, overscan 5.
func newCalc(t *testing.T, opts ...virtual.Option) *virtual.Calculator {
	t.Helper()

	engine, err := virtual.Configure(36, 5, opts...)
	require.NoError(t, err)

	calc, err := engine.New(1000)
	require.NoError(t, err)

	return calc
}

func TestVisibleRange_Initial(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)
	visible := calc.VisibleRange(0, 400)

	assert.Equal(t, 0, visible.StartIndex())
	assert.Equal(t, 16, visible.EndIndex())
	require.Equal(t, 16, visible.Len())

	first := visible.Item(0)
	assert.Equal(t, virtual.VirtualItem{Index: 0, Start: 0, Size: 36, End: 36}, first)

	last := visible.Item(visible.Len() - 1)
	assert.Equal(t, 15, last.Index)
	assert.InDelta(t, 540.0, last.Start, 1e-9)
	assert.InDelta(t, 576.0, last.End, 1e-9)
}

func TestVisibleRange_Overscan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		offset    float64
		height    float64
		wantStart int
		wantEnd   int
	}{
		{"middle of list", 3600, 400, 95, 116},
		{"negative offset", -100, 400, 0, 13},
		{"near the end", 35800, 400, 989, 1000},
		{"past the end", 1e7, 400, 995, 1000},
		{"zero height viewport", 360, 0, 5, 15},
		{"negative height treated as zero", 360, -50, 5, 15},
		{"NaN offset treated as zero", math.NaN(), 400, 0, 16},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			calc := newCalc(t)
			visible := calc.VisibleRange(testCase.offset, testCase.height)
			assert.Equal(t, testCase.wantStart, visible.StartIndex())
			assert.Equal(t, testCase.wantEnd, visible.EndIndex())
			assert.Equal(t, testCase.wantEnd-testCase.wantStart, visible.Len())
		})
	}
}

func TestVisibleRange_EmptyList(t *testing.T) {
	t.Parallel()

	engine, err := virtual.Configure(36, 5)
	require.NoError(t, err)
	calc, err := engine.New(0)
	require.NoError(t, err)

	visible := calc.VisibleRange(0, 400)
	assert.Equal(t, 0, visible.StartIndex())
	assert.Equal(t, 0, visible.EndIndex())
	assert.Empty(t, visible.Items())
}

func TestVisibleRange_Memoized(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	first := calc.VisibleRange(120, 400)
	second := calc.VisibleRange(120, 400)
	assert.Same(t, first, second)

	// Offsets that round to the same pixel share the entry.
	third := calc.VisibleRange(120.3, 399.8)
	assert.Same(t, first, third)

	stats := calc.CacheStats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestVisibleRange_InvalidatedByVersion(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	before := calc.VisibleRange(0, 400)
	changed, err := calc.UpdateHeight(3, 100)
	require.NoError(t, err)
	require.True(t, changed)

	after := calc.VisibleRange(0, 400)
	assert.NotSame(t, before, after)
	assert.InDelta(t, 100.0, after.Item(3).Size, 1e-9)

	// The old result is a snapshot and was not modified.
	assert.InDelta(t, 36.0, before.Item(3).Size, 1e-9)
}

func TestVisibleRange_ItemsIsCopy(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)
	visible := calc.VisibleRange(0, 400)

	items := visible.Items()
	items[0].Size = 9999

	again := calc.VisibleRange(0, 400)
	require.Same(t, visible, again)
	assert.InDelta(t, 36.0, again.Item(0).Size, 1e-9)
}

func TestVisibleRange_All(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)
	visible := calc.VisibleRange(360, 100)

	var indices []int
	for item := range visible.All() {
		indices = append(indices, item.Index)
		if len(indices) == 3 {
			break
		}
	}
	assert.Equal(t, []int{5, 6, 7}, indices)
	assert.True(t, visible.Contains(10))
	assert.False(t, visible.Contains(visible.EndIndex()))
	assert.Equal(t, "[5, 17) 12 items", visible.String())
}

func TestCacheNeverExceedsCapacity(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)
	for offset := range 1000 {
		calc.VisibleRange(float64(offset), 400)
		require.LessOrEqual(t, calc.CachedRanges(), virtual.DefaultCacheCapacity)
	}
	assert.Equal(t, virtual.DefaultCacheCapacity, calc.CachedRanges())
}

func TestClearCache(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)
	first := calc.VisibleRange(0, 400)
	version := calc.Version()

	calc.ClearCache()
	assert.Zero(t, calc.CachedRanges())
	assert.Equal(t, version, calc.Version())

	second := calc.VisibleRange(0, 400)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Items(), second.Items())
}

func TestUpdateHeight_NoiseIgnored(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	for _, h := range []float64{36, 36.5, 35.5, 36.2} {
		changed, err := calc.UpdateHeight(7, h)
		require.NoError(t, err)
		assert.False(t, changed, "height %v", h)
	}

	assert.Zero(t, calc.Version())
	assert.False(t, calc.IsDirtyInRange(0, 1000))
	_, dirty := calc.ConsumeDirtyRange()
	assert.False(t, dirty)
}

func TestUpdateHeight_RealChange(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	changed, err := calc.UpdateHeight(7, 36.6)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, uint64(1), calc.Version())
	assert.True(t, calc.IsDirtyInRange(7, 8))
	assert.False(t, calc.IsDirtyInRange(0, 7))
	assert.False(t, calc.IsDirtyInRange(8, 20))

	// Peeking does not consume.
	assert.True(t, calc.IsDirtyInRange(7, 8))

	dirty, ok := calc.ConsumeDirtyRange()
	require.True(t, ok)
	assert.Equal(t, virtual.DirtyRange{Start: 7, End: 8}, dirty)
	assert.Equal(t, 1, dirty.Len())

	assert.False(t, calc.IsDirtyInRange(7, 8))
	_, ok = calc.ConsumeDirtyRange()
	assert.False(t, ok)
}

func TestUpdateHeight_CustomNoiseThreshold(t *testing.T) {
	t.Parallel()

	calc := newCalc(t, virtual.WithNoiseThreshold(2))

	changed, err := calc.UpdateHeight(0, 37.5)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = calc.UpdateHeight(0, 38.5)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestUpdateHeight_Errors(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	_, err := calc.UpdateHeight(1000, 50)
	require.ErrorIs(t, err, heightindex.ErrIndexOutOfRange)

	_, err = calc.UpdateHeight(-1, 50)
	require.ErrorIs(t, err, heightindex.ErrIndexOutOfRange)

	_, err = calc.UpdateHeight(0, -5)
	require.ErrorIs(t, err, heightindex.ErrInvalidHeight)

	assert.Zero(t, calc.Version())
}

func TestDirtyRange_Expands(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	for _, index := range []int{40, 12, 25, 60} {
		_, err := calc.UpdateHeight(index, 80)
		require.NoError(t, err)
	}

	assert.True(t, calc.IsDirtyInRange(0, 13))
	assert.True(t, calc.IsDirtyInRange(30, 35), "interval covers untouched indices between changes")
	assert.False(t, calc.IsDirtyInRange(61, 100))

	dirty, ok := calc.ConsumeDirtyRange()
	require.True(t, ok)
	assert.Equal(t, virtual.DirtyRange{Start: 12, End: 61}, dirty)
	assert.Equal(t, uint64(4), calc.Version())
}

func TestUpdateHeights_Batch(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	changed, err := calc.UpdateHeights([]virtual.HeightUpdate{
		{Index: 2, Height: 50},
		{Index: 3, Height: 36.2}, // noise
		{Index: 9, Height: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	assert.Equal(t, uint64(1), calc.Version(), "batch bumps version once")

	dirty, ok := calc.ConsumeDirtyRange()
	require.True(t, ok)
	assert.Equal(t, virtual.DirtyRange{Start: 2, End: 10}, dirty)

	changed, err = calc.UpdateHeights([]virtual.HeightUpdate{{Index: 2, Height: 50.1}})
	require.NoError(t, err)
	assert.Zero(t, changed)
	assert.Equal(t, uint64(1), calc.Version())

	changed, err = calc.UpdateHeights(nil)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestUpdateHeights_RejectsWholeBatch(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	_, err := calc.UpdateHeights([]virtual.HeightUpdate{
		{Index: 1, Height: 80},
		{Index: 5000, Height: 80},
	})
	require.ErrorIs(t, err, heightindex.ErrIndexOutOfRange)

	h, err := calc.GetHeight(1)
	require.NoError(t, err)
	assert.InDelta(t, 36.0, h, 1e-9, "valid entries of a rejected batch are not applied")
	assert.Zero(t, calc.Version())
	assert.False(t, calc.IsDirtyInRange(0, 1000))
}

func TestScrollPosition(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	_, err := calc.UpdateHeight(0, 50)
	require.NoError(t, err)

	pos, err := calc.ScrollPosition(1)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, pos, 1e-9)

	pos, err = calc.ScrollPosition(0)
	require.NoError(t, err)
	assert.Zero(t, pos)

	pos, err = calc.ScrollPosition(calc.ItemCount())
	require.NoError(t, err)
	assert.InDelta(t, calc.TotalHeight(), pos, 1e-9)

	_, err = calc.ScrollPosition(1001)
	require.ErrorIs(t, err, heightindex.ErrIndexOutOfRange)
}

func TestScrollTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		index  int
		align  virtual.Align
		expect float64
	}{
		{"start", 10, virtual.AlignStart, 360},
		{"empty align means start", 10, "", 360},
		{"center", 10, virtual.AlignCenter, 178},
		{"end", 10, virtual.AlignEnd, 0},
		{"end further down", 20, virtual.AlignEnd, 356},
		{"center clamps at zero", 1, virtual.AlignCenter, 0},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			calc := newCalc(t)
			got, err := calc.ScrollTarget(testCase.index, 400, testCase.align)
			require.NoError(t, err)
			assert.InDelta(t, testCase.expect, got, 1e-9)
		})
	}
}

func TestScrollTarget_Errors(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	_, err := calc.ScrollTarget(1000, 400, virtual.AlignStart)
	require.ErrorIs(t, err, heightindex.ErrIndexOutOfRange)

	_, err = calc.ScrollTarget(3, 400, virtual.Align("middle"))
	require.ErrorIs(t, err, virtual.ErrInvalidAlign)
}

func TestScrollPosition_StartsVisibleRangeWithFractionalHeights(t *testing.T) {
	t.Parallel()

	engine, err := virtual.Configure(36, 0)
	require.NoError(t, err)

	const count = 400
	calc, err := engine.New(count)
	require.NoError(t, err)

	pattern := []float64{36.7, 41.3, 22.1, 57.9, 18.35, 33.3, 71.05, 29.9}
	updates := make([]virtual.HeightUpdate, count)
	for i := range updates {
		updates[i] = virtual.HeightUpdate{Index: i, Height: pattern[i%len(pattern)] + float64(i%7)/10}
	}
	_, err = calc.UpdateHeights(updates)
	require.NoError(t, err)

	for i := range count {
		position, err := calc.ScrollPosition(i)
		require.NoError(t, err)

		target, err := calc.ScrollTarget(i, 100, virtual.AlignStart)
		require.NoError(t, err)
		require.Equal(t, position, target)

		if !assert.Equal(t, i, calc.VisibleRange(target, 100).StartIndex(), "item %d at %v", i, target) {
			return
		}
		assert.Equal(t, i, calc.IndexAtOffset(position), "item %d at %v", i, position)
	}
}

func TestAccessors(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	assert.Equal(t, 1000, calc.ItemCount())
	assert.InDelta(t, 36000.0, calc.TotalHeight(), 1e-9)
	assert.Equal(t, 5, calc.Overscan())
	assert.InDelta(t, 36.0, calc.EstimatedItemHeight(), 1e-9)
	assert.Equal(t, 11, calc.IndexAtOffset(400))
	assert.Equal(t, 1000, calc.IndexAtOffset(36000))

	_, err := calc.GetHeight(1000)
	require.ErrorIs(t, err, heightindex.ErrIndexOutOfRange)
}

func TestExplicitCount(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)

	_, err := calc.UpdateHeights([]virtual.HeightUpdate{
		{Index: 1, Height: 60},
		{Index: 2, Height: 70},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calc.ExplicitCount())

	// Returning to the estimate removes the index from the explicit set.
	_, err = calc.UpdateHeight(1, 36)
	require.NoError(t, err)
	assert.Equal(t, 1, calc.ExplicitCount())
}

func TestResize_Shrink(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)
	_, err := calc.UpdateHeight(2, 80)
	require.NoError(t, err)
	_, err = calc.UpdateHeight(700, 90)
	require.NoError(t, err)

	smaller, err := calc.Resize(500)
	require.NoError(t, err)

	assert.Equal(t, 500, smaller.ItemCount())
	h, err := smaller.GetHeight(2)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, h, 1e-9)

	_, err = smaller.GetHeight(600)
	require.ErrorIs(t, err, heightindex.ErrIndexOutOfRange)
	assert.Equal(t, 1, smaller.ExplicitCount())
	assert.InDelta(t, 499*36.0+80, smaller.TotalHeight(), 1e-9)
	assert.Equal(t, uint64(1), smaller.Version(), "replay is a single batch")

	// The original calculator is untouched.
	assert.Equal(t, 1000, calc.ItemCount())
	h, err = calc.GetHeight(700)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, h, 1e-9)
	assert.Equal(t, uint64(2), calc.Version())
}

func TestResize_Grow(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)
	_, err := calc.UpdateHeight(999, 10)
	require.NoError(t, err)

	larger, err := calc.Resize(1500)
	require.NoError(t, err)

	h, err := larger.GetHeight(999)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, h, 1e-9)

	for _, index := range []int{1000, 1200, 1499} {
		h, err = larger.GetHeight(index)
		require.NoError(t, err)
		assert.InDelta(t, 36.0, h, 1e-9, "index %d", index)
	}

	// Independent instances: updating one does not affect the other.
	_, err = larger.UpdateHeight(0, 99)
	require.NoError(t, err)
	h, err = calc.GetHeight(0)
	require.NoError(t, err)
	assert.InDelta(t, 36.0, h, 1e-9)
}

func TestResize_ToEmptyAndBack(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)
	_, err := calc.UpdateHeight(0, 80)
	require.NoError(t, err)

	empty, err := calc.Resize(0)
	require.NoError(t, err)
	assert.Zero(t, empty.ItemCount())
	assert.Zero(t, empty.Version(), "nothing replayed")
	assert.Zero(t, empty.VisibleRange(0, 400).Len())

	restored, err := empty.Resize(10)
	require.NoError(t, err)
	h, err := restored.GetHeight(0)
	require.NoError(t, err)
	assert.InDelta(t, 36.0, h, 1e-9, "heights beyond the old length reset to the estimate")

	_, err = calc.Resize(-1)
	require.ErrorIs(t, err, virtual.ErrNegativeItemCount)
}

func TestConvergenceScenario(t *testing.T) {
	t.Parallel()

	calc := newCalc(t)
	measured := func(index int) float64 { return float64(20 + (index%4)*10) }

	visible := calc.VisibleRange(0, 400)
	updates := make([]virtual.HeightUpdate, 0, visible.Len())
	for item := range visible.All() {
		updates = append(updates, virtual.HeightUpdate{Index: item.Index, Height: measured(item.Index)})
	}

	changed, err := calc.UpdateHeights(updates)
	require.NoError(t, err)
	assert.Positive(t, changed)

	dirty, ok := calc.ConsumeDirtyRange()
	require.True(t, ok)
	assert.LessOrEqual(t, visible.StartIndex(), dirty.Start)
	assert.GreaterOrEqual(t, visible.EndIndex(), dirty.End)

	// Reporting the same measurements again is a no-op.
	changed, err = calc.UpdateHeights(updates)
	require.NoError(t, err)
	assert.Zero(t, changed)

	next := calc.VisibleRange(0, 400)
	for item := range next.All() {
		if item.Index < visible.EndIndex() {
			assert.InDelta(t, measured(item.Index), item.Size, 1e-9)
		}
	}
}
