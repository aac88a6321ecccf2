package virtual

import (
	"fmt"
	"math"

	"github.com/google/btree"

	"github.com/yaklabco/govlist/pkg/heightindex"
	"github.com/yaklabco/govlist/pkg/rangecache"
)

// noDirty marks an empty dirty interval.
const noDirty = -1

// explicitDegree is the btree degree of the explicit-height set.
const explicitDegree = 32

// cacheKey identifies a memoized visible range. Offsets are rounded so
// sub-pixel scroll jitter shares one entry; version invalidates every entry
// at once when a height changes.
type cacheKey struct {
	version uint64
	offset  float64
	height  float64
}

// Calculator answers visible-range and scroll queries for one list of a
// fixed length.
type Calculator struct {
	engine *Engine
	index  *heightindex.Index
	cache  *rangecache.Cache[cacheKey, *VisibleRange]

	// explicit holds indices whose height differs from the estimate.
	explicit *btree.BTreeG[int]

	version    uint64
	dirtyStart int
	dirtyEnd   int
}

func newCalculator(engine *Engine, itemCount int) *Calculator {
	return &Calculator{
		engine:     engine,
		index:      heightindex.New(itemCount, engine.estimate),
		cache:      rangecache.New[cacheKey, *VisibleRange](engine.settings.cacheCapacity),
		explicit:   btree.NewOrderedG[int](explicitDegree),
		dirtyStart: noDirty,
		dirtyEnd:   noDirty,
	}
}

// VisibleRange returns the items intersecting [scrollOffset,
// scrollOffset+containerHeight) widened by the overscan on each side.
//
// Results are memoized by (version, rounded offset, rounded height); a repeat
// query with no intervening height change returns the identical pointer.
func (c *Calculator) VisibleRange(scrollOffset, containerHeight float64) *VisibleRange {
	count := c.index.Len()
	if count == 0 {
		return emptyRange
	}

	scrollOffset = sanitize(scrollOffset)
	containerHeight = math.Max(0, sanitize(containerHeight))

	key := cacheKey{
		version: c.version,
		offset:  roundHalfUp(scrollOffset),
		height:  roundHalfUp(containerHeight),
	}
	if cached, ok := c.cache.Get(key); ok {
		return cached
	}

	overscan := c.engine.overscan
	rawStart := c.index.FindIndexByOffset(scrollOffset)
	start := max(0, rawStart-overscan)
	rawEnd := c.index.FindIndexByOffset(scrollOffset + containerHeight)
	end := min(rawEnd+overscan, count)

	result := &VisibleRange{
		start: start,
		end:   end,
		items: make([]VirtualItem, 0, end-start),
	}
	for i := start; i < end; i++ {
		result.items = append(result.items, c.item(i))
	}

	c.cache.Put(key, result)

	return result
}

// item builds the layout of index i; i must be in range.
func (c *Calculator) item(i int) VirtualItem {
	//nolint:errcheck // Callers only pass indices inside [0, Len()).
	start, _ := c.index.PrefixSum(i)
	//nolint:errcheck // Same bound as above.
	size, _ := c.index.Get(i)
	return VirtualItem{
		Index: i,
		Start: start,
		Size:  size,
		End:   start + size,
	}
}

// UpdateHeight records a measured height for index. Differences within the
// noise threshold are ignored and report false. A real change bumps the
// version and marks index dirty.
func (c *Calculator) UpdateHeight(index int, height float64) (bool, error) {
	if err := c.validateUpdate(index, height); err != nil {
		return false, err
	}
	if !c.apply(index, height) {
		return false, nil
	}
	c.version++
	return true, nil
}

// UpdateHeights records a batch of measured heights and returns how many
// were real changes. The version is bumped at most once for the batch.
// Every entry is validated before any is applied, so a batch with a bad
// index or height changes nothing.
func (c *Calculator) UpdateHeights(updates []HeightUpdate) (int, error) {
	for _, u := range updates {
		if err := c.validateUpdate(u.Index, u.Height); err != nil {
			return 0, err
		}
	}

	changed := 0
	for _, u := range updates {
		if c.apply(u.Index, u.Height) {
			changed++
		}
	}
	if changed > 0 {
		c.version++
	}

	return changed, nil
}

func (c *Calculator) validateUpdate(index int, height float64) error {
	if _, err := c.index.Get(index); err != nil {
		return fmt.Errorf("update height: %w", err)
	}
	if !heightindex.ValidHeight(height) {
		return fmt.Errorf("update height of item %d: %w: %v", index, heightindex.ErrInvalidHeight, height)
	}
	return nil
}

// apply writes a validated height unless it is noise. It does not touch the version.
func (c *Calculator) apply(index int, height float64) bool {
	//nolint:errcheck // Index validated by validateUpdate.
	current, _ := c.index.Get(index)
	if math.Abs(height-current) <= c.engine.settings.noiseThreshold {
		return false
	}

	//nolint:errcheck // Index and height validated by validateUpdate.
	_ = c.index.Update(index, height)

	if height == c.engine.estimate {
		c.explicit.Delete(index)
	} else {
		c.explicit.ReplaceOrInsert(index)
	}

	c.markDirty(index)

	return true
}

func (c *Calculator) markDirty(index int) {
	if c.dirtyStart == noDirty {
		c.dirtyStart = index
		c.dirtyEnd = index + 1
		return
	}
	c.dirtyStart = min(c.dirtyStart, index)
	c.dirtyEnd = max(c.dirtyEnd, index+1)
}

// ConsumeDirtyRange returns the indices changed since the last call and
// resets the dirty state. The boolean is false when nothing is dirty.
func (c *Calculator) ConsumeDirtyRange() (DirtyRange, bool) {
	if c.dirtyStart == noDirty {
		return DirtyRange{}, false
	}
	dirty := DirtyRange{Start: c.dirtyStart, End: c.dirtyEnd}
	c.dirtyStart = noDirty
	c.dirtyEnd = noDirty
	return dirty, true
}

// IsDirtyInRange reports whether the dirty interval overlaps [start, end)
// without consuming it.
func (c *Calculator) IsDirtyInRange(start, end int) bool {
	if c.dirtyStart == noDirty {
		return false
	}
	return c.dirtyStart < end && start < c.dirtyEnd
}

// ScrollPosition returns the offset at which index starts. index may equal
// ItemCount(), which yields TotalHeight().
func (c *Calculator) ScrollPosition(index int) (float64, error) {
	pos, err := c.index.PrefixSum(index)
	if err != nil {
		return 0, fmt.Errorf("scroll position: %w", err)
	}
	return pos, nil
}

// ScrollTarget returns the scroll offset that shows index at the requested
// alignment. The empty Align means AlignStart. Results are never negative.
func (c *Calculator) ScrollTarget(index int, containerHeight float64, align Align) (float64, error) {
	if !align.IsValid() {
		return 0, fmt.Errorf("scroll target: %w: %q", ErrInvalidAlign, align)
	}

	itemHeight, err := c.index.Get(index)
	if err != nil {
		return 0, fmt.Errorf("scroll target: %w", err)
	}
	//nolint:errcheck // index < Len() was checked by Get.
	position, _ := c.index.PrefixSum(index)

	switch align {
	case AlignCenter:
		return math.Max(0, position-containerHeight/2+itemHeight/2), nil
	case AlignEnd:
		return math.Max(0, position-containerHeight+itemHeight), nil
	default:
		return position, nil
	}
}

// GetHeight returns the stored height of index.
func (c *Calculator) GetHeight(index int) (float64, error) {
	h, err := c.index.Get(index)
	if err != nil {
		return 0, fmt.Errorf("get height: %w", err)
	}
	return h, nil
}

// IndexAtOffset returns the item under pixel offset, clamped to [0, ItemCount()].
func (c *Calculator) IndexAtOffset(offset float64) int {
	return c.index.FindIndexByOffset(offset)
}

// TotalHeight returns the sum of all item heights.
func (c *Calculator) TotalHeight() float64 {
	return c.index.Total()
}

// ItemCount returns the fixed number of items.
func (c *Calculator) ItemCount() int {
	return c.index.Len()
}

// Version returns the mutation counter. It increases by one per call to
// UpdateHeight or UpdateHeights that changed at least one height.
func (c *Calculator) Version() uint64 {
	return c.version
}

// Overscan returns the configured overscan.
func (c *Calculator) Overscan() int {
	return c.engine.overscan
}

// EstimatedItemHeight returns the configured estimate.
func (c *Calculator) EstimatedItemHeight() float64 {
	return c.engine.estimate
}

// ExplicitCount returns how many items hold a height other than the estimate.
func (c *Calculator) ExplicitCount() int {
	return c.explicit.Len()
}

// CacheStats returns the visible-range memo counters.
func (c *Calculator) CacheStats() rangecache.Stats {
	return c.cache.Stats()
}

// CachedRanges returns the number of memoized visible ranges.
func (c *Calculator) CachedRanges() int {
	return c.cache.Len()
}

// ClearCache drops every memoized visible range. Heights and version are kept.
func (c *Calculator) ClearCache() {
	dropped := c.cache.Len()
	c.cache.Clear()
	if logger := c.engine.settings.logger; logger != nil {
		logger.Debug("visible range cache cleared", "dropped", dropped)
	}
}

// Resize returns a new calculator for newItemCount items that keeps every
// explicitly set height below min(ItemCount(), newItemCount). The receiver
// is left untouched and stays valid.
//
// The kept heights are replayed as one UpdateHeights batch, so the new
// calculator starts at version 1 when anything was replayed and 0 otherwise,
// regardless of the receiver's version. Versions are only comparable within
// one calculator.
func (c *Calculator) Resize(newItemCount int) (*Calculator, error) {
	next, err := c.engine.New(newItemCount)
	if err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}

	bound := min(c.index.Len(), newItemCount)
	replay := make([]HeightUpdate, 0, c.explicit.Len())
	c.explicit.AscendLessThan(bound, func(index int) bool {
		//nolint:errcheck // index < bound <= Len().
		h, _ := c.index.Get(index)
		replay = append(replay, HeightUpdate{Index: index, Height: h})
		return true
	})

	changed, err := next.UpdateHeights(replay)
	if err != nil {
		return nil, fmt.Errorf("resize: replay heights: %w", err)
	}

	if logger := c.engine.settings.logger; logger != nil {
		logger.Debug("calculator resized",
			"from", c.index.Len(),
			"to", newItemCount,
			"replayed", changed,
		)
	}

	return next, nil
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// sanitize maps NaN to zero so it cannot poison cache keys or comparisons.
func sanitize(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
