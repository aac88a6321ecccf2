// Package virtual computes which rows of a very large list are visible and
// keeps per-row heights converging from an estimate to measured values.
//
// # Usage
//
// Configure an Engine once and build one Calculator per list:
//
//	engine, err := virtual.Configure(36, 5)
//	if err != nil {
//	    return err
//	}
//	calc, err := engine.New(len(rows))
//
// On every scroll or container resize, render exactly the returned items,
// each at its Start offset:
//
//	visible := calc.VisibleRange(scrollTop, viewportHeight)
//	for item := range visible.All() {
//	    draw(rows[item.Index], item.Start)
//	}
//
// After drawing, measure the rows and report differences. Sub-pixel noise is
// filtered out, so reporting every measured row is fine:
//
//	changed, err := calc.UpdateHeights(measured)
//
// When the underlying collection changes length, swap in a resized copy:
//
//	calc, err = calc.Resize(len(rows))
//
// # Invalidation
//
// Every real height change bumps Version(). Visible ranges are memoized under
// a key that includes the version, so stale results are never served and an
// unchanged query returns the identical *VisibleRange.
//
// The dirty range accumulates every changed index until ConsumeDirtyRange is
// called; renderers use IsDirtyInRange to decide whether rows they are about
// to draw need measuring again.
//
// # Thread Safety
//
// Calculator is NOT thread-safe. It is built for a single UI event loop.
// VisibleRange values are immutable and may be shared freely.
package virtual
