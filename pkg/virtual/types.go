package virtual

import (
	"fmt"
	"iter"
	"strings"
)

// VirtualItem is the layout of one item: it occupies [Start, End) pixels.
type VirtualItem struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	Size  float64 `json:"size"`
	End   float64 `json:"end"`
}

// VisibleRange is the set of items to render for one viewport.
//
// A VisibleRange is immutable: the same pointer may be handed out again from
// the calculator's cache, so accessors never expose the backing slice.
type VisibleRange struct {
	start int
	end   int
	items []VirtualItem
}

// emptyRange is returned for lists with no items. It is immutable and shared.
//
//nolint:gochecknoglobals // Immutable sentinel value.
var emptyRange = &VisibleRange{}

// StartIndex returns the first rendered index.
func (r *VisibleRange) StartIndex() int {
	return r.start
}

// EndIndex returns one past the last rendered index.
func (r *VisibleRange) EndIndex() int {
	return r.end
}

// Len returns the number of rendered items.
func (r *VisibleRange) Len() int {
	return len(r.items)
}

// Item returns the i-th rendered item (0 <= i < Len()).
func (r *VisibleRange) Item(i int) VirtualItem {
	return r.items[i]
}

// Items returns a copy of the rendered items.
func (r *VisibleRange) Items() []VirtualItem {
	out := make([]VirtualItem, len(r.items))
	copy(out, r.items)
	return out
}

// All iterates the rendered items without copying.
func (r *VisibleRange) All() iter.Seq[VirtualItem] {
	return func(yield func(VirtualItem) bool) {
		for _, item := range r.items {
			if !yield(item) {
				return
			}
		}
	}
}

// Contains reports whether index is inside [StartIndex, EndIndex).
func (r *VisibleRange) Contains(index int) bool {
	return index >= r.start && index < r.end
}

// String implements fmt.Stringer.
func (r *VisibleRange) String() string {
	return fmt.Sprintf("[%d, %d) %d items", r.start, r.end, len(r.items))
}

// DirtyRange is the half-open interval [Start, End) of indices whose height
// changed since the dirty state was last consumed.
type DirtyRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of indices covered.
func (d DirtyRange) Len() int {
	return d.End - d.Start
}

// HeightUpdate is one measured height reported by a renderer.
type HeightUpdate struct {
	Index  int     `json:"index"`
	Height float64 `json:"height"`
}

// Align selects where a scroll target places its item in the viewport.
type Align string

const (
	// AlignStart puts the item at the top of the viewport.
	AlignStart Align = "start"
	// AlignCenter centers the item in the viewport.
	AlignCenter Align = "center"
	// AlignEnd puts the item at the bottom of the viewport.
	AlignEnd Align = "end"
)

// IsValid returns true if the alignment is known. The empty value is valid
// and means AlignStart.
func (a Align) IsValid() bool {
	switch a {
	case "", AlignStart, AlignCenter, AlignEnd:
		return true
	default:
		return false
	}
}

// ParseAlign converts a string to an Align, case-insensitively.
func ParseAlign(s string) (Align, error) {
	align := Align(strings.ToLower(strings.TrimSpace(s)))
	if !align.IsValid() {
		return "", fmt.Errorf("%w: %q (expected start, center, or end)", ErrInvalidAlign, s)
	}
	if align == "" {
		return AlignStart, nil
	}
	return align, nil
}
