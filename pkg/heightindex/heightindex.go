// Package heightindex provides a segment tree over per-item pixel heights.
//
// # Purpose
//
// A virtualized list needs two questions answered on every scroll event:
// where does item i start, and which item occupies pixel row y. Keeping the
// heights in a flat slice makes both O(n). The Index keeps them in the leaves
// of a complete binary tree whose internal nodes hold subtree sums, so point
// updates, prefix sums and offset lookups are all O(log n).
//
// # Layout
//
// The tree uses the implicit heap layout: node 1 is the root, node k has
// children 2k and 2k+1, and leaves start at the first power of two that is
// >= the item count. Padding leaves hold zero and never contribute to sums.
//
// # Bounds
//
// Get, Update and PrefixSum reject out-of-range indices with an error
// wrapping ErrIndexOutOfRange. FindIndexByOffset never fails; it clamps to
// [0, Len()].
//
// # Thread Safety
//
// Index is NOT thread-safe. Callers that share an Index across goroutines
// must serialize access themselves.
package heightindex

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrIndexOutOfRange is returned when an item index is outside the list.
	ErrIndexOutOfRange = errors.New("heightindex: index out of range")

	// ErrInvalidHeight is returned for negative, NaN or infinite heights.
	ErrInvalidHeight = errors.New("heightindex: invalid height")
)

// Index is a segment tree of item heights.
type Index struct {
	// tree holds node sums; tree[leaves+i] is the height of item i.
	tree []float64

	// leaves is the number of leaf slots (a power of two).
	leaves int

	// count is the number of real items.
	count int

	// estimate is the initial height of every item.
	estimate float64
}

// New creates an index of count items, each starting at estimate.
// A negative count is treated as zero.
func New(count int, estimate float64) *Index {
	if count < 0 {
		count = 0
	}

	leaves := 1
	for leaves < count {
		leaves <<= 1
	}

	idx := &Index{
		tree:     make([]float64, 2*leaves),
		leaves:   leaves,
		count:    count,
		estimate: estimate,
	}

	for i := range count {
		idx.tree[leaves+i] = estimate
	}

	// Bottom-up build is O(n), cheaper than count individual updates.
	for node := leaves - 1; node >= 1; node-- {
		idx.tree[node] = idx.tree[2*node] + idx.tree[2*node+1]
	}

	return idx
}

// Len returns the number of items.
func (idx *Index) Len() int {
	return idx.count
}

// Estimate returns the height items were initialized with.
func (idx *Index) Estimate() float64 {
	return idx.estimate
}

// Total returns the sum of all heights in O(1).
func (idx *Index) Total() float64 {
	if idx.count == 0 {
		return 0
	}
	return idx.tree[1]
}

// Get returns the height of item index.
func (idx *Index) Get(index int) (float64, error) {
	if err := idx.checkItem(index); err != nil {
		return 0, err
	}
	return idx.tree[idx.leaves+index], nil
}

// Update sets the height of item index and refreshes every ancestor sum.
func (idx *Index) Update(index int, height float64) error {
	if err := idx.checkItem(index); err != nil {
		return err
	}
	if !ValidHeight(height) {
		return fmt.Errorf("%w: %v", ErrInvalidHeight, height)
	}

	node := idx.leaves + index
	idx.tree[node] = height
	for node > 1 {
		node >>= 1
		idx.tree[node] = idx.tree[2*node] + idx.tree[2*node+1]
	}

	return nil
}

// PrefixSum returns the total height of all items strictly before index,
// which is the offset at which item index starts. Valid indices are
// 0..Len() inclusive; PrefixSum(Len()) equals Total().
func (idx *Index) PrefixSum(index int) (float64, error) {
	if index < 0 || index > idx.count {
		return 0, fmt.Errorf("%w: prefix %d not in [0, %d]", ErrIndexOutOfRange, index, idx.count)
	}
	return idx.prefix(index), nil
}

// prefix sums leaves [0, index) for 0 <= index <= count. Every offset the
// package hands out comes from this walk, so FindIndexByOffset checks its
// answer against it.
func (idx *Index) prefix(index int) float64 {
	if index == idx.count {
		return idx.Total()
	}

	var sum float64
	lo, hi := idx.leaves, idx.leaves+index
	for lo < hi {
		if lo&1 == 1 {
			sum += idx.tree[lo]
			lo++
		}
		if hi&1 == 1 {
			hi--
			sum += idx.tree[hi]
		}
		lo >>= 1
		hi >>= 1
	}

	return sum
}

// FindIndexByOffset returns the item occupying pixel offset, i.e. the
// smallest i with PrefixSum(i) <= offset < PrefixSum(i+1).
// Offsets <= 0 (and NaN) map to 0; offsets >= Total() map to Len().
//
// The lookup descends from the root, going left when the offset falls inside
// the left subtree and otherwise subtracting the left sum and going right.
func (idx *Index) FindIndexByOffset(offset float64) int {
	if idx.count == 0 || math.IsNaN(offset) || offset <= 0 {
		return 0
	}
	if offset >= idx.Total() {
		return idx.count
	}

	node, remaining := 1, offset
	for node < idx.leaves {
		left := 2 * node
		if remaining < idx.tree[left] {
			node = left
		} else {
			remaining -= idx.tree[left]
			node = left + 1
		}
	}

	// Subtracting subtree sums on the way down rounds differently from the
	// prefix walk, and can land in padding. Snap to the prefix walk so that
	// FindIndexByOffset(PrefixSum(i)) == i for fractional heights too.
	found := min(node-idx.leaves, idx.count-1)
	for found > 0 && idx.prefix(found) > offset {
		found--
	}
	for found < idx.count-1 && idx.prefix(found+1) <= offset {
		found++
	}

	return found
}

// ValidHeight reports whether h is a usable item height.
func ValidHeight(h float64) bool {
	return h >= 0 && !math.IsInf(h, 1) && !math.IsNaN(h)
}

func (idx *Index) checkItem(index int) error {
	if index < 0 || index >= idx.count {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, idx.count)
	}
	return nil
}
