package rowsource

import "github.com/cespare/xxhash/v2"

// Fingerprints hashes every row of src.
func Fingerprints(src Source) []uint64 {
	sums := make([]uint64, src.Len())
	for i := range sums {
		sums[i] = xxhash.Sum64String(src.Row(i))
	}
	return sums
}

// Changed returns the indices whose fingerprint differs between two
// snapshots of the same source, in ascending order. Indices present in only
// one snapshot count as changed when they exist in next.
func Changed(prev, next []uint64) []int {
	var changed []int
	for i, sum := range next {
		if i >= len(prev) || prev[i] != sum {
			changed = append(changed, i)
		}
	}
	return changed
}
