// Package permute implements the signed-index permutation encoding used by
// the BTF and KLU stages: a plain []int where most entries are unflipped
// indices, but a "completed" position placed to repair a structurally
// singular matching is marked by flipping it, so a single array carries
// both "matched row index" and "this position was filled for structural
// reasons, treat as zero" without a second parallel boolean slice.
//
// The source this solver is ported from shares one array between the
// flipped encoding and raw unsigned reinterpretation of the same memory;
// this package keeps a single signed int slice throughout instead and
// never reinterprets it, which is both simpler and avoids any aliasing
// concern the original's pointer trick required readers to reason about.
package permute

// Empty is the sentinel for "unassigned" in a permutation array.
const Empty = -1

// Flip encodes x as a "completed for structural reasons" marker. Flip is
// its own near-inverse: Flip(Flip(x)) == x.
func Flip(x int) int { return -x - 2 }

// IsFlipped reports whether x was produced by Flip (i.e. is a marker
// rather than a plain index).
func IsFlipped(x int) bool { return x < -1 }

// Unflip returns the original index that was passed to Flip, or x
// unchanged if it was never flipped.
func Unflip(x int) int {
	if IsFlipped(x) {
		return Flip(x)
	}
	return x
}

// IsPermutation reports whether p is a permutation of 0..len(p), after
// unflipping every entry. Used by tests verifying the BTF driver's output
// (spec §8, invariant 7).
func IsPermutation(p []int) bool {
	n := len(p)
	seen := make([]bool, n)
	for _, v := range p {
		u := Unflip(v)
		if u < 0 || u >= n || seen[u] {
			return false
		}
		seen[u] = true
	}
	return true
}
