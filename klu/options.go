package klu

import "github.com/idobenamram/spicy-sub001/scale"

// OrderingKind selects the per-block column elimination order used during
// symbolic analysis (spec §6's "opts.ordering ∈ {Amd, Natural}").
type OrderingKind int

const (
	// Amd runs approximate minimum degree ordering on each block.
	Amd OrderingKind = iota
	// Natural keeps the block's existing column order, skipping AMD.
	Natural
)

// defaultPivotTolerance is KLU's documented default (spec §4.7).
const defaultPivotTolerance = 0.001

// Options configures Factorization.Analyze, following the plain
// struct-of-enums-by-value convention this module's ambient stack uses
// throughout (SPEC_FULL.md §2; compare gonum's mat.TriKind/GSVDKind).
type Options struct {
	Scale          scale.Mode
	Ordering       OrderingKind
	PivotTolerance float64
}

// DefaultOptions returns Amd ordering, Sum scaling, and the KLU-standard
// pivot tolerance of 0.001.
func DefaultOptions() Options {
	return Options{Scale: scale.Sum, Ordering: Amd, PivotTolerance: defaultPivotTolerance}
}

// normalizedPivotTolerance clamps PivotTolerance to [0,1], per spec §4.7's
// "values outside [0,1] are clamped with a warning". The second return
// value reports whether a clamp happened; package klu does not log
// (SPEC_FULL.md §2), and Analyze, its only caller, discards that flag, so
// a clamped tolerance is not reported to the caller of Analyze.
func normalizedPivotTolerance(tol float64) (float64, bool) {
	if tol < 0 {
		return 0, true
	}
	if tol > 1 {
		return 1, true
	}
	return tol, false
}
