// Package scale computes the diagonal row/column scaling factors used
// before numeric factorization (spec §4.5). Per this port's resolution of
// the source's row/column naming ambiguity (spec §9 Q1, SPEC_FULL.md §6),
// scaling is applied by column throughout, including at the numeric
// factorization site in package klu.
package scale

import (
	"fmt"
	"math"

	"github.com/idobenamram/spicy-sub001/csc"
)

// Mode selects how a column's scale factor is derived from its entries,
// following the "plain struct/enum of options passed by value" convention
// gonum uses for e.g. mat.TriKind (SPEC_FULL.md §2).
type Mode int

const (
	// None disables scaling; Compute returns all-ones.
	None Mode = iota
	// Sum scales by the sum of absolute values in the column.
	Sum
	// Max scales by the largest absolute value in the column.
	Max
)

func (m Mode) String() string {
	switch m {
	case None:
		return "None"
	case Sum:
		return "Sum"
	case Max:
		return "Max"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DuplicateEntryError reports that the same (row, col) position appeared
// twice while scanning a matrix that was expected to already be
// duplicate-free (spec §4.5's duplicate-detection workspace; spec §7's
// DuplicateEntry{col, row}).
type DuplicateEntryError struct {
	Row, Col int
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("scale: duplicate entry at row %d, col %d", e.Row, e.Col)
}

// DupWorkspace is a reusable duplicate-detection workspace for Compute,
// following spec §5's resource model: scratch buffers are owned by the
// caller (ultimately the Factorization object) and reused across calls
// with no steady-state allocation. It uses a generation counter rather
// than re-zeroing a marker slice on every Compute call, so reuse across
// many matrices (spec §5's Newton inner loop) costs O(nnz), not O(n_rows),
// per call.
type DupWorkspace struct {
	marker []int
	gen    int
}

// NewDupWorkspace allocates a workspace sized for matrices with up to
// nRows rows.
func NewDupWorkspace(nRows int) *DupWorkspace {
	return &DupWorkspace{marker: make([]int, nRows)}
}

// Compute returns Rs[0..n_cols), the per-column scale factor for a under
// mode. An empty column yields Rs[c] = 1.0 (never divide by zero).
//
// If ws is non-nil, Compute uses it to detect a repeated (row, col) pair
// within a single column's stored entries and returns a
// *DuplicateEntryError naming the first one found. A.CheckInvariants
// already rules this out for matrices built through this module's own
// Builder; this check exists for hand-built or externally-sourced CSC
// data, per spec §4.5's "catches builder bugs in pipelines that skip
// coalescing". ws must have been sized for at least a.NRows rows.
//
// Compute always allocates its result; a caller factorizing the same
// pattern repeatedly (spec §5's Newton inner loop) should use ComputeInto
// with a reused buffer instead.
func Compute(a *csc.Matrix, mode Mode, ws *DupWorkspace) ([]float64, error) {
	return ComputeInto(a, mode, ws, nil)
}

// ComputeInto is Compute, writing into dst instead of a fresh slice: if
// dst has capacity for a.NCols entries it is reused (resliced to length
// and overwritten in place), otherwise a new slice is allocated exactly
// as Compute would. The returned slice is always the one to keep using,
// since a first call with a nil or too-small dst still allocates.
func ComputeInto(a *csc.Matrix, mode Mode, ws *DupWorkspace, dst []float64) ([]float64, error) {
	n := a.NCols
	var rs []float64
	if cap(dst) >= n {
		rs = dst[:n]
	} else {
		rs = make([]float64, n)
	}
	if mode == None {
		for c := range rs {
			rs[c] = 1.0
		}
		return rs, nil
	}

	for c := 0; c < n; c++ {
		if ws != nil {
			ws.gen++
		}
		var acc float64
		for p := a.ColStart(c); p < a.ColEnd(c); p++ {
			r := a.RowIdx[p]
			if ws != nil {
				if ws.marker[r] == ws.gen {
					return nil, &DuplicateEntryError{Row: r, Col: c}
				}
				ws.marker[r] = ws.gen
			}
			v := math.Abs(a.Values[p])
			switch mode {
			case Sum:
				acc += v
			case Max:
				if v > acc {
					acc = v
				}
			}
		}
		if acc == 0 {
			acc = 1.0
		}
		rs[c] = acc
	}
	return rs, nil
}
