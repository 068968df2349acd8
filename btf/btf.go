// Package btf implements the block-triangular-form permutation engine:
// maximum transversal (bipartite matching), completion on structural
// singularity, and strongly-connected-components ordering, composed into
// a single driver (spec §4.4).
package btf

import (
	"sort"

	"github.com/idobenamram/spicy-sub001/csc"
	"github.com/idobenamram/spicy-sub001/permute"
	"github.com/idobenamram/spicy-sub001/trace"
)

// Result is the outcome of Run: the row and column permutations and block
// boundaries needed to interpret A in block-upper-triangular form.
//
// PRow, QCol and ColAt all have length n and are indexed by final BTF
// position k: QCol[k] is the original row matched to whatever column
// landed at position k (flip-encoded per permute.Flip if that position
// was filled by completion rather than a real match), PRow[k] is the
// plain, unflipped form of the same row index, and ColAt[k] is the
// original column index that landed at position k (a pure permutation,
// never flip-encoded, since every column lands somewhere regardless of
// whether its match was real or completed). Diagonal block k of the
// permuted matrix is rows/columns [Blocks[k], Blocks[k+1]).
type Result struct {
	NMatches int
	NBlocks  int
	PRow     []int
	QCol     []int
	ColAt    []int
	Blocks   []int
}

// Run computes the BTF permutation of the square matrix a, per spec §4.4:
// max transversal, completion if the matching isn't perfect, then SCC on
// the completed permutation. rec may be nil; when non-nil it receives a
// trace of the intermediate Q_col arrays and SCC block assignment for
// offline visualization, without affecting the result (spec §6).
func Run(a *csc.Matrix, rec *trace.Recorder) (*Result, error) {
	if a.NRows != a.NCols {
		return nil, &NonSquareError{NRows: a.NRows, NCols: a.NCols}
	}
	n := a.NCols

	match := make([]int, n)
	nMatches := MaxTransversal(a, match)
	rec.PushArrayStep("transversal.q_col", match)
	rec.PushNumberStep("transversal.n_matches", float64(nMatches))

	if nMatches < n {
		complete(match, nMatches, rec)
	}

	rowToCol := buildRowToCol(match, n)
	g := &sccGraph{a: a, rowToCol: rowToCol}
	compOf, nComps, _ := tarjanSCC(g, n)
	rec.PushArrayStep("scc.component_of", compOf)

	newPos, colAt, blocks := assignPositions(compOf, nComps, n)

	qCol := make([]int, n)
	pRow := make([]int, n)
	for c := 0; c < n; c++ {
		k := newPos[c]
		qCol[k] = match[c]
		pRow[k] = permute.Unflip(match[c])
	}
	rec.PushArrayStep("btf.final_q_col", qCol)
	rec.PushArrayStep("btf.final_p_row", pRow)

	return &Result{
		NMatches: nMatches,
		NBlocks:  nComps,
		PRow:     pRow,
		QCol:     qCol,
		ColAt:    colAt,
		Blocks:   blocks,
	}, nil
}

// complete fills in the unmatched columns of match (those still
// permute.Empty) with flip-encoded placeholder rows, per spec §4.4 step 2.
// Unmatched rows are collected in descending order and popped
// decrement-then-read (the spec's documented fix for the source's Q2
// off-by-one), so the first unmatched column receives the
// lowest-numbered unmatched row.
func complete(match []int, nMatches int, rec *trace.Recorder) {
	n := len(match)
	matchedRow := make([]bool, n)
	for _, r := range match {
		if r >= 0 {
			matchedRow[r] = true
		}
	}

	unmatched := make([]int, 0, n-nMatches)
	for r := n - 1; r >= 0; r-- {
		if !matchedRow[r] {
			unmatched = append(unmatched, r)
		}
	}

	nBadCol := len(unmatched)
	for c := 0; c < n; c++ {
		if match[c] != permute.Empty {
			continue
		}
		nBadCol--
		j := unmatched[nBadCol]
		match[c] = permute.Flip(j)
	}
	rec.PushArrayStep("btf.completed_q_col", match)
}

// assignPositions turns a per-vertex component id (numbered in completion
// order, i.e. already a valid topological order per tarjanSCC's contract)
// into a dense position assignment newPos[c] (and its inverse, colAt) plus
// the block boundary array: every vertex in component 0 gets the lowest
// positions, then component 1, and so on, preserving each component's
// internal vertex order.
func assignPositions(compOf []int, nComps, n int) (newPos, colAt, blocks []int) {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return compOf[order[i]] < compOf[order[j]]
	})

	newPos = make([]int, n)
	blocks = make([]int, nComps+1)
	pos := 0
	comp := 0
	blocks[0] = 0
	for _, c := range order {
		for compOf[c] > comp {
			comp++
			blocks[comp] = pos
		}
		newPos[c] = pos
		pos++
	}
	for comp < nComps {
		comp++
		blocks[comp] = pos
	}
	return newPos, order, blocks
}
