package btf

import (
	"github.com/idobenamram/spicy-sub001/csc"
	"github.com/idobenamram/spicy-sub001/permute"
)

// MaxTransversal computes a column permutation placing a nonzero on as
// many diagonal positions as possible: a maximum-cardinality bipartite
// matching between columns and rows over a's nonzero pattern.
//
// qCol must have length a.NCols; MaxTransversal initializes it to
// permute.Empty and, for every matched column c, sets qCol[c] to its
// matched row. It returns the number of matches, which is a's dimension n
// exactly when a is structurally nonsingular.
//
// The search is Kuhn's algorithm (one augmenting-path DFS per column,
// with a cheap-match fast path tried first): for a given input, the
// output is deterministic because columns are visited in ascending index
// order and, within a column, candidate rows are tried in row-index
// order — both already guaranteed by the CSC storage invariants (I3/I4).
func MaxTransversal(a *csc.Matrix, qCol []int) int {
	n := a.NCols
	matchRow := make([]int, a.NRows)
	for r := range matchRow {
		matchRow[r] = permute.Empty
	}
	for c := range qCol {
		qCol[c] = permute.Empty
	}

	visited := make([]bool, a.NRows)
	matches := 0
	for c := 0; c < n; c++ {
		if cheapMatch(a, c, matchRow, qCol) {
			matches++
			continue
		}
		for i := range visited {
			visited[i] = false
		}
		if augment(a, c, matchRow, qCol, visited) {
			matches++
		}
	}
	return matches
}

// cheapMatch tries to match column c to the first row in its pattern that
// isn't matched to anything yet, without search. This preprocessing step
// resolves the common case (most columns in a well-conditioned MNA matrix
// have an available diagonal-ish candidate) without paying for a DFS.
func cheapMatch(a *csc.Matrix, c int, matchRow, qCol []int) bool {
	for p := a.ColStart(c); p < a.ColEnd(c); p++ {
		r := a.RowIdx[p]
		if matchRow[r] == permute.Empty {
			matchRow[r] = c
			qCol[c] = r
			return true
		}
	}
	return false
}

// augment searches for an augmenting path starting at column c, rooted at
// each candidate row in turn (in row-index order), recursively displacing
// whatever column a candidate row is currently matched to.
func augment(a *csc.Matrix, c int, matchRow, qCol []int, visited []bool) bool {
	for p := a.ColStart(c); p < a.ColEnd(c); p++ {
		r := a.RowIdx[p]
		if visited[r] {
			continue
		}
		visited[r] = true
		if matchRow[r] == permute.Empty || augment(a, matchRow[r], matchRow, qCol, visited) {
			matchRow[r] = c
			qCol[c] = r
			return true
		}
	}
	return false
}
