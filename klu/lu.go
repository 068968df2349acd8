package klu

import (
	"math"

	"github.com/idobenamram/spicy-sub001/csc"
)

// luEntry is one stored nonzero of a block's L or U factor, keyed by the
// pivoted row position (not the block's original row index) it ended up
// at once factorization finished.
type luEntry struct {
	Row int
	Val float64
}

// blockLU is the numeric factorization of one BTF diagonal block. It is
// allocated once by Analyze (newBlockLU) and mutated in place by every
// later call to factor, so a Newton-style refactor loop performs no
// allocation here once the first factor call has warmed up every slice's
// backing array (spec §5, property S5).
type blockLU struct {
	nb  int
	mat *csc.Matrix // wraps colPtr/rowIdx (fixed) and values (refreshed in place per Factor call)

	values []float64 // this block's own gathered numeric values; mat.Values aliases this
	rs     []float64 // per-column scale factor, reused via scale.ComputeInto

	lCols  [][]luEntry // lCols[k]: rows > k, implicit unit diagonal
	uCols  [][]luEntry // uCols[k]: rows <= k
	pivot  []int       // aliases rowAt: pivot[k] is the block-local original row now sitting at position k
	colAt  []int       // colAt[k]: original block-local column eliminated at step k (== amdOrder)
	growth float64

	// Scratch reused across factor calls.
	rowPosAMD []int
	rowAt     []int
	posOf     []int
	x         []float64
	xMark     []bool
	xNZ       []int

	// Scratch reused by reach.order, a generation-marked visited set so no
	// map is allocated per factor call or per column.
	reach reachScratch
}

// newBlockLU allocates a block's persistent state once, sized to its fixed
// pattern (colPtr, rowIdx, both owned by the caller and never mutated
// here). values is its own buffer, aliased into the returned matrix
// wrapper so writes through either reach the same backing array.
func newBlockLU(nb int, colPtr, rowIdx []int) *blockLU {
	values := make([]float64, len(rowIdx))
	return &blockLU{
		nb:        nb,
		mat:       csc.NewMatrix(nb, nb, colPtr, rowIdx, values),
		values:    values,
		lCols:     make([][]luEntry, nb),
		uCols:     make([][]luEntry, nb),
		rowPosAMD: make([]int, nb),
		rowAt:     make([]int, nb),
		posOf:     make([]int, nb),
		x:         make([]float64, nb),
		xMark:     make([]bool, nb),
		reach:     newReachScratch(nb),
	}
}

// solve returns x satisfying Ab*x = rhs (rhs and the returned slice both
// indexed by the block's own local row/column numbering, before pivoting
// or AMD reordering), via forward substitution on L, back substitution on
// U, and the column-scaling descale spec §4.8 step 2 calls for — applied
// here, immediately after the block's own solve, rather than to the
// shared right-hand side before any block runs, matching this port's
// column-oriented scaling convention (SPEC_FULL.md §6 Q1).
func (lu *blockLU) solve(rhs []float64) []float64 {
	nb := lu.nb

	rhsPermuted := make([]float64, nb)
	for k, origRow := range lu.pivot {
		rhsPermuted[k] = rhs[origRow]
	}

	z := make([]float64, nb)
	copy(z, rhsPermuted)
	for j := 0; j < nb; j++ {
		if z[j] == 0 {
			continue
		}
		for _, e := range lu.lCols[j] {
			z[e.Row] -= e.Val * z[j]
		}
	}

	y := make([]float64, nb)
	for k := nb - 1; k >= 0; k-- {
		var diag float64
		for _, e := range lu.uCols[k] {
			if e.Row == k {
				diag = e.Val
			}
		}
		y[k] = z[k] / diag
		for _, e := range lu.uCols[k] {
			if e.Row != k {
				z[e.Row] -= e.Val * y[k]
			}
		}
	}

	x := make([]float64, nb)
	for k := 0; k < nb; k++ {
		// y[k] is the solution component for the column eliminated k-th
		// (original column colAt[k]); undo that column permutation and
		// the scale factor applied to that same column during
		// elimination in the same step.
		col := lu.colAt[k]
		v := y[k]
		if col < len(lu.rs) && lu.rs[col] != 0 {
			v /= lu.rs[col]
		}
		x[col] = v
	}
	return x
}

// factor runs Gilbert-Peierls LU with partial pivoting over lu.mat (the
// block's own square CSC slice, already refreshed with this call's
// numeric values by the caller), using amdOrder as the static column
// elimination order and lu.rs as the per-column scale factor (indexed by
// block-local column), per spec §4.7. Every slice factor touches is one
// of lu's own persistent fields: no allocation happens here once those
// fields' backing arrays have stabilized after the block's first call.
//
// Column k of the elimination works in pivoted-position space: the
// block's original row indices are first placed at position
// rowPosAMD[row] (the row's rank under the same AMD order used for
// columns, giving a symmetric initial placement), and partial pivoting
// only ever swaps positions at or after the current step, propagating
// each swap into previously finalized L columns so every stored row
// index always means "pivoted position," not "original row" (the same
// convention dense partial-pivoted LU uses for its row-swap bookkeeping).
func (lu *blockLU) factor(amdOrder []int, pivotTol float64, block int) error {
	nb := lu.nb
	b := lu.mat

	for pos, origRow := range amdOrder {
		lu.rowPosAMD[origRow] = pos
	}
	copy(lu.rowAt, amdOrder)
	copy(lu.posOf, lu.rowPosAMD)

	var maxA float64
	for _, v := range b.Values {
		if a := math.Abs(v); a > maxA {
			maxA = a
		}
	}

	x := lu.x
	xMark := lu.xMark

	// Clear whatever x/xMark state the previous factor call (on this same
	// block) left behind, the same way the loop below clears the previous
	// column's state before reusing x/xMark/xNZ for the next one.
	for _, r := range lu.xNZ {
		x[r] = 0
		xMark[r] = false
	}
	xNZ := lu.xNZ[:0]
	lu.growth = 0

	for k := 0; k < nb; k++ {
		workingCol := amdOrder[k]

		for _, r := range xNZ {
			x[r] = 0
			xMark[r] = false
		}
		xNZ = xNZ[:0]

		scaleF := 1.0
		if workingCol < len(lu.rs) {
			scaleF = lu.rs[workingCol]
		}
		for p := b.ColStart(workingCol); p < b.ColEnd(workingCol); p++ {
			pos := lu.posOf[b.RowIdx[p]]
			if !xMark[pos] {
				xMark[pos] = true
				xNZ = append(xNZ, pos)
			}
			x[pos] += b.Values[p] / scaleF
		}

		order := lu.reach.order(lu.lCols, xNZ, k)
		for _, j := range order {
			xj := x[j]
			if xj == 0 {
				continue
			}
			for _, e := range lu.lCols[j] {
				if !xMark[e.Row] {
					xMark[e.Row] = true
					xNZ = append(xNZ, e.Row)
				}
				x[e.Row] -= e.Val * xj
			}
		}

		maxBelow := 0.0
		for pos := k; pos < nb; pos++ {
			if a := math.Abs(x[pos]); a > maxBelow {
				maxBelow = a
			}
		}
		if maxBelow == 0 {
			lu.xNZ = xNZ
			return &SingularAtBlockError{Block: block}
		}

		chosen := k
		if math.Abs(x[k]) < pivotTol*maxBelow {
			for pos := k; pos < nb; pos++ {
				if math.Abs(x[pos]) > math.Abs(x[chosen]) {
					chosen = pos
				}
			}
		}
		if chosen != k {
			swapPositions(lu.rowAt, lu.posOf, lu.lCols[:k], k, chosen)
			x[k], x[chosen] = x[chosen], x[k]
		}

		pivotVal := x[k]
		if pivotVal == 0 {
			lu.xNZ = xNZ
			return &SingularAtBlockError{Block: block}
		}

		uCol := lu.uCols[k][:0]
		lCol := lu.lCols[k][:0]
		for _, pos := range xNZ {
			v := x[pos]
			if v == 0 {
				continue
			}
			if pos <= k {
				uCol = append(uCol, luEntry{Row: pos, Val: v})
			} else {
				lCol = append(lCol, luEntry{Row: pos, Val: v / pivotVal})
			}
		}
		lu.uCols[k] = uCol
		lu.lCols[k] = lCol

		for _, e := range uCol {
			if a := math.Abs(e.Val); a > lu.growth {
				lu.growth = a
			}
		}
	}

	lu.xNZ = xNZ
	lu.pivot = lu.rowAt
	lu.colAt = amdOrder
	if maxA > 0 {
		lu.growth /= maxA
	}
	return nil
}

// reachScratch is order's persistent workspace: a generation-marked
// visited set (DupWorkspace's technique, applied here instead of a fresh
// map per call) plus a reusable explicit frame stack and postorder
// buffer, so a block's repeated factor calls allocate nothing to compute
// the symbolic reach order.
type reachScratch struct {
	visitedMark []int
	gen         int
	stack       []reachFrame
	postorder   []int
	orderBuf    []int
}

type reachFrame struct {
	node int
	idx  int
}

func newReachScratch(nb int) reachScratch {
	return reachScratch{visitedMark: make([]int, nb)}
}

// order computes the order in which already-finalized columns (those
// with position < k) must be visited to correctly forward-solve
// L*x = (scattered column), via an explicit-stack DFS over L's pattern
// graph (edge j -> r for every stored L[r,j] with r > j), mirroring the
// no-recursion style used by this module's BTF SCC pass.
//
// A DFS postorder visits a node only after all of its graph descendants,
// so within this graph (edges point from an already-finished column
// toward the rows its elimination still affects) the descendants finish
// before the ancestor that depends on them; reversing the postorder
// therefore yields the processing order forward substitution needs:
// every column is visited only after each column that updates it.
func (s *reachScratch) order(lCols [][]luEntry, xNZ []int, k int) []int {
	s.gen++
	s.stack = s.stack[:0]
	s.postorder = s.postorder[:0]

	for _, start := range xNZ {
		if start >= k || s.visitedMark[start] == s.gen {
			continue
		}
		s.stack = append(s.stack, reachFrame{node: start})
		s.visitedMark[start] = s.gen
		for len(s.stack) > 0 {
			top := &s.stack[len(s.stack)-1]
			col := lCols[top.node]
			advanced := false
			for top.idx < len(col) {
				r := col[top.idx].Row
				top.idx++
				if r < k && s.visitedMark[r] != s.gen {
					s.visitedMark[r] = s.gen
					s.stack = append(s.stack, reachFrame{node: r})
					advanced = true
					break
				}
			}
			if advanced {
				continue
			}
			s.postorder = append(s.postorder, top.node)
			s.stack = s.stack[:len(s.stack)-1]
		}
	}

	s.orderBuf = s.orderBuf[:0]
	for i := len(s.postorder) - 1; i >= 0; i-- {
		s.orderBuf = append(s.orderBuf, s.postorder[i])
	}
	return s.orderBuf
}

// swapPositions exchanges positions a and b in the dynamic row placement
// (rowAt/posOf), and retroactively swaps the same two row labels in every
// already-finalized L column so previously stored multipliers stay
// consistent with the row permutation partial pivoting has now settled
// on — the same bookkeeping dense partial-pivoted LU performs when it
// swaps whole rows of the factor in place.
func swapPositions(rowAt, posOf []int, finalizedLCols [][]luEntry, a, b int) {
	rowAt[a], rowAt[b] = rowAt[b], rowAt[a]
	posOf[rowAt[a]] = a
	posOf[rowAt[b]] = b

	for _, col := range finalizedLCols {
		for i := range col {
			switch col[i].Row {
			case a:
				col[i].Row = b
			case b:
				col[i].Row = a
			}
		}
	}
}
