// Package klu is the top-level factorization object: Analyze (BTF +
// per-block AMD), Factor/Refactor (per-block Gilbert-Peierls numeric LU),
// and Solve (permute, descale, block back-substitution, unpermute), per
// spec §3-§4 and §6's external interface.
package klu

import (
	"sort"

	"github.com/idobenamram/spicy-sub001/amd"
	"github.com/idobenamram/spicy-sub001/btf"
	"github.com/idobenamram/spicy-sub001/csc"
	"github.com/idobenamram/spicy-sub001/scale"
	"github.com/idobenamram/spicy-sub001/trace"
)

// state is the Factorization lifecycle tag from spec §3: unanalyzed,
// analyzed (symbolic only), factorized (numeric ready). It is a sum type
// in spirit (mirroring the "tagged variant, not three separate objects"
// design note, spec §9) implemented as the simplest Go equivalent: one
// struct whose fields beyond this tag are populated incrementally.
type state int

const (
	unanalyzed state = iota
	analyzed
	factorized
)

// tooLargeFillEstimate bounds the per-block fill estimate AMD may report;
// a block predicting more filled-in nonzeros than this is almost
// certainly a degenerate or adversarial pattern rather than a real MNA
// system, so Analyze rejects it outright instead of letting Factor
// allocate scratch proportional to it later (spec §7's TooLarge{context}).
const tooLargeFillEstimate = csc.MaxSafeLen / 2

// blockSymbolic is one BTF block's cached symbolic analysis: its AMD
// elimination order, its size nb and offset in the permuted matrix, plus
// srcIdx, a gather index from the full permuted matrix's Values into this
// block's own value buffer (the block's fixed colPtr/rowIdx pattern itself
// lives in its blockLU's mat). All of it is computed once by Analyze and
// never changes afterward, since it depends only on the pattern, not the
// values; Factor/Refactor reuse it as-is on every call.
type blockSymbolic struct {
	order  *amd.Result
	nb     int
	offset int
	srcIdx []int
}

// Factorization is the solver's central object (spec §3). The zero value
// is not usable; construct with New.
type Factorization struct {
	opts Options

	st state
	n  int

	// Set by Analyze; fixed for the lifetime of one symbolic pattern.
	btfResult   *btf.Result
	singular    bool
	symbolic    []blockSymbolic
	fingerprint uint64

	// permuted holds the BTF-permuted matrix. Its ColPtr/RowIdx are fixed
	// by Analyze; Factor/Refactor only scatter new Values into it, never
	// rebuild it, so a Newton-style refactor loop performs no allocation
	// here (spec §5).
	permuted   *csc.Matrix
	scatterIdx []int // scatterIdx[i]: a.Values[i] -> permuted.Values[scatterIdx[i]]

	dupWS *scale.DupWorkspace

	// blocks are allocated once by Analyze and mutated in place by every
	// subsequent Factor/Refactor call.
	blocks []*blockLU

	rec *trace.Recorder
}

// New returns an unanalyzed Factorization. rec may be nil.
func New(rec *trace.Recorder) *Factorization {
	return &Factorization{rec: rec}
}

// IsAnalyzed reports whether Analyze has produced a symbolic pattern.
func (f *Factorization) IsAnalyzed() bool { return f.st >= analyzed }

// IsFactorized reports whether Factor/Refactor has produced a numeric
// factorization currently valid for Solve.
func (f *Factorization) IsFactorized() bool { return f.st == factorized }

// Analyze computes the BTF permutation and per-block AMD symbolic
// analysis of a, per spec §4.2-§4.4 and §4.6. It does not itself fail on
// structural singularity (spec §4.4's failure mode is "none"); a
// structurally singular pattern is recorded and surfaced by Factor.
//
// Apart from Solve's per-call vectors, Analyze is the only place this type
// allocates scratch proportional to a's size: the permuted matrix,
// per-block patterns and gather indices, and every block's numeric scratch
// buffers are all built here once and then reused in place by every later
// Factor/Refactor call.
func (f *Factorization) Analyze(a *csc.Matrix, opts Options) error {
	if a.NRows != a.NCols {
		return &NonSquareMatrixError{NRows: a.NRows, NCols: a.NCols}
	}
	tol, _ := normalizedPivotTolerance(opts.PivotTolerance)
	opts.PivotTolerance = tol

	res, err := btf.Run(a, f.rec)
	if err != nil {
		return err
	}

	n := a.NCols
	permuted, scatterIdx, err := buildPermutedPattern(a, res.PRow, res.ColAt, n)
	if err != nil {
		return err
	}

	symbolic := make([]blockSymbolic, res.NBlocks)
	blocks := make([]*blockLU, res.NBlocks)

	for k := 0; k < res.NBlocks; k++ {
		off := res.Blocks[k]
		nb := res.Blocks[k+1] - off
		colPtr, rowIdx, srcIdx := buildBlockPattern(permuted, off, nb)

		var ord *amd.Result
		if opts.Ordering == Amd {
			blockMat := csc.NewMatrix(nb, nb, colPtr, rowIdx, make([]float64, len(rowIdx)))
			ord, err = amd.Analyze(blockMat)
			if err != nil {
				return err
			}
		} else {
			natural := make([]int, nb)
			for i := range natural {
				natural[i] = i
			}
			ord = &amd.Result{Order: natural}
		}
		if err := checkFillEstimate(k, ord.FillEstimate); err != nil {
			return err
		}

		symbolic[k] = blockSymbolic{order: ord, nb: nb, offset: off, srcIdx: srcIdx}
		blocks[k] = newBlockLU(nb, colPtr, rowIdx)
	}

	f.opts = opts
	f.n = n
	f.btfResult = res
	f.singular = res.NMatches < n
	f.symbolic = symbolic
	f.fingerprint = amd.Fingerprint(a)
	f.permuted = permuted
	f.scatterIdx = scatterIdx
	f.dupWS = scale.NewDupWorkspace(n)
	f.blocks = blocks
	f.st = analyzed
	return nil
}

// Factor runs numeric Gilbert-Peierls LU on every block of a, per spec
// §4.7. a must have the same pattern Analyze saw.
//
// Once Analyze has run, Factor and Refactor perform no allocation in
// their steady state (spec §5, property S5): the permuted matrix, each
// block's own value buffer, the scale workspace, and every block's LU
// scratch are all reused in place from Analyze's one-time setup.
func (f *Factorization) Factor(a *csc.Matrix) error {
	if f.st < analyzed {
		return &SymbolicNotAnalyzedError{}
	}
	if f.singular {
		return &StructurallySingularError{}
	}
	if a.NRows != f.n || a.NCols != f.n {
		return &NonSquareMatrixError{NRows: a.NRows, NCols: a.NCols}
	}
	if amd.Fingerprint(a) != f.fingerprint {
		return &PatternChangedError{}
	}

	for i, v := range a.Values {
		f.permuted.Values[f.scatterIdx[i]] = v
	}

	for k, sym := range f.symbolic {
		lu := f.blocks[k]
		for j, p := range sym.srcIdx {
			lu.values[j] = f.permuted.Values[p]
		}

		rs, err := scale.ComputeInto(lu.mat, f.opts.Scale, f.dupWS, lu.rs)
		if err != nil {
			if de, ok := err.(*scale.DuplicateEntryError); ok {
				return &DuplicateEntryError{Col: de.Col, Row: de.Row}
			}
			return err
		}
		lu.rs = rs

		if err := lu.factor(sym.order.Order, f.opts.PivotTolerance, k); err != nil {
			return err
		}
	}

	f.st = factorized
	return nil
}

// Refactor re-runs numeric factorization with a's values, reusing the
// symbolic analysis from Analyze (spec §6's "numeric-only, no
// re-symbolic"). It is valid as soon as Analyze has run; a prior Factor
// call is not needed.
func (f *Factorization) Refactor(a *csc.Matrix) error {
	if f.st < analyzed {
		return &SymbolicNotAnalyzedError{}
	}
	return f.Factor(a)
}

// Solve solves A*x = b in place over buf, a column-major buffer with
// leading dimension d holding nrhs right-hand sides, per spec §4.8.
func (f *Factorization) Solve(buf []float64, nrhs, d int) error {
	if f.st < analyzed {
		return &SymbolicNotAnalyzedError{}
	}
	if f.st != factorized {
		return &NumericNotFactorizedError{}
	}
	n := f.n
	if d < n {
		return &InvalidLeadingDimensionError{D: d, N: n}
	}
	required := d * nrhs
	if len(buf) < required {
		return &RhsTooSmallError{Required: required, D: d, Nrhs: nrhs, Actual: len(buf)}
	}

	res := f.btfResult
	for col := 0; col < nrhs; col++ {
		base := col * d
		bPermuted := make([]float64, n)
		for k, r := range res.PRow {
			bPermuted[k] = buf[base+r]
		}

		z := make([]float64, n)
		for k := len(f.symbolic) - 1; k >= 0; k-- {
			sym := f.symbolic[k]
			lu := f.blocks[k]
			rhsLocal := make([]float64, sym.nb)
			copy(rhsLocal, bPermuted[sym.offset:sym.offset+sym.nb])
			f.subtractOffDiagonal(rhsLocal, sym, z)

			xb := lu.solve(rhsLocal)
			for i := 0; i < sym.nb; i++ {
				z[sym.offset+i] = xb[i]
			}
		}

		for k, c := range res.ColAt {
			buf[base+c] = z[k]
		}
	}
	return nil
}

// subtractOffDiagonal subtracts, from rhsLocal (block sym's own rows),
// the contribution of every already-solved later-block unknown in z
// (spec §4.8 step 3's "Σ_{j > k} OffDiag_{k,j} · y_j" term), read directly
// from the full permuted matrix rather than a separately stored
// off-diagonal structure.
func (f *Factorization) subtractOffDiagonal(rhsLocal []float64, sym blockSymbolic, z []float64) {
	n := f.n
	for c := sym.offset + sym.nb; c < n; c++ {
		zc := z[c]
		if zc == 0 {
			continue
		}
		for p := f.permuted.ColStart(c); p < f.permuted.ColEnd(c); p++ {
			r := f.permuted.RowIdx[p]
			if r >= sym.offset && r < sym.offset+sym.nb {
				rhsLocal[r-sym.offset] -= f.permuted.Values[p] * zc
			}
		}
	}
}

// GrowthFactor returns max(|U|)/max(|A|) for the given block, a numeric
// stability diagnostic (spec §4.7 point 3; SPEC_FULL.md §4).
func (f *Factorization) GrowthFactor(block int) float64 {
	return f.blocks[block].growth
}

// NBlocks returns the number of BTF diagonal blocks found by Analyze.
func (f *Factorization) NBlocks() int {
	if f.btfResult == nil {
		return 0
	}
	return f.btfResult.NBlocks
}

// checkFillEstimate rejects a block whose predicted fill exceeds a hard
// internal limit, rather than letting Factor later allocate LU scratch
// proportional to it (spec §7's TooLarge{context}).
func checkFillEstimate(block, fill int) error {
	if fill > tooLargeFillEstimate {
		return &TooLargeError{Context: "block predicted fill exceeds internal limit"}
	}
	return nil
}

// patternEntry is one stored position of the BTF-permuted matrix, tagged
// with orig, its position in a's own storage order, so buildPermutedPattern
// can recover scatterIdx after sorting into permuted's (col, row) order.
type patternEntry struct {
	row, col, orig int
}

// buildPermutedPattern builds the BTF-permuted matrix's fixed pattern
// (ColPtr/RowIdx, with a zeroed Values buffer) from PRow (position ->
// original row) and ColAt (position -> original column), along with
// scatterIdx, the index a later Factor call uses to copy a.Values[i]
// straight into permuted.Values[scatterIdx[i]] without rebuilding
// anything. Row and column relabeling are each bijections, so distinct
// original entries always land at distinct (row, col) pairs: there is
// never a coalescing step to perform here, unlike a general triplet build.
func buildPermutedPattern(a *csc.Matrix, pRow, colAt []int, n int) (*csc.Matrix, []int, error) {
	newRowPos := make([]int, n)
	for k, r := range pRow {
		newRowPos[r] = k
	}
	newColPos := make([]int, n)
	for k, c := range colAt {
		newColPos[c] = k
	}

	nnz := a.NNZ()
	if err := csc.CheckOverflow("klu: permuted matrix nnz", nnz, 8); err != nil {
		return nil, nil, &OverflowError{Context: "permuted matrix"}
	}

	entries := make([]patternEntry, 0, nnz)
	for c := 0; c < n; c++ {
		newCol := newColPos[c]
		for p := a.ColStart(c); p < a.ColEnd(c); p++ {
			entries = append(entries, patternEntry{row: newRowPos[a.RowIdx[p]], col: newCol, orig: p})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].col != entries[j].col {
			return entries[i].col < entries[j].col
		}
		return entries[i].row < entries[j].row
	})

	colPtr := make([]int, n+1)
	rowIdx := make([]int, nnz)
	scatterIdx := make([]int, nnz)
	c := 0
	for i, e := range entries {
		for c < e.col {
			c++
			colPtr[c] = i
		}
		rowIdx[i] = e.row
		scatterIdx[e.orig] = i
	}
	for c < n {
		c++
		colPtr[c] = nnz
	}

	values := make([]float64, nnz)
	m := csc.NewMatrix(n, n, colPtr, rowIdx, values)
	if err := m.CheckInvariants(); err != nil {
		// The permutation is a bijection over a valid matrix's own indices,
		// so this would mean a bug in this function, not in the caller's a.
		panic(err)
	}
	return m, scatterIdx, nil
}

// buildBlockPattern returns block k's own fixed CSC pattern (local indices
// shifted down to [0, nb)) from the permuted matrix's diagonal block
// starting at offset off, along with srcIdx, the gather index a later
// Factor call uses to copy permuted.Values[srcIdx[j]] into the block's own
// j-th stored value.
func buildBlockPattern(permuted *csc.Matrix, off, nb int) (colPtr, rowIdx, srcIdx []int) {
	colPtr = make([]int, nb+1)
	rowIdx = make([]int, 0, nb)
	srcIdx = make([]int, 0, nb)
	for c := off; c < off+nb; c++ {
		colPtr[c-off] = len(rowIdx)
		for p := permuted.ColStart(c); p < permuted.ColEnd(c); p++ {
			r := permuted.RowIdx[p]
			if r >= off && r < off+nb {
				rowIdx = append(rowIdx, r-off)
				srcIdx = append(srcIdx, p)
			}
		}
	}
	colPtr[nb] = len(rowIdx)
	return colPtr, rowIdx, srcIdx
}
