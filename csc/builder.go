package csc

import (
	"fmt"
	"sort"
)

// Builder collects (row, col, value) triplets and produces a normalized
// Matrix. Duplicate (row, col) pairs are summed, matching the classic
// triplet/COO semantics device "stamping" relies on: each device
// contributes its own (row, col, value) call and overlapping contributions
// at a shared node must add, not overwrite.
//
// The zero Builder is not usable; construct one with NewBuilder so the
// triplet slice can be reserved up front. Push does not reallocate the
// backing array while the pushes stay within the reserved capacity (beyond
// it, append grows the array), matching the amortized O(1)-per-push,
// O(nnz log nnz) (from the final sort) cost spec §4.1 requires.
type Builder struct {
	dim      Dim
	triplets []Triplet
}

// tripletSize approximates one Triplet's in-memory footprint (two ints
// plus a float64), the "nnz * sizeof" unit the overflow guards below size
// their checks in.
const tripletSize = 24

// NewBuilder creates a Builder for an nrows x ncols matrix, reserving
// space for nnzHint triplets. A nnzHint large enough that the triplet
// backing array's byte size would overflow the platform's address width
// is a caller bug, not a data problem, so it panics rather than returning
// an error, matching Push's programmer-error convention below.
func NewBuilder(nrows, ncols, nnzHint int) *Builder {
	if nnzHint < 0 {
		nnzHint = 0
	}
	if err := CheckOverflow("csc.NewBuilder: nnzHint", nnzHint, tripletSize); err != nil {
		panic(err)
	}
	return &Builder{
		dim:      Dim{NRows: nrows, NCols: ncols},
		triplets: make([]Triplet, 0, nnzHint),
	}
}

// Push appends a (row, col, value) contribution. It is infallible as long
// as row and col are in range; out-of-range indices panic immediately
// rather than being discovered at BuildCSC time, since a stamping device
// computing its own node indices getting this wrong is a programmer error,
// not a data-quality problem to defer.
func (b *Builder) Push(row, col int, value float64) {
	if uint(row) >= uint(b.dim.NRows) {
		panic(ErrOutOfRange)
	}
	if uint(col) >= uint(b.dim.NCols) {
		panic(ErrOutOfRange)
	}
	b.triplets = append(b.triplets, Triplet{Row: row, Col: col, Value: value})
}

// NNZ returns the number of triplets pushed so far (before coalescing).
func (b *Builder) NNZ() int { return len(b.triplets) }

// BuildCSC sorts the collected triplets by (col, row), coalesces entries
// sharing a (row, col) by summing their values, and validates the result
// against I1-I5. The coalescing step is the same cumulative-count +
// stable-merge approach used to convert a COO/triplet matrix to CSC in the
// wider sparse-matrix ecosystem (bucket by column via a cumulative count,
// then fold duplicates column by column) rather than a naive map-based
// dedupe, so memory stays O(nnz) with no per-entry hashing.
func (b *Builder) BuildCSC() (*Matrix, error) {
	n := b.dim.NCols
	nnz := len(b.triplets)

	if err := CheckOverflow("csc.Builder.BuildCSC: nnz", nnz, tripletSize); err != nil {
		return nil, err
	}

	colPtr, err := bucketByColumn(b.triplets, n)
	if err != nil {
		return nil, err
	}

	// triplets is now partitioned into column buckets by bucketByColumn
	// (which copied the bucketed order back into b.triplets), but each
	// bucket still needs rows sorted and duplicates coalesced.
	rowIdx := make([]int, 0, nnz)
	values := make([]float64, 0, nnz)
	finalColPtr := make([]int, n+1)

	for c := 0; c < n; c++ {
		start, end := colPtr[c], colPtr[c+1]
		bucket := b.triplets[start:end]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Row < bucket[j].Row })

		finalColPtr[c] = len(rowIdx)
		var prevRow = -1
		for _, t := range bucket {
			if t.Row == prevRow {
				values[len(values)-1] += t.Value
				continue
			}
			rowIdx = append(rowIdx, t.Row)
			values = append(values, t.Value)
			prevRow = t.Row
		}
	}
	finalColPtr[n] = len(rowIdx)

	m := &Matrix{
		Dim:    b.dim,
		ColPtr: finalColPtr,
		RowIdx: rowIdx,
		Values: values,
	}
	if err := m.CheckInvariants(); err != nil {
		return nil, err
	}
	return m, nil
}

// bucketByColumn partitions triplets in place (within the slice the
// Builder owns) so that all entries of column c occupy
// triplets[result[c]:result[c+1]), and returns those boundaries. This is
// the classic counting-sort bucketing step of a COO-to-CSC conversion.
func bucketByColumn(triplets []Triplet, ncols int) ([]int, error) {
	count := make([]int, ncols+1)
	for _, t := range triplets {
		if t.Col+1 >= len(count) {
			return nil, fmt.Errorf("csc: triplet column %d out of range: %w", t.Col, ErrOutOfRange)
		}
		count[t.Col+1]++
	}
	for c := 0; c < ncols; c++ {
		count[c+1] += count[c]
	}

	sorted := make([]Triplet, len(triplets))
	cursor := make([]int, ncols)
	copy(cursor, count[:ncols])
	for _, t := range triplets {
		pos := cursor[t.Col]
		sorted[pos] = t
		cursor[t.Col]++
	}
	copy(triplets, sorted)

	return count, nil
}

// Reserve grows the triplet backing array to hold at least n more pushes
// without reallocating, letting a stamping loop that can cheaply predict
// its total contribution count avoid the builder's growth entirely.
func (b *Builder) Reserve(n int) {
	if cap(b.triplets)-len(b.triplets) >= n {
		return
	}
	if err := CheckOverflow("csc.Builder.Reserve", n, tripletSize); err != nil {
		panic(err)
	}
	grown := make([]Triplet, len(b.triplets), len(b.triplets)+n)
	copy(grown, b.triplets)
	b.triplets = grown
}

// MaxSafeLen is the largest slice length representable without signed
// overflow on this platform, used by call sites that multiply user-
// supplied dimensions before allocating (see this package's Builder and
// package klu for its use guarding workspace sizing).
const MaxSafeLen = int(^uint(0) >> 1)

// CheckOverflow reports ErrOverflow, wrapped with context, if a*b would
// overflow the platform's address width.
func CheckOverflow(context string, a, b int) error {
	if a == 0 || b == 0 {
		return nil
	}
	if a > MaxSafeLen/b {
		return fmt.Errorf("%s: %w", context, ErrOverflow)
	}
	return nil
}
