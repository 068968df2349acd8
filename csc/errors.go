// Package csc provides a Compressed Sparse Column matrix type and a
// triplet builder, modeled on the compressed-sparse representations used
// throughout the gonum sparse-matrix ecosystem (indptr/ind/data), with the
// column-pointer/row-index/values naming used by the rest of this solver.
package csc

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Matrix and Builder. Callers should use
// errors.Is against these values; context is attached with fmt.Errorf's
// %w rather than by defining new error types per call site.
var (
	// ErrNonSquare is returned where an operation requires a square matrix.
	ErrNonSquare = errors.New("csc: matrix is not square")

	// ErrOutOfRange indicates a row or column index outside [0, n).
	ErrOutOfRange = errors.New("csc: index out of range")

	// ErrBadColPtrLength indicates col_ptr does not have length ncols+1.
	ErrBadColPtrLength = errors.New("csc: invalid col_ptr length")

	// ErrBadColPtr indicates col_ptr is not monotonically nondecreasing,
	// or its endpoints don't match 0 and nnz (I2/I3).
	ErrBadColPtr = errors.New("csc: invalid col_ptr")

	// ErrLengthMismatch indicates row_idx and values have different lengths.
	ErrLengthMismatch = errors.New("csc: row_idx/values length mismatch")

	// ErrRowsNotIncreasing indicates row indices within a column are not
	// strictly increasing (I4).
	ErrRowsNotIncreasing = errors.New("csc: row indices not strictly increasing within column")

	// ErrRowOutOfRange indicates a row index is outside [0, nrows) (I5).
	ErrRowOutOfRange = errors.New("csc: row index out of range")

	// ErrOverflow is returned when a size computation would overflow the
	// platform's address width.
	ErrOverflow = errors.New("csc: size computation overflow")
)

// InvariantError reports which of I1-I5 failed and where, wrapping one of
// the sentinels above so callers can still use errors.Is.
type InvariantError struct {
	Index int // column or position at which the violation was detected
	Err   error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("csc: invariant violation at index %d: %v", e.Index, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }

func invariantErr(index int, err error) error {
	return &InvariantError{Index: index, Err: err}
}
