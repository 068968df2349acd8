package klu

import "fmt"

// This file implements the full error taxonomy from spec §7: Structural,
// Argument, State, and Resource errors, each a distinct type so callers
// can type-switch or errors.As to the one they care about, matching the
// sentinel/typed-error split this module's ambient stack follows
// throughout (SPEC_FULL.md §2).

// NonSquareMatrixError reports that Analyze was given a non-square
// matrix; the BTF/AMD/LU pipeline is only defined for square A.
type NonSquareMatrixError struct {
	NRows, NCols int
}

func (e *NonSquareMatrixError) Error() string {
	return fmt.Sprintf("klu: non-square matrix: %d rows, %d cols", e.NRows, e.NCols)
}

// PatternChangedError reports that Factor was given a matrix whose
// nonzero pattern no longer matches the one Analyze saw, violating the
// symbolic-reuse contract Factor/Refactor depend on (spec §3: "a pattern
// change invalidates the factorization and requires re-analysis").
type PatternChangedError struct{}

func (e *PatternChangedError) Error() string {
	return "klu: matrix pattern changed since Analyze; call Analyze again"
}

// StructurallySingularError reports that max transversal found fewer
// matches than the matrix dimension and at least one block's diagonal is
// therefore structurally forced to zero.
type StructurallySingularError struct{}

func (e *StructurallySingularError) Error() string {
	return "klu: matrix is structurally singular"
}

// SingularAtBlockError reports that Factor's numeric LU could not find an
// acceptable pivot within the given block.
type SingularAtBlockError struct {
	Block int
}

func (e *SingularAtBlockError) Error() string {
	return fmt.Sprintf("klu: singular at block %d", e.Block)
}

// DuplicateEntryError reports a repeated (row, col) position found by the
// scaling pass's duplicate-detection workspace.
type DuplicateEntryError struct {
	Col, Row int
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("klu: duplicate entry at col %d, row %d", e.Col, e.Row)
}

// InvalidLeadingDimensionError reports that Solve's leading dimension d is
// smaller than the system size n.
type InvalidLeadingDimensionError struct {
	D, N int
}

func (e *InvalidLeadingDimensionError) Error() string {
	return fmt.Sprintf("klu: invalid leading dimension %d for n=%d", e.D, e.N)
}

// RhsTooSmallError reports that Solve's rhs buffer is shorter than
// d*nrhs.
type RhsTooSmallError struct {
	Required, D, Nrhs, Actual int
}

func (e *RhsTooSmallError) Error() string {
	return fmt.Sprintf("klu: rhs buffer too small: need %d (d=%d, nrhs=%d), got %d", e.Required, e.D, e.Nrhs, e.Actual)
}

// SymbolicNotAnalyzedError reports that Factor or Solve was called before
// Analyze produced a symbolic pattern.
type SymbolicNotAnalyzedError struct{}

func (e *SymbolicNotAnalyzedError) Error() string {
	return "klu: symbolic analysis has not been run"
}

// NumericNotFactorizedError reports that Solve was called before Factor
// produced a numeric factorization.
type NumericNotFactorizedError struct{}

func (e *NumericNotFactorizedError) Error() string {
	return "klu: numeric factorization has not been run"
}

// OverflowError reports that a size computation (e.g. nnz * sizeof)
// exceeded the address width, per spec §7's Overflow{context}.
type OverflowError struct {
	Context string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("klu: overflow: %s", e.Context)
}

// TooLargeError reports a hard internal limit was exceeded.
type TooLargeError struct {
	Context string
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("klu: too large: %s", e.Context)
}
