package klu_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idobenamram/spicy-sub001/csc"
	"github.com/idobenamram/spicy-sub001/klu"
)

// buildCSC is a small triplet-to-Matrix helper local to this test file.
func buildCSC(t *testing.T, n int, entries [][3]float64) *csc.Matrix {
	t.Helper()
	b := csc.NewBuilder(n, n, len(entries))
	for _, e := range entries {
		b.Push(int(e[0]), int(e[1]), e[2])
	}
	m, err := b.BuildCSC()
	require.NoError(t, err)
	return m
}

// TestDiagonalSolve is S1: a 2x2 diagonal system.
func TestDiagonalSolve(t *testing.T) {
	a := buildCSC(t, 2, [][3]float64{{0, 0, 2}, {1, 1, 3}})

	f := klu.New(nil)
	require.NoError(t, f.Analyze(a, klu.DefaultOptions()))
	require.NoError(t, f.Factor(a))

	b := []float64{4, 9}
	require.NoError(t, f.Solve(b, 1, 2))
	assert.InDelta(t, 2.0, b[0], 1e-12)
	assert.InDelta(t, 3.0, b[1], 1e-12)
}

// TestChainSolve is S2: a lower bidiagonal 5x5 chain, factored and solved
// against a right-hand side chosen so x is the all-ones vector.
func TestChainSolve(t *testing.T) {
	entries := [][3]float64{
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {2, 1, 1}, {2, 2, 1},
		{3, 2, 1}, {3, 3, 1}, {4, 3, 1}, {4, 4, 1},
	}
	a := buildCSC(t, 5, entries)

	f := klu.New(nil)
	require.NoError(t, f.Analyze(a, klu.DefaultOptions()))
	require.NoError(t, f.Factor(a))
	assert.Equal(t, 5, f.NBlocks())

	// x = [1,1,1,1,1] => b[i] = row sum.
	b := []float64{1, 2, 2, 2, 2}
	require.NoError(t, f.Solve(b, 1, 5))
	for i, v := range b {
		assert.InDeltaf(t, 1.0, v, 1e-9, "x[%d]", i)
	}
}

// TestStructurallySingular is S3: column 2 of a 3x3 matrix is all zero.
func TestStructurallySingular(t *testing.T) {
	a := buildCSC(t, 3, [][3]float64{{0, 0, 1}, {1, 1, 1}})

	f := klu.New(nil)
	require.NoError(t, f.Analyze(a, klu.DefaultOptions()))

	err := f.Factor(a)
	require.Error(t, err)
	var sing *klu.StructurallySingularError
	assert.True(t, errors.As(err, &sing))
}

// TestRefactorIsIdempotent is S5/invariant 6: two successive Refactor
// calls with identical values must yield bitwise-identical solves.
func TestRefactorIsIdempotent(t *testing.T) {
	a := buildCSC(t, 3, [][3]float64{
		{0, 0, 4}, {0, 1, 1}, {1, 0, 2}, {1, 1, 3}, {2, 2, 5},
	})

	f := klu.New(nil)
	require.NoError(t, f.Analyze(a, klu.DefaultOptions()))
	require.NoError(t, f.Factor(a))

	b1 := []float64{1, 2, 3}
	require.NoError(t, f.Solve(b1, 1, 3))

	require.NoError(t, f.Refactor(a))
	b2 := []float64{1, 2, 3}
	require.NoError(t, f.Solve(b2, 1, 3))

	assert.Equal(t, b1, b2)
}

// TestNewtonLikeLoop is S5: analyze once, refactor/solve repeatedly over a
// sequence of matrices sharing the same pattern but different values, as
// a Newton-Raphson driver would.
func TestNewtonLikeLoop(t *testing.T) {
	pattern := func(v00, v11 float64) *csc.Matrix {
		return buildCSC(t, 2, [][3]float64{{0, 0, v00}, {1, 1, v11}})
	}

	f := klu.New(nil)
	require.NoError(t, f.Analyze(pattern(1, 1), klu.DefaultOptions()))

	for i := 1; i <= 10; i++ {
		a := pattern(float64(i), float64(i+1))
		require.NoError(t, f.Refactor(a))
		b := []float64{float64(i), float64(i + 1)}
		require.NoError(t, f.Solve(b, 1, 2))
		assert.InDelta(t, 1.0, b[0], 1e-9)
		assert.InDelta(t, 1.0, b[1], 1e-9)
	}
}

// TestIllConditionedPivotRequiresSwap is S6: without pivoting the tiny
// diagonal entry would be used as the pivot and the solve would lose all
// accuracy; with PivotTolerance=0.1 a swap is forced and the solve stays
// accurate.
func TestIllConditionedPivotRequiresSwap(t *testing.T) {
	const eps = 1e-18
	a := buildCSC(t, 2, [][3]float64{{0, 0, eps}, {0, 1, 1}, {1, 0, 1}, {1, 1, 1}})

	opts := klu.DefaultOptions()
	opts.PivotTolerance = 0.1
	f := klu.New(nil)
	require.NoError(t, f.Analyze(a, opts))
	require.NoError(t, f.Factor(a))

	// A*x = b with b chosen for x = [1, 1]: row0 = eps+1, row1 = 2.
	b := []float64{eps + 1, 2}
	require.NoError(t, f.Solve(b, 1, 2))
	assert.InDelta(t, 1.0, b[0], 1e-6)
	assert.InDelta(t, 1.0, b[1], 1e-6)
}

// TestSolveValidatesLeadingDimension covers the Argument error family.
func TestSolveValidatesLeadingDimension(t *testing.T) {
	a := buildCSC(t, 2, [][3]float64{{0, 0, 1}, {1, 1, 1}})
	f := klu.New(nil)
	require.NoError(t, f.Analyze(a, klu.DefaultOptions()))
	require.NoError(t, f.Factor(a))

	b := []float64{1, 2}
	err := f.Solve(b, 1, 1)
	var dimErr *klu.InvalidLeadingDimensionError
	require.ErrorAs(t, err, &dimErr)
}

// TestSolveValidatesRhsLength covers RhsTooSmallError.
func TestSolveValidatesRhsLength(t *testing.T) {
	a := buildCSC(t, 2, [][3]float64{{0, 0, 1}, {1, 1, 1}})
	f := klu.New(nil)
	require.NoError(t, f.Analyze(a, klu.DefaultOptions()))
	require.NoError(t, f.Factor(a))

	b := []float64{1}
	err := f.Solve(b, 1, 2)
	var rhsErr *klu.RhsTooSmallError
	require.ErrorAs(t, err, &rhsErr)
}

// TestSolveBeforeFactorIsRejected covers the State error family.
func TestSolveBeforeFactorIsRejected(t *testing.T) {
	a := buildCSC(t, 2, [][3]float64{{0, 0, 1}, {1, 1, 1}})
	f := klu.New(nil)
	require.NoError(t, f.Analyze(a, klu.DefaultOptions()))

	err := f.Solve(make([]float64, 2), 1, 2)
	var notFactorized *klu.NumericNotFactorizedError
	require.ErrorAs(t, err, &notFactorized)
}

// TestFactorBeforeAnalyzeIsRejected covers SymbolicNotAnalyzedError.
func TestFactorBeforeAnalyzeIsRejected(t *testing.T) {
	a := buildCSC(t, 2, [][3]float64{{0, 0, 1}, {1, 1, 1}})
	f := klu.New(nil)

	err := f.Factor(a)
	var notAnalyzed *klu.SymbolicNotAnalyzedError
	require.ErrorAs(t, err, &notAnalyzed)
}

// TestPatternChangeRequiresReanalyze covers PatternChangedError.
func TestPatternChangeRequiresReanalyze(t *testing.T) {
	a := buildCSC(t, 2, [][3]float64{{0, 0, 1}, {1, 1, 1}})
	f := klu.New(nil)
	require.NoError(t, f.Analyze(a, klu.DefaultOptions()))

	changed := buildCSC(t, 2, [][3]float64{{0, 0, 1}, {0, 1, 2}, {1, 1, 1}})
	err := f.Factor(changed)
	var patternErr *klu.PatternChangedError
	require.ErrorAs(t, err, &patternErr)
}

// TestMultipleRhsColumns solves a system with nrhs=2 in one call, each
// column independent.
func TestMultipleRhsColumns(t *testing.T) {
	a := buildCSC(t, 2, [][3]float64{{0, 0, 2}, {1, 1, 4}})
	f := klu.New(nil)
	require.NoError(t, f.Analyze(a, klu.DefaultOptions()))
	require.NoError(t, f.Factor(a))

	// column-major, leading dim 2, two RHS columns.
	b := []float64{4, 8, 2, 4}
	require.NoError(t, f.Solve(b, 2, 2))
	assert.InDelta(t, 2.0, b[0], 1e-12)
	assert.InDelta(t, 2.0, b[1], 1e-12)
	assert.InDelta(t, 1.0, b[2], 1e-12)
	assert.InDelta(t, 1.0, b[3], 1e-12)
}
