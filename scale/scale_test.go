package scale_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idobenamram/spicy-sub001/csc"
	"github.com/idobenamram/spicy-sub001/scale"
)

func build(t *testing.T, n int, entries []csc.Triplet) *csc.Matrix {
	t.Helper()
	b := csc.NewBuilder(n, n, len(entries))
	for _, e := range entries {
		b.Push(e.Row, e.Col, e.Value)
	}
	m, err := b.BuildCSC()
	require.NoError(t, err)
	return m
}

func TestComputeSum(t *testing.T) {
	a := build(t, 2, []csc.Triplet{{Row: 0, Col: 0, Value: -2}, {Row: 1, Col: 0, Value: 3}, {Row: 1, Col: 1, Value: 4}})
	rs, err := scale.Compute(a, scale.Sum, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 4}, rs)
}

func TestComputeMax(t *testing.T) {
	a := build(t, 2, []csc.Triplet{{Row: 0, Col: 0, Value: -2}, {Row: 1, Col: 0, Value: 3}, {Row: 1, Col: 1, Value: 4}})
	rs, err := scale.Compute(a, scale.Max, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, rs)
}

func TestComputeNoneReturnsOnes(t *testing.T) {
	a := build(t, 2, []csc.Triplet{{Row: 0, Col: 0, Value: 7}})
	rs, err := scale.Compute(a, scale.None, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, rs)
}

func TestComputeEmptyColumnYieldsOne(t *testing.T) {
	a := build(t, 2, []csc.Triplet{{Row: 0, Col: 0, Value: 5}})
	rs, err := scale.Compute(a, scale.Sum, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 1}, rs)
}

func TestComputeDetectsDuplicateWithWorkspace(t *testing.T) {
	// Hand-built CSC violating I4 (two entries at row 0 within column 0),
	// bypassing Builder's own coalescing.
	a := csc.NewMatrix(2, 2, []int{0, 2, 2}, []int{0, 0}, []float64{1, 2})
	ws := scale.NewDupWorkspace(2)
	_, err := scale.Compute(a, scale.Sum, ws)
	require.Error(t, err)
	var dupErr *scale.DuplicateEntryError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, 0, dupErr.Row)
	assert.Equal(t, 0, dupErr.Col)
}

func TestComputeWorkspaceReusableAcrossCalls(t *testing.T) {
	a1 := build(t, 2, []csc.Triplet{{Row: 0, Col: 0, Value: 1}, {Row: 1, Col: 1, Value: 1}})
	a2 := build(t, 2, []csc.Triplet{{Row: 0, Col: 0, Value: 2}, {Row: 1, Col: 1, Value: 2}})
	ws := scale.NewDupWorkspace(2)
	for i := 0; i < 5; i++ {
		_, err := scale.Compute(a1, scale.Sum, ws)
		require.NoError(t, err)
		_, err = scale.Compute(a2, scale.Sum, ws)
		require.NoError(t, err)
	}
}

func TestComputeIntoReusesBuffer(t *testing.T) {
	a1 := build(t, 2, []csc.Triplet{{Row: 0, Col: 0, Value: -2}, {Row: 1, Col: 1, Value: 4}})
	a2 := build(t, 2, []csc.Triplet{{Row: 0, Col: 0, Value: -3}, {Row: 1, Col: 1, Value: 5}})

	dst := make([]float64, 2)
	backing := &dst[0]

	rs, err := scale.ComputeInto(a1, scale.Sum, nil, dst)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, rs)
	assert.Same(t, backing, &rs[0])

	rs, err = scale.ComputeInto(a2, scale.Sum, nil, rs)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 5}, rs)
	assert.Same(t, backing, &rs[0])
}

func TestComputeIntoAllocatesWhenDstTooSmall(t *testing.T) {
	a := build(t, 2, []csc.Triplet{{Row: 0, Col: 0, Value: 1}, {Row: 1, Col: 1, Value: 1}})
	rs, err := scale.ComputeInto(a, scale.Sum, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, rs)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "Sum", scale.Sum.String())
	assert.Equal(t, "Max", scale.Max.String())
	assert.Equal(t, "None", scale.None.String())
}
