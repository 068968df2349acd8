package csc_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idobenamram/spicy-sub001/csc"
)

func byRowCol(t []csc.Triplet) {
	sort.Slice(t, func(i, j int) bool {
		if t[i].Col != t[j].Col {
			return t[i].Col < t[j].Col
		}
		return t[i].Row < t[j].Row
	})
}

func TestBuilderRoundTrip(t *testing.T) {
	b := csc.NewBuilder(3, 3, 8)
	b.Push(0, 0, 2)
	b.Push(1, 0, 1)
	b.Push(1, 1, 3)
	b.Push(2, 2, 4)

	m, err := b.BuildCSC()
	require.NoError(t, err)
	require.NoError(t, m.CheckInvariants())

	got := m.ToTriplets()
	byRowCol(got)
	want := []csc.Triplet{{Row: 0, Col: 0, Value: 2}, {Row: 1, Col: 0, Value: 1}, {Row: 1, Col: 1, Value: 3}, {Row: 2, Col: 2, Value: 4}}
	assert.Equal(t, want, got)
}

func TestBuilderCoalescesDuplicates(t *testing.T) {
	b := csc.NewBuilder(2, 2, 4)
	b.Push(1, 1, 3.0)
	b.Push(1, 1, 3.0)

	m, err := b.BuildCSC()
	require.NoError(t, err)
	assert.Equal(t, 6.0, m.At(1, 1))
	assert.Equal(t, 1, m.NNZ())
}

func TestBuilderPushPanicsOutOfRange(t *testing.T) {
	b := csc.NewBuilder(2, 2, 1)
	assert.Panics(t, func() { b.Push(2, 0, 1) })
	assert.Panics(t, func() { b.Push(0, 2, 1) })
}

func TestCheckInvariantsDetectsNonIncreasingRows(t *testing.T) {
	m := csc.NewMatrix(2, 1, []int{0, 2}, []int{1, 0}, []float64{1, 2})
	err := m.CheckInvariants()
	require.Error(t, err)
	var ie *csc.InvariantError
	require.True(t, errors.As(err, &ie))
	assert.ErrorIs(t, err, csc.ErrRowsNotIncreasing)
}

func TestCheckInvariantsDetectsBadColPtrLength(t *testing.T) {
	m := csc.NewMatrix(2, 2, []int{0, 1}, []int{0}, []float64{1})
	assert.ErrorIs(t, m.CheckInvariants(), csc.ErrBadColPtrLength)
}

func TestCheckInvariantsDetectsOutOfRangeRow(t *testing.T) {
	m := csc.NewMatrix(2, 1, []int{0, 1}, []int{5}, []float64{1})
	assert.ErrorIs(t, m.CheckInvariants(), csc.ErrRowOutOfRange)
}

func TestAtReturnsZeroForUnstoredEntry(t *testing.T) {
	b := csc.NewBuilder(3, 3, 1)
	b.Push(0, 0, 5)
	m, err := b.BuildCSC()
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.At(2, 2))
	assert.Equal(t, 5.0, m.At(0, 0))
}

func TestAtPanicsOutOfRange(t *testing.T) {
	b := csc.NewBuilder(2, 2, 0)
	m, err := b.BuildCSC()
	require.NoError(t, err)
	assert.Panics(t, func() { m.At(5, 0) })
}
