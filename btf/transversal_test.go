package btf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idobenamram/spicy-sub001/csc"
	"github.com/idobenamram/spicy-sub001/permute"
)

func build(t *testing.T, n int, entries [][2]int) *csc.Matrix {
	t.Helper()
	b := csc.NewBuilder(n, n, len(entries))
	for _, e := range entries {
		b.Push(e[0], e[1], 1.0)
	}
	m, err := b.BuildCSC()
	require.NoError(t, err)
	return m
}

func TestMaxTransversalFindsPerfectMatchOnIdentityPattern(t *testing.T) {
	a := build(t, 3, [][2]int{{0, 0}, {1, 1}, {2, 2}})
	qCol := make([]int, 3)
	got := MaxTransversal(a, qCol)
	assert.Equal(t, 3, got)
	assert.Equal(t, []int{0, 1, 2}, qCol)
}

func TestMaxTransversalCannotMatchTwoColumnsSharingOneRow(t *testing.T) {
	// Both columns only touch row 0; a perfect match is impossible, and
	// no augmenting path exists for the second column, so only one of the
	// two is matched.
	a := build(t, 2, [][2]int{{0, 0}, {0, 1}})
	qCol := make([]int, 2)
	got := MaxTransversal(a, qCol)
	assert.Equal(t, 1, got)
}

func TestMaxTransversalRequiresAugmentPathAcrossSharedRow(t *testing.T) {
	// col0: rows {0,1}; col1: row {0}. Cheap-match gives col0->row0,
	// col1 has no free row left without displacing col0 via augment.
	a := build(t, 2, [][2]int{{0, 0}, {1, 0}, {0, 1}})
	qCol := make([]int, 2)
	got := MaxTransversal(a, qCol)
	assert.Equal(t, 2, got)
	assert.True(t, permute.IsPermutation(qCol))
}

func TestMaxTransversalReportsStructuralSingularityOnEmptyColumn(t *testing.T) {
	a := build(t, 3, [][2]int{{0, 0}, {1, 1}})
	qCol := make([]int, 3)
	got := MaxTransversal(a, qCol)
	assert.Equal(t, 2, got)
	assert.Equal(t, permute.Empty, qCol[2])
}

func TestMaxTransversalIsDeterministic(t *testing.T) {
	a := build(t, 4, [][2]int{
		{0, 0}, {1, 0}, {1, 1}, {2, 1}, {2, 2}, {0, 3}, {3, 3},
	})
	q1 := make([]int, 4)
	n1 := MaxTransversal(a, q1)
	q2 := make([]int, 4)
	n2 := MaxTransversal(a, q2)
	assert.Equal(t, n1, n2)
	assert.Equal(t, q1, q2)
}
