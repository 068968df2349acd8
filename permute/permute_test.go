package permute_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idobenamram/spicy-sub001/permute"
)

func TestFlipUnflipRoundTrip(t *testing.T) {
	for _, x := range []int{0, 1, 5, 100} {
		f := permute.Flip(x)
		assert.True(t, permute.IsFlipped(f))
		assert.Equal(t, x, permute.Unflip(f))
	}
}

func TestUnflipIsNoopOnPlainIndex(t *testing.T) {
	assert.Equal(t, 7, permute.Unflip(7))
	assert.False(t, permute.IsFlipped(7))
}

func TestEmptyIsNotFlipped(t *testing.T) {
	assert.False(t, permute.IsFlipped(permute.Empty))
}

func TestIsPermutation(t *testing.T) {
	assert.True(t, permute.IsPermutation([]int{0, 1, 2}))
	assert.True(t, permute.IsPermutation([]int{2, permute.Flip(0), 1}))
	assert.False(t, permute.IsPermutation([]int{0, 0, 2}))
	assert.False(t, permute.IsPermutation([]int{0, 2}))
}
