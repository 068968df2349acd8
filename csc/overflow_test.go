package csc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idobenamram/spicy-sub001/csc"
)

func TestCheckOverflowAllowsSafeSizes(t *testing.T) {
	assert.NoError(t, csc.CheckOverflow("ctx", 10, 20))
	assert.NoError(t, csc.CheckOverflow("ctx", 0, csc.MaxSafeLen))
}

func TestCheckOverflowDetectsOverflow(t *testing.T) {
	err := csc.CheckOverflow("ctx", csc.MaxSafeLen, 2)
	assert.ErrorIs(t, err, csc.ErrOverflow)
}

func TestNewBuilderPanicsOnHugeNNZHint(t *testing.T) {
	assert.Panics(t, func() {
		csc.NewBuilder(1, 1, csc.MaxSafeLen)
	})
}

func TestReservePanicsOnHugeGrowth(t *testing.T) {
	b := csc.NewBuilder(1, 1, 0)
	assert.Panics(t, func() {
		b.Reserve(csc.MaxSafeLen)
	})
}
