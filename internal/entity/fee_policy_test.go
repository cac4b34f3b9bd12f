package entity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeePolicyFeeFor(t *testing.T) {
	t.Run("takes the basis point cut", func(t *testing.T) {
		policy := FeePolicy{FeePercentBps: 250, MinimumFee: big.NewInt(0)}

		assert.Equal(t, "250", policy.FeeFor(big.NewInt(10000)).String())
		assert.Equal(t, "25", policy.FeeFor(big.NewInt(1000)).String())
	})

	t.Run("floors the cut", func(t *testing.T) {
		policy := FeePolicy{FeePercentBps: 250, MinimumFee: big.NewInt(0)}

		// 999 * 250 / 10000 = 24.975
		assert.Equal(t, "24", policy.FeeFor(big.NewInt(999)).String())
	})

	t.Run("applies the minimum when the cut is below it", func(t *testing.T) {
		policy := FeePolicy{FeePercentBps: 300, MinimumFee: big.NewInt(1000)}

		// Twice the minimum at 3% is still only 60; the floor wins.
		assert.Equal(t, "1000", policy.FeeFor(big.NewInt(2000)).String())
	})

	t.Run("lets the cut through once it clears the minimum", func(t *testing.T) {
		policy := FeePolicy{FeePercentBps: 300, MinimumFee: big.NewInt(1000)}

		assert.Equal(t, "1500", policy.FeeFor(big.NewInt(50000)).String())
	})

	t.Run("handles amounts past 64 bits", func(t *testing.T) {
		policy := FeePolicy{FeePercentBps: 250, MinimumFee: big.NewInt(0)}

		price, _ := new(big.Int).SetString("100000000000000000000", 10)
		assert.Equal(t, "2500000000000000000", policy.FeeFor(price).String())
	})

	t.Run("a full cut takes the whole price", func(t *testing.T) {
		policy := FeePolicy{FeePercentBps: 10000, MinimumFee: big.NewInt(0)}

		assert.Equal(t, "5000", policy.FeeFor(big.NewInt(5000)).String())
	})

	t.Run("never hands back the policy's own minimum", func(t *testing.T) {
		policy := FeePolicy{FeePercentBps: 250, MinimumFee: big.NewInt(1000)}

		fee := policy.FeeFor(big.NewInt(100))
		fee.SetInt64(0)

		assert.Equal(t, "1000", policy.MinimumFee.String())
	})
}
