package entity

import (
	"math/big"
)

// FeePolicy holds the platform fee parameters and the admin allowed to change
// them. Orders snapshot the computed fee when they are placed, so edits here
// never reprice an order already in flight.
type FeePolicy struct {
	Admin         string
	FeePercentBps uint64
	MinimumFee    *big.Int
}

// FeeFor returns the platform fee for a sale price: the basis-point cut,
// floored at MinimumFee.
func (p FeePolicy) FeeFor(price *big.Int) *big.Int {
	fee := new(big.Int).Mul(price, new(big.Int).SetUint64(p.FeePercentBps))
	fee.Div(fee, big.NewInt(10000))

	if fee.Cmp(p.MinimumFee) < 0 {
		return new(big.Int).Set(p.MinimumFee)
	}

	return fee
}
