package model

import (
	"math"
	"math/big"
	"math/bits"

	"revenue-split-engine/internal/apperrors"
)

// MulDiv64 computes (a * b) / c with a 128-bit intermediate product so the
// multiplication cannot overflow. Division truncates (floor). Panics if
// c == 0; every caller divides by Scale or another validated constant.
func MulDiv64(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi == 0 {
		return lo / c
	}
	quo, _ := bits.Div64(hi, lo, c)
	return quo
}

// priceUnit is the normalization base for oracle prices: every quote is
// scaled to 18 fractional digits before conversion arithmetic.
var priceUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// PriceUnit returns the 1e18 normalization base as a fresh big.Int.
func PriceUnit() *big.Int {
	return new(big.Int).Set(priceUnit)
}

// NormalizePrice scales a raw oracle price with the given number of
// fractional digits to 18 fractional digits.
func NormalizePrice(price int64, decimals uint8) *big.Int {
	p := big.NewInt(price)
	switch {
	case decimals < 18:
		exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(18-decimals)), nil)
		p.Mul(p, exp)
	case decimals > 18:
		exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals-18)), nil)
		p.Quo(p, exp)
	}
	return p
}

// MulDivBig computes (amount * num) / den in arbitrary precision and
// returns the truncated result as a uint64 amount. Amounts are constrained
// to 63 bits so they round-trip sqlite INTEGER columns; anything larger is
// rejected with ErrAmountOverflow.
func MulDivBig(amount uint64, num, den *big.Int) (uint64, error) {
	v := new(big.Int).SetUint64(amount)
	v.Mul(v, num)
	v.Quo(v, den)
	if !v.IsUint64() || v.Uint64() > math.MaxInt64 {
		return 0, apperrors.ErrAmountOverflow
	}
	return v.Uint64(), nil
}
