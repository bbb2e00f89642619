// Package fixedpoint defines the numeric policy of the engine: 128-bit range
// checks for liquidity values and the decimal division precision.
//
// Importing this package raises shopspring/decimal's process-global
// DivisionPrecision to 38 fractional digits. Every engine package routes its
// decimals through the checks here, so the engine sees one consistent
// precision; any other consumer of shopspring/decimal linked into the same
// binary is subject to the same setting.
package fixedpoint

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrOverflow signals a value outside the representable range of the
// requested width. The engine never saturates silently.
var ErrOverflow = errors.New("fixed-point overflow")

var (
	maxInt128  decimal.Decimal
	minInt128  decimal.Decimal
	maxUint128 decimal.Decimal
)

func init() {
	one := big.NewInt(1)
	i128 := new(big.Int).Lsh(one, 127)
	u128 := new(big.Int).Lsh(one, 128)

	maxInt128 = decimal.NewFromBigInt(new(big.Int).Sub(i128, one), 0)
	minInt128 = decimal.NewFromBigInt(new(big.Int).Neg(i128), 0)
	maxUint128 = decimal.NewFromBigInt(new(big.Int).Sub(u128, one), 0)

	// Growth accumulators divide token flow by active liquidity; the
	// default division precision is too coarse for per-unit-liquidity
	// attribution to survive round trips. Process-global, see the package
	// comment.
	if decimal.DivisionPrecision < 38 {
		decimal.DivisionPrecision = 38
	}
}

// CheckInt128 fails if d does not fit the signed 128-bit liquidity width.
func CheckInt128(d decimal.Decimal) error {
	if d.GreaterThan(maxInt128) || d.LessThan(minInt128) {
		return fmt.Errorf("%w: %s exceeds int128", ErrOverflow, d)
	}
	return nil
}

// CheckUint128 fails if d is negative or does not fit 128 unsigned bits.
func CheckUint128(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrOverflow, d)
	}
	if d.GreaterThan(maxUint128) {
		return fmt.Errorf("%w: %s exceeds uint128", ErrOverflow, d)
	}
	return nil
}

// MaxUint128 returns the largest representable unsigned liquidity value.
func MaxUint128() decimal.Decimal {
	return maxUint128
}

// AddLiquidityDelta applies a signed delta to an unsigned liquidity amount,
// failing on underflow below zero or overflow past uint128.
func AddLiquidityDelta(liquidity, delta decimal.Decimal) (decimal.Decimal, error) {
	next := liquidity.Add(delta)
	if next.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: liquidity %s + delta %s is negative", ErrOverflow, liquidity, delta)
	}
	if err := CheckUint128(next); err != nil {
		return decimal.Decimal{}, err
	}
	return next, nil
}
