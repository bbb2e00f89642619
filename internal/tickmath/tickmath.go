package tickmath

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"rateVamm/internal/fixedpoint"
)

// Ticks index a geometric price grid: price(t) = 1.0001^t. The bounds cover
// fixed rates from roughly 0.001 to 1000 in price terms.
const (
	MinTick = -69100
	MaxTick = 69100

	// MaxTickSpacing bounds the spacing accepted at pool creation.
	MaxTickSpacing = 16384

	tickBase = 1.0001
)

var (
	// MinSqrtPrice and MaxSqrtPrice are the sqrt prices at the tick bounds.
	MinSqrtPrice = SqrtPriceAtTick(MinTick)
	MaxSqrtPrice = SqrtPriceAtTick(MaxTick)
)

// SqrtPriceAtTick returns sqrt(1.0001^tick) as a decimal.
func SqrtPriceAtTick(tick int) decimal.Decimal {
	return decimal.NewFromFloat(math.Pow(tickBase, float64(tick)/2))
}

// PriceAtTick returns 1.0001^tick as a decimal.
func PriceAtTick(tick int) decimal.Decimal {
	return decimal.NewFromFloat(math.Pow(tickBase, float64(tick)))
}

// TickAtSqrtPrice returns the largest tick whose sqrt price does not exceed
// the given sqrt price. Inverse of SqrtPriceAtTick up to tick granularity.
func TickAtSqrtPrice(sqrtPrice decimal.Decimal) (int, error) {
	if sqrtPrice.LessThan(MinSqrtPrice) || sqrtPrice.GreaterThan(MaxSqrtPrice) {
		return 0, fmt.Errorf("sqrt price %s outside [%s, %s]", sqrtPrice, MinSqrtPrice, MaxSqrtPrice)
	}
	p, _ := sqrtPrice.Float64()
	tick := int(math.Floor(2 * math.Log(p) / math.Log(tickBase)))

	// The float log is accurate to well under one tick; correct the
	// boundary cases against the forward conversion.
	for tick < MaxTick && SqrtPriceAtTick(tick+1).LessThanOrEqual(sqrtPrice) {
		tick++
	}
	for tick > MinTick && SqrtPriceAtTick(tick).GreaterThan(sqrtPrice) {
		tick--
	}
	return tick, nil
}

// CheckTickRange validates a half-open position range [lower, upper).
func CheckTickRange(lower, upper int) error {
	if lower >= upper {
		return fmt.Errorf("tick lower %d must be below tick upper %d", lower, upper)
	}
	if lower < MinTick {
		return fmt.Errorf("tick lower %d below minimum %d", lower, MinTick)
	}
	if upper > MaxTick {
		return fmt.Errorf("tick upper %d above maximum %d", upper, MaxTick)
	}
	return nil
}

// MaxLiquidityPerTick spreads the maximum representable liquidity across
// every usable tick for the given spacing.
func MaxLiquidityPerTick(tickSpacing int) decimal.Decimal {
	minUsable := (MinTick / tickSpacing) * tickSpacing
	maxUsable := (MaxTick / tickSpacing) * tickSpacing
	numTicks := (maxUsable-minUsable)/tickSpacing + 1
	return fixedpoint.MaxUint128().DivRound(decimal.NewFromInt(int64(numTicks)), 0)
}
