package vamm

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateOracle supplies the current floating-rate index used to convert base
// balances into fixed cash-flow terms. Implementations live outside the
// engine; it only assumes the index is a positive fixed-point decimal.
type RateOracle interface {
	CurrentIndex() (decimal.Decimal, error)
}

// StepResult is the outcome of a single price step along the curve.
type StepResult struct {
	// NextPrice is the sqrt price after consuming the step.
	NextPrice decimal.Decimal
	// AmountIn is the base absorbed by the curve, AmountOut the quote
	// released, or vice versa depending on direction. Both non-negative.
	AmountIn  decimal.Decimal
	AmountOut decimal.Decimal
}

// StepPricer computes one price step toward a target given available
// liquidity. Pure; the engine calls it once per swap-loop iteration.
type StepPricer interface {
	ComputeStep(currentPrice, targetPrice, liquidity, amountRemaining, timeToMaturity decimal.Decimal) (StepResult, error)
}

// constantLiquidityStepPricer prices steps on the constant-liquidity curve:
// between sqrt prices a < b at liquidity L, base moved is L*(1/a - 1/b) and
// quote moved is L*(b - a).
type constantLiquidityStepPricer struct{}

// NewStepPricer returns the default step-pricing primitive.
func NewStepPricer() StepPricer {
	return constantLiquidityStepPricer{}
}

func (constantLiquidityStepPricer) ComputeStep(currentPrice, targetPrice, liquidity, amountRemaining, _ decimal.Decimal) (StepResult, error) {
	if !currentPrice.IsPositive() || !targetPrice.IsPositive() {
		return StepResult{}, fmt.Errorf("step prices must be positive: current %s target %s", currentPrice, targetPrice)
	}
	if liquidity.IsNegative() {
		return StepResult{}, fmt.Errorf("step liquidity %s is negative", liquidity)
	}
	if liquidity.IsZero() {
		// Nothing to trade against; price jumps to the target.
		return StepResult{NextPrice: targetPrice}, nil
	}

	remaining := amountRemaining.Abs()

	if targetPrice.LessThan(currentPrice) {
		// Price moves down: base flows in, quote flows out.
		maxIn := baseBetween(targetPrice, currentPrice, liquidity)
		if remaining.GreaterThanOrEqual(maxIn) {
			return StepResult{
				NextPrice: targetPrice,
				AmountIn:  maxIn,
				AmountOut: quoteBetween(targetPrice, currentPrice, liquidity),
			}, nil
		}
		// Solve 1/next = 1/current + remaining/L.
		next := decimal.New(1, 0).Div(decimal.New(1, 0).Div(currentPrice).Add(remaining.Div(liquidity)))
		return StepResult{
			NextPrice: next,
			AmountIn:  remaining,
			AmountOut: quoteBetween(next, currentPrice, liquidity),
		}, nil
	}

	// Price moves up: base flows out, quote flows in.
	maxOut := baseBetween(currentPrice, targetPrice, liquidity)
	if remaining.GreaterThanOrEqual(maxOut) {
		return StepResult{
			NextPrice: targetPrice,
			AmountIn:  quoteBetween(currentPrice, targetPrice, liquidity),
			AmountOut: maxOut,
		}, nil
	}
	// Solve 1/next = 1/current - remaining/L.
	next := decimal.New(1, 0).Div(decimal.New(1, 0).Div(currentPrice).Sub(remaining.Div(liquidity)))
	return StepResult{
		NextPrice: next,
		AmountIn:  quoteBetween(currentPrice, next, liquidity),
		AmountOut: remaining,
	}, nil
}

// baseBetween returns the base-token amount held between two sqrt prices
// a < b at liquidity L: L * (1/a - 1/b).
func baseBetween(a, b, liquidity decimal.Decimal) decimal.Decimal {
	return liquidity.Mul(decimal.New(1, 0).Div(a).Sub(decimal.New(1, 0).Div(b)))
}

// quoteBetween returns the quote-token amount between two sqrt prices
// a < b at liquidity L: L * (b - a).
func quoteBetween(a, b, liquidity decimal.Decimal) decimal.Decimal {
	return liquidity.Mul(b.Sub(a))
}
