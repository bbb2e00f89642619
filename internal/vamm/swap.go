package vamm

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rateVamm/internal/tickmath"
)

// SwapParams describes one trade against the curve. A positive
// AmountSpecified sells base into the curve and moves price down; a negative
// one buys base and moves price up. A zero PriceLimit defaults to the curve
// boundary in the trade direction.
type SwapParams struct {
	TickLower       int
	TickUpper       int
	AmountSpecified decimal.Decimal
	PriceLimit      decimal.Decimal
}

// SwapResult reports the trade outcome from the taker's perspective.
type SwapResult struct {
	// FixedDelta and VariableDelta are the taker's accrued fixed and
	// variable token deltas, opposite in sign to the LP-side growth.
	FixedDelta    decimal.Decimal
	VariableDelta decimal.Decimal
	// AmountRemaining is the unfilled part of AmountSpecified, nonzero
	// only when the price limit was reached first.
	AmountRemaining decimal.Decimal
}

// swapStep is the working state of one loop iteration.
type swapStep struct {
	startPrice  decimal.Decimal
	nextTick    int
	initialized bool
	nextPrice   decimal.Decimal
}

// crossRecord remembers a tick crossing so a failed swap can restore the
// outside accumulators exactly.
type crossRecord struct {
	tick           int
	growthFixed    decimal.Decimal
	growthVariable decimal.Decimal
}

// Swap executes a trade, walking the tick curve until the requested amount is
// filled or the price limit is hit. All state mutations are committed only on
// success; a failure mid-loop restores any ticks already crossed.
func (v *VAMM) Swap(params SwapParams) (SwapResult, error) {
	if err := v.lock(); err != nil {
		return SwapResult{}, err
	}
	defer v.unlock()

	now := v.now()
	if now >= v.maturity {
		return SwapResult{}, fmt.Errorf("%w: maturity %d, now %d", ErrMatured, v.maturity, now)
	}
	if params.AmountSpecified.IsZero() {
		return SwapResult{}, ErrZeroAmount
	}
	if err := tickmath.CheckTickRange(params.TickLower, params.TickUpper); err != nil {
		return SwapResult{}, err
	}
	if v.rateOracle == nil {
		return SwapResult{}, fmt.Errorf("rate oracle is required for swaps")
	}

	selling := params.AmountSpecified.IsPositive()

	limit := params.PriceLimit
	if limit.IsZero() {
		if selling {
			limit = tickmath.MinSqrtPrice
		} else {
			limit = tickmath.MaxSqrtPrice
		}
	}
	if selling {
		if limit.GreaterThanOrEqual(v.currentPrice) || limit.LessThan(tickmath.MinSqrtPrice) {
			return SwapResult{}, fmt.Errorf("%w: limit %s, current %s, selling", ErrPriceLimit, limit, v.currentPrice)
		}
	} else {
		if limit.LessThanOrEqual(v.currentPrice) || limit.GreaterThan(tickmath.MaxSqrtPrice) {
			return SwapResult{}, fmt.Errorf("%w: limit %s, current %s, buying", ErrPriceLimit, limit, v.currentPrice)
		}
	}

	index, err := v.rateOracle.CurrentIndex()
	if err != nil {
		return SwapResult{}, fmt.Errorf("rate oracle index: %w", err)
	}
	yearFrac := v.yearFraction(now)

	// Working copy; committed back only when the whole swap succeeds.
	remaining := params.AmountSpecified.Abs()
	price := v.currentPrice
	tick := v.currentTick
	liquidity := v.activeLiquidity
	growthFixed := v.growthFixedGlobal
	growthVariable := v.growthVariableGlobal
	cumFixed := decimal.Zero
	cumVariable := decimal.Zero

	var crossed []crossRecord

	for remaining.IsPositive() && !price.Equal(limit) {
		var step swapStep
		step.startPrice = price
		step.nextTick, step.initialized = v.registry.nextInitializedTickWithinOneWord(tick, selling)

		if step.nextTick < tickmath.MinTick {
			step.nextTick = tickmath.MinTick
		} else if step.nextTick > tickmath.MaxTick {
			step.nextTick = tickmath.MaxTick
		}
		step.nextPrice = tickmath.SqrtPriceAtTick(step.nextTick)

		target := step.nextPrice
		if selling {
			if target.LessThan(limit) {
				target = limit
			}
		} else {
			if target.GreaterThan(limit) {
				target = limit
			}
		}

		result, err := v.pricer.ComputeStep(price, target, liquidity, remaining, yearFrac)
		if err != nil {
			v.revertCrossings(crossed)
			return SwapResult{}, fmt.Errorf("compute step at tick %d: %w", tick, err)
		}

		// LP-side base delta: the curve gains base on sells, loses it on
		// buys.
		var baseMoved decimal.Decimal
		if selling {
			baseMoved = result.AmountIn
			remaining = remaining.Sub(result.AmountIn)
		} else {
			baseMoved = result.AmountOut.Neg()
			remaining = remaining.Sub(result.AmountOut)
		}

		if liquidity.IsPositive() && !baseMoved.IsZero() {
			// Linear approximation: the step's fixed-rate price is the
			// mean of the prices at its two boundaries.
			avgPrice := step.startPrice.Mul(step.startPrice).
				Add(result.NextPrice.Mul(result.NextPrice)).
				Div(decimal.NewFromInt(2))
			fixedMoved := baseMoved.Neg().Mul(index).
				Mul(decimal.New(1, 0).Add(avgPrice.Mul(yearFrac)))

			growthFixed = growthFixed.Add(fixedMoved.Div(liquidity))
			growthVariable = growthVariable.Add(baseMoved.Div(liquidity))
			cumFixed = cumFixed.Add(fixedMoved)
			cumVariable = cumVariable.Add(baseMoved)
		}

		price = result.NextPrice

		if price.Equal(step.nextPrice) {
			if step.initialized {
				crossed = append(crossed, crossRecord{
					tick:           step.nextTick,
					growthFixed:    growthFixed,
					growthVariable: growthVariable,
				})
				net := v.registry.cross(step.nextTick, growthFixed, growthVariable)
				if selling {
					liquidity = liquidity.Sub(net)
				} else {
					liquidity = liquidity.Add(net)
				}
			}
			if selling {
				tick = step.nextTick - 1
			} else {
				tick = step.nextTick
			}
		} else if !price.Equal(step.startPrice) {
			tick, err = tickmath.TickAtSqrtPrice(price)
			if err != nil {
				v.revertCrossings(crossed)
				return SwapResult{}, fmt.Errorf("recompute tick: %w", err)
			}
		}
	}

	if tick != v.currentTick {
		// The pre-swap tick prevailed for the whole elapsed interval.
		v.observations.write(now, v.currentTick)
	}

	v.currentPrice = price
	v.currentTick = tick
	v.activeLiquidity = liquidity
	v.growthFixedGlobal = growthFixed
	v.growthVariableGlobal = growthVariable

	v.logger.Debug("swap",
		zap.String("amount_specified", params.AmountSpecified.String()),
		zap.String("remaining", remaining.String()),
		zap.Int("tick", tick),
		zap.Int("crossed", len(crossed)),
	)

	// Taker-side signs are opposite the per-step LP-side deltas.
	return SwapResult{
		FixedDelta:      cumFixed.Neg(),
		VariableDelta:   cumVariable.Neg(),
		AmountRemaining: remaining,
	}, nil
}

// revertCrossings re-applies the outside-growth flip of each crossed tick
// with the globals recorded at crossing time, restoring the pre-swap ledger.
func (v *VAMM) revertCrossings(crossed []crossRecord) {
	for i := len(crossed) - 1; i >= 0; i-- {
		rec := crossed[i]
		v.registry.cross(rec.tick, rec.growthFixed, rec.growthVariable)
	}
}
