package vamm

import (
	"fmt"

	"github.com/shopspring/decimal"

	"rateVamm/internal/fixedpoint"
)

// Tick holds the per-tick liquidity ledger entry. An entry exists only while
// some position references the tick (liquidityGross != 0).
type Tick struct {
	// LiquidityGross is the total liquidity referencing this tick across
	// all positions; it decides when the entry can be cleared.
	LiquidityGross decimal.Decimal
	// LiquidityNet is the signed delta applied to active liquidity when
	// price crosses this tick moving upward.
	LiquidityNet decimal.Decimal
	// Growth accumulated on the side of this tick away from the tick the
	// market was initialized at. The side it refers to flips every time
	// price crosses the tick.
	GrowthFixedOutside    decimal.Decimal
	GrowthVariableOutside decimal.Decimal
}

func (t *Tick) initialized() bool {
	return !t.LiquidityGross.IsZero()
}

// tickRegistry owns the materialized tick entries and the bitmap index over
// initialized ticks.
type tickRegistry struct {
	ticks       map[int]*Tick
	bitmap      tickBitmap
	tickSpacing int
	maxPerTick  decimal.Decimal
}

func newTickRegistry(tickSpacing int, maxPerTick decimal.Decimal) *tickRegistry {
	return &tickRegistry{
		ticks:       make(map[int]*Tick),
		bitmap:      make(tickBitmap),
		tickSpacing: tickSpacing,
		maxPerTick:  maxPerTick,
	}
}

func (r *tickRegistry) get(tick int) (*Tick, bool) {
	t, ok := r.ticks[tick]
	return t, ok
}

// update applies liquidityDelta to one boundary tick, materializing the entry
// on first reference. Returns whether the tick flipped between initialized
// and uninitialized. upper selects the liquidityNet sign convention.
func (r *tickRegistry) update(tick, currentTick int, liquidityDelta decimal.Decimal, upper bool, growthFixedGlobal, growthVariableGlobal decimal.Decimal) (bool, error) {
	if err := fixedpoint.CheckInt128(liquidityDelta); err != nil {
		return false, err
	}

	entry, ok := r.ticks[tick]
	if !ok {
		entry = &Tick{}
		r.ticks[tick] = entry
		defer func() {
			// Do not keep an entry a failed first reference materialized.
			if !entry.initialized() && entry.LiquidityNet.IsZero() {
				delete(r.ticks, tick)
			}
		}()
	}

	grossBefore := entry.LiquidityGross
	grossAfter, err := fixedpoint.AddLiquidityDelta(grossBefore, liquidityDelta)
	if err != nil {
		return false, err
	}
	if grossAfter.GreaterThan(r.maxPerTick) {
		return false, fmt.Errorf("%w: %s at tick %d, max %s", ErrTickLiquidity, grossAfter, tick, r.maxPerTick)
	}

	flipped := grossAfter.IsZero() != grossBefore.IsZero()

	if grossBefore.IsZero() {
		// Convention: all growth before a tick is first referenced is
		// assumed to have happened below it.
		if tick <= currentTick {
			entry.GrowthFixedOutside = growthFixedGlobal
			entry.GrowthVariableOutside = growthVariableGlobal
		}
	}

	entry.LiquidityGross = grossAfter
	if upper {
		entry.LiquidityNet = entry.LiquidityNet.Sub(liquidityDelta)
	} else {
		entry.LiquidityNet = entry.LiquidityNet.Add(liquidityDelta)
	}
	if err := fixedpoint.CheckInt128(entry.LiquidityNet); err != nil {
		return false, err
	}
	return flipped, nil
}

// flipTicks applies liquidityDelta to both boundary ticks of a range and
// keeps the bitmap index in sync with any initialization transitions.
func (r *tickRegistry) flipTicks(lower, upper, currentTick int, liquidityDelta, growthFixedGlobal, growthVariableGlobal decimal.Decimal) (flippedLower, flippedUpper bool, err error) {
	flippedLower, err = r.update(lower, currentTick, liquidityDelta, false, growthFixedGlobal, growthVariableGlobal)
	if err != nil {
		return false, false, err
	}
	flippedUpper, err = r.update(upper, currentTick, liquidityDelta, true, growthFixedGlobal, growthVariableGlobal)
	if err != nil {
		// Unwind the lower tick so a failed mutation leaves no trace.
		if _, uerr := r.update(lower, currentTick, liquidityDelta.Neg(), false, growthFixedGlobal, growthVariableGlobal); uerr == nil {
			if entry, ok := r.ticks[lower]; ok && !entry.initialized() {
				delete(r.ticks, lower)
			}
		}
		return false, false, err
	}
	if flippedLower {
		r.bitmap.flip(lower, r.tickSpacing)
	}
	if flippedUpper {
		r.bitmap.flip(upper, r.tickSpacing)
	}
	return flippedLower, flippedUpper, nil
}

// cross flips both outside-growth accumulators to (global - outside) and
// returns the signed liquidity delta for an upward crossing.
func (r *tickRegistry) cross(tick int, growthFixedGlobal, growthVariableGlobal decimal.Decimal) decimal.Decimal {
	entry, ok := r.ticks[tick]
	if !ok {
		return decimal.Zero
	}
	entry.GrowthFixedOutside = growthFixedGlobal.Sub(entry.GrowthFixedOutside)
	entry.GrowthVariableOutside = growthVariableGlobal.Sub(entry.GrowthVariableOutside)
	return entry.LiquidityNet
}

// clear drops a tick whose gross liquidity returned to zero.
func (r *tickRegistry) clear(tick int) {
	delete(r.ticks, tick)
}

// nextInitializedTickWithinOneWord delegates to the bitmap index.
func (r *tickRegistry) nextInitializedTickWithinOneWord(fromTick int, searchLeft bool) (int, bool) {
	return r.bitmap.nextInitializedTickWithinOneWord(fromTick, r.tickSpacing, searchLeft)
}
