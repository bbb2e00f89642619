package vamm

import "github.com/shopspring/decimal"

// growthOutside reads a tick's outside accumulators, treating an
// unmaterialized tick as zero.
func (r *tickRegistry) growthOutside(tick int) (fixed, variable decimal.Decimal) {
	entry, ok := r.ticks[tick]
	if !ok {
		return decimal.Zero, decimal.Zero
	}
	return entry.GrowthFixedOutside, entry.GrowthVariableOutside
}

// growthBetween isolates the growth attributable to trades executed while
// price was inside [tickLower, tickUpper) by subtracting the growth strictly
// below the lower bound and strictly above the upper bound from the global
// trackers. The below/above quantities read a tick's outside accumulator
// directly when current price is on the side that makes that definition
// hold, and global-minus-outside otherwise. Both bounds are clipped by the
// current tick the same way, matching the half-open range semantics.
func (r *tickRegistry) growthBetween(tickLower, tickUpper, currentTick int, globalFixed, globalVariable decimal.Decimal) (fixedInside, variableInside decimal.Decimal) {
	lowerFixed, lowerVariable := r.growthOutside(tickLower)
	upperFixed, upperVariable := r.growthOutside(tickUpper)

	var belowFixed, belowVariable decimal.Decimal
	if currentTick >= tickLower {
		belowFixed = lowerFixed
		belowVariable = lowerVariable
	} else {
		belowFixed = globalFixed.Sub(lowerFixed)
		belowVariable = globalVariable.Sub(lowerVariable)
	}

	var aboveFixed, aboveVariable decimal.Decimal
	if currentTick < tickUpper {
		aboveFixed = upperFixed
		aboveVariable = upperVariable
	} else {
		aboveFixed = globalFixed.Sub(upperFixed)
		aboveVariable = globalVariable.Sub(upperVariable)
	}

	fixedInside = globalFixed.Sub(belowFixed).Sub(aboveFixed)
	variableInside = globalVariable.Sub(belowVariable).Sub(aboveVariable)
	return fixedInside, variableInside
}
