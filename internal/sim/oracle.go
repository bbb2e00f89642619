package sim

import (
	"github.com/shopspring/decimal"
)

// ConstantRateOracle returns a fixed index; useful for deterministic
// replays and tests.
type ConstantRateOracle struct {
	Index decimal.Decimal
}

func (o ConstantRateOracle) CurrentIndex() (decimal.Decimal, error) {
	return o.Index, nil
}

// DriftingRateOracle grows the index linearly at a configured APY against a
// logical clock: index(t) = start * (1 + apy * yearsElapsed).
type DriftingRateOracle struct {
	Start     decimal.Decimal
	APY       decimal.Decimal
	StartTime uint64
	Clock     *Clock
}

const secondsPerYear = 31536000

func (o DriftingRateOracle) CurrentIndex() (decimal.Decimal, error) {
	elapsed := decimal.NewFromInt(int64(o.Clock.Now() - o.StartTime))
	years := elapsed.Div(decimal.NewFromInt(secondsPerYear))
	return o.Start.Mul(decimal.New(1, 0).Add(o.APY.Mul(years))), nil
}
