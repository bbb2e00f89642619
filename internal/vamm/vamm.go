package vamm

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rateVamm/internal/fixedpoint"
	"rateVamm/internal/tickmath"
)

const secondsPerYear = 31536000

// Config carries the pricing parameters and external collaborators of a VAMM
// instance.
type Config struct {
	// Spread is the multiplicative half-spread applied to TWAP quotes.
	Spread decimal.Decimal
	// PriceImpactPhi and PriceImpactBeta parameterize the order-size
	// price-impact adjustment phi * |size|^beta.
	PriceImpactPhi  decimal.Decimal
	PriceImpactBeta decimal.Decimal

	// RateOracle supplies the current floating-rate index. Required for
	// swaps.
	RateOracle RateOracle
	// StepPricer prices individual curve steps; defaults to the constant
	// liquidity pricer.
	StepPricer StepPricer

	// Now returns the current unix time in seconds; defaults to the wall
	// clock. Replay and tests inject a logical clock.
	Now func() uint64

	Logger *zap.Logger
}

// VAMM is the pricing and liquidity-accounting state for one market and
// maturity pair. All mutation is synchronous; the caller provides mutual
// exclusion, and the internal lock only rejects reentrant calls.
type VAMM struct {
	marketID string
	maturity uint64

	tickSpacing         int
	maxLiquidityPerTick decimal.Decimal

	currentPrice    decimal.Decimal // sqrt price
	currentTick     int
	activeLiquidity decimal.Decimal

	growthFixedGlobal    decimal.Decimal
	growthVariableGlobal decimal.Decimal

	registry     *tickRegistry
	positions    *positionLedger
	observations *observationBuffer

	spread          decimal.Decimal
	priceImpactPhi  decimal.Decimal
	priceImpactBeta decimal.Decimal

	rateOracle RateOracle
	pricer     StepPricer
	now        func() uint64
	logger     *zap.Logger

	unlocked bool
}

// NewVAMM creates the state for a market/maturity pair at an initial sqrt
// price. Configuration errors here are permanent for the same inputs.
func NewVAMM(marketID string, maturity uint64, initialPrice decimal.Decimal, tickSpacing int, cfg Config) (*VAMM, error) {
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = func() uint64 { return uint64(time.Now().Unix()) }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pricer := cfg.StepPricer
	if pricer == nil {
		pricer = NewStepPricer()
	}

	now := nowFn()
	if maturity <= now {
		return nil, fmt.Errorf("%w: maturity %d, now %d", ErrMaturityNotFuture, maturity, now)
	}
	if tickSpacing <= 0 || tickSpacing > tickmath.MaxTickSpacing {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTickSpacing, tickSpacing)
	}
	tick, err := tickmath.TickAtSqrtPrice(initialPrice)
	if err != nil {
		return nil, fmt.Errorf("initial price: %w", err)
	}

	maxPerTick := tickmath.MaxLiquidityPerTick(tickSpacing)
	v := &VAMM{
		marketID:            marketID,
		maturity:            maturity,
		tickSpacing:         tickSpacing,
		maxLiquidityPerTick: maxPerTick,
		currentPrice:        initialPrice,
		currentTick:         tick,
		registry:            newTickRegistry(tickSpacing, maxPerTick),
		positions:           newPositionLedger(),
		observations:        newObservationBuffer(now),
		spread:              cfg.Spread,
		priceImpactPhi:      cfg.PriceImpactPhi,
		priceImpactBeta:     cfg.PriceImpactBeta,
		rateOracle:          cfg.RateOracle,
		pricer:              pricer,
		now:                 nowFn,
		logger:              logger,
		unlocked:            true,
	}
	logger.Info("vamm created",
		zap.String("market_id", marketID),
		zap.Uint64("maturity", maturity),
		zap.Int("tick_spacing", tickSpacing),
		zap.Int("initial_tick", tick),
	)
	return v, nil
}

// MarketID returns the market this instance prices.
func (v *VAMM) MarketID() string { return v.marketID }

// Maturity returns the instance's maturity as unix seconds.
func (v *VAMM) Maturity() uint64 { return v.maturity }

// CurrentPrice returns the current sqrt price.
func (v *VAMM) CurrentPrice() decimal.Decimal { return v.currentPrice }

// CurrentTick returns the tick corresponding to the current price.
func (v *VAMM) CurrentTick() int { return v.currentTick }

// ActiveLiquidity returns the per-tick liquidity in range at current price.
func (v *VAMM) ActiveLiquidity() decimal.Decimal { return v.activeLiquidity }

// GrowthGlobal returns the global per-unit-liquidity growth trackers.
func (v *VAMM) GrowthGlobal() (fixed, variable decimal.Decimal) {
	return v.growthFixedGlobal, v.growthVariableGlobal
}

func (v *VAMM) lock() error {
	if !v.unlocked {
		return ErrLocked
	}
	v.unlocked = false
	return nil
}

func (v *VAMM) unlock() {
	v.unlocked = true
}

// Mint adds (positive delta) or removes (negative delta) liquidity for an
// account's position over [tickLower, tickUpper). The notional is spread
// evenly across the range's ticks. Returns the executed notional delta.
func (v *VAMM) Mint(accountID string, tickLower, tickUpper int, baseDelta decimal.Decimal) (decimal.Decimal, error) {
	if err := v.lock(); err != nil {
		return decimal.Decimal{}, err
	}
	defer v.unlock()

	if err := tickmath.CheckTickRange(tickLower, tickUpper); err != nil {
		return decimal.Decimal{}, err
	}
	// The bitmap compresses ticks by spacing; unaligned bounds would alias
	// another tick's bit.
	if tickLower%v.tickSpacing != 0 || tickUpper%v.tickSpacing != 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: [%d, %d) with spacing %d", ErrTickNotAligned, tickLower, tickUpper, v.tickSpacing)
	}

	_, pos := v.positions.openOrGet(accountID, tickLower, tickUpper)
	if baseDelta.IsZero() {
		return decimal.Zero, nil
	}
	if baseDelta.IsNegative() && pos.BaseAmount.Add(baseDelta).IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: held %s, requested %s", ErrBurnExceedsHeld, pos.BaseAmount, baseDelta.Neg())
	}

	width := decimal.NewFromInt(int64(tickUpper - tickLower))
	liquidityDelta := baseDelta.Div(width)
	if err := fixedpoint.CheckInt128(liquidityDelta); err != nil {
		return decimal.Decimal{}, err
	}

	// Ticks first: reconciliation of other positions sharing a boundary
	// must see the new curve shape.
	flippedLower, flippedUpper, err := v.registry.flipTicks(
		tickLower, tickUpper, v.currentTick, liquidityDelta,
		v.growthFixedGlobal, v.growthVariableGlobal,
	)
	if err != nil {
		return decimal.Decimal{}, err
	}

	growthFixed, growthVariable := v.registry.growthBetween(
		tickLower, tickUpper, v.currentTick,
		v.growthFixedGlobal, v.growthVariableGlobal,
	)
	pos.applyGrowth(growthFixed, growthVariable)
	pos.BaseAmount = pos.BaseAmount.Add(baseDelta)

	if baseDelta.IsNegative() {
		if flippedLower {
			v.registry.clear(tickLower)
		}
		if flippedUpper {
			v.registry.clear(tickUpper)
		}
	}

	if v.currentTick >= tickLower && v.currentTick < tickUpper {
		v.activeLiquidity = v.activeLiquidity.Add(liquidityDelta)
	}

	v.logger.Debug("mint",
		zap.String("account_id", accountID),
		zap.Int("tick_lower", tickLower),
		zap.Int("tick_upper", tickUpper),
		zap.String("base_delta", baseDelta.String()),
	)
	return baseDelta, nil
}

// reconcile folds growth accrued since the position's last snapshot into its
// accumulated balances. Idempotent between swaps.
func (v *VAMM) reconcile(pos *Position) {
	growthFixed, growthVariable := v.registry.growthBetween(
		pos.TickLower, pos.TickUpper, v.currentTick,
		v.growthFixedGlobal, v.growthVariableGlobal,
	)
	pos.applyGrowth(growthFixed, growthVariable)
}

// AccountFilledBalances returns the account's realized fixed and variable
// cash-flow balances across all its positions, reconciled as of now.
func (v *VAMM) AccountFilledBalances(accountID string) (fixed, variable decimal.Decimal) {
	for _, pos := range v.positions.accountPositions(accountID) {
		v.reconcile(pos)
		fixed = fixed.Add(pos.AccumulatedFixed)
		variable = variable.Add(pos.AccumulatedVariable)
	}
	return fixed, variable
}

// AccountUnfilledBases returns the base notional the account's positions
// stand ready to acquire as price falls (long) and to supply as price rises
// (short).
func (v *VAMM) AccountUnfilledBases(accountID string) (long, short decimal.Decimal) {
	for _, pos := range v.positions.accountPositions(accountID) {
		if !pos.BaseAmount.IsPositive() {
			continue
		}
		liquidity := pos.averagePerTick()
		lowerPrice := tickmath.SqrtPriceAtTick(pos.TickLower)
		upperPrice := tickmath.SqrtPriceAtTick(pos.TickUpper)

		switch {
		case v.currentTick < pos.TickLower:
			short = short.Add(baseBetween(lowerPrice, upperPrice, liquidity))
		case v.currentTick >= pos.TickUpper:
			long = long.Add(baseBetween(lowerPrice, upperPrice, liquidity))
		default:
			long = long.Add(baseBetween(lowerPrice, v.currentPrice, liquidity))
			short = short.Add(baseBetween(v.currentPrice, upperPrice, liquidity))
		}
	}
	return long, short
}

// PositionBalances reconciles one position and returns its notional and
// accumulated balances.
func (v *VAMM) PositionBalances(accountID string, tickLower, tickUpper int) (base, fixed, variable decimal.Decimal, err error) {
	id := derivePositionID(accountID, tickLower, tickUpper)
	pos, ok := v.positions.get(id)
	if !ok {
		return decimal.Decimal{}, decimal.Decimal{}, decimal.Decimal{},
			fmt.Errorf("no position for account %s over [%d, %d)", accountID, tickLower, tickUpper)
	}
	v.reconcile(pos)
	return pos.BaseAmount, pos.AccumulatedFixed, pos.AccumulatedVariable, nil
}

// IncreaseObservationCapacity raises the oracle buffer's target capacity.
// Monotonic; a target at or below the current one is a no-op.
func (v *VAMM) IncreaseObservationCapacity(target int) int {
	return v.observations.grow(target)
}

// Twap returns the geometric-mean price over the trailing lookback window,
// optionally adjusted for the price impact of an order of the given signed
// size and for the configured spread. A positive order size sells base
// (adjusts downward); a negative one buys. An adjustment that would drive
// the result to or below zero yields zero, not an error.
func (v *VAMM) Twap(lookbackSeconds uint64, orderSize decimal.Decimal, adjustForPriceImpact, adjustForSpread bool) (decimal.Decimal, error) {
	meanTick, err := v.observations.meanTick(v.now(), lookbackSeconds, v.currentTick)
	if err != nil {
		return decimal.Decimal{}, err
	}
	price := tickmath.PriceAtTick(meanTick)

	selling := orderSize.IsPositive()
	if adjustForPriceImpact && !orderSize.IsZero() {
		size, _ := orderSize.Abs().Float64()
		beta, _ := v.priceImpactBeta.Float64()
		impact := v.priceImpactPhi.Mul(decimal.NewFromFloat(math.Pow(size, beta)))
		if selling {
			price = price.Mul(decimal.New(1, 0).Sub(impact))
		} else {
			price = price.Mul(decimal.New(1, 0).Add(impact))
		}
	}
	if adjustForSpread && !orderSize.IsZero() {
		if selling {
			price = price.Mul(decimal.New(1, 0).Sub(v.spread))
		} else {
			price = price.Mul(decimal.New(1, 0).Add(v.spread))
		}
	}

	if !price.IsPositive() {
		return decimal.Zero, nil
	}
	return price, nil
}

// yearFraction converts the time remaining to maturity into years.
func (v *VAMM) yearFraction(now uint64) decimal.Decimal {
	if now >= v.maturity {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(v.maturity - now)).Div(decimal.NewFromInt(secondsPerYear))
}
