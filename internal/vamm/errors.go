package vamm

import "errors"

// Sentinel errors callers branch on. Configuration errors are permanent for
// the same inputs; precondition errors may be retried with corrected input.
var (
	ErrLocked             = errors.New("reentrant call into locked vamm")
	ErrMatured            = errors.New("vamm has reached maturity")
	ErrMaturityNotFuture  = errors.New("maturity must be in the future")
	ErrInvalidTickSpacing = errors.New("tick spacing out of range")
	ErrDuplicateInstance  = errors.New("vamm already exists for market and maturity")
	ErrUnknownInstance    = errors.New("no vamm for market and maturity")
	ErrZeroAmount         = errors.New("amount must be non-zero")
	ErrTickNotAligned     = errors.New("tick bound not a multiple of tick spacing")
	ErrPriceLimit         = errors.New("price limit on wrong side of current price")
	ErrTickLiquidity      = errors.New("liquidity at tick exceeds maximum")
	ErrBurnExceedsHeld    = errors.New("burn exceeds liquidity held by position")
	ErrLookbackTooLong    = errors.New("lookback exceeds retained observation history")
)
