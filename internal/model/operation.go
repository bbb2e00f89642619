package model

// Operation is one line of a replay script. Numeric amounts are decimal
// strings so scripts survive JSON round trips without precision loss.
type Operation struct {
	Seq      uint64 `json:"seq"`
	Op       string `json:"op"`
	MarketID string `json:"market_id,omitempty"`
	Maturity uint64 `json:"maturity,omitempty"`

	// create
	InitialPrice string `json:"initial_price,omitempty"`
	TickSpacing  int    `json:"tick_spacing,omitempty"`

	// mint / swap
	AccountID  string `json:"account_id,omitempty"`
	TickLower  int    `json:"tick_lower,omitempty"`
	TickUpper  int    `json:"tick_upper,omitempty"`
	Amount     string `json:"amount,omitempty"`
	PriceLimit string `json:"price_limit,omitempty"`

	// twap
	LookbackSeconds   uint64 `json:"lookback_seconds,omitempty"`
	OrderSize         string `json:"order_size,omitempty"`
	AdjustPriceImpact bool   `json:"adjust_price_impact,omitempty"`
	AdjustSpread      bool   `json:"adjust_spread,omitempty"`

	// advance
	Seconds uint64 `json:"seconds,omitempty"`

	// grow
	CapacityTarget int `json:"capacity_target,omitempty"`
}

// Operation kinds accepted by the replay runner.
const (
	OpCreate  = "create"
	OpMint    = "mint"
	OpSwap    = "swap"
	OpTwap    = "twap"
	OpAdvance = "advance"
	OpGrow    = "grow"
)
