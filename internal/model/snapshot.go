package model

// VammSnapshot is a full read-only export of one instance's state for
// persistence and inspection.
type VammSnapshot struct {
	VammID   string `json:"vamm_id"`
	MarketID string `json:"market_id"`
	Maturity uint64 `json:"maturity"`
	TakenAt  uint64 `json:"taken_at"`

	TickSpacing          int    `json:"tick_spacing"`
	CurrentPrice         string `json:"current_price"`
	CurrentTick          int    `json:"current_tick"`
	ActiveLiquidity      string `json:"active_liquidity"`
	GrowthFixedGlobal    string `json:"growth_fixed_global"`
	GrowthVariableGlobal string `json:"growth_variable_global"`

	Ticks     []TickSnapshot     `json:"ticks"`
	Positions []PositionSnapshot `json:"positions"`
}

// TickSnapshot exports one materialized tick entry.
type TickSnapshot struct {
	Tick                  int    `json:"tick"`
	LiquidityGross        string `json:"liquidity_gross"`
	LiquidityNet          string `json:"liquidity_net"`
	GrowthFixedOutside    string `json:"growth_fixed_outside"`
	GrowthVariableOutside string `json:"growth_variable_outside"`
}

// PositionSnapshot exports one position ledger entry.
type PositionSnapshot struct {
	AccountID              string `json:"account_id"`
	TickLower              int    `json:"tick_lower"`
	TickUpper              int    `json:"tick_upper"`
	BaseAmount             string `json:"base_amount"`
	GrowthFixedSnapshot    string `json:"growth_fixed_snapshot"`
	GrowthVariableSnapshot string `json:"growth_variable_snapshot"`
	AccumulatedFixed       string `json:"accumulated_fixed"`
	AccumulatedVariable    string `json:"accumulated_variable"`
}
