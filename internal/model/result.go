package model

// OperationResult records the outcome of applying one script operation.
type OperationResult struct {
	Seq      uint64 `json:"seq"`
	Op       string `json:"op"`
	VammID   string `json:"vamm_id,omitempty"`
	MarketID string `json:"market_id,omitempty"`
	Maturity uint64 `json:"maturity,omitempty"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`

	Executed      string `json:"executed,omitempty"`
	FixedDelta    string `json:"fixed_delta,omitempty"`
	VariableDelta string `json:"variable_delta,omitempty"`
	Remaining     string `json:"remaining,omitempty"`
	TwapPrice     string `json:"twap_price,omitempty"`

	CurrentPrice string `json:"current_price,omitempty"`
	CurrentTick  int    `json:"current_tick,omitempty"`
	AppliedAt    uint64 `json:"applied_at,omitempty"`
}

// Result statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
