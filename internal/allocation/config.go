package allocation

// Config holds the allocation policy constants. These are business-policy
// numbers owned by the enclosing application's configuration; the engine
// only reads them.
type Config struct {
	MaxRRRatio                      float64 `json:"max_rr_ratio"`                       // Upper clamp for reward:risk in scoring
	SignalQualityThreshold          float64 `json:"signal_quality_threshold"`           // Normal quality gate
	BootstrapSignalQualityThreshold float64 `json:"bootstrap_signal_quality_threshold"` // Relaxed gate while trade history is thin
	BootstrapTradeLimit             int     `json:"bootstrap_trade_limit"`              // Trades below this count keep the relaxed gate
	MaxTotalBudgetRatio             float64 `json:"max_total_budget_ratio"`             // Share of available margin a pass may spend
	MaxSinglePositionRatio          float64 `json:"max_single_position_ratio"`          // Per-position notional cap as share of equity
	MaxTotalMarginRatio             float64 `json:"max_total_margin_ratio"`             // Allowed total margin as share of balance
}

// DefaultConfig returns the stock allocation policy.
func DefaultConfig() *Config {
	return &Config{
		MaxRRRatio:                      10.0,
		SignalQualityThreshold:          0.65,
		BootstrapSignalQualityThreshold: 0.50,
		BootstrapTradeLimit:             20,
		MaxTotalBudgetRatio:             0.90,
		MaxSinglePositionRatio:          0.10,
		MaxTotalMarginRatio:             0.60,
	}
}
