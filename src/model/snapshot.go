package model

import "time"

// RiskMetrics are derived from the equity-curve history maintained by the
// portfolio tracker.
type RiskMetrics struct {
	Drawdown    float64 `json:"drawdown"`     // current decline from the running peak, [0,1]
	MaxDrawdown float64 `json:"max_drawdown"` // worst drawdown seen, [0,1]
	SharpeRatio float64 `json:"sharpe_ratio"`
	Volatility  float64 `json:"volatility"`
}

// PortfolioSnapshot is a point-in-time read of portfolio state.
// Invariant: TotalValue = Cash + sum of position market values.
type PortfolioSnapshot struct {
	TotalValue float64 `json:"total_value"`
	Cash       float64 `json:"cash"`
	TotalPnL   float64 `json:"total_pnl"`
	DailyPnL   float64 `json:"daily_pnl"`
	// DayStartValue is the equity at the current UTC day's open; daily
	// loss limits are measured against it, not the shrinking live value.
	DayStartValue float64     `json:"day_start_value"`
	Positions     []Position  `json:"positions"`
	RiskMetrics   RiskMetrics `json:"risk_metrics"`
	Timestamp     time.Time   `json:"timestamp"`
}

// PositionFor returns the open position for symbol, if any.
func (s *PortfolioSnapshot) PositionFor(symbol string) (Position, bool) {
	for _, p := range s.Positions {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return Position{}, false
}
