package model

import "fmt"

// RiskLimits is the read-only risk configuration for a trading session.
// All fields are fractions of portfolio value or of the entry price.
type RiskLimits struct {
	MaxPositionSize float64 `json:"max_position_size"` // (0,1], fraction of portfolio per position
	StopLossPct     float64 `json:"stop_loss_pct"`     // (0,1)
	TakeProfitPct   float64 `json:"take_profit_pct"`   // (0,1)
	MaxDrawdown     float64 `json:"max_drawdown"`      // (0,1]
	MaxDailyLoss    float64 `json:"max_daily_loss"`    // (0,1]
}

// DefaultRiskLimits mirrors the stock configuration: 10% per position,
// 2% stop, 6% target, 15% drawdown halt, 5% daily loss halt.
func DefaultRiskLimits() RiskLimits {
	return RiskLimits{
		MaxPositionSize: 0.10,
		StopLossPct:     0.02,
		TakeProfitPct:   0.06,
		MaxDrawdown:     0.15,
		MaxDailyLoss:    0.05,
	}
}

func (l RiskLimits) Validate() error {
	if l.MaxPositionSize <= 0 || l.MaxPositionSize > 1 {
		return fmt.Errorf("max_position_size must be in (0,1], got %v", l.MaxPositionSize)
	}
	if l.StopLossPct <= 0 || l.StopLossPct >= 1 {
		return fmt.Errorf("stop_loss_pct must be in (0,1), got %v", l.StopLossPct)
	}
	if l.TakeProfitPct <= 0 || l.TakeProfitPct >= 1 {
		return fmt.Errorf("take_profit_pct must be in (0,1), got %v", l.TakeProfitPct)
	}
	if l.MaxDrawdown <= 0 || l.MaxDrawdown > 1 {
		return fmt.Errorf("max_drawdown must be in (0,1], got %v", l.MaxDrawdown)
	}
	if l.MaxDailyLoss <= 0 || l.MaxDailyLoss > 1 {
		return fmt.Errorf("max_daily_loss must be in (0,1], got %v", l.MaxDailyLoss)
	}
	return nil
}
