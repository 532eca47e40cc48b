package model

import "time"

// Position is an open holding for a symbol, owned exclusively by the
// portfolio tracker. A position with zero quantity does not exist: the
// tracker removes it once fully closed.
type Position struct {
	Symbol       string    `json:"symbol"`
	Quantity     float64   `json:"quantity"`
	AveragePrice float64   `json:"average_price"`
	CurrentPrice float64   `json:"current_price"`
	StopPrice    float64   `json:"stop_price,omitempty"`
	TargetPrice  float64   `json:"target_price,omitempty"`
	StrategyID   uint      `json:"strategy_id,omitempty"`
	OpenedAt     time.Time `json:"opened_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MarketValue is quantity at the current mark price.
func (p Position) MarketValue() float64 {
	return p.Quantity * p.CurrentPrice
}

// UnrealizedPnL is the open profit or loss at the current mark price.
func (p Position) UnrealizedPnL() float64 {
	return (p.CurrentPrice - p.AveragePrice) * p.Quantity
}
