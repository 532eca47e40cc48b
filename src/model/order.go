package model

import "time"

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// OrderRequest is a risk-approved order ready for submission to the
// exchange adapter. Stop and target prices are advisory protective levels
// derived from the configured risk limits.
type OrderRequest struct {
	ClientID    string    `json:"client_id"`
	StrategyID  uint      `json:"strategy_id"`
	Symbol      string    `json:"symbol"`
	Side        string    `json:"side"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	StopPrice   float64   `json:"stop_price"`
	TargetPrice float64   `json:"target_price"`
	Confidence  float64   `json:"confidence"`
	CreatedAt   time.Time `json:"created_at"`
}

// Fill is the exchange's confirmation that an order executed.
type Fill struct {
	OrderID   string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
