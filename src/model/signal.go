package model

import "time"

type SignalKind string

const (
	SignalBuy  SignalKind = "BUY"
	SignalSell SignalKind = "SELL"
)

// Signal is a strategy's recommendation to buy or sell a symbol at a point
// in time. Signals are transient: they are produced per evaluation tick and
// only persisted indirectly through the trades they lead to.
type Signal struct {
	Symbol     string     `json:"symbol"`
	Kind       SignalKind `json:"kind"`
	Confidence float64    `json:"confidence"` // 0.0 to 1.0
	Price      float64    `json:"price"`
	Timestamp  time.Time  `json:"timestamp"`
	StrategyID uint       `json:"strategy_id"`
	Reason     string     `json:"reason,omitempty"`
}
