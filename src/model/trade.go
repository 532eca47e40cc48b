package model

import "time"

// Trade records an executed fill. Trades are append-only: once written they
// are never mutated. A nil StrategyID marks a manual trade.
type Trade struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Symbol     string    `gorm:"size:50;not null;index" json:"symbol"`
	Side       string    `gorm:"size:10;not null" json:"side"`
	Quantity   float64   `gorm:"not null" json:"quantity"`
	Price      float64   `gorm:"not null" json:"price"`
	Fee        float64   `gorm:"not null;default:0" json:"fee"`
	StrategyID *uint     `gorm:"index" json:"strategy_id,omitempty"`
	OrderID    string    `gorm:"size:64" json:"order_id,omitempty"`
	Exchange   string    `gorm:"size:50" json:"exchange,omitempty"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Trade) TableName() string {
	return "trades"
}

// Value is the notional value of the trade.
func (t Trade) Value() float64 {
	return t.Quantity * t.Price
}
