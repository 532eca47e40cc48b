package model

import "time"

const (
	StrategyTypeRSI       = "rsi"
	StrategyTypeMACD      = "macd"
	StrategyTypeBollinger = "bollinger"
	StrategyTypeMACross   = "ma_crossover"
	StrategyTypeGrid      = "grid_trading"
)

const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// Strategy is a persisted strategy configuration. Parameters are validated
// against the type-specific schema before the row is created or updated.
type Strategy struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	Name         string             `gorm:"size:255;not null" json:"name"`
	Type         string             `gorm:"size:50;not null" json:"type"`
	Symbol       string             `gorm:"size:50;not null" json:"symbol"`
	Parameters   map[string]float64 `gorm:"serializer:json" json:"parameters"`
	RiskLevel    string             `gorm:"size:20;not null;default:medium" json:"risk_level"`
	RiskFraction float64            `gorm:"not null;default:0.02" json:"risk_fraction"`
	Active       bool               `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func (Strategy) TableName() string {
	return "strategies"
}

// Param returns the named parameter or the given default when absent.
func (s *Strategy) Param(name string, def float64) float64 {
	if v, ok := s.Parameters[name]; ok {
		return v
	}
	return def
}
