package strategy

import (
	"fmt"

	"cryptobot/src/model"
)

// Descriptor describes an available strategy type and its default
// parameters, served by the strategies catalog endpoint.
type Descriptor struct {
	Type        string             `json:"type"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  map[string]float64 `json:"parameters"`
	RiskLevel   string             `json:"risk_level"`
}

// Catalog returns the available strategy types with their defaults.
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Type:        model.StrategyTypeRSI,
			Name:        "RSI Strategy",
			Description: "Buy oversold, sell overbought based on RSI indicator",
			Parameters:  map[string]float64{"period": 14, "oversold": 30, "overbought": 70},
			RiskLevel:   model.RiskLevelMedium,
		},
		{
			Type:        model.StrategyTypeMACD,
			Name:        "MACD Strategy",
			Description: "Golden cross and death cross signals on the MACD line",
			Parameters:  map[string]float64{"fast_period": 12, "slow_period": 26, "signal_period": 9},
			RiskLevel:   model.RiskLevelMedium,
		},
		{
			Type:        model.StrategyTypeBollinger,
			Name:        "Bollinger Bands Strategy",
			Description: "Price breaks through a band for entry/exit signals",
			Parameters:  map[string]float64{"period": 20, "std_dev": 2.0},
			RiskLevel:   model.RiskLevelLow,
		},
		{
			Type:        model.StrategyTypeMACross,
			Name:        "Moving Average Crossover",
			Description: "Short MA crosses above/below long MA",
			Parameters:  map[string]float64{"fast_period": 10, "slow_period": 50},
			RiskLevel:   model.RiskLevelLow,
		},
		{
			Type:        model.StrategyTypeGrid,
			Name:        "Grid Trading Strategy",
			Description: "Automated buy/sell signals at fixed price intervals",
			Parameters:  map[string]float64{"grid_levels": 10, "grid_spacing": 0.02},
			RiskLevel:   model.RiskLevelHigh,
		},
	}
}

// ValidateParams checks parameters against the type-specific schema.
// Absent parameters fall back to defaults at evaluation time, so only
// present values are range-checked, plus cross-field constraints.
func ValidateParams(strategyType string, params map[string]float64) error {
	get := func(name string, def float64) float64 {
		if v, ok := params[name]; ok {
			return v
		}
		return def
	}
	bad := func(format string, args ...any) error {
		return &model.ConfigurationError{Reason: fmt.Sprintf(format, args...)}
	}

	switch strategyType {
	case model.StrategyTypeRSI:
		period := get("period", 14)
		oversold := get("oversold", 30)
		overbought := get("overbought", 70)
		if period < 2 {
			return bad("rsi: period must be >= 2, got %v", period)
		}
		if oversold <= 0 || overbought >= 100 || oversold >= overbought {
			return bad("rsi: need 0 < oversold < overbought < 100, got %v/%v", oversold, overbought)
		}
	case model.StrategyTypeMACD:
		fast := get("fast_period", 12)
		slow := get("slow_period", 26)
		signal := get("signal_period", 9)
		if fast < 1 || signal < 1 {
			return bad("macd: periods must be >= 1")
		}
		if slow <= fast {
			return bad("macd: slow_period must exceed fast_period, got %v <= %v", slow, fast)
		}
	case model.StrategyTypeBollinger:
		period := get("period", 20)
		stdDev := get("std_dev", 2.0)
		if period < 2 {
			return bad("bollinger: period must be >= 2, got %v", period)
		}
		if stdDev <= 0 {
			return bad("bollinger: std_dev must be positive, got %v", stdDev)
		}
	case model.StrategyTypeMACross:
		fast := get("fast_period", 10)
		slow := get("slow_period", 50)
		if fast < 1 {
			return bad("ma_crossover: fast_period must be >= 1, got %v", fast)
		}
		if slow <= fast {
			return bad("ma_crossover: slow_period must exceed fast_period, got %v <= %v", slow, fast)
		}
	case model.StrategyTypeGrid:
		levels := get("grid_levels", 10)
		spacing := get("grid_spacing", 0.02)
		if levels < 2 {
			return bad("grid_trading: grid_levels must be >= 2, got %v", levels)
		}
		if spacing <= 0 || spacing >= 1 {
			return bad("grid_trading: grid_spacing must be in (0,1), got %v", spacing)
		}
	default:
		return bad("unknown strategy type %q", strategyType)
	}
	return nil
}
