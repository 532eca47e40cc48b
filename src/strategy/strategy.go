// Package strategy implements the edge-triggered trading strategies. Each
// strategy instance evaluates a fresh bar series per tick and emits at most
// one signal per state transition; the minimal previous-tick state needed
// for edge detection (previous indicator value or sign, band relation,
// filled grid levels) lives in the instance itself.
package strategy

import (
	"fmt"
	"time"

	"cryptobot/src/model"
)

// Strategy evaluates an ordered bar series and returns a signal, or nil
// when no state transition occurred on the latest bar.
type Strategy interface {
	Name() string
	Evaluate(bars []model.Bar) (*model.Signal, error)
	// Reset clears edge-detection state. The controller resets all
	// instances when the bot starts so a stopped session leaves nothing
	// behind.
	Reset()
}

// New builds a strategy instance from a validated configuration.
func New(cfg *model.Strategy) (Strategy, error) {
	if cfg == nil {
		return nil, &model.ConfigurationError{Reason: "strategy is nil"}
	}
	if err := ValidateParams(cfg.Type, cfg.Parameters); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case model.StrategyTypeRSI:
		return newRSI(cfg), nil
	case model.StrategyTypeMACD:
		return newMACD(cfg), nil
	case model.StrategyTypeBollinger:
		return newBollinger(cfg), nil
	case model.StrategyTypeMACross:
		return newMACross(cfg), nil
	case model.StrategyTypeGrid:
		return newGrid(cfg), nil
	default:
		return nil, &model.ConfigurationError{Reason: fmt.Sprintf("unknown strategy type %q", cfg.Type)}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func newSignal(cfg *model.Strategy, kind model.SignalKind, confidence float64, bar model.Bar, reason string) *model.Signal {
	return &model.Signal{
		Symbol:     cfg.Symbol,
		Kind:       kind,
		Confidence: clamp01(confidence),
		Price:      bar.Close,
		Timestamp:  barTime(bar),
		StrategyID: cfg.ID,
		Reason:     reason,
	}
}

func barTime(bar model.Bar) time.Time {
	if bar.Datetime.IsZero() {
		return time.Now().UTC()
	}
	return bar.Datetime
}
