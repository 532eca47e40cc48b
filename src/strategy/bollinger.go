package strategy

import (
	"fmt"

	"cryptobot/src/indicator"
	"cryptobot/src/model"
)

const (
	bandInside = iota
	bandBelowLower
	bandAboveUpper
)

// bollingerStrategy emits BUY when the close transitions from at-or-above
// the lower band to below it, SELL on the symmetric upper-band break.
type bollingerStrategy struct {
	cfg    *model.Strategy
	period int
	stdDev float64

	prevRelation int
	hasPrev      bool
}

func newBollinger(cfg *model.Strategy) *bollingerStrategy {
	return &bollingerStrategy{
		cfg:    cfg,
		period: int(cfg.Param("period", 20)),
		stdDev: cfg.Param("std_dev", 2.0),
	}
}

func (s *bollingerStrategy) Name() string {
	return fmt.Sprintf("BOLL_%d_%.1f", s.period, s.stdDev)
}

func (s *bollingerStrategy) Reset() {
	s.prevRelation = bandInside
	s.hasPrev = false
}

func (s *bollingerStrategy) Evaluate(bars []model.Bar) (*model.Signal, error) {
	upper, _, lower := indicator.Bollinger(model.Closes(bars), s.period, s.stdDev)
	n := len(upper)
	if n == 0 {
		return nil, nil
	}
	up, low := upper[n-1], lower[n-1]
	if !indicator.Valid(up) || !indicator.Valid(low) {
		return nil, nil
	}

	bar := bars[len(bars)-1]
	relation := bandInside
	if bar.Close < low {
		relation = bandBelowLower
	} else if bar.Close > up {
		relation = bandAboveUpper
	}

	prev, hadPrev := s.prevRelation, s.hasPrev
	s.prevRelation, s.hasPrev = relation, true
	if !hadPrev || prev == relation {
		return nil, nil
	}

	if relation == bandBelowLower {
		confidence := (low-bar.Close)/bar.Close + 0.5
		reason := fmt.Sprintf("close %.2f broke below lower band %.2f", bar.Close, low)
		return newSignal(s.cfg, model.SignalBuy, confidence, bar, reason), nil
	}
	if relation == bandAboveUpper {
		confidence := (bar.Close-up)/bar.Close + 0.5
		reason := fmt.Sprintf("close %.2f broke above upper band %.2f", bar.Close, up)
		return newSignal(s.cfg, model.SignalSell, confidence, bar, reason), nil
	}
	// Back inside the bands: no signal, just a state update.
	return nil, nil
}
