package strategy

import (
	"fmt"

	"cryptobot/src/indicator"
	"cryptobot/src/model"
)

// rsiStrategy emits BUY when RSI crosses down through the oversold
// threshold and SELL when it crosses up through the overbought threshold.
// Edge-triggered: remaining past a threshold produces nothing further.
type rsiStrategy struct {
	cfg        *model.Strategy
	period     int
	oversold   float64
	overbought float64

	prevRSI float64
	hasPrev bool
}

func newRSI(cfg *model.Strategy) *rsiStrategy {
	return &rsiStrategy{
		cfg:        cfg,
		period:     int(cfg.Param("period", 14)),
		oversold:   cfg.Param("oversold", 30),
		overbought: cfg.Param("overbought", 70),
	}
}

func (s *rsiStrategy) Name() string {
	return fmt.Sprintf("RSI_%d", s.period)
}

func (s *rsiStrategy) Reset() {
	s.prevRSI = 0
	s.hasPrev = false
}

func (s *rsiStrategy) Evaluate(bars []model.Bar) (*model.Signal, error) {
	values := indicator.RSI(model.Closes(bars), s.period)
	if len(values) == 0 {
		return nil, nil
	}
	cur := values[len(values)-1]
	if !indicator.Valid(cur) {
		return nil, nil
	}

	prev, hadPrev := s.prevRSI, s.hasPrev
	s.prevRSI, s.hasPrev = cur, true
	if !hadPrev {
		return nil, nil
	}

	bar := bars[len(bars)-1]
	if prev >= s.oversold && cur < s.oversold {
		confidence := (s.oversold - cur) / s.oversold
		reason := fmt.Sprintf("RSI %.2f crossed below %.0f", cur, s.oversold)
		return newSignal(s.cfg, model.SignalBuy, confidence, bar, reason), nil
	}
	if prev <= s.overbought && cur > s.overbought {
		confidence := (cur - s.overbought) / (100 - s.overbought)
		reason := fmt.Sprintf("RSI %.2f crossed above %.0f", cur, s.overbought)
		return newSignal(s.cfg, model.SignalSell, confidence, bar, reason), nil
	}
	return nil, nil
}
