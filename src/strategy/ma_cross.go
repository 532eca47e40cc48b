package strategy

import (
	"fmt"
	"math"

	"cryptobot/src/indicator"
	"cryptobot/src/model"
)

// maCrossStrategy tracks the sign of (fast SMA - slow SMA), mirroring the
// MACD edge logic: BUY on a golden cross, SELL on a death cross.
type maCrossStrategy struct {
	cfg  *model.Strategy
	fast int
	slow int

	prevSign int
}

func newMACross(cfg *model.Strategy) *maCrossStrategy {
	return &maCrossStrategy{
		cfg:  cfg,
		fast: int(cfg.Param("fast_period", 10)),
		slow: int(cfg.Param("slow_period", 50)),
	}
}

func (s *maCrossStrategy) Name() string {
	return fmt.Sprintf("MA_%d_%d", s.fast, s.slow)
}

func (s *maCrossStrategy) Reset() {
	s.prevSign = 0
}

func (s *maCrossStrategy) Evaluate(bars []model.Bar) (*model.Signal, error) {
	closes := model.Closes(bars)
	fastMA := indicator.SMA(closes, s.fast)
	slowMA := indicator.SMA(closes, s.slow)
	n := len(closes)
	if n == 0 {
		return nil, nil
	}
	fast, slow := fastMA[n-1], slowMA[n-1]
	if !indicator.Valid(fast) || !indicator.Valid(slow) || slow == 0 {
		return nil, nil
	}

	sign := -1
	if fast > slow {
		sign = 1
	}
	prevSign := s.prevSign
	s.prevSign = sign
	if prevSign == 0 || prevSign == sign {
		return nil, nil
	}

	confidence := math.Abs(fast-slow) / slow * 10
	bar := bars[n-1]
	if sign > 0 {
		reason := fmt.Sprintf("golden cross: MA%d %.2f above MA%d %.2f", s.fast, fast, s.slow, slow)
		return newSignal(s.cfg, model.SignalBuy, confidence, bar, reason), nil
	}
	reason := fmt.Sprintf("death cross: MA%d %.2f below MA%d %.2f", s.fast, fast, s.slow, slow)
	return newSignal(s.cfg, model.SignalSell, confidence, bar, reason), nil
}
