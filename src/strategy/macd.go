package strategy

import (
	"fmt"
	"math"

	"cryptobot/src/indicator"
	"cryptobot/src/model"
)

// macdStrategy tracks the sign of (MACD line - signal line) and emits BUY
// on a negative-to-positive flip (golden cross), SELL on the opposite flip.
type macdStrategy struct {
	cfg    *model.Strategy
	fast   int
	slow   int
	signal int

	prevSign int // -1, +1, or 0 when unknown
}

func newMACD(cfg *model.Strategy) *macdStrategy {
	return &macdStrategy{
		cfg:    cfg,
		fast:   int(cfg.Param("fast_period", 12)),
		slow:   int(cfg.Param("slow_period", 26)),
		signal: int(cfg.Param("signal_period", 9)),
	}
}

func (s *macdStrategy) Name() string {
	return fmt.Sprintf("MACD_%d_%d_%d", s.fast, s.slow, s.signal)
}

func (s *macdStrategy) Reset() {
	s.prevSign = 0
}

func (s *macdStrategy) Evaluate(bars []model.Bar) (*model.Signal, error) {
	line, signalLine, histogram := indicator.MACD(model.Closes(bars), s.fast, s.slow, s.signal)
	n := len(line)
	if n == 0 {
		return nil, nil
	}
	macd, sig, hist := line[n-1], signalLine[n-1], histogram[n-1]
	if !indicator.Valid(macd) || !indicator.Valid(sig) {
		return nil, nil
	}

	sign := -1
	if macd > sig {
		sign = 1
	}
	prevSign := s.prevSign
	s.prevSign = sign
	if prevSign == 0 || prevSign == sign {
		return nil, nil
	}
	// The signal line is seeded with an SMA, which puts a transient flip
	// in the spread right after it first becomes defined. Edge detection
	// stays disarmed until the seed has washed out of the average.
	if n-1 < s.slow+2*s.signal-2 {
		return nil, nil
	}

	confidence := 0.5
	if macd != 0 {
		confidence = math.Abs(hist) / math.Abs(macd)
	}

	bar := bars[len(bars)-1]
	if sign > 0 {
		reason := fmt.Sprintf("golden cross: MACD %.4f above signal %.4f", macd, sig)
		return newSignal(s.cfg, model.SignalBuy, confidence, bar, reason), nil
	}
	reason := fmt.Sprintf("death cross: MACD %.4f below signal %.4f", macd, sig)
	return newSignal(s.cfg, model.SignalSell, confidence, bar, reason), nil
}
