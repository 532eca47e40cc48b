package strategy

import (
	"fmt"

	"cryptobot/src/model"
)

const gridConfidence = 0.7

// gridStrategy partitions a price range around a reference price into
// fixed-width levels. Crossing down through an unfilled level below the
// reference emits BUY, crossing up through an unfilled level above it
// emits SELL; each level fires once until the grid resets. The grid
// re-anchors when price leaves the configured range.
type gridStrategy struct {
	cfg     *model.Strategy
	count   int
	spacing float64

	reference float64
	levels    []float64
	filled    map[int]bool
	prevClose float64
	armed     bool
}

func newGrid(cfg *model.Strategy) *gridStrategy {
	return &gridStrategy{
		cfg:     cfg,
		count:   int(cfg.Param("grid_levels", 10)),
		spacing: cfg.Param("grid_spacing", 0.02),
		filled:  map[int]bool{},
	}
}

func (s *gridStrategy) Name() string {
	return fmt.Sprintf("GRID_%d_%.3f", s.count, s.spacing)
}

func (s *gridStrategy) Reset() {
	s.reference = 0
	s.levels = nil
	s.filled = map[int]bool{}
	s.prevClose = 0
	s.armed = false
}

func (s *gridStrategy) anchor(price float64) {
	s.reference = price
	halfRange := price * s.spacing * float64(s.count) / 2
	s.levels = make([]float64, s.count)
	step := 2 * halfRange / float64(s.count-1)
	for i := range s.levels {
		s.levels[i] = price - halfRange + float64(i)*step
	}
	s.filled = map[int]bool{}
}

func (s *gridStrategy) Evaluate(bars []model.Bar) (*model.Signal, error) {
	if len(bars) == 0 {
		return nil, nil
	}
	bar := bars[len(bars)-1]
	close := bar.Close

	if !s.armed {
		s.anchor(close)
		s.prevClose = close
		s.armed = true
		return nil, nil
	}

	// Price escaped the grid: re-anchor around the new level and wait for
	// the next crossing instead of firing on stale levels.
	if close < s.levels[0] || close > s.levels[len(s.levels)-1] {
		s.anchor(close)
		s.prevClose = close
		return nil, nil
	}

	prev := s.prevClose
	s.prevClose = close

	// Nearest unfilled buy level crossed downward on this tick.
	for i := len(s.levels) - 1; i >= 0; i-- {
		lvl := s.levels[i]
		if lvl >= s.reference || s.filled[i] {
			continue
		}
		if prev > lvl && close <= lvl {
			s.filled[i] = true
			reason := fmt.Sprintf("price crossed down through grid level %.2f", lvl)
			return newSignal(s.cfg, model.SignalBuy, gridConfidence, bar, reason), nil
		}
	}

	// Nearest unfilled sell level crossed upward.
	for i := 0; i < len(s.levels); i++ {
		lvl := s.levels[i]
		if lvl <= s.reference || s.filled[i] {
			continue
		}
		if prev < lvl && close >= lvl {
			s.filled[i] = true
			reason := fmt.Sprintf("price crossed up through grid level %.2f", lvl)
			return newSignal(s.cfg, model.SignalSell, gridConfidence, bar, reason), nil
		}
	}

	return nil, nil
}
