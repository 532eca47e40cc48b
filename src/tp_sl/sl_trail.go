// Package tp_sl ratchets protective stops behind a long position as the
// market moves in its favor. Stops only ever move up.
package tp_sl

import "cryptobot/src/model"

func IsBullish(b model.Bar) bool { return b.Close > b.Open }

func AvgLow(bars []model.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Low
	}
	return sum / float64(len(bars))
}

// NextTrailingStop computes the next stop for a long position.
//
//   - gate: previous bar bullish
//   - floor: avg(low) over lookback
//   - clamp: candidate <= prev.Low
//   - update: SL = max(SL, candidate)
func NextTrailingStop(currentSL float64, bars []model.Bar, lookback int) (newSL float64, moved bool) {
	if len(bars) < 2 {
		return currentSL, false
	}
	if lookback <= 0 {
		lookback = 20
	}
	if lookback > len(bars) {
		lookback = len(bars)
	}

	prev := bars[len(bars)-2]
	if !IsBullish(prev) {
		return currentSL, false
	}

	candidate := AvgLow(bars[len(bars)-lookback:])
	if candidate > prev.Low {
		candidate = prev.Low
	}

	if candidate > currentSL {
		return candidate, true
	}
	return currentSL, false
}
