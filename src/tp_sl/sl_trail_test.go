package tp_sl

import (
	"testing"
	"time"

	"cryptobot/src/model"
)

func c(dt time.Time, o, h, l, cl float64) model.Bar {
	return model.Bar{
		Symbol:   "BTCUSDT",
		Datetime: dt,
		Open:     o,
		High:     h,
		Low:      l,
		Close:    cl,
		Volume:   1,
	}
}

func TestNextTrailingStop_NotEnoughBars(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := []model.Bar{c(now, 100, 101, 99, 100)}

	sl, moved := NextTrailingStop(95, bars, 20)
	if moved {
		t.Fatalf("expected moved=false")
	}
	if sl != 95 {
		t.Fatalf("expected sl unchanged, got=%v", sl)
	}
}

func TestNextTrailingStop_PrevNotBullish_NoRaise(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 2, 0, 0, time.UTC)
	bars := []model.Bar{
		c(now.Add(-2*time.Hour), 100, 101, 99, 100),
		c(now.Add(-1*time.Hour), 105, 106, 100, 104), // prev: bearish
		c(now, 106, 107, 103, 106),
	}

	sl, moved := NextTrailingStop(98, bars, 3)
	if moved {
		t.Fatalf("expected moved=false")
	}
	if sl != 98 {
		t.Fatalf("expected sl unchanged, got=%v", sl)
	}
}

func TestNextTrailingStop_RaiseToFloorAvg_ClampedToPrevLow(t *testing.T) {
	// lows (lookback 3) = 100, 101, 102 => avg = 101, prev.Low = 101
	now := time.Date(2026, 3, 1, 0, 3, 0, 0, time.UTC)
	bars := []model.Bar{
		c(now.Add(-2*time.Hour), 100, 102, 100, 101),
		c(now.Add(-1*time.Hour), 101, 103, 101, 102), // prev: bullish
		c(now, 102, 104, 102, 103),
	}

	sl, moved := NextTrailingStop(95, bars, 3)
	if !moved {
		t.Fatalf("expected moved=true")
	}
	if sl != 101 {
		t.Fatalf("expected sl=101, got=%v", sl)
	}
}

func TestNextTrailingStop_NeverLowers(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 3, 0, 0, time.UTC)
	bars := []model.Bar{
		c(now.Add(-2*time.Hour), 100, 102, 90, 101),
		c(now.Add(-1*time.Hour), 101, 103, 91, 102), // prev: bullish
		c(now, 102, 104, 92, 103),
	}

	sl, moved := NextTrailingStop(99, bars, 3)
	if moved {
		t.Fatalf("expected moved=false when candidate below current stop")
	}
	if sl != 99 {
		t.Fatalf("expected sl unchanged, got=%v", sl)
	}
}
