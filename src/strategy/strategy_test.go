package strategy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptobot/src/model"
)

func barsFromCloses(closes []float64) []model.Bar {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Symbol:   "BTCUSDT",
			Datetime: start.Add(time.Duration(i) * time.Hour),
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
		}
	}
	return bars
}

// replay feeds the series tick by tick, growing by one bar per evaluation,
// and collects every emitted signal with the tick index it fired on.
func replay(t *testing.T, s Strategy, bars []model.Bar) map[int]*model.Signal {
	t.Helper()
	signals := map[int]*model.Signal{}
	for i := 1; i <= len(bars); i++ {
		sig, err := s.Evaluate(bars[:i])
		require.NoError(t, err)
		if sig != nil {
			signals[i-1] = sig
		}
	}
	return signals
}

func TestRSIEmitsSingleBuyOnCross(t *testing.T) {
	// Flat closes hold RSI mid-range, then a steady decline drives it
	// below the oversold threshold exactly once.
	closes := make([]float64, 0, 26)
	for i := 0; i < 20; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= 6; i++ {
		closes = append(closes, 100-float64(i)*2)
	}

	s, err := New(&model.Strategy{
		ID:     1,
		Type:   model.StrategyTypeRSI,
		Symbol: "BTCUSDT",
		Parameters: map[string]float64{
			"period": 14, "oversold": 30, "overbought": 70,
		},
	})
	require.NoError(t, err)

	signals := replay(t, s, barsFromCloses(closes))
	require.Len(t, signals, 1, "edge-triggered: exactly one signal for one crossing")

	sig, ok := signals[20] // first declining bar
	require.True(t, ok, "signal must fire at the crossing tick, got %v", signals)
	assert.Equal(t, model.SignalBuy, sig.Kind)
	assert.Equal(t, uint(1), sig.StrategyID)
	assert.Equal(t, closes[20], sig.Price)
	assert.GreaterOrEqual(t, sig.Confidence, 0.0)
	assert.LessOrEqual(t, sig.Confidence, 1.0)
}

func TestRSISellOnOverboughtCross(t *testing.T) {
	closes := make([]float64, 0, 26)
	for i := 0; i < 20; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= 6; i++ {
		closes = append(closes, 100+float64(i)*2)
	}

	s, err := New(&model.Strategy{Type: model.StrategyTypeRSI, Symbol: "BTCUSDT"})
	require.NoError(t, err)

	signals := replay(t, s, barsFromCloses(closes))
	require.Len(t, signals, 1)
	sig := signals[20]
	require.NotNil(t, sig)
	assert.Equal(t, model.SignalSell, sig.Kind)
}

func TestMACDSingleBuyOnSignFlip(t *testing.T) {
	// Long decline establishes a negative MACD-signal spread, then a
	// sharp recovery flips it positive once.
	closes := make([]float64, 0, 80)
	for i := 0; i < 60; i++ {
		closes = append(closes, 200-float64(i))
	}
	for i := 0; i < 20; i++ {
		closes = append(closes, 141+float64(i)*3)
	}

	s, err := New(&model.Strategy{Type: model.StrategyTypeMACD, Symbol: "ETHUSDT"})
	require.NoError(t, err)

	signals := replay(t, s, barsFromCloses(closes))
	require.Len(t, signals, 1, "one sign flip, one signal")
	for _, sig := range signals {
		assert.Equal(t, model.SignalBuy, sig.Kind)
		assert.LessOrEqual(t, sig.Confidence, 1.0)
	}
}

func TestMACDNoSignalWhileSignStable(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 200 - float64(i) // one long trend, no flip
	}
	s, err := New(&model.Strategy{Type: model.StrategyTypeMACD, Symbol: "ETHUSDT"})
	require.NoError(t, err)

	signals := replay(t, s, barsFromCloses(closes))
	assert.Empty(t, signals)
}

func TestBollingerBuyOnLowerBandBreak(t *testing.T) {
	closes := make([]float64, 0, 30)
	for i := 0; i < 24; i++ {
		closes = append(closes, 100+float64(i%2)) // mild oscillation
	}
	closes = append(closes, 90) // sharp break below the lower band
	closes = append(closes, 89) // still below: no second signal

	s, err := New(&model.Strategy{Type: model.StrategyTypeBollinger, Symbol: "BTCUSDT"})
	require.NoError(t, err)

	signals := replay(t, s, barsFromCloses(closes))
	require.Len(t, signals, 1)
	sig, ok := signals[24]
	require.True(t, ok, "signal must fire on the breaking tick")
	assert.Equal(t, model.SignalBuy, sig.Kind)
}

func TestMACrossoverGoldenCross(t *testing.T) {
	closes := []float64{110, 108, 106, 104, 102, 100, 98, 96, 110, 124, 138, 152}

	s, err := New(&model.Strategy{
		Type:       model.StrategyTypeMACross,
		Symbol:     "BTCUSDT",
		Parameters: map[string]float64{"fast_period": 2, "slow_period": 5},
	})
	require.NoError(t, err)

	signals := replay(t, s, barsFromCloses(closes))
	require.Len(t, signals, 1)
	for _, sig := range signals {
		assert.Equal(t, model.SignalBuy, sig.Kind)
	}
}

func TestGridLevelsFireOnceAndReset(t *testing.T) {
	s, err := New(&model.Strategy{
		Type:       model.StrategyTypeGrid,
		Symbol:     "BTCUSDT",
		Parameters: map[string]float64{"grid_levels": 10, "grid_spacing": 0.02},
	})
	require.NoError(t, err)

	// Anchor at 100: levels span 90..110, nearest buy level ~98.89.
	closes := []float64{100, 99, 98.5, 98.4, 96, 99, 102, 115, 114}
	signals := replay(t, s, barsFromCloses(closes))

	require.NotNil(t, signals[2], "cross down through 98.89")
	assert.Equal(t, model.SignalBuy, signals[2].Kind)
	assert.Nil(t, signals[3], "level already filled")
	require.NotNil(t, signals[4], "cross down through 96.67")
	assert.Equal(t, model.SignalBuy, signals[4].Kind)
	require.NotNil(t, signals[6], "cross up through 101.11")
	assert.Equal(t, model.SignalSell, signals[6].Kind)
	assert.Nil(t, signals[7], "leaving the range re-anchors instead of signalling")
	assert.Len(t, signals, 3)
}

func TestResetClearsEdgeState(t *testing.T) {
	closes := make([]float64, 0, 26)
	for i := 0; i < 20; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= 6; i++ {
		closes = append(closes, 100-float64(i)*2)
	}
	bars := barsFromCloses(closes)

	s, err := New(&model.Strategy{Type: model.StrategyTypeRSI, Symbol: "BTCUSDT"})
	require.NoError(t, err)

	first := replay(t, s, bars)
	require.Len(t, first, 1)

	s.Reset()
	second := replay(t, s, bars)
	assert.Equal(t, len(first), len(second), "a reset instance replays the same signals")
}

func TestNewRejectsInvalidParameters(t *testing.T) {
	cases := []model.Strategy{
		{Type: model.StrategyTypeRSI, Parameters: map[string]float64{"oversold": 80, "overbought": 70}},
		{Type: model.StrategyTypeMACD, Parameters: map[string]float64{"fast_period": 26, "slow_period": 12}},
		{Type: model.StrategyTypeBollinger, Parameters: map[string]float64{"std_dev": -1}},
		{Type: model.StrategyTypeMACross, Parameters: map[string]float64{"fast_period": 50, "slow_period": 10}},
		{Type: model.StrategyTypeGrid, Parameters: map[string]float64{"grid_spacing": 1.5}},
		{Type: "martingale"},
	}

	for _, cfg := range cases {
		_, err := New(&cfg)
		require.Error(t, err, "type %s params %v", cfg.Type, cfg.Parameters)
		var confErr *model.ConfigurationError
		assert.True(t, errors.As(err, &confErr), "want ConfigurationError, got %T", err)
	}
}

func TestDefaultsPassValidation(t *testing.T) {
	for _, desc := range Catalog() {
		_, err := New(&model.Strategy{Type: desc.Type, Symbol: "BTCUSDT", Parameters: desc.Parameters})
		assert.NoError(t, err, desc.Type)
	}
}
