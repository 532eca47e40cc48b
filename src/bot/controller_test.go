package bot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptobot/src/model"
	"cryptobot/src/portfolio"
	"cryptobot/src/risk"
)

type stubStrategy struct {
	name   string
	signal *model.Signal
	err    error
	evals  atomic.Int64
	resets atomic.Int64
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Evaluate(bars []model.Bar) (*model.Signal, error) {
	s.evals.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if s.signal == nil {
		return nil, nil
	}
	sig := *s.signal
	return &sig, nil
}

func (s *stubStrategy) Reset() { s.resets.Add(1) }

type stubFeed struct {
	mu       sync.Mutex
	bars     []model.Bar
	failures int
	calls    int
}

func (f *stubFeed) FetchBars(ctx context.Context, symbol string, limit int) ([]model.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, &model.DataFetchError{Symbol: symbol, Err: errors.New("upstream timeout")}
	}
	return f.bars, nil
}

type stubExchange struct {
	mu     sync.Mutex
	orders []model.OrderRequest
	err    error
}

func (e *stubExchange) Name() string { return "paper" }

func (e *stubExchange) PlaceOrder(ctx context.Context, order model.OrderRequest) (*model.Fill, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.orders = append(e.orders, order)
	return &model.Fill{
		OrderID:   order.ClientID,
		Symbol:    order.Symbol,
		Side:      order.Side,
		Quantity:  order.Quantity,
		Price:     order.Price,
		Timestamp: time.Now().UTC(),
	}, nil
}

func (e *stubExchange) placed() []model.OrderRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.OrderRequest(nil), e.orders...)
}

type stubStore struct {
	mu     sync.Mutex
	trades []model.Trade
	fails  int
}

func (s *stubStore) SaveTrade(ctx context.Context, trade *model.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails > 0 {
		s.fails--
		return errors.New("db unavailable")
	}
	s.trades = append(s.trades, *trade)
	return nil
}

func testConfig() Config {
	return Config{
		TickInterval:    10 * time.Millisecond,
		BarLookback:     50,
		ConfidenceFloor: 0.6,
		FetchRetries:    3,
		FetchBackoff:    time.Millisecond,
		PersistRetries:  2,
		AuditSize:       50,
	}
}

func testBars() []model.Bar {
	bars := make([]model.Bar, 30)
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = model.Bar{Symbol: "BTCUSDT", Datetime: at.Add(time.Duration(i) * time.Hour), Close: 50000}
	}
	return bars
}

func buySignal(conf float64) *model.Signal {
	return &model.Signal{
		Symbol:     "BTCUSDT",
		Kind:       model.SignalBuy,
		Confidence: conf,
		Price:      50000,
		Timestamp:  time.Now().UTC(),
	}
}

func newTestController(feed MarketDataFeed, exchange ExchangeAdapter, store TradeStore) *Controller {
	tracker := portfolio.NewTracker(100000, 1)
	return NewController(testConfig(), feed, exchange, store, tracker, risk.NewManager(risk.DefaultConfig()), model.DefaultRiskLimits())
}

func addStub(c *Controller, s *stubStrategy, active bool) {
	c.runners = append(c.runners, &runner{
		cfg:  model.Strategy{ID: uint(len(c.runners) + 1), Name: s.name, Symbol: "BTCUSDT", Active: active, RiskFraction: 0.02},
		impl: s,
	})
}

func TestStartWithoutStrategiesIsConfigurationError(t *testing.T) {
	c := newTestController(&stubFeed{bars: testBars()}, &stubExchange{}, nil)

	err := c.Start(context.Background())
	var cfgErr *model.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, StateStopped, c.State())
}

func TestStartWithOnlyInactiveStrategiesIsConfigurationError(t *testing.T) {
	c := newTestController(&stubFeed{bars: testBars()}, &stubExchange{}, nil)
	addStub(c, &stubStrategy{name: "idle"}, false)

	err := c.Start(context.Background())
	var cfgErr *model.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLifecycleTransitions(t *testing.T) {
	c := newTestController(&stubFeed{bars: testBars()}, &stubExchange{}, nil)
	addStub(c, &stubStrategy{name: "noop"}, true)

	assert.Error(t, c.Pause())
	assert.Error(t, c.Resume())

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, StateRunning, c.State())
	assert.Error(t, c.Start(context.Background()))

	require.NoError(t, c.Pause())
	assert.Equal(t, StatePaused, c.State())
	assert.Error(t, c.Pause())

	require.NoError(t, c.Resume())
	assert.Equal(t, StateRunning, c.State())

	require.NoError(t, c.Stop())
	assert.Equal(t, StateStopped, c.State())
	require.NoError(t, c.Stop())
}

func TestImmediateStopAfterStart(t *testing.T) {
	// Stop racing the freshly spawned loop goroutine must settle cleanly,
	// even before that goroutine is ever scheduled.
	c := newTestController(&stubFeed{bars: testBars()}, &stubExchange{}, nil)
	addStub(c, &stubStrategy{name: "shortlived"}, true)

	for i := 0; i < 100; i++ {
		require.NoError(t, c.Start(context.Background()))
		require.NoError(t, c.Stop())
		assert.Equal(t, StateStopped, c.State())
	}
}

func TestStartResetsStrategyState(t *testing.T) {
	c := newTestController(&stubFeed{bars: testBars()}, &stubExchange{}, nil)
	stub := &stubStrategy{name: "resettable"}
	addStub(c, stub, true)

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()
	assert.Equal(t, int64(1), stub.resets.Load())
}

func TestTickRoutesApprovedSignalToExchange(t *testing.T) {
	exchange := &stubExchange{}
	store := &stubStore{}
	c := newTestController(&stubFeed{bars: testBars()}, exchange, store)
	addStub(c, &stubStrategy{name: "momentum", signal: buySignal(0.9)}, true)

	c.Tick(context.Background())

	orders := exchange.placed()
	require.Len(t, orders, 1)
	assert.Equal(t, model.SideBuy, orders[0].Side)
	assert.Equal(t, "BTCUSDT", orders[0].Symbol)
	assert.Greater(t, orders[0].Quantity, 0.0)
	assert.Greater(t, orders[0].StopPrice, 0.0)

	require.Len(t, store.trades, 1)
	require.NotNil(t, store.trades[0].StrategyID)

	snap := c.tracker.Snapshot()
	require.Len(t, snap.Positions, 1)

	recent := c.RecentSignals(10)
	require.Len(t, recent, 1)
	assert.True(t, recent[0].Approved)
}

func TestConfidenceFloorRejectsWeakSignals(t *testing.T) {
	exchange := &stubExchange{}
	c := newTestController(&stubFeed{bars: testBars()}, exchange, nil)
	addStub(c, &stubStrategy{name: "hesitant", signal: buySignal(0.3)}, true)

	c.Tick(context.Background())

	assert.Empty(t, exchange.placed())
	recent := c.RecentSignals(10)
	require.Len(t, recent, 1)
	assert.False(t, recent[0].Approved)
	assert.Contains(t, recent[0].Reason, "confidence")
}

func TestStrategyFailureDoesNotAffectOthers(t *testing.T) {
	exchange := &stubExchange{}
	c := newTestController(&stubFeed{bars: testBars()}, exchange, nil)
	addStub(c, &stubStrategy{name: "broken", err: errors.New("indicator blew up")}, true)
	addStub(c, &stubStrategy{name: "healthy", signal: buySignal(0.9)}, true)

	c.Tick(context.Background())

	require.Len(t, exchange.placed(), 1)
}

func TestTransientFeedFailureIsRetried(t *testing.T) {
	feed := &stubFeed{bars: testBars(), failures: 2}
	exchange := &stubExchange{}
	c := newTestController(feed, exchange, nil)
	addStub(c, &stubStrategy{name: "patient", signal: buySignal(0.9)}, true)

	c.Tick(context.Background())

	assert.Equal(t, 3, feed.calls)
	require.Len(t, exchange.placed(), 1)
}

func TestExchangeRejectionIsAuditedNotFatal(t *testing.T) {
	exchange := &stubExchange{err: errors.New("insufficient margin")}
	c := newTestController(&stubFeed{bars: testBars()}, exchange, nil)
	addStub(c, &stubStrategy{name: "unlucky", signal: buySignal(0.9)}, true)

	c.Tick(context.Background())

	recent := c.RecentSignals(10)
	require.Len(t, recent, 1)
	assert.False(t, recent[0].Approved)
	assert.Contains(t, recent[0].Reason, "order submission failed")
	assert.Empty(t, c.tracker.Snapshot().Positions)
}

func TestPersistenceFailureDoesNotBlockTrading(t *testing.T) {
	store := &stubStore{fails: 10}
	exchange := &stubExchange{}
	c := newTestController(&stubFeed{bars: testBars()}, exchange, store)
	addStub(c, &stubStrategy{name: "persistent", signal: buySignal(0.9)}, true)

	c.Tick(context.Background())

	require.Len(t, exchange.placed(), 1)
	assert.Empty(t, store.trades)
	assert.Len(t, c.tracker.Snapshot().Positions, 1)
}

func TestPausedLoopSkipsEvaluation(t *testing.T) {
	stub := &stubStrategy{name: "pausable"}
	c := newTestController(&stubFeed{bars: testBars()}, &stubExchange{}, nil)
	addStub(c, stub, true)

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	time.Sleep(60 * time.Millisecond)
	require.NoError(t, c.Pause())
	evalsAtPause := stub.evals.Load()
	assert.Greater(t, evalsAtPause, int64(0))

	time.Sleep(60 * time.Millisecond)
	// Allow at most one in-flight evaluation to drain after the pause.
	assert.LessOrEqual(t, stub.evals.Load(), evalsAtPause+1)
}

func TestAuditRingBounds(t *testing.T) {
	ring := newAuditRing(3)
	for i := 0; i < 5; i++ {
		ring.Add(AuditEntry{Strategy: string(rune('a' + i))})
	}
	recent := ring.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "e", recent[0].Strategy)
	assert.Equal(t, "c", recent[2].Strategy)
}
