// Package bot runs the trading loop: it drives each active strategy over
// fresh market data, routes signals through the risk manager and applies
// approved fills to the portfolio.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cryptobot/src/model"
	"cryptobot/src/portfolio"
	"cryptobot/src/risk"
	"cryptobot/src/strategy"
	"cryptobot/src/tp_sl"
)

// trailLookback is the bar window used when trailing protective stops.
const trailLookback = 20

// State is the controller lifecycle state.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// MarketDataFeed supplies recent bars for a symbol, most recent last.
type MarketDataFeed interface {
	FetchBars(ctx context.Context, symbol string, limit int) ([]model.Bar, error)
}

// ExchangeAdapter submits risk-approved orders and reports the fill.
type ExchangeAdapter interface {
	Name() string
	PlaceOrder(ctx context.Context, order model.OrderRequest) (*model.Fill, error)
}

// TradeStore persists executed trades. A nil store disables persistence.
type TradeStore interface {
	SaveTrade(ctx context.Context, trade *model.Trade) error
}

type runner struct {
	cfg  model.Strategy
	impl strategy.Strategy
}

// Controller owns the bot state machine and the tick loop.
type Controller struct {
	cfg      Config
	feed     MarketDataFeed
	exchange ExchangeAdapter
	store    TradeStore
	tracker  *portfolio.Tracker
	riskMgr  *risk.Manager
	limits   model.RiskLimits
	audit    *auditRing

	mu        sync.Mutex
	state     State
	runners   []*runner
	loader    func(ctx context.Context) ([]model.Strategy, error)
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
	lastTick  time.Time
	tickCount uint64
	fillCount uint64
}

// Status is a point-in-time view of the controller for the API layer.
type Status struct {
	State            State     `json:"state"`
	Exchange         string    `json:"exchange,omitempty"`
	Strategies       []string  `json:"strategies"`
	ActiveStrategies int       `json:"active_strategies"`
	StartedAt        time.Time `json:"started_at,omitempty"`
	LastTick         time.Time `json:"last_tick,omitempty"`
	TickCount        uint64    `json:"tick_count"`
	TotalTrades      uint64    `json:"total_trades"`
	TotalPnL         float64   `json:"total_pnl"`
}

func NewController(cfg Config, feed MarketDataFeed, exchange ExchangeAdapter, store TradeStore, tracker *portfolio.Tracker, riskMgr *risk.Manager, limits model.RiskLimits) *Controller {
	return &Controller{
		cfg:      cfg,
		feed:     feed,
		exchange: exchange,
		store:    store,
		tracker:  tracker,
		riskMgr:  riskMgr,
		limits:   limits,
		audit:    newAuditRing(cfg.AuditSize),
		state:    StateStopped,
	}
}

// AddStrategy registers a strategy with the controller. The controller
// must be stopped; running strategies hold edge state that cannot be
// reshuffled mid-loop.
func (c *Controller) AddStrategy(cfg model.Strategy) error {
	impl, err := strategy.New(&cfg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateStopped {
		return fmt.Errorf("cannot add strategy while %s", c.state)
	}
	c.runners = append(c.runners, &runner{cfg: cfg, impl: impl})
	return nil
}

// SetStrategyLoader installs a callback that reloads strategy
// configurations on every Start, so edits made while stopped take effect.
func (c *Controller) SetStrategyLoader(loader func(ctx context.Context) ([]model.Strategy, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loader = loader
}

// Start validates the configuration and launches the tick loop. It
// returns a ConfigurationError when the bot is not runnable and a plain
// error on an invalid lifecycle transition.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateStopped {
		return fmt.Errorf("cannot start from %s", c.state)
	}
	if c.loader != nil {
		configs, err := c.loader(ctx)
		if err != nil {
			return &model.ConfigurationError{Reason: "failed to load strategies: " + err.Error()}
		}
		runners := make([]*runner, 0, len(configs))
		for i := range configs {
			cfg := configs[i]
			impl, err := strategy.New(&cfg)
			if err != nil {
				return err
			}
			runners = append(runners, &runner{cfg: cfg, impl: impl})
		}
		c.runners = runners
	}
	if err := c.validateLocked(); err != nil {
		return err
	}

	// Stale edge state from a previous run must not suppress or invent
	// crossings on the first ticks.
	for _, r := range c.runners {
		r.impl.Reset()
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = StateRunning
	c.startedAt = time.Now()
	c.tickCount = 0
	c.fillCount = 0

	logger.WithFields(logger.Fields{
		"strategies": len(c.runners),
		"exchange":   c.exchange.Name(),
		"interval":   c.cfg.TickInterval,
	}).Info("bot started")

	go c.run(runCtx, c.done)
	return nil
}

func (c *Controller) validateLocked() error {
	active := 0
	for _, r := range c.runners {
		if r.cfg.Active {
			active++
		}
	}
	if active == 0 {
		return &model.ConfigurationError{Reason: "no active strategies configured"}
	}
	if c.feed == nil {
		return &model.ConfigurationError{Reason: "no market data feed bound"}
	}
	if c.exchange == nil {
		return &model.ConfigurationError{Reason: "no exchange adapter bound"}
	}
	if err := c.limits.Validate(); err != nil {
		return &model.ConfigurationError{Reason: err.Error()}
	}
	if c.cfg.TickInterval <= 0 {
		return &model.ConfigurationError{Reason: "tick interval must be positive"}
	}
	return nil
}

// Pause suspends evaluation; the loop keeps running but ticks are skipped.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return fmt.Errorf("cannot pause from %s", c.state)
	}
	c.state = StatePaused
	logger.Info("bot paused")
	return nil
}

// Resume continues evaluation after a pause.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePaused {
		return fmt.Errorf("cannot resume from %s", c.state)
	}
	c.state = StateRunning
	logger.Info("bot resumed")
	return nil
}

// Stop terminates the loop and waits for the in-flight tick to finish.
// Stopping an already stopped bot is a no-op.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.state == StateStopped {
		c.mu.Unlock()
		return nil
	}
	c.state = StateStopped
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	logger.Info("bot stopped")
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.runners))
	active := 0
	for _, r := range c.runners {
		names = append(names, r.cfg.Name)
		if r.cfg.Active {
			active++
		}
	}
	status := Status{
		State:            c.state,
		Strategies:       names,
		ActiveStrategies: active,
		StartedAt:        c.startedAt,
		LastTick:         c.lastTick,
		TickCount:        c.tickCount,
		TotalTrades:      c.fillCount,
		TotalPnL:         c.tracker.Snapshot().TotalPnL,
	}
	if c.exchange != nil {
		status.Exchange = c.exchange.Name()
	}
	return status
}

// RecentSignals returns the newest audit entries, approvals and
// rejections both.
func (c *Controller) RecentSignals(limit int) []AuditEntry {
	return c.audit.Recent(limit)
}

// run owns the done channel it was handed at spawn; Stop may nil the
// struct field before this goroutine is ever scheduled.
func (c *Controller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.State() != StateRunning {
				continue
			}
			c.Tick(ctx)
		}
	}
}

// Tick evaluates every active strategy once, concurrently. A failure in
// one strategy never affects the others.
func (c *Controller) Tick(ctx context.Context) {
	c.mu.Lock()
	runners := make([]*runner, 0, len(c.runners))
	for _, r := range c.runners {
		if r.cfg.Active {
			runners = append(runners, r)
		}
	}
	c.lastTick = time.Now()
	c.tickCount++
	c.mu.Unlock()

	group, groupCtx := errgroup.WithContext(ctx)
	for _, r := range runners {
		r := r
		group.Go(func() error {
			if err := c.evaluate(groupCtx, r); err != nil {
				logger.WithError(err).
					WithField("strategy", r.cfg.Name).
					Error("strategy tick failed")
			}
			return nil
		})
	}
	_ = group.Wait()
}

func (c *Controller) evaluate(ctx context.Context, r *runner) error {
	bars, err := c.fetchBars(ctx, r.cfg.Symbol)
	if err != nil {
		return err
	}
	if len(bars) > 0 {
		c.tracker.MarkToMarket(map[string]float64{r.cfg.Symbol: bars[len(bars)-1].Close})
	}
	c.trailStop(r.cfg.Symbol, bars)

	sig, err := r.impl.Evaluate(bars)
	if err != nil {
		return err
	}
	if sig == nil {
		return nil
	}
	sig.StrategyID = r.cfg.ID

	if sig.Confidence < c.cfg.ConfidenceFloor {
		c.record(*sig, r.cfg.Name, false, fmt.Sprintf("confidence %.2f below floor %.2f", sig.Confidence, c.cfg.ConfidenceFloor), "")
		return nil
	}

	snap := c.tracker.Snapshot()
	decision := c.riskMgr.Evaluate(sig, snap, &r.cfg, c.limits)
	if !decision.Approved {
		c.record(*sig, r.cfg.Name, false, decision.Reason, "")
		logger.WithFields(logger.Fields{
			"strategy": r.cfg.Name,
			"symbol":   sig.Symbol,
			"reason":   decision.Reason,
		}).Info("signal rejected")
		return nil
	}

	// The symbol lock serializes submission and fill so a concurrent
	// action on the same symbol sees a consistent position.
	unlock := c.tracker.LockSymbol(sig.Symbol)
	defer unlock()

	fill, err := c.exchange.PlaceOrder(ctx, *decision.Order)
	if err != nil {
		c.record(*sig, r.cfg.Name, false, "order submission failed: "+err.Error(), "")
		return &model.ExchangeError{Symbol: sig.Symbol, Err: err}
	}

	trade := model.Trade{
		Symbol:     fill.Symbol,
		Side:       fill.Side,
		Quantity:   fill.Quantity,
		Price:      fill.Price,
		StrategyID: &r.cfg.ID,
		OrderID:    fill.OrderID,
		Exchange:   c.exchange.Name(),
		Timestamp:  fill.Timestamp,
	}
	realized, err := c.tracker.ApplyFill(trade)
	if err != nil {
		return fmt.Errorf("apply fill: %w", err)
	}
	if fill.Side == model.SideBuy {
		c.tracker.SetProtectiveLevels(fill.Symbol, decision.Order.StopPrice, decision.Order.TargetPrice)
	}
	c.mu.Lock()
	c.fillCount++
	c.mu.Unlock()
	c.record(*sig, r.cfg.Name, true, "", fill.OrderID)

	logger.WithFields(logger.Fields{
		"strategy": r.cfg.Name,
		"symbol":   fill.Symbol,
		"side":     fill.Side,
		"quantity": fill.Quantity,
		"price":    fill.Price,
		"realized": realized,
	}).Info("order filled")

	c.persistTrade(ctx, trade)
	return nil
}

// trailStop ratchets the protective stop of an open long position.
func (c *Controller) trailStop(symbol string, bars []model.Bar) {
	pos, ok := c.tracker.Snapshot().PositionFor(symbol)
	if !ok || pos.StopPrice <= 0 {
		return
	}
	if next, moved := tp_sl.NextTrailingStop(pos.StopPrice, bars, trailLookback); moved {
		c.tracker.SetProtectiveLevels(symbol, next, pos.TargetPrice)
		logger.WithFields(logger.Fields{
			"symbol": symbol,
			"stop":   next,
		}).Debug("trailing stop raised")
	}
}

// fetchBars retries transient feed failures with linear backoff.
func (c *Controller) fetchBars(ctx context.Context, symbol string) ([]model.Bar, error) {
	var lastErr error
	attempts := c.cfg.FetchRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		bars, err := c.feed.FetchBars(ctx, symbol, c.cfg.BarLookback)
		if err == nil {
			return bars, nil
		}
		lastErr = err
		var fetchErr *model.DataFetchError
		if !errors.As(err, &fetchErr) {
			return nil, err
		}
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.FetchBackoff * time.Duration(attempt)):
			}
		}
	}
	return nil, lastErr
}

// persistTrade stores the trade, retrying briefly. Persistence failure is
// logged but never blocks trading.
func (c *Controller) persistTrade(ctx context.Context, trade model.Trade) {
	if c.store == nil {
		return
	}
	attempts := c.cfg.PersistRetries
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = c.store.SaveTrade(ctx, &trade); err == nil {
			return
		}
	}
	logger.WithError(err).
		WithField("symbol", trade.Symbol).
		Warn("failed to persist trade, continuing")
}

func (c *Controller) record(sig model.Signal, strategyName string, approved bool, reason, orderID string) {
	c.audit.Add(AuditEntry{
		Signal:   sig,
		Strategy: strategyName,
		Approved: approved,
		Reason:   reason,
		OrderID:  orderID,
		At:       time.Now(),
	})
}
