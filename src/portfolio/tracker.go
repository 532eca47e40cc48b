// Package portfolio owns position state and the equity-curve history the
// risk metrics are derived from. All mutation goes through the tracker;
// callers that need to serialize an order submission with the resulting
// fill take the per-symbol lock so independent symbols never block each
// other.
package portfolio

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"cryptobot/src/model"
)

// maxEquityPoints bounds the in-memory curve; older points age out.
const maxEquityPoints = 10000

type equityPoint struct {
	at    time.Time
	value float64
}

type Tracker struct {
	mu        sync.RWMutex
	cash      float64
	positions map[string]*model.Position

	curve       []equityPoint
	peakEquity  float64
	maxDrawdown float64

	realizedTotal  float64
	realizedDay    float64
	day            time.Time // UTC midnight of the day realizedDay covers
	dayStartEquity float64

	annualize float64
	now       func() time.Time

	symMu sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTracker starts a portfolio with the given cash. The annualization
// factor scales the Sharpe ratio; pass 1 for per-period Sharpe.
func NewTracker(cash float64, annualize float64) *Tracker {
	if annualize <= 0 {
		annualize = 1
	}
	t := &Tracker{
		cash:       cash,
		positions:  map[string]*model.Position{},
		peakEquity: cash,
		annualize:  annualize,
		now:        time.Now,
		locks:      map[string]*sync.Mutex{},
	}
	t.day = dayOf(t.now())
	t.dayStartEquity = cash
	t.curve = append(t.curve, equityPoint{at: t.now(), value: cash})
	return t
}

func dayOf(at time.Time) time.Time {
	u := at.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// LockSymbol acquires the per-symbol lock and returns its release func.
// Hold it across an order submission and the resulting ApplyFill so
// concurrent actions on the same symbol cannot interleave.
func (t *Tracker) LockSymbol(symbol string) func() {
	t.symMu.Lock()
	lock, ok := t.locks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[symbol] = lock
	}
	t.symMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// ApplyFill applies a confirmed fill to the book and returns the realized
// P&L (zero for opening or increasing fills).
func (t *Tracker) ApplyFill(trade model.Trade) (float64, error) {
	if trade.Quantity <= 0 || trade.Price <= 0 {
		return 0, fmt.Errorf("fill must have positive quantity and price, got %v @ %v", trade.Quantity, trade.Price)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollDayLocked()

	switch trade.Side {
	case model.SideBuy:
		t.cash -= trade.Quantity * trade.Price
		pos, ok := t.positions[trade.Symbol]
		if !ok {
			strategyID := uint(0)
			if trade.StrategyID != nil {
				strategyID = *trade.StrategyID
			}
			t.positions[trade.Symbol] = &model.Position{
				Symbol:       trade.Symbol,
				Quantity:     trade.Quantity,
				AveragePrice: trade.Price,
				CurrentPrice: trade.Price,
				StrategyID:   strategyID,
				OpenedAt:     trade.Timestamp,
				UpdatedAt:    trade.Timestamp,
			}
		} else {
			// Average price moves only on increasing fills.
			totalQty := pos.Quantity + trade.Quantity
			pos.AveragePrice = (pos.Quantity*pos.AveragePrice + trade.Quantity*trade.Price) / totalQty
			pos.Quantity = totalQty
			pos.CurrentPrice = trade.Price
			pos.UpdatedAt = trade.Timestamp
		}
		t.recordEquityLocked(trade.Timestamp)
		return 0, nil

	case model.SideSell:
		pos, ok := t.positions[trade.Symbol]
		if !ok {
			return 0, fmt.Errorf("sell fill for %s without an open position", trade.Symbol)
		}
		qty := trade.Quantity
		if qty > pos.Quantity {
			return 0, fmt.Errorf("sell fill %v exceeds open quantity %v for %s", qty, pos.Quantity, trade.Symbol)
		}
		t.cash += qty * trade.Price
		realized := (trade.Price - pos.AveragePrice) * qty
		pos.Quantity -= qty
		pos.CurrentPrice = trade.Price
		pos.UpdatedAt = trade.Timestamp
		if pos.Quantity <= 1e-12 {
			delete(t.positions, trade.Symbol)
		}
		t.realizedTotal += realized
		t.realizedDay += realized
		t.recordEquityLocked(trade.Timestamp)
		return realized, nil

	default:
		return 0, fmt.Errorf("unknown trade side %q", trade.Side)
	}
}

// MarkToMarket updates current prices and appends an equity point.
func (t *Tracker) MarkToMarket(prices map[string]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollDayLocked()

	now := t.now()
	for symbol, price := range prices {
		if price <= 0 {
			continue
		}
		if pos, ok := t.positions[symbol]; ok {
			pos.CurrentPrice = price
			pos.UpdatedAt = now
		}
	}
	t.recordEquityLocked(now)
}

// SetProtectiveLevels attaches stop and target prices to an open position.
func (t *Tracker) SetProtectiveLevels(symbol string, stop, target float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pos, ok := t.positions[symbol]; ok {
		pos.StopPrice = stop
		pos.TargetPrice = target
	}
}

// Snapshot is a pure read of the current portfolio state: values, open
// positions and the equity-curve-derived risk metrics.
func (t *Tracker) Snapshot() *model.PortfolioSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	positions := make([]model.Position, 0, len(t.positions))
	unrealized := 0.0
	for _, pos := range t.positions {
		positions = append(positions, *pos)
		unrealized += pos.UnrealizedPnL()
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })

	dailyPnL := t.realizedDay
	dayStart := t.dayStartEquity
	if dayOf(t.now()) != t.day {
		// A new UTC day started since the last mutation.
		dailyPnL = 0
		dayStart = t.equityLocked()
	}

	return &model.PortfolioSnapshot{
		TotalValue:    t.equityLocked(),
		Cash:          t.cash,
		TotalPnL:      t.realizedTotal + unrealized,
		DailyPnL:      dailyPnL,
		DayStartValue: dayStart,
		Positions:     positions,
		RiskMetrics:   t.metricsLocked(),
		Timestamp:     t.now(),
	}
}

func (t *Tracker) equityLocked() float64 {
	equity := t.cash
	for _, pos := range t.positions {
		equity += pos.MarketValue()
	}
	return equity
}

func (t *Tracker) recordEquityLocked(at time.Time) {
	equity := t.equityLocked()
	if at.IsZero() {
		at = t.now()
	}
	t.curve = append(t.curve, equityPoint{at: at, value: equity})
	if len(t.curve) > maxEquityPoints {
		t.curve = t.curve[len(t.curve)-maxEquityPoints:]
	}
	if equity > t.peakEquity {
		t.peakEquity = equity
	}
	if dd := t.drawdownLocked(equity); dd > t.maxDrawdown {
		t.maxDrawdown = dd
	}
}

func (t *Tracker) drawdownLocked(equity float64) float64 {
	if t.peakEquity <= 0 {
		return 0
	}
	dd := (t.peakEquity - equity) / t.peakEquity
	if dd < 0 {
		return 0
	}
	return dd
}

func (t *Tracker) metricsLocked() model.RiskMetrics {
	vol, mean := t.returnsStatsLocked()
	sharpe := 0.0
	if vol > 0 {
		sharpe = mean / vol * t.annualize
	}
	return model.RiskMetrics{
		Drawdown:    t.drawdownLocked(t.equityLocked()),
		MaxDrawdown: t.maxDrawdown,
		SharpeRatio: sharpe,
		Volatility:  vol,
	}
}

// returnsStatsLocked computes the standard deviation and mean of the
// periodic returns along the equity curve.
func (t *Tracker) returnsStatsLocked() (vol, mean float64) {
	if len(t.curve) < 3 {
		return 0, 0
	}
	returns := make([]float64, 0, len(t.curve)-1)
	for i := 1; i < len(t.curve); i++ {
		prev := t.curve[i-1].value
		if prev <= 0 {
			continue
		}
		returns = append(returns, (t.curve[i].value-prev)/prev)
	}
	if len(returns) < 2 {
		return 0, 0
	}
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance), mean
}

func (t *Tracker) rollDayLocked() {
	today := dayOf(t.now())
	if today.After(t.day) {
		logger.WithField("day", today.Format("2006-01-02")).Debug("daily P&L rollover")
		t.realizedDay = 0
		t.day = today
		t.dayStartEquity = t.equityLocked()
	}
}
