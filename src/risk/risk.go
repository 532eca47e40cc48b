// Package risk gates strategy signals through the configured risk limits
// and sizes the resulting orders. Evaluation is stateless: every decision
// is a pure function of the signal, a portfolio snapshot and the limits,
// so rejections are values to inspect, never errors to catch.
package risk

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"cryptobot/src/model"
)

// Rejection reasons surfaced in Decision.Reason and the signal audit log.
const (
	ReasonMaxDrawdown   = "max_drawdown exceeded"
	ReasonMaxDailyLoss  = "max_daily_loss exceeded"
	ReasonDuplicate     = "open position already exists for symbol and strategy"
	ReasonNoPosition    = "no open position to sell"
	ReasonInvalidSignal = "signal price must be positive"
	ReasonNoEquity      = "portfolio value is not positive"
	ReasonZeroQuantity  = "no executable quantity after risk limits"
)

// Decision is the outcome of a risk evaluation: either an approved order
// request or a rejection with a reason.
type Decision struct {
	Approved bool                `json:"approved"`
	Order    *model.OrderRequest `json:"order,omitempty"`
	Reason   string              `json:"reason,omitempty"`
}

type Config struct {
	// OnePositionPerStrategy rejects a BUY when the same strategy already
	// holds an open position in the symbol.
	OnePositionPerStrategy bool
}

func DefaultConfig() Config {
	return Config{OnePositionPerStrategy: true}
}

type Manager struct {
	cfg Config
	now func() time.Time
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg, now: time.Now}
}

func reject(reason string) Decision {
	return Decision{Approved: false, Reason: reason}
}

// Evaluate runs the decision sequence: circuit breaker, duplicate-position
// guard, position sizing, protective levels. The snapshot is read-only and
// the limits are fixed for the session.
func (m *Manager) Evaluate(sig *model.Signal, snap *model.PortfolioSnapshot, strat *model.Strategy, limits model.RiskLimits) Decision {
	if sig == nil || sig.Price <= 0 {
		return reject(ReasonInvalidSignal)
	}
	if snap == nil || snap.TotalValue <= 0 {
		return reject(ReasonNoEquity)
	}

	// 1. Circuit breaker on drawdown and daily realized loss.
	if snap.RiskMetrics.Drawdown >= limits.MaxDrawdown {
		return reject(ReasonMaxDrawdown)
	}
	// Daily loss is measured against the day's opening equity.
	dayStart := snap.DayStartValue
	if dayStart <= 0 {
		dayStart = snap.TotalValue
	}
	if snap.DailyPnL < 0 && -snap.DailyPnL/dayStart >= limits.MaxDailyLoss {
		return reject(ReasonMaxDailyLoss)
	}

	// 2. Duplicate-position guard for entries; exits need something to exit.
	pos, hasPos := snap.PositionFor(sig.Symbol)
	switch sig.Kind {
	case model.SignalBuy:
		if m.cfg.OnePositionPerStrategy && hasPos && pos.StrategyID == sig.StrategyID {
			return reject(ReasonDuplicate)
		}
	case model.SignalSell:
		if !hasPos {
			return reject(ReasonNoPosition)
		}
	}

	// 3. Position sizing, capped by the portfolio-wide limit.
	total := decimal.NewFromFloat(snap.TotalValue)
	price := decimal.NewFromFloat(sig.Price)
	riskFraction := strat.RiskFraction
	if riskFraction <= 0 {
		riskFraction = 0.02
	}
	orderValue := decimal.Min(
		total.Mul(decimal.NewFromFloat(riskFraction)),
		total.Mul(decimal.NewFromFloat(limits.MaxPositionSize)),
	)
	quantity := orderValue.Div(price)

	if sig.Kind == model.SignalSell {
		// Exits never flip the book short: cap at the open quantity.
		open := decimal.NewFromFloat(pos.Quantity)
		quantity = decimal.Min(quantity, open)
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return reject(ReasonZeroQuantity)
	}

	// 4. Protective levels around the entry price.
	one := decimal.NewFromInt(1)
	sl := decimal.NewFromFloat(limits.StopLossPct)
	tp := decimal.NewFromFloat(limits.TakeProfitPct)
	var stop, target decimal.Decimal
	side := model.SideBuy
	if sig.Kind == model.SignalBuy {
		stop = price.Mul(one.Sub(sl))
		target = price.Mul(one.Add(tp))
	} else {
		side = model.SideSell
		stop = price.Mul(one.Add(sl))
		target = price.Mul(one.Sub(tp))
	}

	order := &model.OrderRequest{
		ClientID:    uuid.NewString(),
		StrategyID:  sig.StrategyID,
		Symbol:      sig.Symbol,
		Side:        side,
		Quantity:    quantity.InexactFloat64(),
		Price:       sig.Price,
		StopPrice:   stop.InexactFloat64(),
		TargetPrice: target.InexactFloat64(),
		Confidence:  sig.Confidence,
		CreatedAt:   m.now(),
	}

	logger.WithFields(logger.Fields{
		"symbol":      order.Symbol,
		"side":        order.Side,
		"quantity":    order.Quantity,
		"order_value": orderValue.InexactFloat64(),
	}).Debug("signal approved")

	return Decision{Approved: true, Order: order}
}
