package connectors

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"cryptobot/src/model"
)

// PaperExchange fills every order immediately at its limit price. It is
// the default adapter for dry runs and tests.
type PaperExchange struct {
	mu    sync.Mutex
	fills []model.Fill
}

func NewPaperExchange() *PaperExchange {
	return &PaperExchange{}
}

func (p *PaperExchange) Name() string { return "paper" }

func (p *PaperExchange) PlaceOrder(ctx context.Context, order model.OrderRequest) (*model.Fill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orderID := order.ClientID
	if orderID == "" {
		orderID = uuid.NewString()
	}
	fill := model.Fill{
		OrderID:   orderID,
		Symbol:    order.Symbol,
		Side:      order.Side,
		Quantity:  order.Quantity,
		Price:     order.Price,
		Timestamp: time.Now().UTC(),
	}

	p.mu.Lock()
	p.fills = append(p.fills, fill)
	p.mu.Unlock()

	logger.WithFields(logger.Fields{
		"symbol":   fill.Symbol,
		"side":     fill.Side,
		"quantity": fill.Quantity,
		"price":    fill.Price,
	}).Info("paper fill")

	return &fill, nil
}

// Fills returns a copy of every fill the paper exchange produced.
func (p *PaperExchange) Fills() []model.Fill {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Fill(nil), p.fills...)
}
