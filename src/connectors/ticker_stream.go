package connectors

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

// PriceUpdate is one mark price observed on the ticker stream.
type PriceUpdate struct {
	Symbol string
	Price  float64
	At     time.Time
}

type miniTicker struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

// TickerStream subscribes to the exchange miniTicker websocket and emits
// price updates until the context is cancelled. It reconnects with
// backoff on stream errors.
type TickerStream struct {
	baseURL string
	symbols []string
	updates chan PriceUpdate
}

func NewTickerStream(cfg Config, symbols []string) *TickerStream {
	return &TickerStream{
		baseURL: cfg.StreamBaseURL,
		symbols: symbols,
		updates: make(chan PriceUpdate, 64),
	}
}

// Updates is the stream of observed prices. It is closed when Run exits.
func (s *TickerStream) Updates() <-chan PriceUpdate {
	return s.updates
}

func (s *TickerStream) endpoint() string {
	streams := make([]string, 0, len(s.symbols))
	for _, symbol := range s.symbols {
		streams = append(streams, strings.ToLower(symbol)+"@miniTicker")
	}
	return s.baseURL + "/" + strings.Join(streams, "/")
}

// Run blocks reading the stream, pushing updates into Updates().
func (s *TickerStream) Run(ctx context.Context) error {
	defer close(s.updates)

	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.endpoint(), nil)
		if err != nil {
			logger.WithError(err).Warn("ticker stream dial failed, backing off")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := s.consume(ctx, conn); err != nil {
			logger.WithError(err).Warn("ticker stream read failed, reconnecting")
		}
		_ = conn.Close()
	}
}

func (s *TickerStream) consume(ctx context.Context, conn *websocket.Conn) error {
	// Close the socket when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var tick miniTicker
		if err := json.Unmarshal(raw, &tick); err != nil {
			continue
		}
		price, err := strconv.ParseFloat(tick.Close, 64)
		if err != nil || price <= 0 {
			continue
		}

		update := PriceUpdate{Symbol: tick.Symbol, Price: price, At: time.Now().UTC()}
		select {
		case s.updates <- update:
		default:
			// Drop on a full buffer, the next tick supersedes it anyway.
		}
	}
}
