// REST client for the order gateway. Resty only, internal retry.
package connectors

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"

	"cryptobot/src/model"
)

const (
	defaultRetryAttempts   = 5
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second
)

type gatewayResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type gatewayFill struct {
	OrderID   string  `json:"order_id"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// GatewayExchange submits orders to the order gateway over signed REST.
type GatewayExchange struct {
	apiKey    string
	apiSecret string
	http      *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 || code == 408 {
		return true
	}
	return false
}

func NewGatewayExchange(cfg Config) *GatewayExchange {
	httpClient := resty.New().
		SetBaseURL(cfg.GatewayBaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &GatewayExchange{
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		http:      httpClient,
	}
}

func (g *GatewayExchange) Name() string { return "gateway" }

func signPayload(path, body string, expiry int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(path + fmt.Sprintf("%d", expiry) + body))
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *GatewayExchange) doRequest(ctx context.Context, method, path string, body []byte) (*gatewayResponse, error) {
	expiry := time.Now().Add(1 * time.Minute).Unix()
	sig := signPayload(path, string(body), expiry, g.apiSecret)

	req := g.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", g.apiKey).
		SetHeader("x-request-expiry", fmt.Sprintf("%d", expiry)).
		SetHeader("x-request-signature", sig)

	if body != nil {
		req = req.SetBody(body).SetHeader("Content-Type", "application/json")
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var parsed gatewayResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// PlaceOrder submits the order and returns the gateway's fill confirmation.
func (g *GatewayExchange) PlaceOrder(ctx context.Context, order model.OrderRequest) (*model.Fill, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	resp, err := g.doRequest(ctx, resty.MethodPost, "/api/v1/orders", payload)
	if err != nil {
		return nil, &model.ExchangeError{Symbol: order.Symbol, Err: err}
	}
	if resp.Code != 0 {
		return nil, &model.ExchangeError{Symbol: order.Symbol, Err: fmt.Errorf("gateway error %d: %s", resp.Code, resp.Msg)}
	}

	var fill gatewayFill
	if err := json.Unmarshal(resp.Data, &fill); err != nil {
		return nil, &model.ExchangeError{Symbol: order.Symbol, Err: err}
	}

	logger.WithFields(logger.Fields{
		"symbol":   fill.Symbol,
		"side":     fill.Side,
		"order_id": fill.OrderID,
	}).Info("gateway order accepted")

	return &model.Fill{
		OrderID:   fill.OrderID,
		Symbol:    fill.Symbol,
		Side:      fill.Side,
		Quantity:  fill.Quantity,
		Price:     fill.Price,
		Timestamp: time.Unix(fill.Timestamp, 0).UTC(),
	}, nil
}

// CancelAll cancels every resting order for the symbol.
func (g *GatewayExchange) CancelAll(ctx context.Context, symbol string) error {
	resp, err := g.doRequest(ctx, resty.MethodDelete, "/api/v1/orders/all?symbol="+symbol, nil)
	if err != nil {
		return &model.ExchangeError{Symbol: symbol, Err: err}
	}
	if resp.Code != 0 {
		return &model.ExchangeError{Symbol: symbol, Err: fmt.Errorf("gateway error %d: %s", resp.Code, resp.Msg)}
	}
	return nil
}
