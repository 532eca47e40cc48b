package connectors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptobot/src/model"
)

func testGatewayConfig(baseURL string) Config {
	return Config{
		APIKey:         "test-key",
		APISecret:      "test-secret",
		GatewayBaseURL: baseURL,
		RequestTimeout: 5 * time.Second,
	}
}

func TestGatewayPlaceOrderParsesFill(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/orders", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("x-request-signature"))
		assert.NotEmpty(t, r.Header.Get("x-request-expiry"))

		var order model.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&order))
		assert.Equal(t, "BTCUSDT", order.Symbol)

		resp := map[string]interface{}{
			"code": 0,
			"data": map[string]interface{}{
				"order_id":  "gw-1",
				"symbol":    order.Symbol,
				"side":      order.Side,
				"quantity":  order.Quantity,
				"price":     order.Price,
				"timestamp": at.Unix(),
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	g := NewGatewayExchange(testGatewayConfig(server.URL))
	fill, err := g.PlaceOrder(context.Background(), model.OrderRequest{
		ClientID: "c-1",
		Symbol:   "BTCUSDT",
		Side:     model.SideBuy,
		Quantity: 0.04,
		Price:    50000,
	})
	require.NoError(t, err)
	assert.Equal(t, "gw-1", fill.OrderID)
	assert.Equal(t, 0.04, fill.Quantity)
	assert.Equal(t, at, fill.Timestamp)
}

func TestGatewayPlaceOrderSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": 110, "msg": "insufficient balance"})
	}))
	defer server.Close()

	g := NewGatewayExchange(testGatewayConfig(server.URL))
	_, err := g.PlaceOrder(context.Background(), model.OrderRequest{Symbol: "BTCUSDT", Side: model.SideBuy, Quantity: 1, Price: 1})

	var exErr *model.ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "BTCUSDT", exErr.Symbol)
	assert.Contains(t, exErr.Error(), "insufficient balance")
}

func TestPaperExchangeFillsAtLimitPrice(t *testing.T) {
	p := NewPaperExchange()
	fill, err := p.PlaceOrder(context.Background(), model.OrderRequest{
		ClientID: "c-2",
		Symbol:   "ETHUSDT",
		Side:     model.SideSell,
		Quantity: 2,
		Price:    3000,
	})
	require.NoError(t, err)
	assert.Equal(t, "c-2", fill.OrderID)
	assert.Equal(t, 3000.0, fill.Price)
	require.Len(t, p.Fills(), 1)
}

func TestSplitPair(t *testing.T) {
	cases := map[string]string{
		"BTCUSDT": "BTC_USDT",
		"ethusdt": "ETH_USDT",
		"SOLUSDC": "SOL_USDC",
		"ETHBTC":  "ETH_BTC",
		"DOGEUSD": "DOGE_USD",
	}
	for symbol, want := range cases {
		assert.Equal(t, want, splitPair(symbol).ToSymbol("_"), symbol)
	}
}
