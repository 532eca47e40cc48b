package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	FeedSource      string        `envconfig:"FEED_SOURCE" default:"binance"`
	ExchangeAdapter string        `envconfig:"EXCHANGE_ADAPTER" default:"paper"`
	APIKey          string        `envconfig:"EXCHANGE_API_KEY"`
	APISecret       string        `envconfig:"EXCHANGE_API_SECRET"`
	GatewayBaseURL  string        `envconfig:"GATEWAY_BASE_URL" default:"http://localhost:8090"`
	StreamBaseURL   string        `envconfig:"STREAM_BASE_URL" default:"wss://stream.binance.com:9443/ws"`
	BarInterval     string        `envconfig:"BAR_INTERVAL" default:"1h"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
