package backfill

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Symbol   string `envconfig:"SYMBOL" default:"BTCUSDT"`
	Interval string `envconfig:"DURATION" default:"1h"`
	Limit    int    `envconfig:"LIMIT" default:"1000"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
