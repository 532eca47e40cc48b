package portfolio

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	InitialCash float64 `envconfig:"INITIAL_CASH" default:"10000"`
	// Sharpe scaling, sqrt of periods per year. 93.6 suits hourly bars.
	Annualization float64 `envconfig:"SHARPE_ANNUALIZATION" default:"93.6"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
