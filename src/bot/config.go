package bot

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TickInterval    time.Duration `envconfig:"BOT_TICK_INTERVAL" default:"30s"`
	BarLookback     int           `envconfig:"BOT_BAR_LOOKBACK" default:"200"`
	ConfidenceFloor float64       `envconfig:"BOT_CONFIDENCE_FLOOR" default:"0.6"`
	FetchRetries    int           `envconfig:"BOT_FETCH_RETRIES" default:"3"`
	FetchBackoff    time.Duration `envconfig:"BOT_FETCH_BACKOFF" default:"500ms"`
	PersistRetries  int           `envconfig:"BOT_PERSIST_RETRIES" default:"3"`
	AuditSize       int           `envconfig:"BOT_AUDIT_SIZE" default:"200"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
