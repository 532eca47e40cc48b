// Package backfill pulls kline history from Binance into the bars table
// so the stored-bars feed and backtest-style runs have data to work
// with. Safe to re-run, existing rows are updated in place.
package backfill

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cryptobot/src/connectors"
	"cryptobot/src/repository"
)

type Backfill struct {
	Log    *logger.Entry
	DB     *gorm.DB
	Config *Config
}

func (b *Backfill) Start() error {
	b.Config = GetConfig()

	connCfg := connectors.GetConfig()
	connCfg.BarInterval = b.Config.Interval
	feed := connectors.NewBinanceFeed(connCfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	bars, err := feed.FetchBars(ctx, b.Config.Symbol, b.Config.Limit)
	if err != nil {
		b.Log.WithError(err).Error("Failed to fetch klines")
		return err
	}

	barRep := repository.NewBarRepository().WithDB(b.DB)
	if err := barRep.UpsertBars(ctx, bars); err != nil {
		b.Log.WithError(err).Error("Failed to upsert bars")
		return err
	}

	b.Log.WithFields(logger.Fields{
		"symbol":   b.Config.Symbol,
		"interval": b.Config.Interval,
		"count":    len(bars),
	}).Info("Backfill complete")
	return nil
}
