package repository

import (
	"context"
	"sort"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cryptobot/src/database"
	"cryptobot/src/model"
)

// BarRepository stores OHLCV history. It doubles as a market data feed
// for backtest-style runs over already ingested bars.
type BarRepository struct {
	db *gorm.DB
}

func NewBarRepository() *BarRepository {
	return &BarRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *BarRepository) WithDB(db *gorm.DB) *BarRepository {
	return &BarRepository{db: db}
}

// UpsertBars writes bars, updating OHLCV on the (symbol, datetime)
// conflict so backfills can be re-run safely.
func (r *BarRepository) UpsertBars(ctx context.Context, bars []model.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "datetime"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&bars).Error
	if err != nil {
		logger.WithError(err).WithField("count", len(bars)).Error("Failed to upsert bars")
		return &model.PersistenceError{Op: "upsert bars", Err: err}
	}
	return nil
}

// FetchBars returns up to limit recent bars for the symbol, oldest
// first. The error is a DataFetchError so the caller's retry policy for
// live feeds applies here too.
func (r *BarRepository) FetchBars(ctx context.Context, symbol string, limit int) ([]model.Bar, error) {
	var bars []model.Bar
	query := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("datetime DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&bars).Error; err != nil {
		return nil, &model.DataFetchError{Symbol: symbol, Err: err}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Datetime.Before(bars[j].Datetime) })
	return bars, nil
}
