package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cryptobot/src/database"
	"cryptobot/src/model"
)

// TradeRepository handles the append-only trade history.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a repository bound to the main database.
func NewTradeRepository() *TradeRepository {
	return &TradeRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance. Useful for
// tests or when using a specific session/transaction.
func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// SaveTrade appends an executed trade to the history.
func (r *TradeRepository) SaveTrade(ctx context.Context, trade *model.Trade) error {
	err := r.db.WithContext(ctx).Create(trade).Error
	if err != nil {
		logger.WithError(err).WithFields(logger.Fields{
			"symbol": trade.Symbol,
			"side":   trade.Side,
		}).Error("Failed to save trade")
		return &model.PersistenceError{Op: "save trade", Err: err}
	}
	return nil
}

// TradeSearchOptions are the optional trade history filters. Nil fields
// are skipped.
type TradeSearchOptions struct {
	Symbol     *string
	Side       *string
	StrategyID *uint
	After      *time.Time
	Before     *time.Time
	Limit      int
	Offset     int
}

// Search returns trades newest first, applying the given filters.
func (r *TradeRepository) Search(ctx context.Context, opts TradeSearchOptions) ([]model.Trade, error) {
	query := r.db.WithContext(ctx).Model(&model.Trade{})

	if opts.Symbol != nil {
		query = query.Where("symbol = ?", *opts.Symbol)
	}
	if opts.Side != nil {
		query = query.Where("side = ?", *opts.Side)
	}
	if opts.StrategyID != nil {
		query = query.Where("strategy_id = ?", *opts.StrategyID)
	}
	if opts.After != nil {
		query = query.Where("timestamp >= ?", *opts.After)
	}
	if opts.Before != nil {
		query = query.Where("timestamp <= ?", *opts.Before)
	}

	query = query.Order("timestamp DESC, id DESC")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var trades []model.Trade
	if err := query.Find(&trades).Error; err != nil {
		return nil, &model.PersistenceError{Op: "search trades", Err: err}
	}
	return trades, nil
}
