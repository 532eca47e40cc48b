package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cryptobot/src/database"
	"cryptobot/src/model"
)

// StrategyRepository handles read/write operations for strategy
// configurations.
type StrategyRepository struct {
	db *gorm.DB
}

// NewStrategyRepository creates a repository bound to the main database.
func NewStrategyRepository() *StrategyRepository {
	return &StrategyRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance. Useful for
// tests or when using a specific session/transaction.
func (r *StrategyRepository) WithDB(db *gorm.DB) *StrategyRepository {
	return &StrategyRepository{db: db}
}

// Create inserts a new strategy. The given strategy is updated with the
// generated ID and timestamps.
func (r *StrategyRepository) Create(ctx context.Context, strategy *model.Strategy) error {
	err := r.db.WithContext(ctx).Create(strategy).Error
	if err != nil {
		logger.WithError(err).WithField("name", strategy.Name).Error("Failed to create strategy")
		return &model.PersistenceError{Op: "create strategy", Err: err}
	}
	return nil
}

// Update persists changed fields of an existing strategy.
func (r *StrategyRepository) Update(ctx context.Context, strategy *model.Strategy) error {
	err := r.db.WithContext(ctx).Save(strategy).Error
	if err != nil {
		logger.WithError(err).WithField("id", strategy.ID).Error("Failed to update strategy")
		return &model.PersistenceError{Op: "update strategy", Err: err}
	}
	return nil
}

// Delete removes a strategy by ID.
func (r *StrategyRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Delete(&model.Strategy{}, id).Error
	if err != nil {
		logger.WithError(err).WithField("id", id).Error("Failed to delete strategy")
		return &model.PersistenceError{Op: "delete strategy", Err: err}
	}
	return nil
}

// FindByID fetches a single strategy. Returns (nil, nil) when not found.
func (r *StrategyRepository) FindByID(ctx context.Context, id uint) (*model.Strategy, error) {
	var strategy model.Strategy
	err := r.db.WithContext(ctx).First(&strategy, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &model.PersistenceError{Op: "find strategy", Err: err}
	}
	return &strategy, nil
}

// List returns all strategies ordered by ID.
func (r *StrategyRepository) List(ctx context.Context) ([]model.Strategy, error) {
	var strategies []model.Strategy
	err := r.db.WithContext(ctx).Order("id").Find(&strategies).Error
	if err != nil {
		return nil, &model.PersistenceError{Op: "list strategies", Err: err}
	}
	return strategies, nil
}

// ListActive returns the strategies the bot should run.
func (r *StrategyRepository) ListActive(ctx context.Context) ([]model.Strategy, error) {
	var strategies []model.Strategy
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&strategies).Error
	if err != nil {
		return nil, &model.PersistenceError{Op: "list active strategies", Err: err}
	}
	return strategies, nil
}
