package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cryptobot/src/database"
	"cryptobot/src/model"
)

// CredentialRepository stores sealed exchange API credentials.
type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *CredentialRepository) WithDB(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Upsert writes the credential for an exchange, replacing any previous
// sealed values.
func (r *CredentialRepository) Upsert(ctx context.Context, cred *model.ExchangeCredential) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exchange"}},
		DoUpdates: clause.AssignmentColumns([]string{"api_key_sealed", "api_secret_sealed", "updated_at"}),
	}).Create(cred).Error
	if err != nil {
		return &model.PersistenceError{Op: "upsert credential", Err: err}
	}
	return nil
}

// FindByExchange returns (nil, nil) when no credential is stored.
func (r *CredentialRepository) FindByExchange(ctx context.Context, exchange string) (*model.ExchangeCredential, error) {
	var cred model.ExchangeCredential
	err := r.db.WithContext(ctx).Where("exchange = ?", exchange).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &model.PersistenceError{Op: "find credential", Err: err}
	}
	return &cred, nil
}
