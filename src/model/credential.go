package model

import "time"

// ExchangeCredential stores sealed API credentials for an exchange. The
// plaintext key and secret never reach the database; see src/security.
type ExchangeCredential struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Exchange        string    `gorm:"size:50;not null;uniqueIndex" json:"exchange"`
	APIKeySealed    string    `gorm:"size:512;not null" json:"-"`
	APISecretSealed string    `gorm:"size:512;not null" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (ExchangeCredential) TableName() string {
	return "exchange_credentials"
}
