package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingConfig is a precomputed price/fee combination a payment record
// references for amount validation. Total is computed by the admin side
// when the config is saved.
type PricingConfig struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Vertical   string          `gorm:"size:30;index;not null"`
	Name       string          `gorm:"size:120;not null"`
	BaseAmount decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	FeeAmount  decimal.Decimal `gorm:"type:numeric(10,2)"`
	Total      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Currency   string          `gorm:"size:3;not null"`
	Active     bool            `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
