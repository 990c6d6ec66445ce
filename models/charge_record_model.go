package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeRecord is the shared shape of payment and discount records. The two
// kinds live in separate tables with no foreign key between them; records
// for the same real-world transaction share a provider SessionID and are
// converged by the cross-record sync pass.
type ChargeRecord struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Vertical        string          `gorm:"size:30;index;not null"`
	SessionID       string          `gorm:"size:255;uniqueIndex;not null"`
	PaymentIntentID *string         `gorm:"size:255;index"`
	CustomerEmail   string          `gorm:"size:255"`
	Amount          decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Currency        string          `gorm:"size:3"`
	Status          PaymentStatus   `gorm:"size:20;not null"`

	// Raw provider payment-status string, kept verbatim for diagnosis.
	ProviderPaymentStatus string `gorm:"size:50"`

	ProviderCreatedAt *time.Time
	ProviderExpiresAt *time.Time

	// Set on payment records only. Amount is expected to equal the snapshot
	// at creation time; drift is surfaced by the anomaly query, not corrected.
	PricingConfigID      *uuid.UUID
	PricingTotalSnapshot *decimal.Decimal `gorm:"type:numeric(10,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type PaymentRecord struct {
	ChargeRecord `gorm:"embedded"`
}

func (PaymentRecord) TableName() string { return "payment_records" }

type DiscountRecord struct {
	ChargeRecord `gorm:"embedded"`
}

func (DiscountRecord) TableName() string { return "discount_records" }
