package models

import (
	"time"

	"github.com/google/uuid"
)

// Vertical is one independently branded conference. Each vertical carries
// its own webhook signing secret; the reconciliation machinery itself is
// shared and selects the vertical from this table at request time.
type Vertical struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code            string    `gorm:"size:30;uniqueIndex;not null"`
	Name            string    `gorm:"size:120;not null"`
	WebhookSecret   string    `gorm:"size:255;not null"`
	DefaultCurrency string    `gorm:"size:3;default:'USD'"`
	Active          bool      `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
