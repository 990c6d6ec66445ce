package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/summitworks/event_registration/models"
)

// AmountMismatch is one row of the anomaly report: a payment record whose
// amount no longer equals its pricing configuration's total. Reported for
// manual review, never auto-corrected.
type AmountMismatch struct {
	RecordID     uuid.UUID       `gorm:"column:record_id" json:"recordId"`
	SessionID    string          `gorm:"column:session_id" json:"sessionId"`
	Vertical     string          `gorm:"column:vertical" json:"vertical"`
	RecordAmount decimal.Decimal `gorm:"column:record_amount" json:"recordAmount"`
	ConfigTotal  decimal.Decimal `gorm:"column:config_total" json:"configTotal"`
}

// RecordStore is the persistence surface of the reconciliation core. Lookup
// misses return (nil, nil); errors are reserved for storage failures.
type RecordStore interface {
	Create(ctx context.Context, kind RecordKind, rec *models.ChargeRecord) error
	FindBySessionID(ctx context.Context, kind RecordKind, sessionID string) (*models.ChargeRecord, error)
	FindByPaymentIntentID(ctx context.Context, kind RecordKind, intentID string) (*models.ChargeRecord, error)
	ListByKind(ctx context.Context, kind RecordKind) ([]models.ChargeRecord, error)
	Save(ctx context.Context, kind RecordKind, rec *models.ChargeRecord) error
	SessionIDs(ctx context.Context) ([]string, error)
	AmountMismatches(ctx context.Context, vertical string) ([]AmountMismatch, error)
}

type gormRecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) RecordStore {
	return &gormRecordStore{db: db}
}

func (s *gormRecordStore) Create(ctx context.Context, kind RecordKind, rec *models.ChargeRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Table(kind.Table()).Create(rec).Error
}

func (s *gormRecordStore) FindBySessionID(ctx context.Context, kind RecordKind, sessionID string) (*models.ChargeRecord, error) {
	return s.findOne(ctx, kind, "session_id = ?", sessionID)
}

func (s *gormRecordStore) FindByPaymentIntentID(ctx context.Context, kind RecordKind, intentID string) (*models.ChargeRecord, error) {
	return s.findOne(ctx, kind, "payment_intent_id = ?", intentID)
}

func (s *gormRecordStore) findOne(ctx context.Context, kind RecordKind, query string, arg string) (*models.ChargeRecord, error) {
	var recs []models.ChargeRecord
	err := s.db.WithContext(ctx).Table(kind.Table()).Where(query, arg).Limit(1).Find(&recs).Error
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (s *gormRecordStore) ListByKind(ctx context.Context, kind RecordKind) ([]models.ChargeRecord, error) {
	var recs []models.ChargeRecord
	err := s.db.WithContext(ctx).Table(kind.Table()).Find(&recs).Error
	return recs, err
}

func (s *gormRecordStore) Save(ctx context.Context, kind RecordKind, rec *models.ChargeRecord) error {
	return s.db.WithContext(ctx).Table(kind.Table()).Save(rec).Error
}

func (s *gormRecordStore) SessionIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Raw("SELECT session_id FROM payment_records UNION SELECT session_id FROM discount_records").
		Scan(&ids).Error
	return ids, err
}

func (s *gormRecordStore) AmountMismatches(ctx context.Context, vertical string) ([]AmountMismatch, error) {
	var out []AmountMismatch
	err := s.db.WithContext(ctx).
		Table("payment_records AS p").
		Select("p.id AS record_id, p.session_id, p.vertical, p.amount AS record_amount, c.total AS config_total").
		Joins("JOIN pricing_configs c ON c.id = p.pricing_config_id").
		Where("p.vertical = ? AND p.amount <> c.total", vertical).
		Scan(&out).Error
	return out, err
}
