package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/summitworks/event_registration/models"
)

// fakeRecordStore keeps records in memory. The payment-intent index is
// maintained separately from the record list so tests can simulate the
// write-ordering race where a record's intent id exists on the row but has
// not reached the index yet.
type fakeRecordStore struct {
	records     map[RecordKind][]*models.ChargeRecord
	intentIndex map[RecordKind]map[string]*models.ChargeRecord
	saveCount   int
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		records: map[RecordKind][]*models.ChargeRecord{},
		intentIndex: map[RecordKind]map[string]*models.ChargeRecord{
			KindPayment:  {},
			KindDiscount: {},
		},
	}
}

func (f *fakeRecordStore) Create(_ context.Context, kind RecordKind, rec *models.ChargeRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	f.records[kind] = append(f.records[kind], rec)
	if rec.PaymentIntentID != nil {
		f.intentIndex[kind][*rec.PaymentIntentID] = rec
	}
	return nil
}

// addUnindexed inserts a record without registering its intent id in the
// index, mimicking an index lagging behind the row write.
func (f *fakeRecordStore) addUnindexed(kind RecordKind, rec *models.ChargeRecord) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	f.records[kind] = append(f.records[kind], rec)
}

func (f *fakeRecordStore) FindBySessionID(_ context.Context, kind RecordKind, sessionID string) (*models.ChargeRecord, error) {
	for _, rec := range f.records[kind] {
		if rec.SessionID == sessionID {
			return rec, nil
		}
	}
	return nil, nil
}

func (f *fakeRecordStore) FindByPaymentIntentID(_ context.Context, kind RecordKind, intentID string) (*models.ChargeRecord, error) {
	if rec, ok := f.intentIndex[kind][intentID]; ok {
		return rec, nil
	}
	return nil, nil
}

func (f *fakeRecordStore) ListByKind(_ context.Context, kind RecordKind) ([]models.ChargeRecord, error) {
	out := make([]models.ChargeRecord, 0, len(f.records[kind]))
	for _, rec := range f.records[kind] {
		out = append(out, *rec)
	}
	return out, nil
}

func (f *fakeRecordStore) Save(_ context.Context, kind RecordKind, rec *models.ChargeRecord) error {
	f.saveCount++
	rec.UpdatedAt = time.Now()
	for i, existing := range f.records[kind] {
		if existing.ID == rec.ID {
			f.records[kind][i] = rec
			if rec.PaymentIntentID != nil {
				f.intentIndex[kind][*rec.PaymentIntentID] = rec
			}
			return nil
		}
	}
	f.records[kind] = append(f.records[kind], rec)
	return nil
}

func (f *fakeRecordStore) SessionIDs(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var ids []string
	for _, kind := range []RecordKind{KindPayment, KindDiscount} {
		for _, rec := range f.records[kind] {
			if !seen[rec.SessionID] {
				seen[rec.SessionID] = true
				ids = append(ids, rec.SessionID)
			}
		}
	}
	return ids, nil
}

func (f *fakeRecordStore) AmountMismatches(context.Context, string) ([]AmountMismatch, error) {
	return nil, nil
}
