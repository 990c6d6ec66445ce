package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/summitworks/event_registration/models"
)

// Locator resolves extracted event fields to zero or one existing record.
// Key chain, in priority order: provider session id, indexed payment-intent
// id, then a linear scan over the kind's records. The scan covers the
// write-ordering race where the intent id is persisted moments after the
// webhook fires and the indexed lookup misses.
type Locator struct {
	store RecordStore
}

func NewLocator(store RecordStore) *Locator {
	return &Locator{store: store}
}

// Locate tries the payment table first, then the discount table. A miss in
// both is not fatal: it is logged with the candidate set and reported as
// (nil, "", nil).
func (l *Locator) Locate(ctx context.Context, fields *ExtractedFields) (*models.ChargeRecord, RecordKind, error) {
	for _, kind := range []RecordKind{KindPayment, KindDiscount} {
		rec, err := l.locateKind(ctx, kind, fields)
		if err != nil {
			return nil, kind, err
		}
		if rec != nil {
			return rec, kind, nil
		}
	}

	l.logMiss(ctx, fields)
	return nil, "", nil
}

func (l *Locator) locateKind(ctx context.Context, kind RecordKind, fields *ExtractedFields) (*models.ChargeRecord, error) {
	if fields.SessionID != "" {
		rec, err := l.store.FindBySessionID(ctx, kind, fields.SessionID)
		if err != nil || rec != nil {
			return rec, err
		}
	}

	if fields.PaymentIntentID != "" {
		rec, err := l.store.FindByPaymentIntentID(ctx, kind, fields.PaymentIntentID)
		if err != nil || rec != nil {
			return rec, err
		}

		all, err := l.store.ListByKind(ctx, kind)
		if err != nil {
			return nil, err
		}
		for i := range all {
			if all[i].PaymentIntentID != nil && *all[i].PaymentIntentID == fields.PaymentIntentID {
				return &all[i], nil
			}
		}
	}

	return nil, nil
}

// logMiss dumps the full candidate set so an uncorrelatable event can be
// diagnosed after the fact.
func (l *Locator) logMiss(ctx context.Context, fields *ExtractedFields) {
	type candidate struct {
		Kind      RecordKind           `json:"kind"`
		SessionID string               `json:"sessionId"`
		IntentID  string               `json:"intentId"`
		Status    models.PaymentStatus `json:"status"`
	}

	var candidates []candidate
	for _, kind := range []RecordKind{KindPayment, KindDiscount} {
		recs, err := l.store.ListByKind(ctx, kind)
		if err != nil {
			continue
		}
		for _, rec := range recs {
			c := candidate{Kind: kind, SessionID: rec.SessionID, Status: rec.Status}
			if rec.PaymentIntentID != nil {
				c.IntentID = *rec.PaymentIntentID
			}
			candidates = append(candidates, c)
		}
	}

	zap.L().Warn("no record matched webhook event",
		zap.String("sessionId", fields.SessionID),
		zap.String("paymentIntentId", fields.PaymentIntentID),
		zap.Any("candidates", candidates))
}
