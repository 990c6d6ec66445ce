package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/summitworks/event_registration/models"
)

type SyncOutcome string

const (
	SyncNothingToDo  SyncOutcome = "nothing_to_sync"
	SyncOnlyPayment  SyncOutcome = "only_payment_record"
	SyncOnlyDiscount SyncOutcome = "only_discount_record"
	SyncInSync       SyncOutcome = "in_sync"
	SyncConverged    SyncOutcome = "converged"
)

// SyncReport describes what one sync pass did for a session id.
type SyncReport struct {
	SessionID  string               `json:"sessionId"`
	Outcome    SyncOutcome          `json:"outcome"`
	WinnerKind RecordKind           `json:"winnerKind,omitempty"`
	FromStatus models.PaymentStatus `json:"fromStatus,omitempty"`
	ToStatus   models.PaymentStatus `json:"toStatus,omitempty"`
}

// MergeRecords decides the convergence of a payment/discount pair sharing a
// session id. Pure: no I/O, so the recency rule is testable on its own.
// When both records exist and disagree, the more recently updated one wins.
func MergeRecords(payment, discount *models.ChargeRecord) (SyncOutcome, *models.ChargeRecord, *models.ChargeRecord) {
	switch {
	case payment == nil && discount == nil:
		return SyncNothingToDo, nil, nil
	case discount == nil:
		return SyncOnlyPayment, nil, nil
	case payment == nil:
		return SyncOnlyDiscount, nil, nil
	}

	if payment.Status == discount.Status && payment.ProviderPaymentStatus == discount.ProviderPaymentStatus {
		return SyncInSync, nil, nil
	}

	if discount.UpdatedAt.After(payment.UpdatedAt) {
		return SyncConverged, discount, payment
	}
	return SyncConverged, payment, discount
}

// Syncer converges the payment and discount records for a session id. Safe
// to invoke redundantly: once converged, repeated calls report in_sync.
type Syncer struct {
	store RecordStore
}

func NewSyncer(store RecordStore) *Syncer {
	return &Syncer{store: store}
}

func (s *Syncer) SyncSession(ctx context.Context, sessionID string) (*SyncReport, error) {
	payment, err := s.store.FindBySessionID(ctx, KindPayment, sessionID)
	if err != nil {
		return nil, err
	}
	discount, err := s.store.FindBySessionID(ctx, KindDiscount, sessionID)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{SessionID: sessionID}
	outcome, winner, loser := MergeRecords(payment, discount)
	report.Outcome = outcome
	if outcome != SyncConverged {
		return report, nil
	}

	loserKind := KindDiscount
	report.WinnerKind = KindPayment
	if winner == discount {
		loserKind = KindPayment
		report.WinnerKind = KindDiscount
	}
	report.FromStatus = loser.Status
	report.ToStatus = winner.Status

	zap.L().Warn("cross-record divergence resolved by recency",
		zap.String("sessionId", sessionID),
		zap.String("winnerKind", string(report.WinnerKind)),
		zap.String("paymentStatus", string(payment.Status)),
		zap.String("discountStatus", string(discount.Status)))

	loser.Status = winner.Status
	loser.ProviderPaymentStatus = winner.ProviderPaymentStatus
	if loser.PaymentIntentID == nil && winner.PaymentIntentID != nil {
		intentID := *winner.PaymentIntentID
		loser.PaymentIntentID = &intentID
	}
	if err := s.store.Save(ctx, loserKind, loser); err != nil {
		return nil, err
	}
	return report, nil
}

// SweepAll runs a sync pass over every known session id.
func (s *Syncer) SweepAll(ctx context.Context) ([]SyncReport, error) {
	ids, err := s.store.SessionIDs(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]SyncReport, 0, len(ids))
	for _, id := range ids {
		report, err := s.SyncSession(ctx, id)
		if err != nil {
			zap.L().Error("sync pass failed for session",
				zap.String("sessionId", id),
				zap.Error(err))
			continue
		}
		reports = append(reports, *report)
	}
	return reports, nil
}
