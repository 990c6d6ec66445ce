package services

import (
	"context"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"github.com/summitworks/event_registration/models"
	"github.com/summitworks/event_registration/notifications"
)

// Reconciler applies provider-reported state to a located record under the
// lifecycle rules: re-applying an already-held status is a no-op success,
// FAILED/CANCELLED/EXPIRED never transition again, and a later contradictory
// event overwrites COMPLETED (logged as a reversal, never blocked).
type Reconciler struct {
	store RecordStore
}

func NewReconciler(store RecordStore) *Reconciler {
	return &Reconciler{store: store}
}

// TargetStatusForEvent maps a webhook event type to the status it drives a
// record toward. Unhandled event types report ok=false and are acknowledged
// without mutation.
func TargetStatusForEvent(eventType stripe.EventType) (models.PaymentStatus, bool) {
	switch eventType {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypePaymentIntentSucceeded:
		return models.StatusCompleted, true
	case stripe.EventTypePaymentIntentPaymentFailed:
		return models.StatusFailed, true
	}
	return "", false
}

// transition moves the record's status toward target under the lifecycle
// rules: FAILED, CANCELLED and EXPIRED are final; COMPLETED alone may be
// overwritten by a provider-reported reversal. Returns whether the status
// changed.
func transition(rec *models.ChargeRecord, target models.PaymentStatus) bool {
	if rec.Status == target {
		return false
	}
	if rec.Status.Terminal() && rec.Status != models.StatusCompleted {
		zap.L().Warn("ignoring status transition out of terminal state",
			zap.String("sessionId", rec.SessionID),
			zap.String("from", string(rec.Status)),
			zap.String("to", string(target)))
		return false
	}
	if rec.Status == models.StatusCompleted {
		zap.L().Warn("provider reversal overwrites completed record",
			zap.String("sessionId", rec.SessionID),
			zap.String("from", string(rec.Status)),
			zap.String("to", string(target)))
	}
	rec.Status = target
	return true
}

// ApplyEvent transitions the record toward target, back-filling the
// payment-intent id if it was unknown. The intent id and raw provider status
// are captured even when the status itself is frozen by a terminal state.
// Returns whether anything was written.
func (r *Reconciler) ApplyEvent(ctx context.Context, kind RecordKind, rec *models.ChargeRecord, fields *ExtractedFields, target models.PaymentStatus) (bool, error) {
	previous := rec.Status
	changed := transition(rec, target)

	if rec.PaymentIntentID == nil && fields.PaymentIntentID != "" {
		intentID := fields.PaymentIntentID
		rec.PaymentIntentID = &intentID
		changed = true
	}

	if fields.PaymentStatus != "" && rec.ProviderPaymentStatus != fields.PaymentStatus {
		rec.ProviderPaymentStatus = fields.PaymentStatus
		changed = true
	}

	if !changed {
		return false, nil
	}

	if err := r.store.Save(ctx, kind, rec); err != nil {
		return false, err
	}

	if previous != models.StatusCompleted && rec.Status == models.StatusCompleted {
		go notifications.SendPaymentConfirmation(rec.CustomerEmail, rec.Vertical, rec.SessionID)
	}
	return true, nil
}

// ApplyRefresh folds the freshest provider data into the record on the
// pull-based path: session status drives the internal status under the same
// lifecycle rules as the webhook path, and the raw payment-status string,
// email, amount and currency are taken verbatim.
func (r *Reconciler) ApplyRefresh(ctx context.Context, kind RecordKind, rec *models.ChargeRecord, fields *ExtractedFields) (bool, error) {
	target := rec.Status
	switch strings.ToLower(fields.SessionStatus) {
	case "complete":
		target = models.StatusCompleted
	case "expired":
		target = models.StatusExpired
	case "open":
		target = models.StatusPending
	default:
		if fields.PaymentStatus != "" {
			target = MapProviderStatus(fields.PaymentStatus)
		}
	}

	previous := rec.Status
	changed := transition(rec, target)
	if fields.PaymentStatus != "" && rec.ProviderPaymentStatus != fields.PaymentStatus {
		rec.ProviderPaymentStatus = fields.PaymentStatus
		changed = true
	}
	if fields.CustomerEmail != "" && rec.CustomerEmail != fields.CustomerEmail {
		rec.CustomerEmail = fields.CustomerEmail
		changed = true
	}
	if fields.Currency != "" && rec.Currency != fields.Currency {
		rec.Currency = fields.Currency
		changed = true
	}
	if fields.Amount != nil && !rec.Amount.Equal(*fields.Amount) {
		rec.Amount = *fields.Amount
		changed = true
	}
	if rec.PaymentIntentID == nil && fields.PaymentIntentID != "" {
		intentID := fields.PaymentIntentID
		rec.PaymentIntentID = &intentID
		changed = true
	}
	if fields.Created > 0 && rec.ProviderCreatedAt == nil {
		created := time.Unix(fields.Created, 0)
		rec.ProviderCreatedAt = &created
		changed = true
	}
	if fields.ExpiresAt > 0 && rec.ProviderExpiresAt == nil {
		expires := time.Unix(fields.ExpiresAt, 0)
		rec.ProviderExpiresAt = &expires
		changed = true
	}

	if !changed {
		return false, nil
	}
	if err := r.store.Save(ctx, kind, rec); err != nil {
		return false, err
	}
	if previous != models.StatusCompleted && rec.Status == models.StatusCompleted {
		go notifications.SendPaymentConfirmation(rec.CustomerEmail, rec.Vertical, rec.SessionID)
	}
	return true, nil
}
