package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"github.com/summitworks/event_registration/payments"
	"github.com/summitworks/event_registration/services"
)

// WebhookHandler receives provider-signed payment events for a vertical and
// drives the reconciliation pipeline: verify → decode → locate → apply →
// cross-record sync. Delivery is at-least-once and unordered, so every step
// is idempotent and every business-level miss is acknowledged with a 200 so
// the provider does not retry-storm.
type WebhookHandler struct {
	Store      services.RecordStore
	Locator    *services.Locator
	Reconciler *services.Reconciler
	Syncer     *services.Syncer

	// WebhookSecret resolves a vertical code to its signing secret.
	WebhookSecret func(vertical string) (string, bool)

	// Verify is swappable so tests can exercise the pipeline with
	// hand-signed payloads.
	Verify func(payload []byte, signatureHeader, secret string) (stripe.Event, error)
}

func NewWebhookHandler(store services.RecordStore) *WebhookHandler {
	return &WebhookHandler{
		Store:      store,
		Locator:    services.NewLocator(store),
		Reconciler: services.NewReconciler(store),
		Syncer:     services.NewSyncer(store),
		WebhookSecret: func(vertical string) (string, bool) {
			v, ok := services.GetVertical(vertical)
			if !ok {
				return "", false
			}
			return v.WebhookSecret, true
		},
		Verify: payments.VerifyWebhookSignature,
	}
}

func (h *WebhookHandler) HandleProviderWebhook(c *fiber.Ctx) error {
	vertical := c.Params("vertical")
	secret, ok := h.WebhookSecret(vertical)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown vertical"})
	}

	payload := c.Body()
	event, err := h.Verify(payload, c.Get("Stripe-Signature"), secret)
	if err != nil {
		zap.L().Warn("webhook signature verification failed",
			zap.String("vertical", vertical),
			zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook signature"})
	}

	result, err := h.process(c.Context(), &event, payload)
	if err != nil {
		// Processing failures after a verified signature are acknowledged:
		// re-delivery of an event the system cannot handle only loops.
		zap.L().Error("webhook processing failed",
			zap.String("vertical", vertical),
			zap.String("eventId", event.ID),
			zap.Error(err))
		return c.JSON(fiber.Map{"error": "Event processing failed"})
	}
	return c.JSON(result)
}

func (h *WebhookHandler) process(ctx context.Context, event *stripe.Event, payload []byte) (fiber.Map, error) {
	target, handled := services.TargetStatusForEvent(event.Type)
	if !handled {
		return fiber.Map{"message": "Event type ignored"}, nil
	}

	fields := services.DecodeEvent(event, payload)
	if fields == nil {
		return fiber.Map{"error": "Could not correlate event"}, nil
	}

	rec, kind, err := h.Locator.Locate(ctx, fields)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return fiber.Map{"error": "Record not found"}, nil
	}

	if _, err := h.Reconciler.ApplyEvent(ctx, kind, rec, fields, target); err != nil {
		return nil, err
	}

	if rec.SessionID != "" {
		if _, err := h.Syncer.SyncSession(ctx, rec.SessionID); err != nil {
			zap.L().Error("post-webhook sync failed",
				zap.String("sessionId", rec.SessionID),
				zap.Error(err))
		}
	}

	return fiber.Map{
		"message":       "Webhook processed successfully",
		"status":        rec.Status,
		"paymentStatus": rec.ProviderPaymentStatus,
	}, nil
}
