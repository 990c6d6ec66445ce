package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/summitworks/event_registration/payments"
	"github.com/summitworks/event_registration/services"
)

// SyncHandler exposes the reconciliation maintenance surface: per-session
// sync, the bulk sweep, the real-time refresh pull, and the amount-anomaly
// report. All operations are idempotent and safe to invoke redundantly.
type SyncHandler struct {
	Store      services.RecordStore
	Locator    *services.Locator
	Reconciler *services.Reconciler
	Syncer     *services.Syncer
}

func NewSyncHandler(store services.RecordStore) *SyncHandler {
	return &SyncHandler{
		Store:      store,
		Locator:    services.NewLocator(store),
		Reconciler: services.NewReconciler(store),
		Syncer:     services.NewSyncer(store),
	}
}

func (h *SyncHandler) SyncSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing session id"})
	}

	report, err := h.Syncer.SyncSession(c.Context(), sessionID)
	if err != nil {
		zap.L().Error("manual sync failed", zap.String("sessionId", sessionID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Sync failed"})
	}
	return c.JSON(report)
}

func (h *SyncHandler) SweepAll(c *fiber.Ctx) error {
	reports, err := h.Syncer.SweepAll(c.Context())
	if err != nil {
		zap.L().Error("bulk sync sweep failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Sweep failed"})
	}
	return c.JSON(fiber.Map{"count": len(reports), "reports": reports})
}

// RefreshRecord pulls the freshest provider state for a session, intent or
// alternate-rail order id and folds it into the located record.
func (h *SyncHandler) RefreshRecord(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing identifier"})
	}

	fields, err := payments.RefreshByIdentifier(c.Context(), id)
	if err != nil {
		zap.L().Error("provider refresh failed", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Provider refresh failed"})
	}

	rec, kind, err := h.Locator.Locate(c.Context(), fields)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lookup failed"})
	}
	if rec == nil {
		return c.JSON(fiber.Map{"error": "Record not found"})
	}

	if _, err := h.Reconciler.ApplyRefresh(c.Context(), kind, rec, fields); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update record"})
	}

	if _, err := h.Syncer.SyncSession(c.Context(), rec.SessionID); err != nil {
		zap.L().Error("post-refresh sync failed", zap.String("sessionId", rec.SessionID), zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"message":       "Record refreshed",
		"status":        rec.Status,
		"paymentStatus": rec.ProviderPaymentStatus,
	})
}

// AmountAnomalies reports payment records whose amount diverged from their
// pricing configuration's total. Review-only: nothing is corrected here.
func (h *SyncHandler) AmountAnomalies(c *fiber.Ctx) error {
	vertical, ok := services.GetVertical(c.Params("vertical"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown vertical"})
	}

	mismatches, err := h.Store.AmountMismatches(c.Context(), vertical.Code)
	if err != nil {
		zap.L().Error("anomaly query failed", zap.String("vertical", vertical.Code), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Anomaly query failed"})
	}
	return c.JSON(fiber.Map{"count": len(mismatches), "mismatches": mismatches})
}
