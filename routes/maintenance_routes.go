package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/summitworks/event_registration/handlers"
	"github.com/summitworks/event_registration/middleware"
)

// MaintenanceRoutes exposes the admin-only reconciliation operations. All
// of them are idempotent by design, so operators can retry freely.
func MaintenanceRoutes(app *fiber.App, sync *handlers.SyncHandler) {
	admin := app.Group("/api/v1/:vertical/payments/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Post("/refresh/:id", sync.RefreshRecord)
	admin.Post("/sync/:sessionId", sync.SyncSession)
	admin.Post("/sync", sync.SweepAll)
	admin.Get("/anomalies", sync.AmountAnomalies)
}
