package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/summitworks/event_registration/models"
)

// MapProviderStatus translates the provider's status vocabulary into the
// internal enum. Case-insensitive, total: unrecognized strings map to
// PENDING with a warning rather than an error.
func MapProviderStatus(raw string) models.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "complete", "completed", "success", "succeeded":
		return models.StatusCompleted
	case "failed", "fail", "error":
		return models.StatusFailed
	case "cancelled", "canceled", "cancel":
		return models.StatusCancelled
	case "expired", "expire":
		return models.StatusExpired
	case "pending", "processing", "incomplete":
		return models.StatusPending
	default:
		zap.L().Warn("unrecognized provider payment status, defaulting to pending",
			zap.String("providerStatus", raw))
		return models.StatusPending
	}
}
