package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/summitworks/event_registration/handlers"
)

func PaymentRoutes(app *fiber.App, webhooks *handlers.WebhookHandler, checkouts *handlers.CheckoutHandler) {
	api := app.Group("/api/v1")

	api.Post("/:vertical/payments/webhook", webhooks.HandleProviderWebhook)
	api.Post("/:vertical/payments/checkout-session", checkouts.CreateCheckoutSession)
	api.Post("/:vertical/payments/discount-charge", checkouts.CreateDiscountCharge)
	api.Post("/:vertical/payments/paypal/order", checkouts.CreatePayPalOrder)
}
