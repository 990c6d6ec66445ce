package handlers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/summitworks/event_registration/database"
	"github.com/summitworks/event_registration/models"
	"github.com/summitworks/event_registration/payments"
	"github.com/summitworks/event_registration/services"
)

var validate = validator.New()

// CheckoutHandler owns the synchronous entry points that create PENDING
// records: registration checkouts, ad-hoc discount charges, and
// alternate-rail orders. Records are only ever created here; the webhook
// path mutates, never creates.
type CheckoutHandler struct {
	Store services.RecordStore
}

func NewCheckoutHandler(store services.RecordStore) *CheckoutHandler {
	return &CheckoutHandler{Store: store}
}

type CheckoutRequest struct {
	Email           string `json:"email" validate:"required,email"`
	PricingConfigID string `json:"pricingConfigId" validate:"required,uuid"`
}

func (h *CheckoutHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	vertical, ok := services.GetVertical(c.Params("vertical"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown vertical"})
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var cfg models.PricingConfig
	err := database.DB.Where("id = ? AND vertical = ? AND active = ?", req.PricingConfigID, vertical.Code, true).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pricing configuration not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	sess, err := payments.CreateCheckoutSession(payments.CheckoutInput{
		Email:       req.Email,
		ProductName: cfg.Name,
		Amount:      cfg.Total,
		Currency:    cfg.Currency,
	})
	if err != nil {
		zap.L().Error("checkout session creation failed",
			zap.String("vertical", vertical.Code),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create checkout session"})
	}

	rec := &models.ChargeRecord{
		Vertical:              vertical.Code,
		SessionID:             sess.ID,
		CustomerEmail:         req.Email,
		Amount:                cfg.Total,
		Currency:              cfg.Currency,
		Status:                models.StatusPending,
		ProviderPaymentStatus: string(sess.PaymentStatus),
		PricingConfigID:       &cfg.ID,
		PricingTotalSnapshot:  &cfg.Total,
	}
	if sess.Created > 0 {
		created := time.Unix(sess.Created, 0)
		rec.ProviderCreatedAt = &created
	}
	if sess.ExpiresAt > 0 {
		expires := time.Unix(sess.ExpiresAt, 0)
		rec.ProviderExpiresAt = &expires
	}

	if err := h.Store.Create(c.Context(), services.KindPayment, rec); err != nil {
		zap.L().Error("failed to persist payment record",
			zap.String("sessionId", sess.ID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment record"})
	}

	return c.JSON(fiber.Map{"sessionId": sess.ID, "checkoutUrl": sess.URL})
}

type DiscountChargeRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Description string `json:"description" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
}

// CreateDiscountCharge is the separate entry point for promotional/ad-hoc
// charges not tied to a pricing configuration. The record lands in the
// discount table but flows through the same reconciliation machinery.
func (h *CheckoutHandler) CreateDiscountCharge(c *fiber.Ctx) error {
	vertical, ok := services.GetVertical(c.Params("vertical"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown vertical"})
	}

	var req DiscountChargeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}
	currency := req.Currency
	if currency == "" {
		currency = vertical.DefaultCurrency
	}

	sess, err := payments.CreateCheckoutSession(payments.CheckoutInput{
		Email:       req.Email,
		ProductName: req.Description,
		Amount:      amount,
		Currency:    currency,
	})
	if err != nil {
		zap.L().Error("discount checkout session creation failed",
			zap.String("vertical", vertical.Code),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create checkout session"})
	}

	rec := &models.ChargeRecord{
		Vertical:              vertical.Code,
		SessionID:             sess.ID,
		CustomerEmail:         req.Email,
		Amount:                amount,
		Currency:              currency,
		Status:                models.StatusPending,
		ProviderPaymentStatus: string(sess.PaymentStatus),
	}
	if err := h.Store.Create(c.Context(), services.KindDiscount, rec); err != nil {
		zap.L().Error("failed to persist discount record",
			zap.String("sessionId", sess.ID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create discount record"})
	}

	return c.JSON(fiber.Map{"sessionId": sess.ID, "checkoutUrl": sess.URL})
}

type PayPalOrderRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Amount          string `json:"amount" validate:"required"`
	Currency        string `json:"currency" validate:"omitempty,len=3"`
	PricingConfigID string `json:"pricingConfigId" validate:"omitempty,uuid"`
}

// CreatePayPalOrder opens an order on the alternate rail. The record is
// keyed by the prefixed order identifier so the refresh path can branch on
// the rail.
func (h *CheckoutHandler) CreatePayPalOrder(c *fiber.Ctx) error {
	vertical, ok := services.GetVertical(c.Params("vertical"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown vertical"})
	}

	var req PayPalOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}
	currency := req.Currency
	if currency == "" {
		currency = vertical.DefaultCurrency
	}

	orderID, err := payments.CreatePayPalOrder(c.Context(), amount, currency)
	if err != nil {
		zap.L().Error("paypal order creation failed",
			zap.String("vertical", vertical.Code),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create PayPal order"})
	}

	rec := &models.ChargeRecord{
		Vertical:      vertical.Code,
		SessionID:     orderID,
		CustomerEmail: req.Email,
		Amount:        amount,
		Currency:      currency,
		Status:        models.StatusPending,
	}
	if req.PricingConfigID != "" {
		if cfgID, err := uuid.Parse(req.PricingConfigID); err == nil {
			var cfg models.PricingConfig
			if err := database.DB.Where("id = ? AND vertical = ?", cfgID, vertical.Code).First(&cfg).Error; err == nil {
				rec.PricingConfigID = &cfg.ID
				rec.PricingTotalSnapshot = &cfg.Total
			}
		}
	}

	if err := h.Store.Create(c.Context(), services.KindPayment, rec); err != nil {
		zap.L().Error("failed to persist paypal payment record",
			zap.String("orderId", orderID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment record"})
	}

	return c.JSON(fiber.Map{"orderId": orderID})
}
