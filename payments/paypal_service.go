package payments

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"

	config "github.com/summitworks/event_registration/configs"
	"github.com/summitworks/event_registration/services"
)

// PayPalOrderPrefix marks identifiers that originate from the alternate
// payment rail. Stored on the record's session id so the refresh path can
// branch before choosing which provider API to call.
const PayPalOrderPrefix = "PAYPAL-"

var paypalClient *paypal.Client

func InitPayPal() {
	clientID := config.Config("PAYPAL_CLIENT_ID")
	clientSecret := config.Config("PAYPAL_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		log.Println("⚠️ PayPal credentials not configured, alternate rail disabled")
		return
	}

	apiBase := config.ConfigDefault("PAYPAL_API_BASE_URL", paypal.APIBaseSandBox)
	client, err := paypal.NewClient(clientID, clientSecret, apiBase)
	if err != nil {
		log.Printf("🔥 Failed to create PayPal client: %v", err)
		return
	}
	if _, err := client.GetAccessToken(context.Background()); err != nil {
		log.Printf("🔥 Failed to get PayPal access token: %v", err)
		return
	}

	paypalClient = client
	log.Println("✅ PayPal client initialized")
}

// CreatePayPalOrder opens an order on the alternate rail and returns the
// prefixed identifier the record is keyed by.
func CreatePayPalOrder(ctx context.Context, amount decimal.Decimal, currency string) (string, error) {
	if paypalClient == nil {
		return "", fmt.Errorf("paypal client not initialized")
	}

	units := []paypal.PurchaseUnitRequest{
		{
			Amount: &paypal.PurchaseUnitAmount{
				Currency: strings.ToUpper(currency),
				Value:    amount.StringFixed(2),
			},
		},
	}
	order, err := paypalClient.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return "", err
	}
	return PayPalOrderPrefix + order.ID, nil
}

// RefreshPayPalOrder pulls the order's current state and translates it into
// the same extracted-fields contract the webhook decoders feed.
func RefreshPayPalOrder(ctx context.Context, prefixedID string) (*services.ExtractedFields, error) {
	if paypalClient == nil {
		return nil, fmt.Errorf("paypal client not initialized")
	}

	orderID := strings.TrimPrefix(prefixedID, PayPalOrderPrefix)
	order, err := paypalClient.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	fields := &services.ExtractedFields{
		SessionID:     prefixedID,
		PaymentStatus: translatePayPalStatus(order.Status),
		SessionStatus: paypalSessionStatus(order.Status),
	}
	if order.Payer != nil {
		fields.CustomerEmail = order.Payer.EmailAddress
	}
	if len(order.PurchaseUnits) > 0 && order.PurchaseUnits[0].Amount != nil {
		unit := order.PurchaseUnits[0].Amount
		if amount, err := decimal.NewFromString(unit.Value); err == nil {
			fields.Amount = &amount
		}
		fields.Currency = strings.ToUpper(unit.Currency)
	}
	return fields, nil
}

// translatePayPalStatus maps the rail's order vocabulary onto strings the
// shared status mapper understands.
func translatePayPalStatus(status string) string {
	switch strings.ToUpper(status) {
	case "COMPLETED":
		return "completed"
	case "VOIDED":
		return "cancelled"
	case "CREATED", "SAVED", "APPROVED", "PAYER_ACTION_REQUIRED":
		return "pending"
	default:
		return strings.ToLower(status)
	}
}

func paypalSessionStatus(status string) string {
	switch strings.ToUpper(status) {
	case "COMPLETED":
		return "complete"
	case "CREATED", "SAVED", "APPROVED", "PAYER_ACTION_REQUIRED":
		return "open"
	default:
		return ""
	}
}
