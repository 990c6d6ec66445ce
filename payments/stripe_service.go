package payments

import (
	"context"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"

	config "github.com/summitworks/event_registration/configs"
	"github.com/summitworks/event_registration/services"
)

func InitStripe() {
	stripe.Key = config.Config("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Println("⚠️ STRIPE_SECRET_KEY not configured, provider calls will fail")
	}
}

// VerifyWebhookSignature recomputes the expected signature from the body and
// the vertical's shared secret. A mismatch or malformed header is an
// authentication failure for the caller, never a downgraded "unhandled
// event".
func VerifyWebhookSignature(payload []byte, signatureHeader, secret string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, secret)
}

type CheckoutInput struct {
	Email       string
	ProductName string
	Amount      decimal.Decimal // major currency units
	Currency    string
}

// CreateCheckoutSession starts a provider-hosted payment flow and returns
// the session; the caller persists the matching PENDING record.
func CreateCheckoutSession(in CheckoutInput) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(in.Email),
		SuccessURL:    stripe.String(config.Config("STRIPE_SUCCESS_URL")),
		CancelURL:     stripe.String(config.Config("STRIPE_CANCEL_URL")),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(in.Currency)),
					UnitAmount: stripe.Int64(toMinorUnits(in.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.ProductName),
					},
				},
			},
		},
	}
	return session.New(params)
}

// RefreshByIdentifier pulls the freshest provider view of a session, payment
// intent or alternate-rail order. The identifier's prefix picks the provider
// API: alternate-rail order ids carry the fixed PAYPAL- prefix, intent ids
// the provider's pi_ prefix, anything else is treated as a checkout session.
// Synchronous and cancellable; callers own retry/backoff.
func RefreshByIdentifier(ctx context.Context, id string) (*services.ExtractedFields, error) {
	switch {
	case strings.HasPrefix(id, PayPalOrderPrefix):
		return RefreshPayPalOrder(ctx, id)
	case strings.HasPrefix(id, "pi_"):
		return refreshPaymentIntent(ctx, id)
	default:
		return refreshSession(ctx, id)
	}
}

func refreshSession(ctx context.Context, id string) (*services.ExtractedFields, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	sess, err := session.Get(id, params)
	if err != nil {
		return nil, err
	}

	fields := &services.ExtractedFields{
		SessionID:     sess.ID,
		CustomerEmail: sess.CustomerEmail,
		PaymentStatus: string(sess.PaymentStatus),
		SessionStatus: string(sess.Status),
		Currency:      strings.ToUpper(string(sess.Currency)),
		Created:       sess.Created,
		ExpiresAt:     sess.ExpiresAt,
	}
	if fields.CustomerEmail == "" && sess.CustomerDetails != nil {
		fields.CustomerEmail = sess.CustomerDetails.Email
	}
	if sess.PaymentIntent != nil {
		fields.PaymentIntentID = sess.PaymentIntent.ID
	}
	if sess.AmountTotal != 0 {
		amount := decimal.New(sess.AmountTotal, -2)
		fields.Amount = &amount
	}
	return fields, nil
}

func refreshPaymentIntent(ctx context.Context, id string) (*services.ExtractedFields, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, err
	}

	fields := &services.ExtractedFields{
		PaymentIntentID: pi.ID,
		CustomerEmail:   pi.ReceiptEmail,
		PaymentStatus:   string(pi.Status),
		Currency:        strings.ToUpper(string(pi.Currency)),
		Created:         pi.Created,
	}
	if pi.Amount != 0 {
		amount := decimal.New(pi.Amount, -2)
		fields.Amount = &amount
	}
	return fields, nil
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
