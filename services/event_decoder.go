package services

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// ExtractedFields is the provider-agnostic view of a webhook event's embedded
// object. Both decode paths produce this shape; downstream components never
// know which path fired.
type ExtractedFields struct {
	SessionID       string
	CustomerEmail   string
	PaymentIntentID string
	PaymentStatus   string // raw payment_status string
	SessionStatus   string // raw status string
	Amount          *decimal.Decimal
	Currency        string
	Created         int64
	ExpiresAt       int64
}

// EventDecoder turns a verified event into extracted fields. Implementations
// are tried in sequence by DecodeEvent; an error means "try the next one".
type EventDecoder interface {
	Decode(event *stripe.Event, body []byte) (*ExtractedFields, error)
}

// StructuredDecoder deserializes the embedded object into its native stripe
// shape.
type StructuredDecoder struct{}

func (StructuredDecoder) Decode(event *stripe.Event, _ []byte) (*ExtractedFields, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, errors.New("event carries no object payload")
	}
	// Stripe's expandable types unmarshal a bare JSON string as an id, so a
	// mangled payload would "succeed" with garbage. Only objects count as a
	// structural decode.
	if trimmed := strings.TrimSpace(string(event.Data.Raw)); !strings.HasPrefix(trimmed, "{") {
		return nil, errors.New("embedded payload is not a JSON object")
	}

	if strings.HasPrefix(string(event.Type), "payment_intent.") {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, err
		}
		if pi.ID == "" {
			return nil, errors.New("payment intent object has no id")
		}
		fields := &ExtractedFields{
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

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, err
	}
	if sess.ID == "" {
		return nil, errors.New("checkout session object has no id")
	}
	fields := &ExtractedFields{
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

// ScrapeDecoder regex-extracts the named fields directly from the raw event
// text. The structured path fails non-deterministically for legitimate
// events, so this is a first-class sibling, not a hack: it must recover the
// same field set and feed the same downstream contract.
type ScrapeDecoder struct{}

var (
	scrapeID            = regexp.MustCompile(`"id"\s*:\s*"([^"]+)"`)
	scrapeEmail         = regexp.MustCompile(`"customer_email"\s*:\s*"([^"]+)"`)
	scrapeIntent        = regexp.MustCompile(`"payment_intent"\s*:\s*"([^"]+)"`)
	scrapePaymentStatus = regexp.MustCompile(`"payment_status"\s*:\s*"([^"]+)"`)
	scrapeStatus        = regexp.MustCompile(`[{,]\s*"status"\s*:\s*"([^"]+)"`)
	scrapeAmount        = regexp.MustCompile(`"amount(?:_total)?"\s*:\s*(\d+)`)
	scrapeCurrency      = regexp.MustCompile(`"currency"\s*:\s*"([A-Za-z]{3})"`)
	scrapeCreated       = regexp.MustCompile(`"created"\s*:\s*(\d+)`)
	scrapeExpiresAt     = regexp.MustCompile(`"expires_at"\s*:\s*(\d+)`)
)

func (ScrapeDecoder) Decode(event *stripe.Event, body []byte) (*ExtractedFields, error) {
	// Prefer the embedded object text; a payload whose object is mangled
	// beyond that still gets a pass over the whole event body.
	texts := make([]string, 0, 2)
	if event.Data != nil && len(event.Data.Raw) > 0 {
		texts = append(texts, string(event.Data.Raw))
	}
	if len(body) > 0 {
		texts = append(texts, string(body))
	}

	for _, text := range texts {
		fields := scrapeText(text)
		if fields != nil {
			return fields, nil
		}
	}
	return nil, errors.New("no correlatable id found in event text")
}

func scrapeText(text string) *ExtractedFields {
	fields := &ExtractedFields{
		SessionID:       scrapeObjectID(text),
		CustomerEmail:   firstGroup(scrapeEmail, text),
		PaymentIntentID: firstGroup(scrapeIntent, text),
		PaymentStatus:   firstGroup(scrapePaymentStatus, text),
		SessionStatus:   firstGroup(scrapeStatus, text),
		Currency:        strings.ToUpper(firstGroup(scrapeCurrency, text)),
		Created:         firstInt(scrapeCreated, text),
		ExpiresAt:       firstInt(scrapeExpiresAt, text),
	}

	// The object id of a payment_intent event is the intent itself.
	if strings.HasPrefix(fields.SessionID, "pi_") {
		if fields.PaymentIntentID == "" {
			fields.PaymentIntentID = fields.SessionID
		}
		fields.SessionID = ""
	}

	if raw := firstGroup(scrapeAmount, text); raw != "" {
		if minor, err := strconv.ParseInt(raw, 10, 64); err == nil {
			amount := decimal.New(minor, -2)
			fields.Amount = &amount
		}
	}

	if fields.SessionID == "" && fields.PaymentIntentID == "" {
		return nil
	}
	return fields
}

// scrapeObjectID returns the first "id" value that is not the envelope's own
// event/request id. The object JSON usually comes first, but a full-body
// scrape sees "evt_..." before the embedded object.
func scrapeObjectID(text string) string {
	for _, m := range scrapeID.FindAllStringSubmatch(text, -1) {
		id := m[1]
		if strings.HasPrefix(id, "evt_") || strings.HasPrefix(id, "req_") {
			continue
		}
		return id
	}
	return ""
}

func firstGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func firstInt(re *regexp.Regexp, text string) int64 {
	raw := firstGroup(re, text)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// DecodeEvent runs the structured decoder and falls back to the text scraper.
// It never fails to the caller: a nil result means the event could not be
// correlated and should be acknowledged as unprocessable.
func DecodeEvent(event *stripe.Event, body []byte) *ExtractedFields {
	decoders := []EventDecoder{StructuredDecoder{}, ScrapeDecoder{}}
	for i, decoder := range decoders {
		fields, err := decoder.Decode(event, body)
		if err != nil {
			if i < len(decoders)-1 {
				zap.L().Warn("structured event decode failed, falling back to text scrape",
					zap.String("eventId", event.ID),
					zap.String("eventType", string(event.Type)),
					zap.Error(err))
			} else {
				zap.L().Warn("event yielded no correlatable fields",
					zap.String("eventId", event.ID),
					zap.String("eventType", string(event.Type)),
					zap.Error(err))
			}
			continue
		}
		if fields != nil && (fields.SessionID != "" || fields.PaymentIntentID != "") {
			return fields
		}
	}
	return nil
}
