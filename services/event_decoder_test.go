package services

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
)

const sessionObjectJSON = `{
	"id": "cs_test_a1FvB2",
	"object": "checkout.session",
	"amount_total": 24900,
	"currency": "usd",
	"created": 1735000000,
	"customer_email": "dana@example.com",
	"expires_at": 1735086400,
	"payment_intent": "pi_3QkXw7",
	"payment_status": "paid",
	"status": "complete"
}`

func sessionEvent(raw string) *stripe.Event {
	return &stripe.Event{
		ID:   "evt_1Abc",
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func TestStructuredDecodeCheckoutSession(t *testing.T) {
	fields, err := StructuredDecoder{}.Decode(sessionEvent(sessionObjectJSON), nil)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if fields.SessionID != "cs_test_a1FvB2" {
		t.Errorf("session id = %q", fields.SessionID)
	}
	if fields.PaymentIntentID != "pi_3QkXw7" {
		t.Errorf("payment intent id = %q", fields.PaymentIntentID)
	}
	if fields.CustomerEmail != "dana@example.com" {
		t.Errorf("customer email = %q", fields.CustomerEmail)
	}
	if fields.PaymentStatus != "paid" || fields.SessionStatus != "complete" {
		t.Errorf("raw statuses = %q / %q", fields.PaymentStatus, fields.SessionStatus)
	}
	if fields.Currency != "USD" {
		t.Errorf("currency = %q", fields.Currency)
	}
	if fields.Amount == nil || !fields.Amount.Equal(decimal.RequireFromString("249.00")) {
		t.Errorf("amount = %v", fields.Amount)
	}
	if fields.Created != 1735000000 || fields.ExpiresAt != 1735086400 {
		t.Errorf("timestamps = %d / %d", fields.Created, fields.ExpiresAt)
	}
}

func TestStructuredDecodePaymentIntent(t *testing.T) {
	event := &stripe.Event{
		ID:   "evt_2Def",
		Type: "payment_intent.succeeded",
		Data: &stripe.EventData{Raw: json.RawMessage(`{
			"id": "pi_3QkXw7",
			"object": "payment_intent",
			"amount": 24900,
			"currency": "usd",
			"created": 1735000050,
			"status": "succeeded"
		}`)},
	}

	fields, err := StructuredDecoder{}.Decode(event, nil)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if fields.SessionID != "" {
		t.Errorf("payment intent event should not yield a session id, got %q", fields.SessionID)
	}
	if fields.PaymentIntentID != "pi_3QkXw7" {
		t.Errorf("payment intent id = %q", fields.PaymentIntentID)
	}
	if fields.PaymentStatus != "succeeded" {
		t.Errorf("payment status = %q", fields.PaymentStatus)
	}
}

// When structured decode fails, the text scraper must recover the same
// correlation fields from the same payload.
func TestScrapeFallbackMatchesStructuredDecode(t *testing.T) {
	body := []byte(`{"id":"evt_1Abc","object":"event","type":"checkout.session.completed","data":{"object":` + sessionObjectJSON + `}}`)

	structured, err := StructuredDecoder{}.Decode(sessionEvent(sessionObjectJSON), nil)
	if err != nil {
		t.Fatalf("structured decode failed: %v", err)
	}

	// A raw object the JSON decoder rejects forces the fallback onto the
	// full body text.
	broken := sessionEvent(`"unparseable"`)
	if _, err := (StructuredDecoder{}).Decode(broken, body); err == nil {
		t.Fatal("expected structured decode to fail on mangled object")
	}

	scraped := DecodeEvent(broken, body)
	if scraped == nil {
		t.Fatal("fallback decode yielded nothing")
	}

	if scraped.SessionID != structured.SessionID {
		t.Errorf("session id: scraped %q, structured %q", scraped.SessionID, structured.SessionID)
	}
	if scraped.PaymentIntentID != structured.PaymentIntentID {
		t.Errorf("payment intent: scraped %q, structured %q", scraped.PaymentIntentID, structured.PaymentIntentID)
	}
	if scraped.PaymentStatus != structured.PaymentStatus {
		t.Errorf("payment status: scraped %q, structured %q", scraped.PaymentStatus, structured.PaymentStatus)
	}
	if scraped.SessionStatus != structured.SessionStatus {
		t.Errorf("session status: scraped %q, structured %q", scraped.SessionStatus, structured.SessionStatus)
	}
	if scraped.CustomerEmail != structured.CustomerEmail {
		t.Errorf("email: scraped %q, structured %q", scraped.CustomerEmail, structured.CustomerEmail)
	}
	if scraped.Amount == nil || !scraped.Amount.Equal(*structured.Amount) {
		t.Errorf("amount: scraped %v, structured %v", scraped.Amount, structured.Amount)
	}
	if scraped.Currency != structured.Currency {
		t.Errorf("currency: scraped %q, structured %q", scraped.Currency, structured.Currency)
	}
}

func TestScrapeSkipsEnvelopeIDs(t *testing.T) {
	body := []byte(`{"id":"evt_9Zyx","data":{"object":{"id":"cs_test_b2","payment_status":"paid"}}}`)
	event := &stripe.Event{ID: "evt_9Zyx", Type: "checkout.session.completed"}

	fields, err := ScrapeDecoder{}.Decode(event, body)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	if fields.SessionID != "cs_test_b2" {
		t.Errorf("session id = %q, want cs_test_b2", fields.SessionID)
	}
}

func TestDecodeEventUncorrelatable(t *testing.T) {
	event := &stripe.Event{ID: "evt_0", Type: "checkout.session.completed"}
	if fields := DecodeEvent(event, []byte(`{"id":"evt_0","data":{}}`)); fields != nil {
		t.Errorf("expected nil fields for uncorrelatable event, got %+v", fields)
	}
}
