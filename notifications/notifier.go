package notifications

import "log"

// SendPaymentConfirmation is invoked when a record first reaches COMPLETED.
// Delivery (email/SMS) is handled by an external service; deployments swap
// this hook for a real sender at startup. The default just logs.
var SendPaymentConfirmation = func(email, vertical, sessionID string) {
	log.Printf("payment confirmed for %s (vertical=%s, session=%s)", email, vertical, sessionID)
}
