package models

// PaymentStatus is the internal lifecycle status shared by payment and
// discount records. PENDING is the only non-terminal state; of the terminal
// states only COMPLETED may be overwritten, when the provider reports a
// reversal.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "PENDING"
	StatusCompleted PaymentStatus = "COMPLETED"
	StatusFailed    PaymentStatus = "FAILED"
	StatusCancelled PaymentStatus = "CANCELLED"
	StatusExpired   PaymentStatus = "EXPIRED"
)

// Terminal reports whether the status is an end state of the lifecycle.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}
