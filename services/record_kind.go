package services

// RecordKind selects which of the two structurally identical record tables
// an operation targets. The source system compiled one service per vertical
// and per kind; here a single store is parameterized over the kind instead.
type RecordKind string

const (
	KindPayment  RecordKind = "payment"
	KindDiscount RecordKind = "discount"
)

func (k RecordKind) Table() string {
	if k == KindDiscount {
		return "discount_records"
	}
	return "payment_records"
}

func (k RecordKind) String() string { return string(k) }
