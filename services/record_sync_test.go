package services

import (
	"context"
	"testing"
	"time"

	"github.com/summitworks/event_registration/models"
)

func TestMergeRecordsOutcomes(t *testing.T) {
	payment := pendingRecord("medtech", "sess_1", nil)
	discount := pendingRecord("medtech", "sess_1", nil)

	if outcome, _, _ := MergeRecords(nil, nil); outcome != SyncNothingToDo {
		t.Errorf("both absent: %s", outcome)
	}
	if outcome, _, _ := MergeRecords(payment, nil); outcome != SyncOnlyPayment {
		t.Errorf("only payment: %s", outcome)
	}
	if outcome, _, _ := MergeRecords(nil, discount); outcome != SyncOnlyDiscount {
		t.Errorf("only discount: %s", outcome)
	}
	if outcome, _, _ := MergeRecords(payment, discount); outcome != SyncInSync {
		t.Errorf("agreeing pair: %s", outcome)
	}
}

func TestMergeRecordsRecencyWins(t *testing.T) {
	payment := pendingRecord("medtech", "sess_1", nil)
	payment.UpdatedAt = time.Now().Add(-time.Hour)

	discount := pendingRecord("medtech", "sess_1", nil)
	discount.Status = models.StatusCompleted
	discount.ProviderPaymentStatus = "paid"
	discount.UpdatedAt = time.Now()

	outcome, winner, loser := MergeRecords(payment, discount)
	if outcome != SyncConverged {
		t.Fatalf("outcome = %s", outcome)
	}
	if winner != discount || loser != payment {
		t.Error("expected the more recently updated record to win")
	}
}

// Sync with only a payment record present reports so and writes nothing.
func TestSyncSessionOnlyPayment(t *testing.T) {
	store := newFakeRecordStore()
	ctx := context.Background()
	store.Create(ctx, KindPayment, pendingRecord("medtech", "sess_1", nil))

	report, err := NewSyncer(store).SyncSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if report.Outcome != SyncOnlyPayment {
		t.Errorf("outcome = %s, want %s", report.Outcome, SyncOnlyPayment)
	}
	if store.saveCount != 0 {
		t.Errorf("sync fabricated a write: %d saves", store.saveCount)
	}
	if len(store.records[KindDiscount]) != 0 {
		t.Error("sync fabricated a discount record")
	}
}

func TestSyncSessionNothingToDo(t *testing.T) {
	store := newFakeRecordStore()
	report, err := NewSyncer(store).SyncSession(context.Background(), "sess_missing")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if report.Outcome != SyncNothingToDo {
		t.Errorf("outcome = %s", report.Outcome)
	}
}

// Divergent pairs converge to the newer status; repeated sync calls reach a
// fixed point and stop writing.
func TestSyncSessionConvergesAndIsIdempotent(t *testing.T) {
	store := newFakeRecordStore()
	ctx := context.Background()

	payment := pendingRecord("medtech", "sess_1", nil)
	payment.UpdatedAt = time.Now().Add(-time.Hour)
	store.addUnindexed(KindPayment, payment)

	discount := pendingRecord("medtech", "sess_1", strPtr("pi_1"))
	discount.Status = models.StatusCompleted
	discount.ProviderPaymentStatus = "paid"
	discount.UpdatedAt = time.Now()
	store.addUnindexed(KindDiscount, discount)

	syncer := NewSyncer(store)
	report, err := syncer.SyncSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if report.Outcome != SyncConverged {
		t.Fatalf("outcome = %s", report.Outcome)
	}
	if report.WinnerKind != KindDiscount {
		t.Errorf("winner = %s", report.WinnerKind)
	}
	if report.FromStatus != models.StatusPending || report.ToStatus != models.StatusCompleted {
		t.Errorf("transition = %s -> %s", report.FromStatus, report.ToStatus)
	}

	if payment.Status != models.StatusCompleted {
		t.Errorf("loser status = %s", payment.Status)
	}
	if payment.ProviderPaymentStatus != "paid" {
		t.Errorf("loser raw status = %q", payment.ProviderPaymentStatus)
	}
	if payment.PaymentIntentID == nil || *payment.PaymentIntentID != "pi_1" {
		t.Errorf("loser intent id = %v", payment.PaymentIntentID)
	}

	savesAfterFirst := store.saveCount
	report, err = syncer.SyncSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if report.Outcome != SyncInSync {
		t.Errorf("second sync outcome = %s, want %s", report.Outcome, SyncInSync)
	}
	if store.saveCount != savesAfterFirst {
		t.Errorf("second sync wrote: %d -> %d", savesAfterFirst, store.saveCount)
	}
}

func TestSweepAllCoversBothTables(t *testing.T) {
	store := newFakeRecordStore()
	ctx := context.Background()
	store.Create(ctx, KindPayment, pendingRecord("medtech", "sess_a", nil))
	store.Create(ctx, KindDiscount, pendingRecord("agritech", "sess_b", nil))

	reports, err := NewSyncer(store).SweepAll(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}

	outcomes := map[string]SyncOutcome{}
	for _, r := range reports {
		outcomes[r.SessionID] = r.Outcome
	}
	if outcomes["sess_a"] != SyncOnlyPayment || outcomes["sess_b"] != SyncOnlyDiscount {
		t.Errorf("unexpected outcomes: %v", outcomes)
	}
}
