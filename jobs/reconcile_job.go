package jobs

import (
	"context"
	"log"

	"github.com/summitworks/event_registration/database"
	"github.com/summitworks/event_registration/models"
	"github.com/summitworks/event_registration/services"
)

// ReconcileRecords is the scheduled safety net behind the webhook-triggered
// sync: it sweeps every known session id, converging any pair the realtime
// path missed, and logs amount anomalies for manual review.
func ReconcileRecords() {
	log.Println("Running job: ReconcileRecords...")

	ctx := context.Background()
	store := services.NewRecordStore(database.DB)
	syncer := services.NewSyncer(store)

	reports, err := syncer.SweepAll(ctx)
	if err != nil {
		log.Printf("Error running cross-record sweep: %v", err)
		return
	}

	converged := 0
	for _, report := range reports {
		if report.Outcome == services.SyncConverged {
			converged++
		}
	}
	if converged > 0 {
		log.Printf("Cross-record sweep converged %d of %d sessions", converged, len(reports))
	}

	var verticals []models.Vertical
	if err := database.DB.Where("active = ?", true).Find(&verticals).Error; err != nil {
		log.Printf("Error loading verticals for anomaly check: %v", err)
		return
	}
	for _, vertical := range verticals {
		mismatches, err := store.AmountMismatches(ctx, vertical.Code)
		if err != nil {
			log.Printf("Error checking amount anomalies for %s: %v", vertical.Code, err)
			continue
		}
		for _, m := range mismatches {
			log.Printf("⚠️ Amount mismatch on %s (%s): record=%s config=%s",
				m.SessionID, m.Vertical, m.RecordAmount.String(), m.ConfigTotal.String())
		}
	}
}
