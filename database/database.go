package database

import (
	"fmt"
	"log"
	"strings"

	config "github.com/summitworks/event_registration/configs"
	"github.com/summitworks/event_registration/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.Vertical{},
		&models.PricingConfig{},
		&models.PaymentRecord{},
		&models.DiscountRecord{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// SeedVerticals creates missing vertical rows from the VERTICALS env list.
// Entries are "code=Display Name" pairs separated by commas; each code reads
// its webhook signing secret from WEBHOOK_SECRET_<CODE>.
func SeedVerticals() {
	raw := config.Config("VERTICALS")
	if raw == "" {
		log.Println("⚠️ VERTICALS not configured, no verticals seeded")
		return
	}

	for _, entry := range strings.Split(raw, ",") {
		code, name, _ := strings.Cut(strings.TrimSpace(entry), "=")
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if name = strings.TrimSpace(name); name == "" {
			name = code
		}

		var count int64
		if err := DB.Model(&models.Vertical{}).Where("code = ?", code).Count(&count).Error; err != nil {
			log.Fatalf("🔥 Failed to check for vertical %s: %v", code, err)
		}
		if count > 0 {
			continue
		}

		secret := config.Config("WEBHOOK_SECRET_" + strings.ToUpper(code))
		if secret == "" {
			log.Printf("⚠️ No webhook secret configured for vertical %s, skipping", code)
			continue
		}

		vertical := models.Vertical{
			Code:            code,
			Name:            name,
			WebhookSecret:   secret,
			DefaultCurrency: config.ConfigDefault("DEFAULT_CURRENCY", "USD"),
			Active:          true,
		}
		if err := DB.Create(&vertical).Error; err != nil {
			log.Fatalf("🔥 Failed to seed vertical %s: %v", code, err)
		}
		log.Printf("✅ Vertical %s seeded successfully", code)
	}
}
