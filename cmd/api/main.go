package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	config "github.com/summitworks/event_registration/configs"
	"github.com/summitworks/event_registration/database"
	"github.com/summitworks/event_registration/handlers"
	"github.com/summitworks/event_registration/jobs"
	"github.com/summitworks/event_registration/payments"
	"github.com/summitworks/event_registration/routes"
	"github.com/summitworks/event_registration/services"
)

func main() {
	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("🔥 Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	database.ConnectDB()
	database.Migrate()
	database.SeedVerticals()
	if err := services.LoadVerticals(database.DB); err != nil {
		log.Fatalf("🔥 Failed to load verticals: %v", err)
	}

	payments.InitStripe()
	go payments.InitPayPal()

	c := cron.New()
	c.AddFunc("*/15 * * * *", jobs.ReconcileRecords)
	go c.Start()
	log.Println("✅ Cron job for record reconciliation scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Event Registration",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Event Registration API",
		})
	})

	store := services.NewRecordStore(database.DB)
	routes.PaymentRoutes(app, handlers.NewWebhookHandler(store), handlers.NewCheckoutHandler(store))
	routes.MaintenanceRoutes(app, handlers.NewSyncHandler(store))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	port := config.ConfigDefault("PORT", "8080")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
