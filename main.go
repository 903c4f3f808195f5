package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"freemail/config"
	"freemail/middleware"
	"freemail/routes"
	"freemail/utils"
	"freemail/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "SERVER: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize SMTP config for campaign test sends
	utils.InitEmailConfig(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
		config.AppConfig.FromEmail,
	)

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware with configured origins
	corsConfig := middleware.DefaultCORSConfig()
	if len(config.AppConfig.CORSOrigins) > 0 {
		corsConfig.AllowedOrigins = config.AppConfig.CORSOrigins
	}
	app.Use(middleware.CORS(corsConfig))

	// Initialize and start event worker
	eventWorker := worker.NewEventWorker(
		config.DB,
		log.New(os.Stdout, "EVENTS: ", log.LstdFlags),
		config.AppConfig.EventRetentionDays,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eventWorker.Start(ctx)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Setup routes
	routes.SetupRoutes(app, config.DB)

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
