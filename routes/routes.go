package routes

import (
	"log"
	"os"

	"freemail/config"
	controller "freemail/controllers"
	"freemail/middleware"
	"freemail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

// SetupTrackingRoutes wires the public endpoints hit by the embedded
// tracker snippet and by sent emails. No authentication, rate limited.
func SetupTrackingRoutes(app *fiber.App, db *gorm.DB) {
	trackLogger := log.New(os.Stdout, "TRACK: ", log.LstdFlags)
	trackController := controller.NewTrackController(db, trackLogger)

	campaignLogger := log.New(os.Stdout, "CAMPAIGN: ", log.LstdFlags)
	mailClient := utils.NewMailBlusterClient(
		config.AppConfig.MailBluster.APIKey,
		config.AppConfig.MailBluster.APIURL,
		config.AppConfig.MailBluster.SenderEmail,
		config.AppConfig.MailBluster.SenderName,
		campaignLogger,
	)
	campaignController := controller.NewCampaignController(db, campaignLogger, mailClient, config.AppConfig.TrackingBaseURL)

	// Event ingestion from the tracker snippet
	app.Post("/api/track", middleware.TrackRateLimiter(), trackController.HandleTrack)

	// Email open and click tracking hit from sent campaigns
	app.Get("/track/open/:messageID/:token", campaignController.HandleOpenTracking)
	app.Get("/track/click/:messageID/:token", campaignController.HandleClickTracking)

	// Tracker script served to embedding sites
	app.Static("/tracker.js", "./public/tracker.js")

	trackLogger.Println("Tracking routes initialized successfully")
}

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)
	authController := controller.NewAuthController(db, authLogger)

	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)
	auth.Post("/refresh", authController.Refresh)

	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", authController.Logout)
	protectedAuth.Get("/me", authController.Me)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	campaignLogger := log.New(os.Stdout, "CAMPAIGN: ", log.LstdFlags)
	mailClient := utils.NewMailBlusterClient(
		config.AppConfig.MailBluster.APIKey,
		config.AppConfig.MailBluster.APIURL,
		config.AppConfig.MailBluster.SenderEmail,
		config.AppConfig.MailBluster.SenderName,
		campaignLogger,
	)

	subscriberController := controller.NewSubscriberController(db, log.New(os.Stdout, "SUBSCRIBER: ", log.LstdFlags), mailClient)
	campaignController := controller.NewCampaignController(db, campaignLogger, mailClient, config.AppConfig.TrackingBaseURL)
	segmentController := controller.NewSegmentController(db, log.New(os.Stdout, "SEGMENT: ", log.LstdFlags))
	clientController := controller.NewClientController(db, log.New(os.Stdout, "CLIENT: ", log.LstdFlags), config.AppConfig.TrackingBaseURL)
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))

	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", dashboardController.GetDashboardStats)
	dashboard.Get("/campaigns", dashboardController.GetRecentCampaigns)
	dashboard.Get("/events", dashboardController.GetRecentEvents)

	// Subscriber routes
	subscribers := api.Group("/subscribers")
	subscribers.Post("/", subscriberController.CreateSubscriber)
	subscribers.Get("/", subscriberController.GetSubscribers)
	subscribers.Post("/import", subscriberController.ImportSubscribers)
	subscribers.Get("/export", subscriberController.ExportSubscribers)
	subscribers.Get("/:id", subscriberController.GetSubscriber)
	subscribers.Put("/:id", subscriberController.UpdateSubscriber)
	subscribers.Post("/:id/toggle", subscriberController.ToggleSubscription)
	subscribers.Post("/:id/activity", subscriberController.RecordActivity)
	subscribers.Delete("/:id", subscriberController.DeleteSubscriber)

	// Campaign routes
	campaigns := api.Group("/campaigns")
	campaigns.Post("/", campaignController.CreateCampaign)
	campaigns.Get("/", campaignController.GetCampaigns)
	campaigns.Get("/:id", campaignController.GetCampaign)
	campaigns.Put("/:id", campaignController.UpdateCampaign)
	campaigns.Delete("/:id", campaignController.DeleteCampaign)
	campaigns.Post("/:id/duplicate", campaignController.DuplicateCampaign)
	campaigns.Post("/:id/schedule", campaignController.ScheduleCampaign)
	campaigns.Post("/:id/send", campaignController.SendCampaign)
	campaigns.Post("/:id/test", campaignController.SendTestEmail)
	campaigns.Get("/:id/stats", campaignController.GetCampaignStats)

	// Segmentation routes
	segments := api.Group("/segments")
	segments.Post("/preview", segmentController.PreviewSegment)
	segments.Post("/recipients", segmentController.SegmentRecipients)

	// Tracking client routes
	clients := api.Group("/clients")
	clients.Post("/", clientController.RegisterClient)
	clients.Get("/", clientController.GetClients)
	clients.Get("/:id", clientController.GetClient)
	clients.Put("/:id/status", clientController.UpdateClientStatus)
	clients.Get("/:id/embed", clientController.GetEmbedCode)
}

// SetupWebSocketRoutes wires the dashboard live event feed. The dashboard
// authenticates the upgrade via the access_token cookie.
func SetupWebSocketRoutes(app *fiber.App, db *gorm.DB) {
	app.Use("/api/v1/events/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/api/v1/events/live", middleware.Protected(), websocket.New(controller.HandleEventFeedWS(db)))
}

// SetupRoutes wires all route groups plus the fallback 404 handler
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	SetupTrackingRoutes(app, db)
	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db)
	SetupWebSocketRoutes(app, db)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Route not found",
		})
	})
}
