package controller

import (
	"log"
	"strings"

	"freemail/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TrackController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTrackController(db *gorm.DB, logger *log.Logger) *TrackController {
	return &TrackController{
		DB:     db,
		Logger: logger,
	}
}

// TrackEventInput is the closed event envelope accepted from the
// tracker snippet: a fixed required field set plus one open map for
// extension data.
type TrackEventInput struct {
	ClientID    string                 `json:"client_id"`
	AnonymousID string                 `json:"anonymous_id"`
	Type        string                 `json:"type"`
	URL         string                 `json:"url"`
	Path        string                 `json:"path"`
	Timestamp   string                 `json:"timestamp"`
	Data        map[string]interface{} `json:"data"`
}

// HandleTrack accepts a tracker event and appends it to the anonymous
// event log. No dedupe, no batching; arrival time, user agent and
// best-effort IP are stamped server-side.
func (tc *TrackController) HandleTrack(c *fiber.Ctx) error {
	var input TrackEventInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if input.AnonymousID == "" || input.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	if !models.ValidEventType(input.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown event type",
		})
	}

	// Unknown client ids are accepted (the log is append-only and
	// ownership is resolved lazily), but a registered client that has
	// been deactivated or suspended is refused.
	if input.ClientID != "" {
		var client models.Client
		if err := tc.DB.Where("client_id = ?", input.ClientID).First(&client).Error; err == nil {
			if !client.IsActive() {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Client is not active",
				})
			}
		}
	}

	pageURL := input.URL
	if pageURL == "" {
		pageURL = input.Path
	}

	event := models.AnonymousEvent{
		AnonymousID: input.AnonymousID,
		ClientID:    input.ClientID,
		EventType:   input.Type,
		PageURL:     pageURL,
		UserAgent:   c.Get("User-Agent"),
		IPAddress:   originIP(c),
		Data:        input.Data,
	}

	if err := tc.DB.Create(&event).Error; err != nil {
		tc.Logger.Printf("Failed to store tracking event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store tracking data",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// originIP returns the best-effort client address: first entry of
// X-Forwarded-For when present, otherwise the socket address.
func originIP(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	return c.IP()
}
