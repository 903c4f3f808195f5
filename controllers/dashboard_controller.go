package controller

import (
	"log"
	"time"

	"freemail/models"
	"freemail/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

type DashboardStats struct {
	TotalSubscribers  int64   `json:"total_subscribers"`
	ActiveSubscribers int64   `json:"active_subscribers"`
	TotalCampaigns    int64   `json:"total_campaigns"`
	SentCampaigns     int64   `json:"sent_campaigns"`
	TrackedEvents     int64   `json:"tracked_events"`
	OpenRate          float64 `json:"open_rate"`
	ClickRate         float64 `json:"click_rate"`
}

type CampaignSummary struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Recipients int        `json:"recipients"`
	OpenCount  int        `json:"open_count"`
	ClickCount int        `json:"click_count"`
	SentAt     *time.Time `json:"sent_at"`
}

// GetDashboardStats returns summary statistics for the dashboard cards
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	timeFrame := c.Query("time_frame", "week") // day, week, month

	now := time.Now()
	var startTime time.Time
	switch timeFrame {
	case "day":
		startTime = now.Add(-24 * time.Hour)
	case "month":
		startTime = now.Add(-30 * 24 * time.Hour)
	default:
		startTime = now.Add(-7 * 24 * time.Hour)
	}

	var stats DashboardStats

	if err := dc.DB.Model(&models.Subscriber{}).
		Where("user_id = ?", user.ID).
		Count(&stats.TotalSubscribers).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get subscriber stats", err)
	}

	dc.DB.Model(&models.Subscriber{}).
		Where("user_id = ? AND subscribed = ?", user.ID, true).
		Count(&stats.ActiveSubscribers)

	dc.DB.Model(&models.Campaign{}).
		Where("user_id = ?", user.ID).
		Count(&stats.TotalCampaigns)

	dc.DB.Model(&models.Campaign{}).
		Where("user_id = ? AND status = ?", user.ID, models.CampaignStatusSent).
		Count(&stats.SentCampaigns)

	dc.DB.Model(&models.AnonymousEvent{}).
		Where("created_at BETWEEN ? AND ?", startTime, now).
		Count(&stats.TrackedEvents)

	var opens, clicks int64
	dc.DB.Model(&models.EngagementMetric{}).
		Where("event_type = ? AND timestamp BETWEEN ? AND ?", models.MetricEmailOpen, startTime, now).
		Count(&opens)
	dc.DB.Model(&models.EngagementMetric{}).
		Where("event_type = ? AND timestamp BETWEEN ? AND ?", models.MetricLinkClick, startTime, now).
		Count(&clicks)

	// Rates are relative to delivered recipients in the window
	var sentCampaigns []models.Campaign
	dc.DB.Where("user_id = ? AND status = ? AND sent_at BETWEEN ? AND ?",
		user.ID, models.CampaignStatusSent, startTime, now).
		Find(&sentCampaigns)

	var delivered int
	for _, cp := range sentCampaigns {
		delivered += len(cp.Recipients)
	}
	if delivered > 0 {
		stats.OpenRate = float64(opens) / float64(delivered) * 100
		stats.ClickRate = float64(clicks) / float64(delivered) * 100
	}

	return c.JSON(utils.SuccessResponse(stats))
}

// GetRecentCampaigns returns the latest campaigns with engagement counters
func (dc *DashboardController) GetRecentCampaigns(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var campaigns []models.Campaign
	if err := dc.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(5).
		Find(&campaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaigns", err)
	}

	summaries := make([]CampaignSummary, 0, len(campaigns))
	for _, cp := range campaigns {
		summaries = append(summaries, CampaignSummary{
			ID:         cp.ID,
			Name:       cp.Name,
			Status:     cp.Status,
			Recipients: len(cp.Recipients),
			OpenCount:  cp.OpenCount,
			ClickCount: cp.ClickCount,
			SentAt:     cp.SentAt,
		})
	}

	return c.JSON(utils.SuccessResponse(summaries))
}

// GetRecentEvents returns the latest tracked anonymous events for the
// dashboard activity feed
func (dc *DashboardController) GetRecentEvents(c *fiber.Ctx) error {
	limit := 50

	var events []models.AnonymousEvent
	if err := dc.DB.Order("created_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch events", err)
	}

	return c.JSON(utils.SuccessResponse(events))
}
