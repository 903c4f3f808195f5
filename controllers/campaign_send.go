package controller

import (
	"strconv"
	"time"

	"freemail/models"
	"freemail/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// 1x1 transparent GIF served for open tracking pixels
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// SendCampaign renders the campaign, injects tracking and delivers to every
// recipient. The campaign only moves to sent when every recipient succeeded;
// a partial failure leaves it in draft so the send can be retried.
func (cc *CampaignController) SendCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	if campaign.Status == models.CampaignStatusSent {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Campaign has already been sent", nil)
	}

	recipients := campaign.Recipients
	if len(recipients) == 0 {
		var subscribers []models.Subscriber
		if err := cc.DB.Where("user_id = ? AND subscribed = ?", user.ID, true).Find(&subscribers).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load recipients", err)
		}
		for _, s := range subscribers {
			recipients = append(recipients, s.Email)
		}
	}

	if len(recipients) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Campaign has no recipients", nil)
	}

	messageID := strconv.FormatUint(uint64(campaign.ID), 10)
	html := utils.RenderCampaignHTML(campaign.Content)
	html = utils.InjectTracking(html, cc.TrackingURL, messageID)

	cc.Logger.Printf("Sending campaign %d to %d recipients", campaign.ID, len(recipients))

	result, err := cc.MailClient.SendCampaign(utils.CampaignPayload{
		Name:    campaign.Name,
		Subject: campaign.Subject,
		HTML:    html,
	}, recipients)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Campaign delivery failed", err)
	}

	if result.AllSucceeded {
		campaign.Status = models.CampaignStatusSent
		campaign.SentAt = utils.Pointer(time.Now())
		campaign.Recipients = recipients
		if err := cc.DB.Save(&campaign).Error; err != nil {
			cc.Logger.Printf("Campaign %d delivered but status update failed: %v", campaign.ID, err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign sent but status update failed", err)
		}
	} else {
		cc.Logger.Printf("Campaign %d partial delivery: %d sent, %d failed", campaign.ID, result.Sent, result.Failed)
	}

	status := fiber.StatusOK
	if !result.AllSucceeded {
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(utils.SuccessResponse(fiber.Map{
		"campaign_id":   campaign.ID,
		"status":        campaign.Status,
		"all_succeeded": result.AllSucceeded,
		"sent":          result.Sent,
		"failed":        result.Failed,
		"recipients":    result.Recipients,
	}))
}

// SendTestEmail delivers the rendered campaign to a single address via SMTP
// without touching campaign status
func (cc *CampaignController) SendTestEmail(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var input struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	html := utils.RenderCampaignHTML(campaign.Content)
	if err := utils.SendTestEmail(input.Email, campaign.Subject, html); err != nil {
		cc.Logger.Printf("Test email to %s failed: %v", input.Email, err)
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to send test email", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Test email sent to " + input.Email,
	}))
}

// HandleOpenTracking serves the tracking pixel and records the open
func (cc *CampaignController) HandleOpenTracking(c *fiber.Ctx) error {
	if campaignID := utils.ParseUint(c.Params("messageID")); campaignID != 0 {
		cc.recordEmailEvent(c, campaignID, models.MetricEmailOpen, "")
	}

	c.Set("Content-Type", "image/gif")
	c.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	return c.Send(pixelGIF)
}

// HandleClickTracking records the click and redirects to the original URL
func (cc *CampaignController) HandleClickTracking(c *fiber.Ctx) error {
	messageID := c.Params("messageID")
	targetURL := c.Query("url")
	if targetURL == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing redirect URL", nil)
	}

	if campaignID := utils.ParseUint(messageID); campaignID != 0 {
		cc.recordEmailEvent(c, campaignID, models.MetricLinkClick, targetURL)
	}

	return c.Redirect(targetURL, fiber.StatusFound)
}

// recordEmailEvent stores the engagement metric, bumps campaign counters and
// credits email interaction activity to the subscriber identified by the
// email query parameter when present. Tracking failures are logged and
// swallowed so the pixel and redirect always work.
func (cc *CampaignController) recordEmailEvent(c *fiber.Ctx, campaignID uint, eventType, targetURL string) {
	metric := models.EngagementMetric{
		CampaignID: campaignID,
		EventType:  eventType,
		Timestamp:  time.Now(),
		URL:        targetURL,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}

	counter := "open_count"
	if eventType == models.MetricLinkClick {
		counter = "click_count"
	}

	email := c.Query("email")
	if email != "" {
		var subscriber models.Subscriber
		if err := cc.DB.Where("email = ?", email).First(&subscriber).Error; err == nil {
			metric.SubscriberID = subscriber.ID

			action := "open"
			if eventType == models.MetricLinkClick {
				action = "click"
			}
			now := time.Now()
			utils.ApplyActivity(&subscriber.TrackingData, utils.Activity{
				EmailInteraction: &models.EmailInteraction{
					EmailID: strconv.FormatUint(uint64(campaignID), 10),
					Action:  action,
				},
			}, now)
			subscriber.LastActive = &now
			if err := cc.DB.Save(&subscriber).Error; err != nil {
				cc.Logger.Printf("Failed to update subscriber %d tracking data: %v", subscriber.ID, err)
			}
		}
	}

	if err := cc.DB.Create(&metric).Error; err != nil {
		cc.Logger.Printf("Failed to record %s for campaign %d: %v", eventType, campaignID, err)
		return
	}

	if err := cc.DB.Model(&models.Campaign{}).
		Where("id = ?", campaignID).
		UpdateColumn(counter, gorm.Expr(counter+" + 1")).Error; err != nil {
		cc.Logger.Printf("Failed to bump %s for campaign %d: %v", counter, campaignID, err)
	}
}
