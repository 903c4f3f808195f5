package controller

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"freemail/models"
	"freemail/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CampaignController struct {
	DB          *gorm.DB
	Logger      *log.Logger
	MailClient  *utils.MailBlusterClient
	TrackingURL string
}

func NewCampaignController(db *gorm.DB, logger *log.Logger, mailClient *utils.MailBlusterClient, trackingURL string) *CampaignController {
	return &CampaignController{
		DB:          db,
		Logger:      logger,
		MailClient:  mailClient,
		TrackingURL: trackingURL,
	}
}

// CreateCampaign creates a draft campaign. Recipients are captured at
// creation time.
func (cc *CampaignController) CreateCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name       string        `json:"name" validate:"required,max=200"`
		Subject    string        `json:"subject" validate:"required,max=500"`
		Blocks     []utils.Block `json:"blocks"`
		Recipients []string      `json:"recipients" validate:"dive,email"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	content, err := json.Marshal(input.Blocks)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid content blocks", err)
	}

	campaign := models.Campaign{
		UserID:     user.ID,
		Name:       input.Name,
		Subject:    input.Subject,
		Content:    string(content),
		Status:     models.CampaignStatusDraft,
		Recipients: input.Recipients,
	}

	if err := cc.DB.Create(&campaign).Error; err != nil {
		cc.Logger.Printf("Failed to create campaign: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create campaign", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(campaign))
}

// GetCampaigns returns paginated campaigns, most recent first
func (cc *CampaignController) GetCampaigns(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	query := cc.DB.Model(&models.Campaign{}).Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	// Count before pagination clauses are added to the statement
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count campaigns", err)
	}

	var campaigns []models.Campaign
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&campaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaigns", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  campaigns,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetCampaign returns a single campaign with parsed content blocks
func (cc *CampaignController) GetCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"campaign": campaign,
		"blocks":   utils.ParseBlocks(campaign.Content),
	}))
}

// UpdateCampaign updates a draft campaign. Sent and scheduled campaigns
// are immutable except for the forward-only status transition applied by
// the send path.
func (cc *CampaignController) UpdateCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var input struct {
		Name       string        `json:"name" validate:"omitempty,max=200"`
		Subject    string        `json:"subject" validate:"omitempty,max=500"`
		Blocks     []utils.Block `json:"blocks"`
		Recipients []string      `json:"recipients" validate:"dive,email"`
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

	if !campaign.IsEditable() {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Only draft campaigns can be edited", nil)
	}

	if input.Name != "" {
		campaign.Name = input.Name
	}
	if input.Subject != "" {
		campaign.Subject = input.Subject
	}
	if input.Blocks != nil {
		content, err := json.Marshal(input.Blocks)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid content blocks", err)
		}
		campaign.Content = string(content)
	}
	if input.Recipients != nil {
		campaign.Recipients = input.Recipients
	}

	if err := cc.DB.Save(&campaign).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update campaign", err)
	}

	return c.JSON(utils.SuccessResponse(campaign))
}

// ScheduleCampaign marks a draft campaign as scheduled. The transition is
// forward-only; delivery is still triggered through the send action.
func (cc *CampaignController) ScheduleCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var input struct {
		ScheduledFor time.Time `json:"scheduled_for" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if input.ScheduledFor.Before(time.Now()) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Scheduled time must be in the future", nil)
	}

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	if !campaign.CanTransitionTo(models.CampaignStatusScheduled) || campaign.Status == models.CampaignStatusSent {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Campaign cannot be scheduled", nil)
	}

	campaign.Status = models.CampaignStatusScheduled
	campaign.ScheduledFor = utils.Pointer(input.ScheduledFor)

	if err := cc.DB.Save(&campaign).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to schedule campaign", err)
	}

	return c.JSON(utils.SuccessResponse(campaign))
}

// DuplicateCampaign copies an existing campaign back to draft
func (cc *CampaignController) DuplicateCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	duplicate := models.Campaign{
		UserID:     user.ID,
		Name:       campaign.Name + " (Copy)",
		Subject:    campaign.Subject,
		Content:    campaign.Content,
		Status:     models.CampaignStatusDraft,
		Recipients: campaign.Recipients,
	}

	if err := cc.DB.Create(&duplicate).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to duplicate campaign", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(duplicate))
}

// DeleteCampaign removes a campaign
func (cc *CampaignController) DeleteCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	result := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).Delete(&models.Campaign{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Campaign deleted successfully",
	}))
}

// GetCampaignStats returns engagement metrics for a campaign
func (cc *CampaignController) GetCampaignStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	campaignID := c.Params("id")

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, user.ID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	var opens, clicks int64
	cc.DB.Model(&models.EngagementMetric{}).
		Where("campaign_id = ? AND event_type = ?", campaign.ID, models.MetricEmailOpen).
		Count(&opens)
	cc.DB.Model(&models.EngagementMetric{}).
		Where("campaign_id = ? AND event_type = ?", campaign.ID, models.MetricLinkClick).
		Count(&clicks)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"campaign_id": campaign.ID,
		"status":      campaign.Status,
		"recipients":  len(campaign.Recipients),
		"opens":       opens,
		"clicks":      clicks,
		"sent_at":     campaign.SentAt,
	}))
}
