package controller

import (
	"log"
	"strconv"
	"strings"
	"time"

	"freemail/models"
	"freemail/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubscriberController struct {
	DB         *gorm.DB
	Logger     *log.Logger
	MailClient *utils.MailBlusterClient
}

func NewSubscriberController(db *gorm.DB, logger *log.Logger, mailClient *utils.MailBlusterClient) *SubscriberController {
	return &SubscriberController{
		DB:         db,
		Logger:     logger,
		MailClient: mailClient,
	}
}

// CreateSubscriber adds a single subscriber
func (sc *SubscriberController) CreateSubscriber(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Email        string              `json:"email" validate:"required,email"`
		FirstName    string              `json:"first_name" validate:"max=100"`
		LastName     string              `json:"last_name" validate:"max=100"`
		Demographics models.Demographics `json:"demographics"`
		Location     models.Location     `json:"location"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if err := utils.ValidateEmailDomain(input.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Email address is not deliverable", err)
	}

	email := strings.ToLower(input.Email)

	var existing models.Subscriber
	if err := sc.DB.Where("email = ? AND user_id = ?", email, user.ID).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Subscriber with this email already exists", nil)
	}

	subscriber := models.Subscriber{
		UserID:       user.ID,
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Subscribed:   true,
		Demographics: input.Demographics,
		Location:     input.Location,
		Source:       "manual",
	}

	if err := sc.DB.Create(&subscriber).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create subscriber", err)
	}

	// Best-effort registration with the delivery provider; a failure is
	// logged, the subscriber is already stored
	if sc.MailClient != nil {
		go func(s models.Subscriber) {
			if err := sc.MailClient.AddLead(s.Email, s.FirstName, s.LastName, map[string]interface{}{
				"source": s.Source,
			}); err != nil {
				sc.Logger.Printf("Failed to register lead %s with delivery provider: %v", s.Email, err)
			}
		}(subscriber)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(subscriber))
}

// GetSubscribers returns paginated list of subscribers with filters
func (sc *SubscriberController) GetSubscribers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	// Filters
	email := c.Query("email")
	status := c.Query("status")

	query := sc.DB.Model(&models.Subscriber{}).Where("user_id = ?", user.ID)

	if email != "" {
		query = query.Where("email LIKE ?", "%"+email+"%")
	}
	switch status {
	case "subscribed":
		query = query.Where("subscribed = true")
	case "unsubscribed":
		query = query.Where("subscribed = false")
	}

	// Count before pagination clauses are added to the statement
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count subscribers", err)
	}

	var subscribers []models.Subscriber
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&subscribers).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch subscribers", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  subscribers,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetSubscriber returns a single subscriber by ID
func (sc *SubscriberController) GetSubscriber(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	subscriberID := c.Params("id")

	var subscriber models.Subscriber
	if err := sc.DB.Where("id = ? AND user_id = ?", subscriberID, user.ID).First(&subscriber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Subscriber not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch subscriber", err)
	}

	return c.JSON(utils.SuccessResponse(subscriber))
}

// UpdateSubscriber updates subscriber details
func (sc *SubscriberController) UpdateSubscriber(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	subscriberID := c.Params("id")

	var input struct {
		Email        string               `json:"email" validate:"omitempty,email"`
		FirstName    *string              `json:"first_name" validate:"omitempty,max=100"`
		LastName     *string              `json:"last_name" validate:"omitempty,max=100"`
		Demographics *models.Demographics `json:"demographics"`
		Location     *models.Location     `json:"location"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var subscriber models.Subscriber
	if err := sc.DB.Where("id = ? AND user_id = ?", subscriberID, user.ID).First(&subscriber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Subscriber not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch subscriber", err)
	}

	if input.Email != "" && !strings.EqualFold(input.Email, subscriber.Email) {
		var existing models.Subscriber
		if err := sc.DB.Where("email = ? AND user_id = ?", strings.ToLower(input.Email), user.ID).First(&existing).Error; err == nil {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Subscriber with this email already exists", nil)
		}
		subscriber.Email = strings.ToLower(input.Email)
	}

	if input.FirstName != nil {
		subscriber.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		subscriber.LastName = *input.LastName
	}
	if input.Demographics != nil {
		subscriber.Demographics = *input.Demographics
	}
	if input.Location != nil {
		subscriber.Location = *input.Location
	}

	if err := sc.DB.Save(&subscriber).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update subscriber", err)
	}

	return c.JSON(utils.SuccessResponse(subscriber))
}

// ToggleSubscription flips the subscribed flag
func (sc *SubscriberController) ToggleSubscription(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	subscriberID := c.Params("id")

	var subscriber models.Subscriber
	if err := sc.DB.Where("id = ? AND user_id = ?", subscriberID, user.ID).First(&subscriber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Subscriber not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch subscriber", err)
	}

	subscriber.Subscribed = !subscriber.Subscribed
	if err := sc.DB.Save(&subscriber).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update subscription status", err)
	}

	utils.LogEvent("subscription_toggled", map[string]interface{}{
		"subscriber_id": subscriber.ID,
		"subscribed":    subscriber.Subscribed,
	})

	return c.JSON(utils.SuccessResponse(subscriber))
}

// DeleteSubscriber removes a subscriber and their engagement metrics
func (sc *SubscriberController) DeleteSubscriber(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	subscriberID := c.Params("id")

	tx := sc.DB.Begin()

	if err := tx.Where("subscriber_id = ?", subscriberID).Delete(&models.EngagementMetric{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete engagement metrics", err)
	}

	result := tx.Where("id = ? AND user_id = ?", subscriberID, user.ID).Delete(&models.Subscriber{})
	if result.Error != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete subscriber", result.Error)
	}

	if result.RowsAffected == 0 {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Subscriber not found", nil)
	}

	tx.Commit()

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Subscriber deleted successfully",
	}))
}

// RecordActivity applies a tracked activity to a subscriber and
// recomputes the derived engagement fields.
func (sc *SubscriberController) RecordActivity(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	subscriberID := c.Params("id")

	var input struct {
		PageView           string `json:"page_view"`
		ContentInteraction string `json:"content_interaction"`
		EmailInteraction   *struct {
			EmailID string `json:"email_id"`
			Action  string `json:"action" validate:"omitempty,oneof=open click"`
		} `json:"email_interaction"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.PageView == "" && input.ContentInteraction == "" && input.EmailInteraction == nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No activity provided", nil)
	}

	var subscriber models.Subscriber
	if err := sc.DB.Where("id = ? AND user_id = ?", subscriberID, user.ID).First(&subscriber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Subscriber not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch subscriber", err)
	}

	activity := utils.Activity{
		PageView:           input.PageView,
		ContentInteraction: input.ContentInteraction,
	}
	if input.EmailInteraction != nil {
		activity.EmailInteraction = &models.EmailInteraction{
			EmailID: input.EmailInteraction.EmailID,
			Action:  input.EmailInteraction.Action,
		}
	}

	now := time.Now()
	utils.ApplyActivity(&subscriber.TrackingData, activity, now)
	subscriber.LastActive = &now

	if err := sc.DB.Save(&subscriber).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record activity", err)
	}

	return c.JSON(utils.SuccessResponse(subscriber.TrackingData))
}
