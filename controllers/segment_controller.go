package controller

import (
	"log"

	"freemail/models"
	"freemail/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SegmentController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSegmentController(db *gorm.DB, logger *log.Logger) *SegmentController {
	return &SegmentController{DB: db, Logger: logger}
}

// PreviewSegment evaluates segmentation criteria and returns the matching
// subscribers with a count. The store prefilters on status, engagement
// score and recency; the remaining categories are matched in memory.
func (sc *SegmentController) PreviewSegment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var criteria utils.SegmentCriteria
	if err := c.BodyParser(&criteria); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid segment criteria", err)
	}

	query := criteria.ApplyQueryFilters(sc.DB.Where("user_id = ?", user.ID))

	var subscribers []models.Subscriber
	if err := query.Find(&subscribers).Error; err != nil {
		sc.Logger.Printf("Segment preview query failed: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to evaluate segment", err)
	}

	matched := criteria.FilterSubscribers(subscribers)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"count":       len(matched),
		"subscribers": matched,
	}))
}

// SegmentRecipients resolves segmentation criteria to a recipient email
// list, used when building a campaign from a segment.
func (sc *SegmentController) SegmentRecipients(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var criteria utils.SegmentCriteria
	if err := c.BodyParser(&criteria); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid segment criteria", err)
	}

	query := criteria.ApplyQueryFilters(sc.DB.Where("user_id = ?", user.ID))

	var subscribers []models.Subscriber
	if err := query.Find(&subscribers).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to evaluate segment", err)
	}

	matched := criteria.FilterSubscribers(subscribers)
	emails := make([]string, 0, len(matched))
	for _, sub := range matched {
		emails = append(emails, sub.Email)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"count":      len(emails),
		"recipients": emails,
	}))
}
