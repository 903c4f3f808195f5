package controller

import (
	"encoding/csv"
	"strings"
	"time"

	"freemail/models"
	"freemail/utils"

	"github.com/gofiber/fiber/v2"
)

// ImportSubscribers imports subscribers from a CSV file. The header row
// is required; columns are matched by case-insensitive substring on
// "email" and "name". Rows without an email are skipped; existing
// emails are left untouched.
func (sc *SubscriberController) ImportSubscribers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File upload error", err)
	}

	// Check file size (max 5MB)
	if file.Size > 5<<20 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File too large (max 5MB)", nil)
	}

	src, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to open file", err)
	}
	defer src.Close()

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse CSV file", err)
	}

	if len(records) < 2 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "CSV file must have at least a header and one row", nil)
	}

	header := records[0]
	rows := records[1:]

	emailIdx, nameIdx := MatchCSVColumns(header)
	if emailIdx == -1 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "CSV must contain an email column", nil)
	}

	var (
		subscribers []models.Subscriber
		skipped     int
	)
	seen := make(map[string]bool)

	for _, row := range rows {
		if emailIdx >= len(row) {
			skipped++
			continue
		}
		email := strings.ToLower(strings.TrimSpace(row[emailIdx]))
		if email == "" || utils.ValidateEmailFormat(email) != nil || seen[email] {
			skipped++
			continue
		}
		seen[email] = true

		var existing models.Subscriber
		if err := sc.DB.Where("email = ? AND user_id = ?", email, user.ID).First(&existing).Error; err == nil {
			skipped++
			continue
		}

		subscriber := models.Subscriber{
			UserID:     user.ID,
			Email:      email,
			Subscribed: true,
			Source:     "csv",
		}
		if nameIdx != -1 && nameIdx < len(row) {
			subscriber.FirstName = strings.TrimSpace(row[nameIdx])
		}
		subscribers = append(subscribers, subscriber)
	}

	if len(subscribers) > 0 {
		if err := sc.DB.CreateInBatches(&subscribers, 100).Error; err != nil {
			sc.Logger.Printf("Failed to import subscribers: %v", err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to import subscribers", err)
		}
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message":    "Subscribers imported successfully",
		"total_rows": len(rows),
		"imported":   len(subscribers),
		"skipped":    skipped,
	}))
}

// ExportSubscribers exports all subscribers as CSV with the fixed
// four-column schema the dashboard expects.
func (sc *SubscriberController) ExportSubscribers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var subscribers []models.Subscriber
	if err := sc.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&subscribers).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch subscribers", err)
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=subscribers_"+time.Now().Format("2006-01-02")+".csv")

	writer := csv.NewWriter(c)
	defer writer.Flush()

	header := []string{"Email", "First Name", "Subscribed", "Joined"}
	if err := writer.Write(header); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate CSV", err)
	}

	for _, sub := range subscribers {
		subscribed := "No"
		if sub.Subscribed {
			subscribed = "Yes"
		}
		record := []string{
			sub.Email,
			sub.FirstName,
			subscribed,
			sub.CreatedAt.Format("2006-01-02"),
		}
		if err := writer.Write(record); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate CSV", err)
		}
	}

	return nil
}

// MatchCSVColumns locates the email and name columns by case-insensitive
// substring match on the header row. Returns -1 for columns not present.
func MatchCSVColumns(header []string) (emailIdx, nameIdx int) {
	emailIdx, nameIdx = -1, -1
	for i, col := range header {
		lower := strings.ToLower(strings.TrimSpace(col))
		if emailIdx == -1 && strings.Contains(lower, "email") {
			emailIdx = i
		}
		if nameIdx == -1 && strings.Contains(lower, "name") {
			nameIdx = i
		}
	}
	return emailIdx, nameIdx
}
