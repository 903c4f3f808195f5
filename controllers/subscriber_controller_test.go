package controller

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"testing"

	"freemail/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func withTestUser(app *fiber.App) {
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &models.User{Model: gorm.Model{ID: 1}})
		return c.Next()
	})
}

func TestGetSubscribersPaginationTotal(t *testing.T) {
	db, mock := newMockDB(t)
	sc := NewSubscriberController(db, log.New(os.Stdout, "SUBSCRIBER: ", log.LstdFlags), nil)

	app := fiber.New()
	withTestUser(app)
	app.Get("/subscribers", sc.GetSubscribers)

	// The count statement must not carry the page's LIMIT/OFFSET, or the
	// total collapses to zero on every page past the first.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "subscribers" WHERE user_id = \$1 AND "subscribers"\."deleted_at" IS NULL$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))
	mock.ExpectQuery(`SELECT \* FROM "subscribers" WHERE user_id = \$1.*ORDER BY created_at DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(41, "page2@example.com"))

	req := httptest.NewRequest("GET", "/subscribers?page=2&limit=20", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var page struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, int64(45), page.Total)
	assert.Equal(t, 2, page.Page)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCampaignsPaginationTotal(t *testing.T) {
	db, mock := newMockDB(t)
	cc := NewCampaignController(db, log.New(os.Stdout, "CAMPAIGN: ", log.LstdFlags), nil, "")

	app := fiber.New()
	withTestUser(app)
	app.Get("/campaigns", cc.GetCampaigns)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "campaigns" WHERE user_id = \$1 AND "campaigns"\."deleted_at" IS NULL$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT \* FROM "campaigns" WHERE user_id = \$1.*ORDER BY created_at DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	req := httptest.NewRequest("GET", "/campaigns?page=2&limit=20", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, int64(3), page.Total)

	assert.NoError(t, mock.ExpectationsWereMet())
}
