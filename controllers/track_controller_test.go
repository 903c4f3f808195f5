package controller

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func newTrackApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	tc := NewTrackController(db, log.New(os.Stdout, "TRACK: ", log.LstdFlags))

	app := fiber.New()
	app.Post("/api/track", tc.HandleTrack)
	return app, mock
}

func postJSON(app *fiber.App, path string, payload interface{}) (*http.Response, error) {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return app.Test(req, -1)
}

func TestHandleTrackStoresEvent(t *testing.T) {
	app, mock := newTrackApp(t)

	// Unknown client ids are accepted; the lookup finds nothing
	mock.ExpectQuery(`SELECT \* FROM "clients" WHERE client_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "anonymous_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	resp, err := postJSON(app, "/api/track", TrackEventInput{
		ClientID:    "nlt_abc123",
		AnonymousID: "anon_9f8e7d6c",
		Type:        "page_view",
		URL:         "https://example.com/blog/health-tips",
		Data:        map[string]interface{}{"visit_count": 3},
	})

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleTrackMissingRequiredFields(t *testing.T) {
	app, _ := newTrackApp(t)

	resp, err := postJSON(app, "/api/track", TrackEventInput{
		ClientID: "nlt_abc123",
		Type:     "page_view",
	})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = postJSON(app, "/api/track", TrackEventInput{
		AnonymousID: "anon_9f8e7d6c",
	})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleTrackUnknownEventType(t *testing.T) {
	app, _ := newTrackApp(t)

	resp, err := postJSON(app, "/api/track", TrackEventInput{
		AnonymousID: "anon_9f8e7d6c",
		Type:        "pageview",
	})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleTrackStorageFailure(t *testing.T) {
	app, mock := newTrackApp(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "anonymous_events"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	resp, err := postJSON(app, "/api/track", TrackEventInput{
		AnonymousID: "anon_9f8e7d6c",
		Type:        "subscription",
		Data:        map[string]interface{}{"email": "new@example.com"},
	})

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHandleTrackRejectsInactiveClient(t *testing.T) {
	app, mock := newTrackApp(t)

	mock.ExpectQuery(`SELECT \* FROM "clients" WHERE client_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "status"}).
			AddRow(1, "nlt_suspended01", "suspended"))

	resp, err := postJSON(app, "/api/track", TrackEventInput{
		ClientID:    "nlt_suspended01",
		AnonymousID: "anon_9f8e7d6c",
		Type:        "page_view",
	})

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleTrackRejectsNonPost(t *testing.T) {
	app, _ := newTrackApp(t)

	req := httptest.NewRequest("GET", "/api/track", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMatchCSVColumns(t *testing.T) {
	emailIdx, nameIdx := MatchCSVColumns([]string{"Email Address", "Full Name"})
	assert.Equal(t, 0, emailIdx)
	assert.Equal(t, 1, nameIdx)

	emailIdx, nameIdx = MatchCSVColumns([]string{"NAME", "Subscriber EMAIL"})
	assert.Equal(t, 1, emailIdx)
	assert.Equal(t, 0, nameIdx)

	emailIdx, nameIdx = MatchCSVColumns([]string{"phone", "city"})
	assert.Equal(t, -1, emailIdx)
	assert.Equal(t, -1, nameIdx)
}
