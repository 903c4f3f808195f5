package worker

import (
	"log"
	"os"
	"testing"

	"freemail/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockWorker(t *testing.T) (*EventWorker, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewEventWorker(db, log.New(os.Stdout, "EVENTS: ", log.LstdFlags), 90), mock
}

func TestStringField(t *testing.T) {
	data := map[string]interface{}{
		"email": "a@example.com",
		"count": 3,
	}

	assert.Equal(t, "a@example.com", stringField(data, "email"))
	assert.Equal(t, "", stringField(data, "count"))
	assert.Equal(t, "", stringField(data, "missing"))
	assert.Equal(t, "", stringField(nil, "email"))
}

func TestProcessPendingEventsMarksInvalidEventsProcessed(t *testing.T) {
	ew, mock := newMockWorker(t)

	// A subscription event without an email can never succeed; it must
	// still be flagged processed or it would be refetched every tick.
	rows := sqlmock.NewRows([]string{"id", "anonymous_id", "client_id", "event_type", "data", "processed"}).
		AddRow(1, "anon_9f8e7d6c", "", models.EventSubscription, []byte(`{}`), false)
	mock.ExpectQuery(`SELECT (.+) FROM "anonymous_events"`).WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "anonymous_events" SET "processed"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ew.processPendingEvents()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessSubscriptionRejectsBadEmail(t *testing.T) {
	ew := NewEventWorker(nil, log.New(os.Stdout, "EVENTS: ", log.LstdFlags), 90)

	noEmail := &models.AnonymousEvent{
		EventType: models.EventSubscription,
		Data:      map[string]interface{}{},
	}
	assert.Error(t, ew.processSubscription(noEmail))

	badEmail := &models.AnonymousEvent{
		EventType: models.EventSubscription,
		Data:      map[string]interface{}{"email": "not-an-email"},
	}
	assert.Error(t, ew.processSubscription(badEmail))
}
