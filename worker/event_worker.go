package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"freemail/models"
	"freemail/utils"

	"gorm.io/gorm"
)

type EventWorker struct {
	DB            *gorm.DB
	Logger        *log.Logger
	RetentionDays int
}

func NewEventWorker(db *gorm.DB, logger *log.Logger, retentionDays int) *EventWorker {
	return &EventWorker{
		DB:            db,
		Logger:        logger,
		RetentionDays: retentionDays,
	}
}

func (ew *EventWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	ew.Logger.Println("Event worker started")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	sweep := time.NewTicker(6 * time.Hour)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			ew.Logger.Println("Event worker shutting down...")
			return
		case <-ticker.C:
			ew.processPendingEvents()
		case <-sweep.C:
			ew.sweepProcessedEvents()
		}
	}
}

// errInvalidEvent marks events that can never succeed. They are still
// flagged processed so they do not sit at the head of the queue forever.
var errInvalidEvent = errors.New("invalid event")

// processPendingEvents consumes unprocessed anonymous events in id order.
// Subscription events create or resubscribe subscribers; every event from
// a known subscriber is merged into their tracking data. Transient
// failures keep the row for the next tick; invalid events are marked
// processed and dropped.
func (ew *EventWorker) processPendingEvents() {
	var events []models.AnonymousEvent
	if err := ew.DB.Where("processed = ?", false).
		Order("id ASC").
		Limit(500).
		Find(&events).Error; err != nil {
		ew.Logger.Printf("Error fetching pending events: %v", err)
		return
	}

	for i := range events {
		if err := ew.processEvent(&events[i]); err != nil {
			ew.Logger.Printf("Error processing event %d: %v", events[i].ID, err)
			if !errors.Is(err, errInvalidEvent) {
				continue
			}
		}
		if err := ew.DB.Model(&events[i]).UpdateColumn("processed", true).Error; err != nil {
			ew.Logger.Printf("Error marking event %d processed: %v", events[i].ID, err)
		}
	}
}

func (ew *EventWorker) processEvent(event *models.AnonymousEvent) error {
	if event.EventType == models.EventSubscription {
		return ew.processSubscription(event)
	}

	email := stringField(event.Data, "email")
	if email == "" {
		// Pure anonymous activity stays in the event log only
		return nil
	}

	var subscriber models.Subscriber
	if err := ew.DB.Where("email = ?", email).First(&subscriber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	activity := utils.Activity{}
	switch event.EventType {
	case models.EventPageView:
		activity.PageView = event.PageURL
	case models.EventContentInteraction:
		activity.ContentInteraction = stringField(event.Data, "content_id")
	default:
		return nil
	}

	if activity.PageView == "" && activity.ContentInteraction == "" {
		return nil
	}

	now := event.CreatedAt
	utils.ApplyActivity(&subscriber.TrackingData, activity, now)
	subscriber.LastActive = &now

	return ew.DB.Save(&subscriber).Error
}

// processSubscription creates a subscriber from a tracked signup, or
// resubscribes an existing one.
func (ew *EventWorker) processSubscription(event *models.AnonymousEvent) error {
	email := stringField(event.Data, "email")
	if email == "" {
		return fmt.Errorf("%w: subscription event %d has no email", errInvalidEvent, event.ID)
	}
	if err := utils.ValidateEmailFormat(email); err != nil {
		return fmt.Errorf("%w: subscription event %d: %v", errInvalidEvent, event.ID, err)
	}

	userID := ew.resolveUserID(event.ClientID)

	var subscriber models.Subscriber
	err := ew.DB.Where("email = ?", email).First(&subscriber).Error
	if err == gorm.ErrRecordNotFound {
		now := event.CreatedAt
		subscriber = models.Subscriber{
			UserID:     userID,
			Email:      email,
			FirstName:  stringField(event.Data, "first_name"),
			LastName:   stringField(event.Data, "last_name"),
			Subscribed: true,
			Source:     "tracker",
			LastActive: &now,
		}
		if createErr := ew.DB.Create(&subscriber).Error; createErr != nil {
			return createErr
		}
		utils.LogEvent("subscriber_created", map[string]interface{}{
			"email":  email,
			"source": "tracker",
		})
		return nil
	}
	if err != nil {
		return err
	}

	if !subscriber.Subscribed {
		subscriber.Subscribed = true
		now := event.CreatedAt
		subscriber.LastActive = &now
		return ew.DB.Save(&subscriber).Error
	}
	return nil
}

// resolveUserID maps a tracker client id to its owning account. Zero when
// the client is unknown.
func (ew *EventWorker) resolveUserID(clientID string) uint {
	if clientID == "" {
		return 0
	}
	var client models.Client
	if err := ew.DB.Where("client_id = ?", clientID).First(&client).Error; err != nil {
		return 0
	}
	return client.UserID
}

// sweepProcessedEvents deletes processed events past the retention window
func (ew *EventWorker) sweepProcessedEvents() {
	if ew.RetentionDays <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -ew.RetentionDays)
	result := ew.DB.Unscoped().
		Where("processed = ? AND created_at < ?", true, cutoff).
		Delete(&models.AnonymousEvent{})
	if result.Error != nil {
		ew.Logger.Printf("Error sweeping old events: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		ew.Logger.Printf("Swept %d processed events older than %d days", result.RowsAffected, ew.RetentionDays)
	}
}

func stringField(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
