package controller

import (
	"log"
	"time"

	"freemail/models"

	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

// HandleEventFeedWS streams newly tracked anonymous events to the
// dashboard live feed. The client sends a subscribe message, then receives
// a batch whenever new events arrive.
func HandleEventFeedWS(db *gorm.DB) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		var input struct {
			Action   string `json:"action"`
			ClientID string `json:"client_id"`
		}

		if err := c.ReadJSON(&input); err != nil {
			log.Printf("Error reading JSON: %v", err)
			return
		}

		if input.Action != "subscribe" {
			return
		}

		var lastID uint
		db.Model(&models.AnonymousEvent{}).Select("COALESCE(MAX(id), 0)").Scan(&lastID)

		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			query := db.Where("id > ?", lastID)
			if input.ClientID != "" {
				query = query.Where("client_id = ?", input.ClientID)
			}

			var events []models.AnonymousEvent
			if err := query.Order("id ASC").Limit(100).Find(&events).Error; err != nil {
				log.Printf("Event feed query failed: %v", err)
				break
			}

			if len(events) == 0 {
				// Heartbeat keeps the connection alive and detects closed peers
				if err := c.WriteJSON(map[string]string{"type": "ping"}); err != nil {
					break
				}
				continue
			}

			lastID = events[len(events)-1].ID

			payload := struct {
				Type   string                  `json:"type"`
				Events []models.AnonymousEvent `json:"events"`
			}{
				Type:   "events",
				Events: events,
			}

			if err := c.WriteJSON(payload); err != nil {
				log.Printf("Error writing JSON: %v", err)
				break
			}
		}
	}
}
