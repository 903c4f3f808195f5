package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign statuses. Transitions only move forward: a sent campaign
// never returns to draft.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusSent      = "sent"
)

// Campaign represents a newsletter campaign
type Campaign struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name    string `gorm:"not null" json:"name"`
	Subject string `gorm:"not null" json:"subject"`

	// Ordered content blocks, serialized as JSON. Malformed stored
	// content degrades to an empty block list on read.
	Content string `gorm:"type:text" json:"content"`

	Status       string     `gorm:"default:'draft'" json:"status"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	SentAt       *time.Time `json:"sent_at"`

	// Recipient emails captured when the campaign is created
	Recipients []string `gorm:"type:jsonb;serializer:json" json:"recipients"`

	// Provider reference returned by the delivery API
	ProviderMessageID string `json:"provider_message_id"`

	// Denormalized engagement counters
	OpenCount  int `gorm:"default:0" json:"open_count"`
	ClickCount int `gorm:"default:0" json:"click_count"`
}

// CanTransitionTo reports whether moving to the given status respects the
// forward-only lifecycle.
func (c *Campaign) CanTransitionTo(status string) bool {
	rank := map[string]int{
		CampaignStatusDraft:     0,
		CampaignStatusScheduled: 1,
		CampaignStatusSent:      2,
	}
	from, ok := rank[c.Status]
	if !ok {
		return false
	}
	to, ok := rank[status]
	if !ok {
		return false
	}
	return to >= from
}

// IsEditable reports whether campaign fields may still be changed.
func (c *Campaign) IsEditable() bool {
	return c.Status == CampaignStatusDraft
}
