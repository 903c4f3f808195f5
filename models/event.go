package models

import (
	"time"

	"gorm.io/gorm"
)

// Anonymous event types accepted by the ingestion endpoint. Payloads
// carrying any other type are rejected before storage.
const (
	EventPageView           = "page_view"
	EventContentInteraction = "content_interaction"
	EventFormInteraction    = "form_interaction"
	EventSubscription       = "subscription"
	EventClick              = "click"
	EventScroll             = "scroll"
	EventCustom             = "custom"
)

// ValidEventType reports whether t belongs to the fixed event type set.
func ValidEventType(t string) bool {
	switch t {
	case EventPageView, EventContentInteraction, EventFormInteraction,
		EventSubscription, EventClick, EventScroll, EventCustom:
		return true
	}
	return false
}

// AnonymousEvent is an append-only ingestion log row. Events are written
// exactly as received (no dedupe, no batching) and consumed later by the
// event worker.
type AnonymousEvent struct {
	gorm.Model
	AnonymousID string `gorm:"not null;index" json:"anonymous_id"`
	ClientID    string `gorm:"index" json:"client_id"` // may be empty for pure anonymous events

	EventType string `gorm:"not null" json:"event_type"`
	PageURL   string `json:"page_url"`
	UserAgent string `json:"user_agent"`
	IPAddress string `json:"ip_address"`

	// Free-form extension payload from the tracker envelope
	Data map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"data"`

	Processed bool `gorm:"default:false;index" json:"processed"`
}

// Email engagement event types
const (
	MetricEmailOpen = "email_open"
	MetricLinkClick = "link_click"
)

// EngagementMetric records a single email open or link click attributed
// to a subscriber and campaign.
type EngagementMetric struct {
	gorm.Model
	// Zero when the open or click could not be attributed to a subscriber
	SubscriberID uint `gorm:"index" json:"subscriber_id"`
	CampaignID   uint `gorm:"not null;index" json:"campaign_id"`

	EventType string    `gorm:"not null" json:"event_type"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`

	// URL for link clicks, empty for opens
	URL string `json:"url"`

	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}
