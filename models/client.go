package models

import "gorm.io/gorm"

// Client statuses
const (
	ClientStatusActive    = "active"
	ClientStatusInactive  = "inactive"
	ClientStatusSuspended = "suspended"
)

// Client represents a registered website allowed to embed the tracker
// snippet. ClientID and APIKey are generated once at registration and
// never regenerated in place.
type Client struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	ClientID string `gorm:"not null;uniqueIndex" json:"client_id"`
	APIKey   string `gorm:"not null" json:"api_key"`

	Name   string `gorm:"not null" json:"name"`
	Email  string `json:"email"`
	Domain string `gorm:"not null" json:"domain"`

	Status string `gorm:"default:'active'" json:"status"`
}

// IsActive reports whether events for this client should be accepted.
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}
