package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a dashboard account
type User struct {
	gorm.Model
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	// Bumped on password change to invalidate outstanding tokens
	TokenVersion int `gorm:"default:0" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`

	// Relations
	Clients     []Client     `gorm:"foreignKey:UserID" json:"clients,omitempty"`
	Subscribers []Subscriber `gorm:"foreignKey:UserID" json:"-"`
	Campaigns   []Campaign   `gorm:"foreignKey:UserID" json:"-"`
}
