package models

import "gorm.io/gorm"

// Migrate runs schema migration for all models. Called once at startup
// after the database connection is established.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Client{},
		&Subscriber{},
		&Campaign{},
		&AnonymousEvent{},
		&EngagementMetric{},
	)
}
