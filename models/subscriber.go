package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscriber represents a newsletter recipient
type Subscriber struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Email     string `gorm:"not null;index" json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	Subscribed bool `gorm:"default:true" json:"subscribed"`

	// Attribute documents, stored as JSONB
	Demographics Demographics `gorm:"type:jsonb;serializer:json" json:"demographics"`
	Location     Location     `gorm:"type:jsonb;serializer:json" json:"location"`
	TrackingData TrackingData `gorm:"type:jsonb;serializer:json" json:"tracking_data"`

	Source     string     `json:"source"` // manual, csv, tracker, api
	LastActive *time.Time `json:"last_active"`
}

// Demographics holds self-reported subscriber attributes
type Demographics struct {
	AgeGroup       string   `json:"age_group,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	IncomeRange    string   `json:"income_range,omitempty"`
	EducationLevel string   `json:"education_level,omitempty"`
	Occupation     string   `json:"occupation,omitempty"`
	MaritalStatus  string   `json:"marital_status,omitempty"`
	Interests      []string `json:"interests,omitempty"`

	// Psychographic and behavioral attributes
	Lifestyle         []string `json:"lifestyle,omitempty"`
	Values            []string `json:"values,omitempty"`
	PersonalityTraits []string `json:"personality_traits,omitempty"`
	SocialClass       string   `json:"social_class,omitempty"`
	UsageRate         string   `json:"usage_rate,omitempty"`
	BrandLoyalty      string   `json:"brand_loyalty,omitempty"`
	BenefitsSought    []string `json:"benefits_sought,omitempty"`
	ReadinessStage    string   `json:"readiness_stage,omitempty"`
	Occasions         []string `json:"occasions,omitempty"`

	// Lifecycle attributes
	LifecycleStage     string `json:"lifecycle_stage,omitempty"`
	CustomerStatus     string `json:"customer_status,omitempty"`
	AcquisitionSource  string `json:"acquisition_source,omitempty"`
	MembershipDuration string `json:"membership_duration,omitempty"`

	// Purchase history attributes
	PurchaseFrequency string     `json:"purchase_frequency,omitempty"`
	LastPurchaseAt    *time.Time `json:"last_purchase_at,omitempty"`
	AverageOrderValue float64    `json:"average_order_value,omitempty"`
	ProductCategories []string   `json:"product_categories,omitempty"`
	TotalSpentRange   string     `json:"total_spent_range,omitempty"`
}

// Location holds geographic subscriber attributes
type Location struct {
	Country  string `json:"country,omitempty"`
	City     string `json:"city,omitempty"`
	Region   string `json:"region,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Language string `json:"language,omitempty"`
}

// TrackingData accumulates tracked interactions for a subscriber.
// EngagementScore and Interests are derived and recomputed on every
// applied activity; the raw event lists are append-only.
type TrackingData struct {
	PageViews           []PageView           `json:"page_views,omitempty"`
	ContentInteractions []ContentInteraction `json:"content_interactions,omitempty"`
	EmailInteractions   []EmailInteraction   `json:"email_interactions,omitempty"`
	Interests           []string             `json:"interests,omitempty"`
	EngagementScore     int                  `json:"engagement_score"`
}

type PageView struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

type ContentInteraction struct {
	ContentID string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type EmailInteraction struct {
	EmailID   string    `json:"email_id"`
	Action    string    `json:"action"` // open, click
	Timestamp time.Time `json:"timestamp"`
}
