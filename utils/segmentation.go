package utils

import (
	"time"

	"freemail/models"

	"gorm.io/gorm"
)

// SegmentCriteria is a multi-category filter over subscriber attributes.
// Absent or empty fields impose no constraint. Present fields combine
// with AND; values inside a single field combine with OR.
type SegmentCriteria struct {
	Demographic     *DemographicCriteria     `json:"demographic,omitempty"`
	Geographic      *GeographicCriteria      `json:"geographic,omitempty"`
	Psychographic   *PsychographicCriteria   `json:"psychographic,omitempty"`
	Behavioral      *BehavioralCriteria      `json:"behavioral,omitempty"`
	Lifecycle       *LifecycleCriteria       `json:"lifecycle,omitempty"`
	PurchaseHistory *PurchaseHistoryCriteria `json:"purchase_history,omitempty"`
	EmailEngagement *EmailEngagementCriteria `json:"email_engagement,omitempty"`
}

type DemographicCriteria struct {
	AgeGroups      []string `json:"age_groups,omitempty"`
	Gender         []string `json:"gender,omitempty"`
	IncomeRange    []string `json:"income_range,omitempty"`
	EducationLevel []string `json:"education_level,omitempty"`
	Occupation     []string `json:"occupation,omitempty"`
	MaritalStatus  []string `json:"marital_status,omitempty"`
}

type GeographicCriteria struct {
	Country  []string `json:"country,omitempty"`
	City     []string `json:"city,omitempty"`
	Region   []string `json:"region,omitempty"`
	Timezone []string `json:"timezone,omitempty"`
	Language []string `json:"language,omitempty"`
}

type PsychographicCriteria struct {
	Interests         []string `json:"interests,omitempty"`
	Lifestyle         []string `json:"lifestyle,omitempty"`
	Values            []string `json:"values,omitempty"`
	PersonalityTraits []string `json:"personality_traits,omitempty"`
	SocialClass       []string `json:"social_class,omitempty"`
}

type BehavioralCriteria struct {
	UsageRate      []string `json:"usage_rate,omitempty"`
	BrandLoyalty   []string `json:"brand_loyalty,omitempty"`
	BenefitsSought []string `json:"benefits_sought,omitempty"`
	ReadinessStage []string `json:"readiness_stage,omitempty"`
	Occasions      []string `json:"occasions,omitempty"`

	// Inferred interests from tracking data
	Interests []string `json:"interests,omitempty"`
}

type LifecycleCriteria struct {
	Stage              []string `json:"stage,omitempty"`
	CustomerStatus     []string `json:"customer_status,omitempty"`
	AcquisitionSource  []string `json:"acquisition_source,omitempty"`
	MembershipDuration []string `json:"membership_duration,omitempty"`
}

type PurchaseHistoryCriteria struct {
	Frequency         []string `json:"frequency,omitempty"`
	RecencyDays       int      `json:"recency,omitempty"` // days since last purchase
	ProductCategories []string `json:"product_categories,omitempty"`
	TotalSpentRange   []string `json:"total_spent_range,omitempty"`
}

type EmailEngagementCriteria struct {
	EngagementLevel []string `json:"engagement_level,omitempty"` // high, medium, low
	LastOpenedDays  int      `json:"last_opened,omitempty"`      // active within N days
}

// Engagement level thresholds applied to the denormalized score
var engagementThresholds = map[string]int{
	"high":   50,
	"medium": 20,
	"low":    0,
}

// MinEngagementScore returns the score floor for an engagement level.
// Unknown levels impose no floor.
func MinEngagementScore(level string) int {
	return engagementThresholds[level]
}

// ApplyQueryFilters narrows a subscriber query with the criteria fields
// the store can evaluate cheaply: subscription status, engagement score
// floor, and activity recency. The remaining categories are evaluated by
// Matches on the fetched rows, so both paths agree on one engine.
func (sc *SegmentCriteria) ApplyQueryFilters(query *gorm.DB) *gorm.DB {
	query = query.Where("subscribed = ?", true)

	if sc.EmailEngagement != nil {
		if len(sc.EmailEngagement.EngagementLevel) > 0 {
			min := -1
			for _, level := range sc.EmailEngagement.EngagementLevel {
				if score := MinEngagementScore(level); min == -1 || score < min {
					min = score
				}
			}
			if min > 0 {
				query = query.Where("(tracking_data->>'engagement_score')::int >= ?", min)
			}
		}

		if sc.EmailEngagement.LastOpenedDays > 0 {
			cutoff := time.Now().AddDate(0, 0, -sc.EmailEngagement.LastOpenedDays)
			query = query.Where("last_active >= ?", cutoff)
		}
	}

	return query
}

// Matches reports whether the subscriber satisfies every present
// criteria field.
func (sc *SegmentCriteria) Matches(sub *models.Subscriber) bool {
	if !sub.Subscribed {
		return false
	}

	demo := sub.Demographics

	if c := sc.Demographic; c != nil {
		if !matchValue(c.AgeGroups, demo.AgeGroup) ||
			!matchValue(c.Gender, demo.Gender) ||
			!matchValue(c.IncomeRange, demo.IncomeRange) ||
			!matchValue(c.EducationLevel, demo.EducationLevel) ||
			!matchValue(c.Occupation, demo.Occupation) ||
			!matchValue(c.MaritalStatus, demo.MaritalStatus) {
			return false
		}
	}

	if c := sc.Geographic; c != nil {
		loc := sub.Location
		if !matchValue(c.Country, loc.Country) ||
			!matchValue(c.City, loc.City) ||
			!matchValue(c.Region, loc.Region) ||
			!matchValue(c.Timezone, loc.Timezone) ||
			!matchValue(c.Language, loc.Language) {
			return false
		}
	}

	if c := sc.Psychographic; c != nil {
		if !matchAny(c.Interests, demo.Interests) ||
			!matchAny(c.Lifestyle, demo.Lifestyle) ||
			!matchAny(c.Values, demo.Values) ||
			!matchAny(c.PersonalityTraits, demo.PersonalityTraits) ||
			!matchValue(c.SocialClass, demo.SocialClass) {
			return false
		}
	}

	if c := sc.Behavioral; c != nil {
		if !matchValue(c.UsageRate, demo.UsageRate) ||
			!matchValue(c.BrandLoyalty, demo.BrandLoyalty) ||
			!matchAny(c.BenefitsSought, demo.BenefitsSought) ||
			!matchValue(c.ReadinessStage, demo.ReadinessStage) ||
			!matchAny(c.Occasions, demo.Occasions) ||
			!matchAny(c.Interests, sub.TrackingData.Interests) {
			return false
		}
	}

	if c := sc.Lifecycle; c != nil {
		if !matchValue(c.Stage, demo.LifecycleStage) ||
			!matchValue(c.CustomerStatus, demo.CustomerStatus) ||
			!matchValue(c.AcquisitionSource, demo.AcquisitionSource) ||
			!matchValue(c.MembershipDuration, demo.MembershipDuration) {
			return false
		}
	}

	if c := sc.PurchaseHistory; c != nil {
		if !matchValue(c.Frequency, demo.PurchaseFrequency) ||
			!matchAny(c.ProductCategories, demo.ProductCategories) ||
			!matchValue(c.TotalSpentRange, demo.TotalSpentRange) {
			return false
		}
		if c.RecencyDays > 0 {
			if demo.LastPurchaseAt == nil {
				return false
			}
			cutoff := time.Now().AddDate(0, 0, -c.RecencyDays)
			if demo.LastPurchaseAt.Before(cutoff) {
				return false
			}
		}
	}

	if c := sc.EmailEngagement; c != nil {
		if len(c.EngagementLevel) > 0 {
			matched := false
			for _, level := range c.EngagementLevel {
				if sub.TrackingData.EngagementScore >= MinEngagementScore(level) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		if c.LastOpenedDays > 0 {
			if sub.LastActive == nil {
				return false
			}
			cutoff := time.Now().AddDate(0, 0, -c.LastOpenedDays)
			if sub.LastActive.Before(cutoff) {
				return false
			}
		}
	}

	return true
}

// FilterSubscribers returns the subset matching the criteria.
func (sc *SegmentCriteria) FilterSubscribers(subs []models.Subscriber) []models.Subscriber {
	matched := make([]models.Subscriber, 0, len(subs))
	for i := range subs {
		if sc.Matches(&subs[i]) {
			matched = append(matched, subs[i])
		}
	}
	return matched
}

// matchValue: empty allowed-list imposes no constraint, otherwise the
// stored value must be one of the allowed values.
func matchValue(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

// matchAny: empty allowed-list imposes no constraint, otherwise at least
// one stored value must be allowed.
func matchAny(allowed, values []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		for _, v := range values {
			if a == v {
				return true
			}
		}
	}
	return false
}
