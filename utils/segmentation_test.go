package utils

import (
	"testing"
	"time"

	"freemail/models"

	"github.com/stretchr/testify/assert"
)

func testSubscribers() []models.Subscriber {
	lastWeek := time.Now().AddDate(0, 0, -7)
	lastYear := time.Now().AddDate(-1, 0, 0)

	return []models.Subscriber{
		{
			Email:      "alice@example.com",
			Subscribed: true,
			Demographics: models.Demographics{
				AgeGroup:  "25-34",
				Gender:    "female",
				Interests: []string{"fitness", "nutrition"},
			},
			Location: models.Location{Country: "US", City: "Austin"},
			TrackingData: models.TrackingData{
				EngagementScore: 60,
				Interests:       []string{"health"},
			},
			LastActive: &lastWeek,
		},
		{
			Email:      "bob@example.com",
			Subscribed: true,
			Demographics: models.Demographics{
				AgeGroup: "45-54",
				Gender:   "male",
			},
			Location: models.Location{Country: "DE"},
			TrackingData: models.TrackingData{
				EngagementScore: 5,
			},
			LastActive: &lastYear,
		},
		{
			Email:        "carol@example.com",
			Subscribed:   false,
			Demographics: models.Demographics{AgeGroup: "25-34"},
		},
	}
}

func TestFilterSubscribersEmptyCriteria(t *testing.T) {
	criteria := SegmentCriteria{}
	matched := criteria.FilterSubscribers(testSubscribers())

	// Empty criteria still excludes unsubscribed rows
	assert.Len(t, matched, 2)
	for _, sub := range matched {
		assert.True(t, sub.Subscribed)
	}
}

func TestFilterSubscribersByAgeGroup(t *testing.T) {
	criteria := SegmentCriteria{
		Demographic: &DemographicCriteria{AgeGroups: []string{"25-34"}},
	}
	matched := criteria.FilterSubscribers(testSubscribers())

	assert.Len(t, matched, 1)
	assert.Equal(t, "alice@example.com", matched[0].Email)
}

func TestFilterSubscribersMultipleValuesAreOR(t *testing.T) {
	criteria := SegmentCriteria{
		Demographic: &DemographicCriteria{AgeGroups: []string{"25-34", "45-54"}},
	}
	matched := criteria.FilterSubscribers(testSubscribers())

	assert.Len(t, matched, 2)
}

func TestFilterSubscribersCategoriesAreAND(t *testing.T) {
	criteria := SegmentCriteria{
		Demographic: &DemographicCriteria{AgeGroups: []string{"25-34"}},
		Geographic:  &GeographicCriteria{Country: []string{"DE"}},
	}
	matched := criteria.FilterSubscribers(testSubscribers())

	assert.Empty(t, matched)
}

func TestFilterSubscribersByEngagementLevel(t *testing.T) {
	criteria := SegmentCriteria{
		EmailEngagement: &EmailEngagementCriteria{EngagementLevel: []string{"high"}},
	}
	matched := criteria.FilterSubscribers(testSubscribers())

	assert.Len(t, matched, 1)
	assert.Equal(t, "alice@example.com", matched[0].Email)
}

func TestFilterSubscribersByRecency(t *testing.T) {
	criteria := SegmentCriteria{
		EmailEngagement: &EmailEngagementCriteria{LastOpenedDays: 30},
	}
	matched := criteria.FilterSubscribers(testSubscribers())

	assert.Len(t, matched, 1)
	assert.Equal(t, "alice@example.com", matched[0].Email)
}

func TestFilterSubscribersByInferredInterests(t *testing.T) {
	criteria := SegmentCriteria{
		Behavioral: &BehavioralCriteria{Interests: []string{"health"}},
	}
	matched := criteria.FilterSubscribers(testSubscribers())

	assert.Len(t, matched, 1)
	assert.Equal(t, "alice@example.com", matched[0].Email)
}

func TestMinEngagementScore(t *testing.T) {
	assert.Equal(t, 50, MinEngagementScore("high"))
	assert.Equal(t, 20, MinEngagementScore("medium"))
	assert.Equal(t, 0, MinEngagementScore("low"))
	assert.Equal(t, 0, MinEngagementScore("unknown"))
}

func TestMatchesNoLastActiveFailsRecency(t *testing.T) {
	criteria := SegmentCriteria{
		EmailEngagement: &EmailEngagementCriteria{LastOpenedDays: 30},
	}
	sub := models.Subscriber{Email: "new@example.com", Subscribed: true}

	assert.False(t, criteria.Matches(&sub))
}
