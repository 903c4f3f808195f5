package utils

import (
	"testing"
	"time"

	"freemail/models"

	"github.com/stretchr/testify/assert"
)

func TestCalculateEngagementScore(t *testing.T) {
	td := models.TrackingData{
		PageViews: []models.PageView{
			{Path: "/blog/health-tips"},
			{Path: "/blog/fitness-basics"},
			{Path: "/pricing"},
		},
		ContentInteractions: []models.ContentInteraction{
			{ContentID: "fitness-1"},
			{ContentID: "fitness-2"},
		},
		EmailInteractions: []models.EmailInteraction{
			{EmailID: "12", Action: "open"},
		},
	}

	// 3 page views x1 + 2 content interactions x2 + 1 email interaction x3
	assert.Equal(t, 10, CalculateEngagementScore(&td))
}

func TestCalculateEngagementScoreEmpty(t *testing.T) {
	td := models.TrackingData{}
	assert.Equal(t, 0, CalculateEngagementScore(&td))
}

func TestApplyActivityRecomputesDerivedFields(t *testing.T) {
	td := models.TrackingData{}
	now := time.Now()

	ApplyActivity(&td, Activity{PageView: "/blog/health-tips"}, now)
	assert.Equal(t, 1, td.EngagementScore)
	assert.Equal(t, []string{"health"}, td.Interests)

	ApplyActivity(&td, Activity{ContentInteraction: "fitness-1"}, now)
	assert.Equal(t, 3, td.EngagementScore)

	ApplyActivity(&td, Activity{EmailInteraction: &models.EmailInteraction{EmailID: "7", Action: "open"}}, now)
	assert.Equal(t, 6, td.EngagementScore)
	assert.Len(t, td.EmailInteractions, 1)
	assert.Equal(t, now, td.EmailInteractions[0].Timestamp)
}

func TestInferInterestsRanking(t *testing.T) {
	td := models.TrackingData{
		PageViews: []models.PageView{
			{Path: "/blog/health-tips"},
			{Path: "/blog/health-check"},
		},
		ContentInteractions: []models.ContentInteraction{
			{ContentID: "fitness-1"},
		},
	}

	// health tallies 2 (two page views x1), fitness tallies 2 (one
	// interaction x2); ties keep first-seen order
	interests := InferInterests(&td)
	assert.Equal(t, []string{"health", "fitness"}, interests)
}

func TestInferInterestsCappedAtFive(t *testing.T) {
	td := models.TrackingData{
		PageViews: []models.PageView{
			{Path: "/a-one"}, {Path: "/b-one"}, {Path: "/c-one"},
			{Path: "/d-one"}, {Path: "/e-one"}, {Path: "/f-one"},
		},
	}

	assert.Len(t, InferInterests(&td), 5)
}

func TestExtractTopicFromPath(t *testing.T) {
	assert.Equal(t, "health", ExtractTopicFromPath("/blog/health-tips"))
	assert.Equal(t, "pricing", ExtractTopicFromPath("/pricing"))
	assert.Equal(t, "general", ExtractTopicFromPath("/"))
	assert.Equal(t, "general", ExtractTopicFromPath(""))
}

func TestExtractTopicFromContent(t *testing.T) {
	assert.Equal(t, "fitness", ExtractTopicFromContent("fitness-1"))
	assert.Equal(t, "general", ExtractTopicFromContent(""))
}
