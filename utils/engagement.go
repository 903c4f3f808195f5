package utils

import (
	"sort"
	"strings"
	"time"

	"freemail/models"
)

// Engagement score weights per interaction kind
const (
	PageViewWeight           = 1
	ContentInteractionWeight = 2
	EmailInteractionWeight   = 3
)

// Interest tally weights
const (
	pageViewInterestWeight = 1
	contentInterestWeight  = 2
	maxInferredInterests   = 5
)

// Activity describes a single tracked subscriber action. Exactly one of
// the fields is expected to be set.
type Activity struct {
	PageView           string
	ContentInteraction string
	EmailInteraction   *models.EmailInteraction
}

// ApplyActivity appends the activity to the subscriber's tracking data
// and recomputes the derived engagement score and interest list.
func ApplyActivity(td *models.TrackingData, activity Activity, at time.Time) {
	if activity.PageView != "" {
		td.PageViews = append(td.PageViews, models.PageView{
			Path:      activity.PageView,
			Timestamp: at,
		})
	}

	if activity.ContentInteraction != "" {
		td.ContentInteractions = append(td.ContentInteractions, models.ContentInteraction{
			ContentID: activity.ContentInteraction,
			Timestamp: at,
		})
	}

	if activity.EmailInteraction != nil {
		ei := *activity.EmailInteraction
		ei.Timestamp = at
		td.EmailInteractions = append(td.EmailInteractions, ei)
	}

	td.EngagementScore = CalculateEngagementScore(td)
	td.Interests = InferInterests(td)
}

// CalculateEngagementScore derives the denormalized engagement score:
// page views x1, content interactions x2, email interactions x3.
func CalculateEngagementScore(td *models.TrackingData) int {
	return len(td.PageViews)*PageViewWeight +
		len(td.ContentInteractions)*ContentInteractionWeight +
		len(td.EmailInteractions)*EmailInteractionWeight
}

// InferInterests tallies topics from viewed paths (weight 1) and content
// interaction ids (weight 2) and returns the top 5 by tally. Ties keep
// first-seen order.
func InferInterests(td *models.TrackingData) []string {
	counts := make(map[string]int)
	var order []string

	tally := func(topic string, weight int) {
		if _, seen := counts[topic]; !seen {
			order = append(order, topic)
		}
		counts[topic] += weight
	}

	for _, view := range td.PageViews {
		tally(ExtractTopicFromPath(view.Path), pageViewInterestWeight)
	}
	for _, interaction := range td.ContentInteractions {
		tally(ExtractTopicFromContent(interaction.ContentID), contentInterestWeight)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxInferredInterests {
		order = order[:maxInferredInterests]
	}
	return order
}

// ExtractTopicFromPath derives a topic from a URL path, e.g.
// /blog/health-tips -> "health".
func ExtractTopicFromPath(path string) string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return "general"
	}

	last := segments[len(segments)-1]
	topic := strings.SplitN(last, "-", 2)[0]
	if topic == "" {
		return "general"
	}
	return topic
}

// ExtractTopicFromContent derives a topic from a content interaction id,
// e.g. fitness-1 -> "fitness".
func ExtractTopicFromContent(contentID string) string {
	topic := strings.SplitN(contentID, "-", 2)[0]
	if topic == "" {
		return "general"
	}
	return topic
}
