package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCampaignCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{CampaignStatusDraft, CampaignStatusScheduled, true},
		{CampaignStatusDraft, CampaignStatusSent, true},
		{CampaignStatusScheduled, CampaignStatusSent, true},
		{CampaignStatusSent, CampaignStatusDraft, false},
		{CampaignStatusSent, CampaignStatusScheduled, false},
		{CampaignStatusScheduled, CampaignStatusDraft, false},
		{CampaignStatusDraft, "archived", false},
		{"bogus", CampaignStatusSent, false},
	}

	for _, tt := range tests {
		c := Campaign{Status: tt.from}
		assert.Equal(t, tt.allowed, c.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCampaignIsEditable(t *testing.T) {
	assert.True(t, (&Campaign{Status: CampaignStatusDraft}).IsEditable())
	assert.False(t, (&Campaign{Status: CampaignStatusScheduled}).IsEditable())
	assert.False(t, (&Campaign{Status: CampaignStatusSent}).IsEditable())
}

func TestValidEventType(t *testing.T) {
	for _, valid := range []string{
		EventPageView, EventContentInteraction, EventFormInteraction,
		EventSubscription, EventClick, EventScroll, EventCustom,
	} {
		assert.True(t, ValidEventType(valid), valid)
	}

	assert.False(t, ValidEventType("pageview"))
	assert.False(t, ValidEventType(""))
}

func TestClientIsActive(t *testing.T) {
	assert.True(t, (&Client{Status: ClientStatusActive}).IsActive())
	assert.False(t, (&Client{Status: ClientStatusInactive}).IsActive())
	assert.False(t, (&Client{Status: ClientStatusSuspended}).IsActive())
}
