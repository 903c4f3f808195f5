package utils

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(apiURL string) *MailBlusterClient {
	logger := log.New(os.Stdout, "TEST: ", log.LstdFlags)
	return NewMailBlusterClient("test-key", apiURL, "sender@example.com", "Sender", logger)
}

func TestSendCampaignAllSucceed(t *testing.T) {
	var mu sync.Mutex
	var received []leadRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body leadRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		received = append(received, body)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.SendCampaign(CampaignPayload{
		Name:    "Spring Launch",
		Subject: "We are live",
		HTML:    "<div>body</div>",
	}, []string{"a@example.com", "b@example.com"})

	require.NoError(t, err)
	assert.True(t, result.AllSucceeded)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Len(t, result.Recipients, 2)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, "test-key", received[0].Authorization)
	assert.Contains(t, received[0].Tags, "campaign_spring_launch")
	assert.Equal(t, "Spring Launch", received[0].Metadata["campaign_name"])
}

func TestSendCampaignPartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body leadRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email == "bad@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.SendCampaign(CampaignPayload{Name: "Test", Subject: "s", HTML: "<p>x</p>"},
		[]string{"good@example.com", "bad@example.com"})

	require.NoError(t, err)
	assert.False(t, result.AllSucceeded)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)

	// Per-recipient breakdown keeps input order
	assert.Equal(t, "good@example.com", result.Recipients[0].Email)
	assert.True(t, result.Recipients[0].Success)
	assert.Equal(t, "bad@example.com", result.Recipients[1].Email)
	assert.False(t, result.Recipients[1].Success)
	assert.Equal(t, http.StatusUnprocessableEntity, result.Recipients[1].StatusCode)
}

func TestSendCampaignNoRecipients(t *testing.T) {
	client := newTestClient("http://localhost:0")
	_, err := client.SendCampaign(CampaignPayload{Name: "empty"}, nil)
	assert.Error(t, err)
}

func TestAddLead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/leads", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	assert.NoError(t, client.AddLead("new@example.com", "New", "Lead", nil))
}

func TestAddLeadUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	assert.Error(t, client.AddLead("new@example.com", "New", "Lead", nil))
}
