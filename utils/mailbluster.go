package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/valyala/fasthttp"
)

// MailBlusterClient issues one lead call per campaign recipient against
// the MailBluster API.
type MailBlusterClient struct {
	APIKey      string
	APIURL      string
	SenderEmail string
	SenderName  string

	Logger     *log.Logger
	HTTPClient *fasthttp.Client
}

func NewMailBlusterClient(apiKey, apiURL, senderEmail, senderName string, logger *log.Logger) *MailBlusterClient {
	return &MailBlusterClient{
		APIKey:      apiKey,
		APIURL:      strings.TrimRight(apiURL, "/"),
		SenderEmail: senderEmail,
		SenderName:  senderName,
		Logger:      logger,
		HTTPClient: &fasthttp.Client{
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// CampaignPayload carries the campaign fields embedded into each lead
// request as tags and metadata.
type CampaignPayload struct {
	Name    string
	Subject string
	HTML    string
}

// RecipientResult reports the outcome of one recipient's send. The
// per-recipient breakdown is returned so partial failures are never
// silently collapsed into a single boolean.
type RecipientResult struct {
	Email      string `json:"email"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SendResult is the aggregate outcome of a campaign send.
type SendResult struct {
	AllSucceeded bool              `json:"all_succeeded"`
	Sent         int               `json:"sent"`
	Failed       int               `json:"failed"`
	Recipients   []RecipientResult `json:"recipients"`
}

type leadRequest struct {
	Authorization string                 `json:"authorization"`
	Email         string                 `json:"email"`
	FirstName     string                 `json:"firstName"`
	LastName      string                 `json:"lastName"`
	Timezone      string                 `json:"timezone"`
	Subscribed    bool                   `json:"subscribed"`
	Tags          []string               `json:"tags,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	FromEmail     string                 `json:"from_email"`
	FromName      string                 `json:"from_name"`
}

// SendCampaign issues one lead call per recipient, all awaited before
// reporting. AllSucceeded is true only when every call returned 2xx.
func (mc *MailBlusterClient) SendCampaign(campaign CampaignPayload, recipients []string) (*SendResult, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients specified")
	}

	tag := "campaign_" + strings.ReplaceAll(strings.ToLower(campaign.Name), " ", "_")

	results := make([]RecipientResult, len(recipients))
	done := make(chan int, len(recipients))

	for i, email := range recipients {
		go func(i int, email string) {
			results[i] = mc.sendLead(email, tag, campaign)
			done <- i
		}(i, email)
	}

	for range recipients {
		<-done
	}

	result := &SendResult{AllSucceeded: true, Recipients: results}
	for _, r := range results {
		if r.Success {
			result.Sent++
		} else {
			result.Failed++
			result.AllSucceeded = false
		}
	}

	if !result.AllSucceeded {
		mc.Logger.Printf("Campaign %q: %d of %d recipients failed", campaign.Name, result.Failed, len(recipients))
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("campaign", campaign.Name)
			scope.SetExtra("failed_recipients", result.Failed)
			sentry.CaptureMessage("campaign send had failed recipients")
		})
	}

	return result, nil
}

// AddLead registers a single subscriber with the delivery provider.
func (mc *MailBlusterClient) AddLead(email, firstName, lastName string, metadata map[string]interface{}) error {
	body := leadRequest{
		Authorization: mc.APIKey,
		Email:         email,
		FirstName:     firstName,
		LastName:      lastName,
		Timezone:      "UTC",
		Subscribed:    true,
		Metadata:      metadata,
		FromEmail:     mc.SenderEmail,
		FromName:      mc.SenderName,
	}

	status, err := mc.post("/api/leads", body)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("mailbluster returned status %d", status)
	}
	return nil
}

func (mc *MailBlusterClient) sendLead(email, tag string, campaign CampaignPayload) RecipientResult {
	body := leadRequest{
		Authorization: mc.APIKey,
		Email:         email,
		Timezone:      "UTC",
		Subscribed:    true,
		Tags:          []string{tag},
		Metadata: map[string]interface{}{
			"campaign_name": campaign.Name,
			"subject":       campaign.Subject,
			"content":       campaign.HTML,
			"sender_email":  mc.SenderEmail,
		},
		FromEmail: mc.SenderEmail,
		FromName:  mc.SenderName,
	}

	status, err := mc.post("/api/leads", body)
	if err != nil {
		return RecipientResult{Email: email, Success: false, Error: err.Error()}
	}
	if status < 200 || status >= 300 {
		return RecipientResult{
			Email:      email,
			Success:    false,
			StatusCode: status,
			Error:      fmt.Sprintf("unexpected status %d", status),
		}
	}
	return RecipientResult{Email: email, Success: true, StatusCode: status}
}

func (mc *MailBlusterClient) post(path string, body interface{}) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(mc.APIURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.SetBody(payload)

	if err := mc.HTTPClient.Do(req, resp); err != nil {
		return 0, fmt.Errorf("mailbluster request failed: %w", err)
	}

	return resp.StatusCode(), nil
}
