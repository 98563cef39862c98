package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"portfolio-assistant/models"
)

// ContactFormToolName is the single action advertised to the generator.
const ContactFormToolName = "submit_contact_form"

// ContactFormTool declares the lead-capture action. All three arguments are
// required strings; the dispatcher re-validates them before anything leaves the
// process.
var ContactFormTool = ToolSpec{
	Name:        ContactFormToolName,
	Description: "Submit the visitor's contact details so the site owner can follow up. Use only when the visitor has provided their name, email address, and what they want to discuss.",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "The visitor's full name",
			},
			"email": map[string]interface{}{
				"type":        "string",
				"description": "The visitor's email address",
			},
			"message": map[string]interface{}{
				"type":        "string",
				"description": "What the visitor wants to discuss",
			},
		},
		"required": []string{"name", "email", "message"},
	},
}

// LeadSink receives captured contact leads.
type LeadSink interface {
	Submit(ctx context.Context, lead models.ContactLead) error
}

// WebhookLeadSink posts leads as JSON to an external form endpoint. Only the HTTP
// status decides success.
type WebhookLeadSink struct {
	endpoint   string
	httpClient *http.Client
}

// NewWebhookLeadSink creates a sink targeting LEAD_WEBHOOK_URL.
func NewWebhookLeadSink() *WebhookLeadSink {
	return &WebhookLeadSink{
		endpoint: os.Getenv("LEAD_WEBHOOK_URL"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Submit forwards one lead to the webhook.
func (s *WebhookLeadSink) Submit(ctx context.Context, lead models.ContactLead) error {
	if s.endpoint == "" {
		return fmt.Errorf("LEAD_WEBHOOK_URL not set")
	}

	payload, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to submit lead: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("lead endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DispatchToolCall validates a contact-form tool call and forwards the lead to the
// sink exactly once. Malformed arguments skip the sink entirely.
func DispatchToolCall(ctx context.Context, call *ToolCall, sink LeadSink) bool {
	if call == nil || sink == nil {
		return false
	}
	if call.Name != ContactFormToolName {
		log.Printf("Ignoring unrecognized tool call %q", call.Name)
		return false
	}

	lead, ok := leadFromArgs(call.Args)
	if !ok {
		log.Printf("Tool call %q had malformed arguments, skipping dispatch", call.Name)
		return false
	}

	if err := sink.Submit(ctx, lead); err != nil {
		log.Printf("Lead submission failed: %v", err)
		return false
	}
	return true
}

func leadFromArgs(args map[string]interface{}) (models.ContactLead, bool) {
	name, nameOK := args["name"].(string)
	email, emailOK := args["email"].(string)
	message, messageOK := args["message"].(string)
	if !nameOK || !emailOK || !messageOK {
		return models.ContactLead{}, false
	}
	return models.ContactLead{Name: name, Email: email, Message: message}, true
}
