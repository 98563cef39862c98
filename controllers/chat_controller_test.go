package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolio-assistant/models"
	"portfolio-assistant/services"
)

// scriptedGenerator satisfies services.Generator with canned output so handler
// tests never touch a real provider.
type scriptedGenerator struct {
	text      string
	err       error
	available bool
	calls     int
}

func (g *scriptedGenerator) Name() string    { return "scripted" }
func (g *scriptedGenerator) Available() bool { return g.available }

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, tools []services.ToolSpec) (*services.Generation, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &services.Generation{Text: g.text}, nil
}

type nullSink struct{}

func (nullSink) Submit(ctx context.Context, lead models.ContactLead) error { return nil }

func newTestController(generator services.Generator, mode services.AssistantMode) *Controller {
	assistant := services.NewAssistant(generator, nullSink{}, services.LoadKnowledgeBase(mode), mode)
	return NewController(assistant, services.NewMemoryRateLimiter())
}

func postChat(t *testing.T, controller *Controller, body string, clientIP string) (*httptest.ResponseRecorder, models.ChatResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}

	recorder := httptest.NewRecorder()
	controller.ChatHandler(recorder, req)

	var response models.ChatResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("response is not valid JSON: %v\nbody: %s", err, recorder.Body.String())
	}
	return recorder, response
}

func TestChatHandler_SuccessfulTurn(t *testing.T) {
	generator := &scriptedGenerator{available: true, text: "I build backend services in Go."}
	controller := newTestController(generator, services.ModePlain)

	recorder, response := postChat(t, controller, `{"message":"What do you work on?"}`, "1.2.3.4")

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if response.Response != "I build backend services in Go." {
		t.Fatalf("unexpected response %q", response.Response)
	}
	if response.Error != "" {
		t.Fatalf("success must not carry an error, got %q", response.Error)
	}
	if response.ProcessingTime < 0 || response.Timestamp == 0 {
		t.Fatalf("missing timing metadata: %+v", response)
	}
	if got := recorder.Header().Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}
	if recorder.Header().Get("X-Response-Time") == "" {
		t.Fatalf("missing X-Response-Time header")
	}
	if generator.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", generator.calls)
	}
}

func TestChatHandler_HistoryIsForwarded(t *testing.T) {
	generator := &scriptedGenerator{available: true, text: "ok"}
	controller := newTestController(generator, services.ModePlain)

	body := `{"message":"And now?","conversationHistory":[{"role":"user","content":"Earlier"},{"role":"assistant","content":"Reply"}]}`
	recorder, _ := postChat(t, controller, body, "1.2.3.4")

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestChatHandler_RateLimitSequence(t *testing.T) {
	generator := &scriptedGenerator{available: true, text: "ok"}
	controller := newTestController(generator, services.ModePlain)

	for i := 0; i < services.RateLimitCeiling; i++ {
		recorder, _ := postChat(t, controller, `{"message":"Hi"}`, "9.9.9.9")
		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i+1, recorder.Code)
		}
	}

	recorder, response := postChat(t, controller, `{"message":"Hi"}`, "9.9.9.9")
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("request %d should be throttled, got %d", services.RateLimitCeiling+1, recorder.Code)
	}
	if recorder.Header().Get("Retry-After") != "60" {
		t.Fatalf("missing Retry-After header")
	}
	if !strings.Contains(response.Error, services.CodeRateLimitExceeded) {
		t.Fatalf("unexpected error field %q", response.Error)
	}
	if response.Response == "" {
		t.Fatalf("throttled response must still carry an in-character reply")
	}

	// A different client is unaffected.
	other, _ := postChat(t, controller, `{"message":"Hi"}`, "8.8.8.8")
	if other.Code != http.StatusOK {
		t.Fatalf("second client should not share the window, got %d", other.Code)
	}
}

func TestChatHandler_ValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantText string
	}{
		{"missing message", `{}`, services.CodeInvalidRequest, "required"},
		{"empty message", `{"message":"   "}`, services.CodeInvalidRequest, "empty"},
		{"non-string message", `{"message":42}`, services.CodeInvalidRequest, "must be a string"},
		{"too long", fmt.Sprintf(`{"message":%q}`, strings.Repeat("a", services.MaxMessageLength+1)), services.CodeInvalidRequest, "too long"},
		{"malformed body", `{"message":`, services.CodeMalformedPayload, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			generator := &scriptedGenerator{available: true, text: "ok"}
			controller := newTestController(generator, services.ModePlain)

			recorder, response := postChat(t, controller, tt.body, "1.2.3.4")

			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
			}
			if !strings.Contains(response.Error, tt.wantCode) {
				t.Fatalf("expected error code %s, got %q", tt.wantCode, response.Error)
			}
			if tt.wantText != "" && !strings.Contains(response.Error, tt.wantText) {
				t.Fatalf("expected detail containing %q, got %q", tt.wantText, response.Error)
			}
			if generator.calls != 0 {
				t.Fatalf("rejected input must not reach the provider, got %d calls", generator.calls)
			}
			if response.Response == "" {
				t.Fatalf("validation failure must still carry an in-character reply")
			}
		})
	}
}

func TestChatHandler_MissingCredential(t *testing.T) {
	generator := &scriptedGenerator{available: false}
	controller := newTestController(generator, services.ModePlain)

	recorder, response := postChat(t, controller, `{"message":"Hi"}`, "1.2.3.4")

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", recorder.Code)
	}
	if !strings.Contains(response.Error, services.CodeMissingCredential) {
		t.Fatalf("unexpected error %q", response.Error)
	}
	if generator.calls != 0 {
		t.Fatalf("missing credential must not reach the provider, got %d calls", generator.calls)
	}
}

func TestChatHandler_StructuredModeContract(t *testing.T) {
	generator := &scriptedGenerator{
		available: true,
		text:      `{"message":"Here is my resume.","redirection":{"showDownload":true,"showForm":false}}`,
	}
	controller := newTestController(generator, services.ModeStructured)

	recorder, response := postChat(t, controller, `{"message":"Can I see your resume?"}`, "1.2.3.4")

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if response.Message != "Here is my resume." {
		t.Fatalf("unexpected message %q", response.Message)
	}
	if response.Response != "" {
		t.Fatalf("structured mode must not fill the plain field, got %q", response.Response)
	}
	if response.Redirection == nil || !response.Redirection.ShowDownload || response.Redirection.ShowForm {
		t.Fatalf("unexpected redirection %+v", response.Redirection)
	}
}

func TestChatHandler_StructuredModeErrorShape(t *testing.T) {
	generator := &scriptedGenerator{available: false}
	controller := newTestController(generator, services.ModeStructured)

	recorder, response := postChat(t, controller, `{"message":"Hi"}`, "1.2.3.4")

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", recorder.Code)
	}
	if response.Message == "" {
		t.Fatalf("structured errors must fill the message field")
	}
	if response.Redirection == nil || *response.Redirection != (models.Redirection{}) {
		t.Fatalf("structured errors must carry zeroed redirection, got %+v", response.Redirection)
	}
}

func TestChatStatusHandler(t *testing.T) {
	controller := newTestController(&scriptedGenerator{available: true}, services.ModePlain)

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	recorder := httptest.NewRecorder()
	controller.ChatStatusHandler(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var status models.StatusResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &status); err != nil {
		t.Fatalf("status is not valid JSON: %v", err)
	}
	if status.Status != "healthy" || status.Runtime != "go" {
		t.Fatalf("unexpected status payload: %+v", status)
	}
	if status.Provider != "scripted" {
		t.Fatalf("unexpected provider %q", status.Provider)
	}
}

func TestClientKeyFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		want      string
	}{
		{"forwarded single", "1.2.3.4", "", "1.2.3.4"},
		{"forwarded chain keeps first hop", "1.2.3.4, 10.0.0.1", "", "1.2.3.4"},
		{"real ip fallback", "", "5.6.7.8", "5.6.7.8"},
		{"no headers", "", "", "unknown"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat", nil)
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := clientKeyFromRequest(req); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
