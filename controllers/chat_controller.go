package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"portfolio-assistant/models"
	"portfolio-assistant/services"
)

const serviceVersion = "1.0.0"

// ChatHandler processes POST /chat: rate limit, validate, then run the assistant
// pipeline. Every failure still produces the full ChatResponse shape so the widget
// never has to special-case a bare error body.
func (c *Controller) ChatHandler(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	clientKey := clientKeyFromRequest(r)
	if !c.limiter.Admit(r.Context(), clientKey) {
		w.Header().Set("Retry-After", "60")
		c.writeChatError(w, started, services.RateLimited())
		return
	}

	req, verr := services.DecodeChatRequest(r.Body)
	if verr != nil {
		c.writeChatError(w, started, verr)
		return
	}

	reply, err := c.assistant.Respond(r.Context(), req.Message, req.ConversationHistory)
	if err != nil {
		perr := services.Classify(err)
		log.Printf("Chat request from %s failed: %v", clientKey, err)
		c.writeChatError(w, started, perr)
		return
	}

	response := models.ChatResponse{
		ProcessingTime: time.Since(started).Milliseconds(),
		Timestamp:      time.Now().UnixMilli(),
	}
	if reply.Redirection != nil {
		response.Message = reply.Message
		response.Redirection = reply.Redirection
	} else {
		response.Response = reply.Message
	}

	c.writeChat(w, http.StatusOK, response)
}

// ChatStatusHandler serves the GET /chat liveness probe.
func (c *Controller) ChatStatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(models.StatusResponse{
		Status:    "healthy",
		Timestamp: time.Now().UnixMilli(),
		Runtime:   "go",
		Provider:  c.assistant.Provider(),
		Version:   serviceVersion,
	})
}

// writeChatError fills the mode-appropriate reply field with the in-character
// apology and puts the classification into the error field.
func (c *Controller) writeChatError(w http.ResponseWriter, started time.Time, perr *services.PipelineError) {
	response := models.ChatResponse{
		ProcessingTime: time.Since(started).Milliseconds(),
		Timestamp:      time.Now().UnixMilli(),
		Error:          perr.Detail(),
	}
	if c.assistant.Mode() == services.ModeStructured {
		response.Message = perr.Reply
		response.Redirection = &models.Redirection{}
	} else {
		response.Response = perr.Reply
	}
	c.writeChat(w, perr.Status, response)
}

func (c *Controller) writeChat(w http.ResponseWriter, status int, response models.ChatResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("X-Response-Time", fmt.Sprintf("%d", response.ProcessingTime))
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// clientKeyFromRequest buckets callers for rate limiting: first forwarded address,
// then the real-IP header, then a shared sentinel. The forwarded header is trusted
// verbatim, so deploy behind a proxy that overwrites it.
func clientKeyFromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if comma := strings.IndexByte(forwarded, ','); comma >= 0 {
			return strings.TrimSpace(forwarded[:comma])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return "unknown"
}
