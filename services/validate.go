package services

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"portfolio-assistant/models"
)

// MaxMessageLength caps the inbound message size in characters.
const MaxMessageLength = 2000

// chatRequestEnvelope distinguishes a missing message field from an empty one, and
// lets a type mismatch on message surface as a validation error rather than a parse
// error.
type chatRequestEnvelope struct {
	Message             *string           `json:"message"`
	ConversationHistory []models.ChatTurn `json:"conversationHistory"`
}

// DecodeChatRequest parses and validates the inbound body. Rules are checked in
// order and the first failure wins. History entries are not validated individually;
// malformed turns are tolerated by downstream slicing.
func DecodeChatRequest(body io.Reader) (*models.ChatRequest, *PipelineError) {
	var envelope chatRequestEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "message" {
			return nil, invalidRequest("message must be a string")
		}
		return nil, malformedPayload(err)
	}

	if envelope.Message == nil {
		return nil, invalidRequest("message is required")
	}
	message := *envelope.Message
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, invalidRequest("message too long (max 2000 characters)")
	}
	if strings.TrimSpace(message) == "" {
		return nil, invalidRequest("message cannot be empty")
	}

	return &models.ChatRequest{
		Message:             message,
		ConversationHistory: envelope.ConversationHistory,
	}, nil
}
