package services

import (
	"encoding/json"

	"portfolio-assistant/models"
	"portfolio-assistant/utils"
)

// FallbackMessage is returned when the generator's output cannot be parsed into the
// structured contract. The system degrades gracefully instead of surfacing a parse
// error to the visitor.
const FallbackMessage = "Thanks for your message! Feel free to ask about my projects, experience, or skills, or grab my resume using the download button."

// structuredReply mirrors the JSON shape the persona instructs the model to emit.
// Pointers distinguish a missing field from a zero value.
type structuredReply struct {
	Message     *string             `json:"message"`
	Redirection *models.Redirection `json:"redirection"`
}

// Normalize parses the generator's raw text into the structured reply contract. It
// tolerantly strips code-fence wrapping before a strict parse; parse failures and
// missing required fields produce the fixed fallback with both flags false.
func Normalize(raw string) (string, models.Redirection) {
	blob, ok := utils.ExtractJSONObject(raw)
	if !ok {
		return FallbackMessage, models.Redirection{}
	}

	var parsed structuredReply
	if err := json.Unmarshal([]byte(blob), &parsed); err != nil {
		return FallbackMessage, models.Redirection{}
	}
	if parsed.Message == nil || parsed.Redirection == nil {
		return FallbackMessage, models.Redirection{}
	}
	return *parsed.Message, *parsed.Redirection
}
