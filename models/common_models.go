package models

// Conversation role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// StatusResponse is the liveness payload served on GET /chat.
type StatusResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Runtime   string `json:"runtime"`
	Provider  string `json:"provider"`
	Version   string `json:"version"`
}
