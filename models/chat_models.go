package models

// ChatTurn represents a single message in the caller-supplied conversation history.
// The server never persists turns; each request resupplies the history it wants
// considered.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest represents an incoming chat request
type ChatRequest struct {
	Message             string     `json:"message"`
	ConversationHistory []ChatTurn `json:"conversationHistory,omitempty"`
}

// Redirection tells the chat widget which follow-up UI to surface alongside the
// assistant's message.
type Redirection struct {
	ShowDownload bool `json:"showDownload"`
	ShowForm     bool `json:"showForm"`
}

// ChatResponse represents the response from the assistant. Plain deployments fill
// Response; structured deployments fill Message and Redirection. ProcessingTime and
// Timestamp are always computed server-side.
type ChatResponse struct {
	Response       string       `json:"response,omitempty"`
	Message        string       `json:"message,omitempty"`
	Redirection    *Redirection `json:"redirection,omitempty"`
	ProcessingTime int64        `json:"processingTime"`
	Timestamp      int64        `json:"timestamp"`
	Error          string       `json:"error,omitempty"`
}

// ContactLead is a contact-intent record captured by the form tool. It is forwarded
// once to the external sink and then discarded.
type ContactLead struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
