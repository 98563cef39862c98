package services

import (
	"fmt"
	"strings"

	"portfolio-assistant/models"
)

// MaxHistoryTurns bounds how much caller-supplied history reaches the prompt.
// Older turns are silently dropped; most-recent-N, no summarization. The bound caps
// token cost and keeps latency predictable on a stateless server.
const MaxHistoryTurns = 8

// ComposePrompt merges the knowledge base, the most recent history turns, and the
// new user message into one generation-ready context. The trailing "Assistant:"
// marker is the open turn the generator completes.
func ComposePrompt(knowledgeBase string, history []models.ChatTurn, message string) string {
	var prompt strings.Builder
	prompt.WriteString(knowledgeBase)

	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}
	if len(history) > 0 {
		prompt.WriteString("\n\nRecent conversation:\n")
		for _, turn := range history {
			prompt.WriteString(fmt.Sprintf("%s: %s\n", roleLabel(turn.Role), turn.Content))
		}
	}

	prompt.WriteString(fmt.Sprintf("\nUser: %s\nAssistant:", message))
	return prompt.String()
}

func roleLabel(role string) string {
	if role == models.RoleAssistant {
		return "Assistant"
	}
	return "User"
}
