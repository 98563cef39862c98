package services

import (
	"fmt"
	"strings"
	"testing"

	"portfolio-assistant/models"
)

func TestComposePrompt_NoHistory(t *testing.T) {
	t.Parallel()

	prompt := ComposePrompt("KB TEXT", nil, "Hi")

	if !strings.HasPrefix(prompt, "KB TEXT") {
		t.Fatalf("expected prompt to start with knowledge base, got %q", prompt)
	}
	if strings.Contains(prompt, "Recent conversation") {
		t.Fatalf("expected no history heading for empty history")
	}
	if !strings.HasSuffix(prompt, "\nUser: Hi\nAssistant:") {
		t.Fatalf("expected open assistant turn, got %q", prompt)
	}
}

func TestComposePrompt_RendersHistoryInOrder(t *testing.T) {
	t.Parallel()

	history := []models.ChatTurn{
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleAssistant, Content: "second"},
	}
	prompt := ComposePrompt("KB", history, "third")

	if !strings.Contains(prompt, "Recent conversation:\nUser: first\nAssistant: second\n") {
		t.Fatalf("expected labeled history lines, got %q", prompt)
	}
	if strings.Index(prompt, "first") > strings.Index(prompt, "second") {
		t.Fatalf("expected history in original order")
	}
}

func TestComposePrompt_TruncatesToLastEight(t *testing.T) {
	t.Parallel()

	var history []models.ChatTurn
	for i := 0; i < 12; i++ {
		history = append(history, models.ChatTurn{
			Role:    models.RoleUser,
			Content: fmt.Sprintf("turn-%d", i),
		})
	}
	prompt := ComposePrompt("KB", history, "new message")

	for i := 0; i < 4; i++ {
		if strings.Contains(prompt, fmt.Sprintf("turn-%d\n", i)) {
			t.Fatalf("expected turn-%d to be dropped", i)
		}
	}
	for i := 4; i < 12; i++ {
		if !strings.Contains(prompt, fmt.Sprintf("turn-%d", i)) {
			t.Fatalf("expected turn-%d to be kept", i)
		}
	}
	if strings.Index(prompt, "turn-4") > strings.Index(prompt, "turn-11") {
		t.Fatalf("expected kept turns in original order")
	}
	if !strings.HasSuffix(prompt, "\nUser: new message\nAssistant:") {
		t.Fatalf("expected new message after history, got %q", prompt)
	}
}

func TestComposePrompt_UnknownRoleRendersAsUser(t *testing.T) {
	t.Parallel()

	history := []models.ChatTurn{{Role: "system", Content: "odd"}}
	prompt := ComposePrompt("KB", history, "hi")

	if !strings.Contains(prompt, "User: odd") {
		t.Fatalf("expected unknown role to fall back to the user label, got %q", prompt)
	}
}
