package services

import (
	"context"
	"strings"
)

// Sampling configuration, fixed per deployment.
const (
	maxOutputTokens = 1000
	temperature     = 0.7
	topP            = 0.8
	topK            = 40
)

// Generation is the provider-agnostic result of one model invocation: free text, a
// structured tool call, or both.
type Generation struct {
	Text     string
	ToolCall *ToolCall
}

// ToolCall is a structured action the model emitted, naming an advertised tool and
// supplying the arguments it extracted from the conversation.
type ToolCall struct {
	Name string
	Args map[string]interface{}
}

// ToolSpec declares a callable tool to the generation provider. Parameters is a
// JSON-schema object describing the arguments.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Generator abstracts the external generation provider.
type Generator interface {
	// Available reports whether the provider is configured to accept calls.
	Available() bool
	// Generate invokes the model with the composed prompt and optional tools.
	Generate(ctx context.Context, prompt string, tools []ToolSpec) (*Generation, error)
	// Name identifies the provider for status reporting.
	Name() string
}

// NewGenerator selects a provider by name. Gemini is the default; Anthropic is the
// alternate.
func NewGenerator(provider string) Generator {
	switch strings.TrimSpace(strings.ToLower(provider)) {
	case "anthropic":
		return NewAnthropicService()
	default:
		return NewGeminiService()
	}
}
