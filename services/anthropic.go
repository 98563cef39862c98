package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicService calls the Anthropic Messages API through the official SDK.
type AnthropicService struct {
	apiKey string
	model  string
	client anthropic.Client
}

// NewAnthropicService creates an Anthropic service configured from the environment.
func NewAnthropicService() *AnthropicService {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicService{
		apiKey: apiKey,
		model:  model,
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Name identifies the provider.
func (a *AnthropicService) Name() string { return "anthropic" }

// Available reports whether the API credential is configured.
func (a *AnthropicService) Available() bool { return a.apiKey != "" }

// Generate invokes the model with the composed prompt and fixed sampling
// configuration, advertising the given tools through the Messages API.
func (a *AnthropicService) Generate(ctx context.Context, prompt string, tools []ToolSpec) (*Generation, error) {
	if a.apiKey == "" {
		return nil, errMissingCredential
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   maxOutputTokens,
		Temperature: param.NewOpt(float64(temperature)),
		TopP:        param.NewOpt(float64(topP)),
		TopK:        param.NewOpt(int64(topK)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if len(tools) > 0 {
		toolParams := make([]anthropic.ToolUnionParam, 0, len(tools))
		for _, tool := range tools {
			properties, err := json.Marshal(tool.Parameters["properties"])
			if err != nil {
				log.Printf("Failed to marshal tool schema for %s: %v", tool.Name, err)
				continue
			}
			toolParams = append(toolParams, anthropic.ToolUnionParam{
				OfTool: &anthropic.ToolParam{
					Name:        tool.Name,
					Description: param.NewOpt(tool.Description),
					InputSchema: anthropic.ToolInputSchemaParam{
						Properties: json.RawMessage(properties),
					},
				},
			})
		}
		params.Tools = toolParams
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, classifyUpstreamStatus(apiErr.StatusCode, err)
		}
		return nil, upstreamUnavailable(err)
	}

	generation := &Generation{}
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			generation.Text += block.Text
		case "tool_use":
			if generation.ToolCall != nil {
				continue
			}
			args := make(map[string]interface{})
			if err := json.Unmarshal(block.Input, &args); err != nil {
				log.Printf("Failed to decode tool input for %s: %v", block.Name, err)
				continue
			}
			generation.ToolCall = &ToolCall{Name: block.Name, Args: args}
		}
	}
	if generation.Text == "" && generation.ToolCall == nil {
		return nil, errEmptyGeneration
	}
	return generation, nil
}
