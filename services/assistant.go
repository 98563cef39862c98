package services

import (
	"context"
	"log"
	"time"

	"portfolio-assistant/models"
)

// defaultUpstreamTimeout bounds one generation call so a hung provider still yields
// a classified error response.
const defaultUpstreamTimeout = 30 * time.Second

// Fixed tool-path replies. When a tool call was attempted the normalizer is
// bypassed and the reply reports the dispatch outcome, never model prose.
const (
	leadAcceptedReply = "Thanks! I've passed your details along, you can expect a reply soon."
	leadFailedReply   = "I couldn't send your details just now. Please use the contact form on this page or reach out directly."
)

// Assistant orchestrates one chat request end to end: credential check, prompt
// composition, generation, then tool dispatch or normalization. The knowledge base
// and contract mode are injected configuration, so one engine serves both personas.
type Assistant struct {
	generator Generator
	sink      LeadSink
	kb        *KnowledgeBase
	mode      AssistantMode
	timeout   time.Duration
}

// Reply is the successful outcome of one request. Redirection is set only in
// structured mode.
type Reply struct {
	Message     string
	Redirection *models.Redirection
}

// NewAssistant creates an assistant engine.
func NewAssistant(generator Generator, sink LeadSink, kb *KnowledgeBase, mode AssistantMode) *Assistant {
	return &Assistant{
		generator: generator,
		sink:      sink,
		kb:        kb,
		mode:      mode,
		timeout:   defaultUpstreamTimeout,
	}
}

// Mode returns the configured contract mode.
func (a *Assistant) Mode() AssistantMode { return a.mode }

// Provider returns the active generation provider name.
func (a *Assistant) Provider() string { return a.generator.Name() }

// Respond runs the pipeline for one validated message. Failures come back as
// *PipelineError values for the transport to map onto the wire contract.
func (a *Assistant) Respond(ctx context.Context, message string, history []models.ChatTurn) (*Reply, error) {
	if !a.generator.Available() {
		log.Printf("Generation credential missing for provider %s", a.generator.Name())
		return nil, errMissingCredential
	}

	prompt := ComposePrompt(a.kb.Text(), history, message)

	var tools []ToolSpec
	if a.mode == ModeStructured {
		tools = []ToolSpec{ContactFormTool}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	generation, err := a.generator.Generate(ctx, prompt, tools)
	if err != nil {
		return nil, err
	}

	if generation.ToolCall != nil {
		reply := &Reply{Message: leadFailedReply}
		if DispatchToolCall(ctx, generation.ToolCall, a.sink) {
			reply.Message = leadAcceptedReply
		}
		if a.mode == ModeStructured {
			reply.Redirection = &models.Redirection{}
		}
		return reply, nil
	}

	if generation.Text == "" {
		return nil, errEmptyGeneration
	}

	if a.mode == ModeStructured {
		text, redirection := Normalize(generation.Text)
		return &Reply{Message: text, Redirection: &redirection}, nil
	}
	return &Reply{Message: generation.Text}, nil
}
