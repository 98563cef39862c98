package services

import (
	"log"
	"os"
	"strings"
)

// AssistantMode selects the wire contract the engine produces.
type AssistantMode string

const (
	// ModePlain replies with free text in the "response" field.
	ModePlain AssistantMode = "plain"
	// ModeStructured replies with "message" plus redirection flags and advertises
	// the contact-form tool.
	ModeStructured AssistantMode = "structured"
)

// ParseMode maps a configured mode string onto a known mode, defaulting to plain.
func ParseMode(value string) AssistantMode {
	if AssistantMode(strings.TrimSpace(strings.ToLower(value))) == ModeStructured {
		return ModeStructured
	}
	return ModePlain
}

// KnowledgeBase is the immutable document prepended to every prompt: biographical
// and professional facts plus the assistant's persona rules. It is configuration,
// not mutable data.
type KnowledgeBase struct {
	text string
}

// LoadKnowledgeBase builds the knowledge base for the given mode. The document is
// read from KNOWLEDGE_BASE_FILE when set, otherwise the embedded default is used.
// Structured mode appends the JSON-output directive so the same document serves
// both contracts.
func LoadKnowledgeBase(mode AssistantMode) *KnowledgeBase {
	text := defaultKnowledgeBase

	if path := os.Getenv("KNOWLEDGE_BASE_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Failed to read knowledge base file %s, using embedded default: %v", path, err)
		} else {
			text = strings.TrimSpace(string(data))
			log.Printf("Loaded knowledge base from %s (%d bytes)", path, len(data))
		}
	}

	if mode == ModeStructured {
		text += "\n\n" + structuredDirective
	}

	return &KnowledgeBase{text: text}
}

// Text returns the full prompt preamble.
func (kb *KnowledgeBase) Text() string {
	return kb.text
}

// defaultKnowledgeBase is a starter persona document. Deployments replace it with
// the owner's real profile via KNOWLEDGE_BASE_FILE.
const defaultKnowledgeBase = `You are a portfolio assistant representing the site owner, a software developer.

ABOUT:
- Role: Full Stack Developer
- Focus: backend services, APIs, and applied AI features
- Contact: available through the contact form on this site

TECHNICAL SKILLS:
- Backend: Go, Python, Node.js, PostgreSQL, Redis
- Frontend: React, Next.js, TypeScript
- Cloud & DevOps: Docker, AWS, CI/CD pipelines

PERSONALITY & COMMUNICATION STYLE:
- Be friendly, professional, and enthusiastic about technology
- Provide specific examples when discussing projects
- Ask follow-up questions to understand what the visitor is looking for
- Keep responses conversational but informative

GUIDELINES:
- Always respond as if you are representing the owner professionally
- Offer the resume download when visitors ask about experience or qualifications
- Suggest getting in touch when someone expresses interest in collaboration
- Be honest about skill levels and never oversell capabilities

Remember: you are helping potential employers, clients, and collaborators learn about the owner's skills and experience.`

// structuredDirective teaches the model the structured wire contract and when to use
// the contact-form tool.
const structuredDirective = `OUTPUT FORMAT:
Respond with a single JSON object and nothing else:
{"message": "<your reply to the visitor>", "redirection": {"showDownload": <true if the visitor should be offered the resume download>, "showForm": <true if the visitor should be shown the contact form>}}
Do not wrap the JSON in markdown code fences.

CONTACT TOOL:
When the visitor has clearly provided their name, email address, and what they want to discuss, call the submit_contact_form tool with those values instead of replying in JSON. Never invent contact details; if any of the three is missing, ask for it and set showForm to true.`
