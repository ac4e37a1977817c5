// Package llm abstracts chat-completion providers behind a single interface
// and composes them into an ordered fallback chain. Adding a provider is a
// data change to the chain, not new control flow.
package llm

import "context"

// Role is the author of a chat message.
type Role string

// Message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Options tunes a completion call. Model may be empty to use the provider's
// configured default. JSONResponse requests strict JSON output where the
// provider supports it.
type Options struct {
	Model        string
	Temperature  float32
	JSONResponse bool
}

// Provider is a single LLM backend capable of chat completion.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// Complete sends the message list and returns the model's text response.
	Complete(ctx context.Context, msgs []Message, opts Options) (string, error)
	// Close releases any resources held by the provider.
	Close() error
}

// Completer is the minimal completion surface consumed by the research,
// extraction, generation and chat components. *Chain satisfies it; tests
// substitute fakes.
type Completer interface {
	Complete(ctx context.Context, msgs []Message, opts Options) (string, error)
}

// SystemAndUser is a convenience constructor for the common two-message
// request shape.
func SystemAndUser(system, user string) []Message {
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}
