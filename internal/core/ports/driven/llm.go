package driven

import "context"

// LLMService provides chat completion for link text, keyword ideas
// and pillar analysis.
// This is an optional service - features fall back to templates or
// other sources when it is nil.
type LLMService interface {
	// Chat continues a conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates that the LLM service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatOptions configures chat completion.
type ChatOptions struct {
	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// ChatMessage represents a message in a conversation.
type ChatMessage struct {
	// Role is "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}
