package llm

import "context"

// Message is a single conversation turn sent to a provider
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request contains chat completion parameters. Messages carry the bounded
// conversation context, oldest first, ending with the current user message.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Response contains a provider completion result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Complete generates an assistant reply for the conversation
	Complete(ctx context.Context, req Request, model string) (*Response, error)
}
