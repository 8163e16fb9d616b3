// Package llm provides clients for hosted generative AI endpoints.
package llm

import "context"

// Message is one turn of the conversation sent to the model.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Result is a completed generation with usage stats.
type Result struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client defines the interface for generative AI operations.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Generate performs one synchronous completion call with a system
	// prompt and message list. Any transport or provider error is wrapped
	// into apperrors.ErrGenerationFailed; there is no retry.
	Generate(ctx context.Context, systemPrompt string, messages []Message) (*Result, error)

	// GetModel returns the configured model name.
	GetModel() string
}
