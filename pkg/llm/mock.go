package llm

import "context"

// MockClient is a configurable mock for testing generation flows.
// Set the function field to control behavior in tests.
type MockClient struct {
	// GenerateFunc is called when Generate is invoked.
	// If nil, returns an empty result and nil error.
	GenerateFunc func(ctx context.Context, systemPrompt string, messages []Message) (*Result, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Call tracking for verification
	GenerateCalls int
	LastSystem    string
	LastMessages  []Message
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{Model: "mock-model"}
}

// Generate implements Client.
func (m *MockClient) Generate(ctx context.Context, systemPrompt string, messages []Message) (*Result, error) {
	m.GenerateCalls++
	m.LastSystem = systemPrompt
	m.LastMessages = messages
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, systemPrompt, messages)
	}
	return &Result{}, nil
}

// GetModel implements Client.
func (m *MockClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
