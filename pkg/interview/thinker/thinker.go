// Package thinker abstracts the language-model collaborator behind a narrow
// interface so the orchestration core stays correct regardless of provider.
package thinker

import "context"

// Message is a single conversational message sent to a provider
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Usage reports token accounting for one completion
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Completion is a raw model response
type Completion struct {
	Text       string `json:"text"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      Usage  `json:"usage"`
}

// ModelConfig holds per-provider generation settings
type ModelConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Thinker is the language-model contract the core depends on
type Thinker interface {
	// Generate sends messages and returns the raw completion
	Generate(ctx context.Context, messages []Message) (*Completion, error)

	// ExtractStructured sends messages constrained by a JSON schema and
	// decodes the response into out
	ExtractStructured(ctx context.Context, schema string, messages []Message, out any) error

	// Name returns the provider name
	Name() string
}
