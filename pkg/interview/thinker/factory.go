package thinker

import "fmt"

// New creates a Thinker for a named provider
func New(provider, apiKey string, cfg ModelConfig) (Thinker, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(apiKey, cfg), nil
	case "openai":
		return NewOpenAI(apiKey, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported thinker provider: %s", provider)
	}
}
