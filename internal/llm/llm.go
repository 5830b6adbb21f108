package llm

import (
	"context"
	"fmt"
	"time"
)

// Supported backend identifiers. The set is closed; anything else is
// rejected when the client is built.
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
)

// Config carries the resolved backend settings. It is immutable after
// construction.
type Config struct {
	Provider    string
	BaseURL     string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Response is the structured result of a single generation call.
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	Provider   string
}

// Generator is the single text-generation operation exposed to callers.
// Implementations hold one HTTP client for their lifetime; Close releases it.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (Response, error)
	Close() error
}

// New selects a backend for cfg.Provider. Unknown providers fail here, at
// construction time, rather than on the first call.
func New(cfg Config) (Generator, error) {
	switch cfg.Provider {
	case ProviderLocal:
		return NewLocalClient(cfg), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
