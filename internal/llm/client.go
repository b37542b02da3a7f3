// Package llm provides the completion gateway: an opaque capability that
// maps an assembled transcript to generated text.
package llm

import (
	"context"
	"errors"
)

// ErrGenerationFailed wraps any backend error or timeout. A failed
// generation aborts the turn; nothing is persisted.
var ErrGenerationFailed = errors.New("generation failed")

// Client is the interface for completion backends. Implementations must be
// safe for concurrent use. No retries, streaming, or backpressure here.
type Client interface {
	// Generate submits the transcript and returns the generated text.
	Generate(ctx context.Context, transcript string) (string, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of completion backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
)

// Config holds gateway construction settings.
type Config struct {
	Provider  Provider
	APIKey    string
	Model     string
	BaseURL   string // OpenAI-compatible endpoint, e.g. an Ollama server
	MaxTokens int
}

// NewClient creates a completion client for the configured provider. Ollama
// is fronted through the OpenAI-compatible client with a custom base URL.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.MaxTokens)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens)
	case ProviderOllama:
		if cfg.BaseURL == "" {
			return nil, errors.New("ollama provider requires a base URL")
		}
		return NewOllamaClient(cfg.BaseURL, cfg.Model, cfg.MaxTokens)
	default:
		return nil, errors.New("unknown llm provider: " + string(cfg.Provider))
	}
}
