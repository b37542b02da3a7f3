package llm

import (
	"testing"
)

func TestNewClient_Ollama(t *testing.T) {
	c, err := NewClient(Config{Provider: ProviderOllama, BaseURL: "http://localhost:11434/v1"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "ollama" {
		t.Errorf("expected ollama, got %q", c.Name())
	}
}

func TestNewClient_OllamaRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{Provider: ProviderOllama}); err == nil {
		t.Error("expected error without base URL")
	}
}

func TestNewClient_AnthropicRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{Provider: ProviderAnthropic}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestNewClient_OpenAIRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{Provider: ProviderOpenAI}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestNewClient_UnknownProvider(t *testing.T) {
	if _, err := NewClient(Config{Provider: "mystery"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
