package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o"

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client    *openai.Client
	name      string
	model     string
	maxTokens int
}

// NewOpenAIClient creates a client against api.openai.com, or against a
// custom base URL when one is given.
func NewOpenAIClient(apiKey, model, baseURL string, maxTokens int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(config),
		name:      "openai",
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// NewOllamaClient creates a client against an Ollama server's
// OpenAI-compatible API. Ollama ignores the API key but the client
// requires one.
func NewOllamaClient(baseURL, model string, maxTokens int) (*OpenAIClient, error) {
	if model == "" {
		model = "mistral-nemo"
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	config := openai.DefaultConfig("ollama")
	config.BaseURL = baseURL

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(config),
		name:      "ollama",
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return c.name
}

// Generate submits the transcript as a single user message.
func (c *OpenAIClient) Generate(ctx context.Context, transcript string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: transcript,
		}},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrGenerationFailed, c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s: empty response", ErrGenerationFailed, c.name)
	}
	return resp.Choices[0].Message.Content, nil
}
