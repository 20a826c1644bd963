package llm

import (
	"context"
	"errors"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIModel = openai.GPT4oMini
	completionTokens   = 200
)

var ErrNoChoices = errors.New("completion returned no choices")

// OpenAICompleter sends prompts to the chat completions API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter builds a client for apiKey. An empty baseURL uses the public API.
func NewOpenAICompleter(apiKey, model, baseURL string) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAICompleter{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// A zero temperature would be dropped by omitempty.
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   completionTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
