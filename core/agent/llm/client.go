// Package llm implements the summarization agent: an OpenAI completion
// client plus the text cleaning and prompt construction around it.
package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

// Client wraps the OpenAI chat-completion API with fixed sampling
// parameters. Each call carries its own max-tokens cap.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
}

// ClientConfig holds completion client configuration.
type ClientConfig struct {
	APIKey      string
	Model       string
	Temperature float64
}

// NewClient creates a new completion client.
func NewClient(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client:      openai.NewClient(cfg.APIKey),
		model:       model,
		temperature: float32(cfg.Temperature),
	}
}

// CompleteWithSystem issues a single chat completion with a system
// instruction and returns the raw text response.
func (c *Client) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
