package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewAnthropic(apiKey, baseURL, model string, maxTokens int, httpClient *http.Client) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (Response, error) {
	return c.GenerateWithModel(ctx, c.model, prompt)
}

func (c *AnthropicClient) GenerateWithModel(ctx context.Context, model, prompt string) (Response, error) {
	if model == "" {
		model = c.model
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			return Response{Text: block.Text, Model: model}, nil
		}
	}
	return Response{}, ErrEmptyResponse
}
