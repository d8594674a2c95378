package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAI(apiKey, baseURL, model string, maxTokens int, httpClient *http.Client) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}
	return &OpenAIClient{
		client:    openai.NewClientWithConfig(config),
		model:     model,
		maxTokens: maxTokens,
	}
}

// API exposes the underlying client for fine-tuning jobs.
func (c *OpenAIClient) API() *openai.Client {
	return c.client
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (Response, error) {
	return c.GenerateWithModel(ctx, c.model, prompt)
}

func (c *OpenAIClient) GenerateWithModel(ctx context.Context, model, prompt string) (Response, error) {
	if model == "" {
		model = c.model
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if c.maxTokens > 0 {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Response{}, ErrEmptyResponse
	}

	return Response{Text: resp.Choices[0].Message.Content, Model: model}, nil
}
