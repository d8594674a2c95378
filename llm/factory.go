package llm

import (
	"fmt"
	"net/http"
	"strings"
	"taskmind/config"
	"time"
)

const (
	ProviderMock      = "mock"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Factory creates LLM clients from configuration
type Factory struct {
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicURL    string
	MaxTokens       int
	HTTPClient      *http.Client
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		MaxTokens:       cfg.LLMMaxTokens,
		HTTPClient:      &http.Client{Timeout: time.Duration(cfg.LLMTimeoutSeconds) * time.Second},
	}
}

// Create returns a client for provider; model is the default model for calls.
func (f *Factory) Create(provider, model string) (ModelClient, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderMock, "":
		return Mock{}, nil
	case ProviderOpenAI:
		if f.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return NewOpenAI(f.OpenAIAPIKey, f.OpenAIBaseURL, model, f.MaxTokens, f.HTTPClient), nil
	case ProviderAnthropic:
		if f.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY")
		}
		return NewAnthropic(f.AnthropicAPIKey, f.AnthropicURL, model, f.MaxTokens, f.HTTPClient), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}
