package llm

import (
	"context"
	"errors"
)

// ErrUnknownProvider is returned by the factory for unsupported provider names.
var ErrUnknownProvider = errors.New("unknown llm provider")

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty llm response")

type Response struct {
	Text  string
	Model string
}

type Client interface {
	Generate(ctx context.Context, prompt string) (Response, error)
}

// ModelClient is implemented by clients whose model can be swapped per call.
type ModelClient interface {
	Client
	GenerateWithModel(ctx context.Context, model, prompt string) (Response, error)
}
