package llm

import "context"

// MockPrefix starts every mock response.
const MockPrefix = "Mock Gemma response: "

// Mock echoes the prompt behind MockPrefix without any inference.
type Mock struct{}

func (Mock) Generate(ctx context.Context, prompt string) (Response, error) {
	return Response{Text: MockPrefix + prompt, Model: ProviderMock}, nil
}

func (m Mock) GenerateWithModel(ctx context.Context, model, prompt string) (Response, error) {
	resp, err := m.Generate(ctx, prompt)
	if model != "" {
		resp.Model = model
	}
	return resp, err
}
