package llm

import "context"

// MockGenerator is a deterministic Generator for tests and development.
// If Fn is set it is called with the prompt; otherwise Response is returned.
type MockGenerator struct {
	Response string
	Fn       func(prompt string) (string, error)

	// Prompts records every prompt passed to Generate.
	Prompts []string
}

var _ Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a mock that always returns response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.Prompts = append(m.Prompts, prompt)
	if m.Fn != nil {
		return m.Fn(prompt)
	}
	return m.Response, nil
}

func (m *MockGenerator) ModelName() string {
	return "mock"
}

func (m *MockGenerator) Close() error {
	return nil
}
