package classifier

import "context"

// MockClassifier is a Classifier driven by AskFunc, for tests in dependent packages.
type MockClassifier struct {
	AskFunc func(ctx context.Context, prompt string) (*Result, error)
	Prompts []string
}

func (m *MockClassifier) Ask(ctx context.Context, prompt string) (*Result, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.AskFunc != nil {
		return m.AskFunc(ctx, prompt)
	}
	return nil, ErrMalformedResult
}
