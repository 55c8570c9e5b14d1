package classifier

import (
	"context"
	"fmt"

	"github.com/dvloznov/swiss-bookkeeping/internal/llm"
)

// LLMClassifier asks a text Generator and decodes its JSON answer.
type LLMClassifier struct {
	gen llm.Generator
}

var _ Classifier = (*LLMClassifier)(nil)

func NewLLMClassifier(gen llm.Generator) *LLMClassifier {
	return &LLMClassifier{gen: gen}
}

func (c *LLMClassifier) Ask(ctx context.Context, prompt string) (*Result, error) {
	raw, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("Ask: %w", err)
	}
	res, err := Decode(raw, llm.CleanJSON)
	if err != nil {
		return nil, fmt.Errorf("Ask: %w", err)
	}
	return res, nil
}
