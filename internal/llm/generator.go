package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/swiss-bookkeeping/internal/logger"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// Generator turns a free-text prompt into the model's raw text answer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiConfig configures a GeminiGenerator.
type GeminiConfig struct {
	Model  string
	APIKey string // empty: resolved by genai from GOOGLE_API_KEY / GEMINI_API_KEY
	Retry  RetryConfig
}

// GeminiGenerator is the Generator backed by the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	retry  RetryConfig
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates the genai client once; it is safe to reuse across runs.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiGenerator: create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: cfg.Model, retry: cfg.Retry}, nil
}

// Model returns the configured model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate sends prompt as a single user turn, retrying transient failures.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContext(ctx)

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	var text string
	attempt := 0
	err := Retry(ctx, g.retry, func() error {
		attempt++
		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Str("model", g.model).Msg("generate content failed")
			return err
		}
		text = resp.Text()
		if text == "" {
			return Permanent(ErrEmptyResponse)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Generate: %w", err)
	}
	return text, nil
}
