package adapters

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"stratego_oracle/internal/bootstrap"
)

type LlmAdapter struct {
	Client *genai.Client
	Model  string
	cfg    *bootstrap.Config
}

func NewLlmAdapter(cfg *bootstrap.Config) *LlmAdapter {
	return &LlmAdapter{cfg: cfg, Model: cfg.OracleModel}
}

func (a *LlmAdapter) Init(ctx context.Context) error {
	if a.cfg.GeminiApiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.cfg.GeminiApiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			APIVersion: a.cfg.OracleApiVersion,
			BaseURL:    a.cfg.OracleBaseUrl,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	a.Client = client
	return nil
}
