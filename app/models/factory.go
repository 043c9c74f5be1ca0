package models

import (
	"context"
	"fmt"

	"DocAnalystAI/app/configs"
)

// NewModel constructs the model client selected by cfg.Provider. Called once at startup.
func NewModel(ctx context.Context, cfg configs.LLMConfig) (Interface, error) {
	switch cfg.Provider {
	case configs.ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
	case configs.ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.EmbeddingModel), nil
	case configs.ProviderLMStudio:
		return NewLLMClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.EmbeddingModel), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}
