package factory

import (
	"context"
	"fmt"

	"ai-sqlagent-be/pkg/llm"
	"ai-sqlagent-be/pkg/llm/gemini"
	"ai-sqlagent-be/pkg/llm/ollama"
	"ai-sqlagent-be/pkg/llm/openai"
)

// Config selects and parameterizes an LLM backend.
type Config struct {
	Provider string // "ollama", "openai", "huggingface", "gemini"
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(ctx context.Context, cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "openai":
		return openai.NewProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "huggingface":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://router.huggingface.co/v1"
		}
		return openai.NewProvider(cfg.APIKey, baseURL, cfg.Model), nil
	case "gemini":
		return gemini.NewProvider(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
