// Package llm wraps the text-generation collaborator. The engine treats it as
// a black box: one system prompt and one user message in, text or an error out.
package llm

import (
	"context"
	"fmt"

	"github.com/forsa/assistant/config"
)

type Client interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// NewClient selects the configured generation provider.
func NewClient(cfg *config.Config) (Client, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOllama:
		return newOllamaClient(cfg.OllamaHost, cfg.LLM), nil
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai llm selected but no API key configured")
		}
		return newOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLM), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.LLM.Provider)
	}
}
