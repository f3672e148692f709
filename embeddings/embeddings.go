// Package embeddings maps text into fixed-length vectors for similarity
// search. The model is fixed at deployment so identical input always yields
// the same vector.
package embeddings

import (
	"context"
	"fmt"

	"github.com/forsa/assistant/config"
)

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedOne embeds a single text, typically a retrieval query.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}
	return vectors[0], nil
}

// NewEmbedder selects the configured embedding provider.
func NewEmbedder(cfg *config.Config) (Embedder, error) {
	switch cfg.Embeddings.Provider {
	case config.ProviderOllama:
		return newOllamaEmbedder(cfg.OllamaHost, cfg.Embeddings), nil
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai embeddings selected but no API key configured")
		}
		return newOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Embeddings), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Embeddings.Provider)
	}
}
