package embed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	// ProviderOllama uses a local Ollama daemon (default).
	ProviderOllama ProviderType = "ollama"

	// ProviderOpenAI uses the OpenAI embeddings API.
	ProviderOpenAI ProviderType = "openai"

	// ProviderStatic uses deterministic hash-based embeddings.
	ProviderStatic ProviderType = "static"
)

// NewEmbedder creates the configured provider, falling back to the
// static embedder when the real one cannot be reached. The fallback is
// deliberate: a missing provider degrades semantic quality, it must not
// take search down. The QUIVER_EMBEDDER environment variable overrides
// the configured provider.
func NewEmbedder(ctx context.Context, provider ProviderType, model, host string) (Embedder, error) {
	if env := os.Getenv("QUIVER_EMBEDDER"); env != "" {
		provider = ProviderType(strings.ToLower(env))
	}

	switch provider {
	case ProviderStatic:
		return NewStaticEmbedder(), nil

	case ProviderOpenAI:
		embedder, err := NewOpenAIEmbedder(model)
		if err != nil {
			slog.Warn("openai embedder unavailable, using static fallback",
				slog.String("error", err.Error()))
			return NewStaticEmbedder(), nil
		}
		return embedder, nil

	case ProviderOllama, "":
		embedder, err := NewOllamaEmbedder(ctx, OllamaConfig{Host: host, Model: model})
		if err != nil {
			slog.Warn("ollama embedder unavailable, using static fallback",
				slog.String("error", err.Error()))
			return NewStaticEmbedder(), nil
		}
		return embedder, nil

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}
