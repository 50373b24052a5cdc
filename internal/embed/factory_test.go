package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedder_Static(t *testing.T) {
	e, err := NewEmbedder(context.Background(), ProviderStatic, "", "")
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.IsType(t, &StaticEmbedder{}, e)
}

func TestNewEmbedder_OllamaFallsBackToStatic(t *testing.T) {
	t.Setenv("QUIVER_EMBEDDER", "")

	e, err := NewEmbedder(context.Background(), ProviderOllama, "", "http://127.0.0.1:1")
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.IsType(t, &StaticEmbedder{}, e)
}

func TestNewEmbedder_OpenAIWithoutKeyFallsBackToStatic(t *testing.T) {
	t.Setenv("QUIVER_EMBEDDER", "")
	t.Setenv("OPENAI_API_KEY", "")

	e, err := NewEmbedder(context.Background(), ProviderOpenAI, "", "")
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.IsType(t, &StaticEmbedder{}, e)
}

func TestNewEmbedder_EnvOverride(t *testing.T) {
	t.Setenv("QUIVER_EMBEDDER", "static")

	// The configured provider would be Ollama; the environment wins.
	e, err := NewEmbedder(context.Background(), ProviderOllama, "", "http://127.0.0.1:1")
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.IsType(t, &StaticEmbedder{}, e)
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	t.Setenv("QUIVER_EMBEDDER", "")

	_, err := NewEmbedder(context.Background(), ProviderType("carrier-pigeon"), "", "")
	assert.Error(t, err)
}
