package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverhq/quiver/internal/library"
	"github.com/quiverhq/quiver/internal/search"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	lib, err := library.Open(context.Background(), library.Options{
		Path: filepath.Join(dir, "library.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })

	chunkFile := filepath.Join(dir, "notes.jsonl")
	require.NoError(t, os.WriteFile(chunkFile, []byte(`
{"doc": "animals", "text": "The quick brown fox"}
{"doc": "animals", "text": "A slow brown dog"}
{"doc": "recipes", "text": "Sourdough starter maintenance"}
`), 0o644))
	_, err = lib.AddFile(context.Background(), chunkFile)
	require.NoError(t, err)

	engine := search.NewEngine(nil, search.DefaultConfig())
	srv, err := NewServer(engine, lib, nil)
	require.NoError(t, err)
	return srv
}

func TestHandleSearch(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.handleSearch(context.Background(), nil, SearchInput{Query: "brown fox"})
	require.NoError(t, err)

	require.Len(t, out.Passages, 2)
	assert.Equal(t, "The quick brown fox", out.Passages[0].Text)
	assert.Equal(t, 1.0, out.Passages[0].Score)
}

func TestHandleSearch_Validation(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.handleSearch(context.Background(), nil, SearchInput{Query: "   "})
	assert.Error(t, err)

	_, _, err = srv.handleSearch(context.Background(), nil, SearchInput{Query: "fox", Mode: "psychic"})
	assert.Error(t, err)
}

func TestHandleSearch_Limit(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.handleSearch(context.Background(), nil, SearchInput{Query: "brown", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out.Passages, 1)
}

func TestHandleSearch_CacheHitAndFlush(t *testing.T) {
	srv := newTestServer(t)
	input := SearchInput{Query: "brown fox", Mode: "text"}

	_, first, err := srv.handleSearch(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.cache.Len())

	_, second, err := srv.handleSearch(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, srv.cache.Len())

	srv.FlushCache()
	assert.Zero(t, srv.cache.Len())
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t)

	_, st, err := srv.handleStatus(context.Background(), nil, StatusInput{})
	require.NoError(t, err)

	assert.Equal(t, 2, st.Documents)
	assert.Equal(t, 3, st.Chunks)
	assert.False(t, st.EmbedderReady)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw  string
		want search.Mode
		ok   bool
	}{
		{"", search.ModeHybrid, true},
		{"hybrid", search.ModeHybrid, true},
		{"text", search.ModeText, true},
		{"TEXT", search.ModeText, true},
		{"embedding", search.ModeEmbedding, true},
		{"vector", "", false},
	}
	for _, tt := range tests {
		mode, err := parseMode(tt.raw)
		if tt.ok {
			require.NoError(t, err, tt.raw)
			assert.Equal(t, tt.want, mode, tt.raw)
		} else {
			assert.Error(t, err, tt.raw)
		}
	}
}
