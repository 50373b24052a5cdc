// Package mcp exposes the search engine and library to MCP clients over
// stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quiverhq/quiver/internal/library"
	"github.com/quiverhq/quiver/internal/search"
	"github.com/quiverhq/quiver/pkg/version"
)

const (
	serverName       = "quiver"
	defaultToolLimit = 10
	cacheSize        = 128
)

// SearchInput is the search_passages tool input.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	Mode  string `json:"mode,omitempty" jsonschema:"search mode: text, embedding or hybrid (default)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages, default 10"`
}

// PassageOutput is one scored passage.
type PassageOutput struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// SearchOutput is the search_passages tool output.
type SearchOutput struct {
	Passages []PassageOutput `json:"passages" jsonschema:"scored passages, best first"`
}

// StatusInput is the library_status tool input (none).
type StatusInput struct{}

// cacheKey identifies a cached query result.
type cacheKey struct {
	query string
	mode  search.Mode
	limit int
}

// Server bridges MCP clients to the engine and the library. Results of
// recent queries are cached here; the engine itself stays stateless.
type Server struct {
	mcp    *mcp.Server
	engine *search.Engine
	lib    *library.Library
	cache  *lru.Cache[cacheKey, []search.Result]
	logger *slog.Logger
}

// NewServer creates the MCP server and registers its tools.
func NewServer(engine *search.Engine, lib *library.Library, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if lib == nil {
		return nil, errors.New("library is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := lru.New[cacheKey, []search.Result](cacheSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine: engine,
		lib:    lib,
		cache:  cache,
		logger: logger,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{Name: serverName, Version: version.Version},
		nil,
	)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_passages",
		Description: "Search the user's document library. Combines keyword and semantic matching; handles Latin and CJK text. Returns scored passages, best first.",
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "library_status",
		Description: "Report document and chunk counts and whether semantic search is currently available.",
	}, s.handleStatus)

	return s, nil
}

// Serve runs the server over stdio until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server starting",
		slog.String("name", serverName),
		slog.String("version", version.Version))
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// FlushCache drops cached query results. Called after the library
// changes underneath the server.
func (s *Server) FlushCache() {
	s.cache.Purge()
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, SearchOutput{}, errors.New("query parameter is required")
	}

	mode, err := parseMode(input.Mode)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultToolLimit
	}

	key := cacheKey{query: query, mode: mode, limit: limit}
	if results, ok := s.cache.Get(key); ok {
		return nil, toOutput(results), nil
	}

	chunks, err := s.lib.Candidates(ctx, query, mode, limit)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("load candidates: %w", err)
	}

	results, err := s.engine.Search(ctx, query, chunks, mode)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if len(results) > limit {
		results = results[:limit]
	}

	s.cache.Add(key, results)

	s.logger.Info("search served",
		slog.String("mode", string(mode)),
		slog.Int("candidates", len(chunks)),
		slog.Int("results", len(results)))
	return nil, toOutput(results), nil
}

func (s *Server) handleStatus(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
	*mcp.CallToolResult,
	library.Status,
	error,
) {
	st, err := s.lib.Stat(ctx)
	if err != nil {
		return nil, library.Status{}, err
	}
	return nil, st, nil
}

// parseMode validates the mode parameter; empty means hybrid.
func parseMode(raw string) (search.Mode, error) {
	switch search.Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", search.ModeHybrid:
		return search.ModeHybrid, nil
	case search.ModeText:
		return search.ModeText, nil
	case search.ModeEmbedding:
		return search.ModeEmbedding, nil
	default:
		return "", fmt.Errorf("unknown mode %q: want text, embedding or hybrid", raw)
	}
}

func toOutput(results []search.Result) SearchOutput {
	out := SearchOutput{Passages: make([]PassageOutput, len(results))}
	for i, r := range results {
		out.Passages[i] = PassageOutput{ID: r.ID, Text: r.Text, Score: r.Score}
	}
	return out
}
