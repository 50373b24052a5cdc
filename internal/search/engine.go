package search

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/quiverhq/quiver/internal/embed"
)

// Engine is the public entry point for passage search. It is a pure
// function of (query, chunk set, mode): all derived state, from token
// sequences to corpus statistics and score maps, is built at the start
// of a call and discarded at its end, so concurrent calls need no
// locking.
//
// The embedding provider is an injected dependency. It may be nil, and
// its per-call failures degrade the call rather than surface: search
// always returns something usable, possibly empty.
type Engine struct {
	embedder embed.Embedder
	config   Config
	logger   *slog.Logger
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a search engine. A nil embedder is valid and simply
// disables semantic scoring.
func NewEngine(embedder embed.Embedder, cfg Config, opts ...EngineOption) *Engine {
	e := &Engine{
		embedder: embedder,
		config:   cfg.withDefaults(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search ranks chunks against the query under the given mode and
// returns at most Config.MaxResults hits with scores normalized so the
// top hit is exactly 1.0. Empty queries and empty chunk sets
// short-circuit to an empty result.
//
// The only returned error is the caller's own context cancellation,
// observed while awaiting the query embedding; every other failure has
// a defined degraded path.
func (e *Engine) Search(ctx context.Context, query string, chunks []Chunk, mode Mode) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" || len(chunks) == 0 {
		return []Result{}, nil
	}

	chunks = ensureIDs(chunks)

	switch mode {
	case ModeText:
		return e.searchText(query, chunks), nil
	case ModeEmbedding:
		return e.searchEmbedding(ctx, query, chunks)
	default:
		return e.searchHybrid(ctx, query, chunks)
	}
}

// searchText runs the keyword-only pipeline. The embedding provider is
// never touched on this path.
func (e *Engine) searchText(query string, chunks []Chunk) []Result {
	scores := e.scoreLexical(query, chunks)
	applyExactMatchBoost(scores, chunks, normalizeText(query), e.config.ExactMatchBoost)
	return assembleResults(scores, chunks, e.config.MaxResults)
}

// searchEmbedding runs the semantic-only pipeline. Absent capability,
// absent chunk embeddings and per-call embedding failures all yield an
// empty result set: semantic search is optional infrastructure and its
// absence is an expected condition, not an error.
func (e *Engine) searchEmbedding(ctx context.Context, query string, chunks []Chunk) ([]Result, error) {
	if !e.semanticReady(ctx, chunks) {
		return []Result{}, nil
	}

	queryEmbedding, err := e.embedQuery(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return []Result{}, nil
	}

	scores := scoreSemantic(queryEmbedding, chunks, e.config.SimilarityThreshold)
	applyExactMatchBoost(scores, chunks, normalizeText(query), e.config.ExactMatchBoost)
	return assembleResults(scores, chunks, e.config.MaxResults), nil
}

// searchHybrid runs lexical scoring unconditionally and semantic scoring
// when embeddings are in play, fusing the two rankings. A failed query
// embedding degrades this call to lexical-only. The two scoring passes
// run concurrently; lexical work is pure CPU while the semantic side
// mostly awaits the embedding provider.
func (e *Engine) searchHybrid(ctx context.Context, query string, chunks []Chunk) ([]Result, error) {
	var (
		lexical  map[int]float64
		semantic map[int]float64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lexical = e.scoreLexical(query, chunks)
		return nil
	})

	if e.semanticReady(ctx, chunks) {
		g.Go(func() error {
			queryEmbedding, err := e.embedQuery(gctx, query)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// Degrade this call to lexical-only.
				return nil
			}
			semantic = scoreSemantic(queryEmbedding, chunks, e.config.SimilarityThreshold)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := fuseRRF(lexical, semantic, e.config)
	applyExactMatchBoost(fused, chunks, normalizeText(query), e.config.ExactMatchBoost)
	return assembleResults(fused, chunks, e.config.MaxResults), nil
}

// scoreLexical tokenizes the query and candidates, derives corpus
// statistics for this invocation and scores with BM25.
func (e *Engine) scoreLexical(query string, chunks []Chunk) map[int]float64 {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return map[int]float64{}
	}

	tokenLists := make([][]string, len(chunks))
	for i, c := range chunks {
		tokenLists[i] = Tokenize(c.Text)
	}

	stats := buildCorpusStats(tokenLists)
	return scoreBM25(queryTokens, tokenLists, stats)
}

// semanticReady reports whether semantic scoring can contribute: an
// available provider and at least one chunk with a usable embedding.
func (e *Engine) semanticReady(ctx context.Context, chunks []Chunk) bool {
	if e.embedder == nil || !e.embedder.Available(ctx) {
		return false
	}
	for _, c := range chunks {
		if usableEmbedding(c.Embedding) {
			return true
		}
	}
	return false
}

// embedQuery generates the query embedding, logging failures. Callers
// decide how the failure degrades; it is never propagated as-is.
func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	embedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		e.logger.Warn("query embedding failed, degrading to keyword scoring",
			slog.String("error", err.Error()))
		return nil, err
	}
	return embedding, nil
}

// ensureIDs returns a chunk slice where every chunk has an ID,
// synthesizing ordinal-based ones without mutating the caller's slice.
func ensureIDs(chunks []Chunk) []Chunk {
	for _, c := range chunks {
		if c.ID != "" {
			continue
		}
		out := make([]Chunk, len(chunks))
		for i, orig := range chunks {
			out[i] = NewChunk(orig.ID, i, orig.Text, orig.Embedding)
		}
		return out
	}
	return chunks
}
