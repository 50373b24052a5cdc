// Package search implements hybrid lexical-semantic passage search.
// A BM25 keyword ranking and a cosine-similarity ranking over supplied
// embeddings are fused with Reciprocal Rank Fusion (RRF).
package search

import "fmt"

// Mode selects the search pipeline.
type Mode string

const (
	// ModeText runs keyword (BM25) scoring only. The embedding provider
	// is never invoked in this mode.
	ModeText Mode = "text"

	// ModeEmbedding runs semantic scoring only. Returns no results when
	// the embedding capability or chunk embeddings are missing.
	ModeEmbedding Mode = "embedding"

	// ModeHybrid runs both and fuses the rankings. This is the default.
	ModeHybrid Mode = "hybrid"
)

// Chunk is the atomic unit of search: a bounded span of a source
// document's text, optionally carrying a precomputed embedding.
// Chunks are supplied fresh on every Search call; the engine never
// mutates or retains them.
type Chunk struct {
	// ID uniquely identifies the chunk within one Search invocation.
	ID string

	// Text is the chunk's plain-text content.
	Text string

	// Embedding is a fixed-length vector, or nil/empty when not
	// computed. An all-zero embedding counts as "no usable embedding".
	Embedding []float32
}

// NewChunk constructs a Chunk, synthesizing an ID from the ordinal when
// the upstream record carries none. This guarantees every chunk entering
// the engine is addressable.
func NewChunk(id string, ordinal int, text string, embedding []float32) Chunk {
	if id == "" {
		id = fmt.Sprintf("chunk-%d", ordinal)
	}
	return Chunk{ID: id, Text: text, Embedding: embedding}
}

// Result is a single ranked search hit. Score is normalized to [0,1]
// relative to the batch's top result; scores are not comparable across
// queries.
type Result struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Config carries the engine's tuning constants. The defaults are fixed
// values preserved for behavioral parity with production tuning, not
// knobs expected to be re-derived.
type Config struct {
	// KeywordWeight is the RRF contribution weight of the BM25 ranking.
	KeywordWeight float64

	// SemanticWeight is the RRF contribution weight of the vector ranking.
	SemanticWeight float64

	// RRFConstant is the RRF smoothing constant k.
	RRFConstant int

	// SimilarityThreshold drops semantic matches at or below this
	// normalized cosine score.
	SimilarityThreshold float64

	// ExactMatchBoost multiplies the score of chunks whose normalized
	// text contains the normalized query as a substring.
	ExactMatchBoost float64

	// MaxResults caps the number of returned results.
	MaxResults int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		KeywordWeight:       0.4,
		SemanticWeight:      0.6,
		RRFConstant:         60,
		SimilarityThreshold: 0.4,
		ExactMatchBoost:     1.5,
		MaxResults:          20,
	}
}

// withDefaults fills zero-valued fields so a partially specified Config
// behaves like DefaultConfig for the omitted constants.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.KeywordWeight <= 0 {
		c.KeywordWeight = d.KeywordWeight
	}
	if c.SemanticWeight <= 0 {
		c.SemanticWeight = d.SemanticWeight
	}
	if c.RRFConstant <= 0 {
		c.RRFConstant = d.RRFConstant
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	if c.ExactMatchBoost <= 0 {
		c.ExactMatchBoost = d.ExactMatchBoost
	}
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	return c
}
