package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"scale invariant", []float32{2, 0}, []float32{5, 0}, 1},
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero magnitude", []float32{0, 0}, []float32{1, 0}, 0},
		{"both empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestUsableEmbedding(t *testing.T) {
	assert.False(t, usableEmbedding(nil))
	assert.False(t, usableEmbedding([]float32{}))
	assert.False(t, usableEmbedding([]float32{0, 0, 0}))
	assert.True(t, usableEmbedding([]float32{0, 0.1, 0}))
}

func TestScoreSemantic(t *testing.T) {
	query := []float32{1, 0, 0}
	chunks := []Chunk{
		{ID: "aligned", Text: "a", Embedding: []float32{1, 0, 0}},     // sim 1.0 -> 1.0
		{ID: "close", Text: "b", Embedding: []float32{1, 1, 0}},       // sim ~0.707 -> ~0.854
		{ID: "orthogonal", Text: "c", Embedding: []float32{0, 0, 1}},  // sim 0 -> 0.5
		{ID: "opposite", Text: "d", Embedding: []float32{-1, 0, 0}},   // sim -1 -> 0.0, dropped
		{ID: "no-embedding", Text: "e"},                               // skipped
		{ID: "zero-embedding", Text: "f", Embedding: []float32{0, 0, 0}}, // skipped
	}

	scores := scoreSemantic(query, chunks, 0.4)

	require.Contains(t, scores, 0)
	require.Contains(t, scores, 1)
	require.Contains(t, scores, 2)
	assert.NotContains(t, scores, 3)
	assert.NotContains(t, scores, 4)
	assert.NotContains(t, scores, 5)

	assert.InDelta(t, 1.0, scores[0], 1e-9)
	assert.InDelta(t, 0.8535533905932737, scores[1], 1e-9)
	assert.InDelta(t, 0.5, scores[2], 1e-9)
}

func TestScoreSemantic_DimensionMismatchIsNotAnError(t *testing.T) {
	// A mismatched pair scores similarity 0, which lands at the 0.5
	// midpoint after rescaling and therefore still clears the 0.4 bar.
	chunks := []Chunk{{ID: "wide", Text: "a", Embedding: []float32{1, 0, 0, 0}}}
	scores := scoreSemantic([]float32{1, 0}, chunks, 0.4)

	require.Contains(t, scores, 0)
	assert.InDelta(t, 0.5, scores[0], 1e-9)
}

func TestScoreSemantic_ThresholdIsStrict(t *testing.T) {
	chunks := []Chunk{{ID: "a", Text: "a", Embedding: []float32{0, 1}}}
	// Orthogonal: normalized score exactly 0.5.
	assert.Empty(t, scoreSemantic([]float32{1, 0}, chunks, 0.5))
	assert.Len(t, scoreSemantic([]float32{1, 0}, chunks, 0.4), 1)
}

func TestScoreSemantic_UnusableQueryEmbedding(t *testing.T) {
	chunks := []Chunk{{ID: "a", Text: "a", Embedding: []float32{1, 0}}}
	assert.Empty(t, scoreSemantic(nil, chunks, 0.4))
	assert.Empty(t, scoreSemantic([]float32{0, 0}, chunks, 0.4))
}
