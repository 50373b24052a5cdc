package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyExactMatchBoost(t *testing.T) {
	chunks := []Chunk{
		{ID: "a", Text: "configure the retry policy here"},
		{ID: "b", Text: "policy retry is discussed elsewhere"},
		{ID: "c", Text: "unrelated"},
	}
	scores := map[int]float64{0: 1.0, 1: 1.0}

	applyExactMatchBoost(scores, chunks, normalizeText("Retry Policy!"), 1.5)

	assert.Equal(t, 1.5, scores[0])
	assert.Equal(t, 1.0, scores[1])
	// The boost rewards ranked chunks only; it never creates a match.
	assert.NotContains(t, scores, 2)
}

func TestApplyExactMatchBoost_EmptyQuery(t *testing.T) {
	chunks := []Chunk{{ID: "a", Text: "anything"}}
	scores := map[int]float64{0: 2.0}

	applyExactMatchBoost(scores, chunks, "", 1.5)
	assert.Equal(t, 2.0, scores[0])
}

func TestAssembleResults(t *testing.T) {
	chunks := []Chunk{
		{ID: "a", Text: "ta"},
		{ID: "b", Text: "tb"},
		{ID: "c", Text: "tc"},
	}
	scores := map[int]float64{0: 2.0, 1: 8.0, 2: 4.0}

	results := assembleResults(scores, chunks, 20)

	require.Len(t, results, 3)
	assert.Equal(t, "b", results[0].ID)
	assert.Equal(t, "c", results[1].ID)
	assert.Equal(t, "a", results[2].ID)

	// Top result defines 1.0; the rest scale relative to it.
	assert.Equal(t, 1.0, results[0].Score)
	assert.InDelta(t, 0.5, results[1].Score, 1e-9)
	assert.InDelta(t, 0.25, results[2].Score, 1e-9)
}

func TestAssembleResults_TruncatesBeforeNormalizing(t *testing.T) {
	chunks := make([]Chunk, 30)
	scores := make(map[int]float64, 30)
	for i := range chunks {
		chunks[i] = Chunk{ID: fmt.Sprintf("c%d", i), Text: "t"}
		scores[i] = float64(i + 1)
	}

	results := assembleResults(scores, chunks, 20)

	require.Len(t, results, 20)
	assert.Equal(t, "c29", results[0].ID)
	assert.Equal(t, 1.0, results[0].Score)
	// The max of the truncated set is the reference: scores 30 down to
	// 11 survive the cap, so the last kept chunk lands at 11/30.
	assert.Equal(t, "c10", results[19].ID)
	assert.InDelta(t, 11.0/30.0, results[19].Score, 1e-9)
}

func TestAssembleResults_Empty(t *testing.T) {
	results := assembleResults(map[int]float64{}, nil, 20)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestAssembleResults_DeterministicTies(t *testing.T) {
	chunks := []Chunk{{ID: "x", Text: "t"}, {ID: "y", Text: "t"}}
	scores := map[int]float64{0: 1.0, 1: 1.0}

	for i := 0; i < 5; i++ {
		results := assembleResults(scores, chunks, 20)
		require.Equal(t, "x", results[0].ID)
		require.Equal(t, "y", results[1].ID)
	}
}
