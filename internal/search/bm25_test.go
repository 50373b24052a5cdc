package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenizeAll(texts []string) [][]string {
	lists := make([][]string, len(texts))
	for i, t := range texts {
		lists[i] = Tokenize(t)
	}
	return lists
}

func TestBuildCorpusStats(t *testing.T) {
	lists := tokenizeAll([]string{
		"the quick brown fox",
		"a slow brown dog",
	})
	stats := buildCorpusStats(lists)

	assert.Equal(t, 2, stats.totalDocs)
	assert.InDelta(t, 4.0, stats.avgLen, 1e-9)
	// Document frequency counts chunks, not occurrences.
	assert.Equal(t, 2, stats.docFreq["brown"])
	assert.Equal(t, 1, stats.docFreq["fox"])
	assert.Equal(t, 1, stats.docFreq["dog"])
	assert.Zero(t, stats.docFreq["cat"])
}

func TestBuildCorpusStats_RepeatedTermCountsOnce(t *testing.T) {
	lists := tokenizeAll([]string{"go go go", "stop"})
	stats := buildCorpusStats(lists)

	assert.Equal(t, 1, stats.docFreq["go"])
	assert.InDelta(t, 2.0, stats.avgLen, 1e-9)
}

func TestBuildCorpusStats_AvgLenFloor(t *testing.T) {
	stats := buildCorpusStats([][]string{{}, {}})
	assert.Equal(t, 1.0, stats.avgLen)

	stats = buildCorpusStats(nil)
	assert.Equal(t, 1.0, stats.avgLen)
	assert.Zero(t, stats.totalDocs)
}

func TestScoreBM25(t *testing.T) {
	lists := tokenizeAll([]string{
		"the quick brown fox",
		"a slow brown dog",
		"nothing in common here",
	})
	stats := buildCorpusStats(lists)

	scores := scoreBM25(Tokenize("brown fox"), lists, stats)

	require.Contains(t, scores, 0)
	require.Contains(t, scores, 1)
	// No shared terms means no entry, not a zero.
	assert.NotContains(t, scores, 2)
	assert.Greater(t, scores[0], scores[1])

	// Hand-computed: equal lengths, tf=1, so tf_norm=1 and the score
	// is the sum of matched-term IDFs.
	n := 3.0
	idf := func(df float64) float64 { return math.Log((n-df+0.5)/(df+0.5) + 1) }
	assert.InDelta(t, idf(2)+idf(1), scores[0], 1e-9)
	assert.InDelta(t, idf(2), scores[1], 1e-9)
}

func TestScoreBM25_TermFrequencySaturates(t *testing.T) {
	lists := [][]string{
		{"cache", "cache", "cache", "cache"},
		{"cache", "miss", "rate", "drop"},
	}
	stats := buildCorpusStats(lists)
	scores := scoreBM25([]string{"cache"}, lists, stats)

	require.Contains(t, scores, 0)
	require.Contains(t, scores, 1)
	// More occurrences score higher, but far less than linearly.
	assert.Greater(t, scores[0], scores[1])
	assert.Less(t, scores[0], 4*scores[1])
}

func TestScoreBM25_EmptyQuery(t *testing.T) {
	lists := tokenizeAll([]string{"some text"})
	stats := buildCorpusStats(lists)

	assert.Empty(t, scoreBM25(nil, lists, stats))
	assert.Empty(t, scoreBM25(Tokenize("   "), lists, stats))
}

func TestScoreBM25_AllScoresPositive(t *testing.T) {
	lists := tokenizeAll([]string{
		"alpha beta", "beta gamma", "gamma delta", "alpha delta",
	})
	stats := buildCorpusStats(lists)
	scores := scoreBM25(Tokenize("alpha beta gamma delta"), lists, stats)

	require.Len(t, scores, 4)
	for idx, s := range scores {
		assert.Greater(t, s, 0.0, "chunk %d", idx)
	}
}
