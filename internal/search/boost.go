package search

import "strings"

// applyExactMatchBoost multiplies the score of every already-scored
// chunk whose normalized text contains the normalized query as a
// contiguous substring. It runs once, after fusion: the boost rewards
// chunks that already ranked, it never creates matches. Mutates scores
// in place and returns it for chaining.
func applyExactMatchBoost(scores map[int]float64, chunks []Chunk, normalizedQuery string, boost float64) map[int]float64 {
	if normalizedQuery == "" || len(scores) == 0 {
		return scores
	}

	for idx := range scores {
		if strings.Contains(normalizeText(chunks[idx].Text), normalizedQuery) {
			scores[idx] *= boost
		}
	}
	return scores
}
