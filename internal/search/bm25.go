package search

import "math"

// BM25 tuning constants (Okapi variant, standard values).
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// scoreBM25 scores every candidate chunk against the query tokens and
// returns a chunk-index → score map. Chunks sharing no term with the
// query get no entry: absence means "did not match", not zero relevance.
// A zero-token query yields an empty map.
func scoreBM25(queryTokens []string, tokenLists [][]string, stats corpusStats) map[int]float64 {
	scores := make(map[int]float64)
	if len(queryTokens) == 0 {
		return scores
	}

	n := float64(stats.totalDocs)

	for i, tokens := range tokenLists {
		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}

		score := 0.0
		matched := false
		for _, term := range queryTokens {
			freq, ok := tf[term]
			if !ok {
				continue
			}
			matched = true

			df := float64(stats.docFreq[term])
			idf := math.Log((n-df+0.5)/(df+0.5) + 1)

			t := float64(freq)
			lenNorm := 1 - bm25B + bm25B*(float64(len(tokens))/stats.avgLen)
			score += idf * (t * (bm25K1 + 1)) / (t + bm25K1*lenNorm)
		}

		if matched {
			scores[i] = score
		}
	}

	return scores
}
