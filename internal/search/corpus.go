package search

// corpusStats holds the per-invocation statistics BM25 needs. They are
// computed over exactly the candidate set of one Search call and
// discarded with it; nothing is cached across queries.
type corpusStats struct {
	// docFreq counts, per term, the chunks containing it at least once
	// (document frequency, not occurrence count).
	docFreq map[string]int

	// avgLen is the mean token-sequence length across chunks, floored
	// at 1 to keep the BM25 length normalization well-defined.
	avgLen float64

	// totalDocs is the candidate chunk count.
	totalDocs int
}

// buildCorpusStats derives corpus statistics from the candidate chunks'
// token sequences.
func buildCorpusStats(tokenLists [][]string) corpusStats {
	stats := corpusStats{
		docFreq:   make(map[string]int),
		totalDocs: len(tokenLists),
	}

	totalTokens := 0
	seen := make(map[string]struct{})
	for _, tokens := range tokenLists {
		totalTokens += len(tokens)

		clear(seen)
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			stats.docFreq[t]++
		}
	}

	stats.avgLen = 1
	if stats.totalDocs > 0 {
		if avg := float64(totalTokens) / float64(stats.totalDocs); avg > 1 {
			stats.avgLen = avg
		}
	}

	return stats
}
