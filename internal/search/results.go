package search

import "sort"

// assembleResults sorts scored chunks by descending score, truncates to
// the result cap and rescales so the top result is exactly 1.0. Ties
// break on ascending chunk index to keep repeated calls identical.
// Scores are only comparable within one batch: each query's best hit
// defines 1.0.
func assembleResults(scores map[int]float64, chunks []Chunk, maxResults int) []Result {
	if len(scores) == 0 {
		return []Result{}
	}

	indices := make([]int, 0, len(scores))
	for idx := range scores {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool {
		si, sj := scores[indices[i]], scores[indices[j]]
		if si != sj {
			return si > sj
		}
		return indices[i] < indices[j]
	})

	if len(indices) > maxResults {
		indices = indices[:maxResults]
	}

	maxScore := scores[indices[0]]
	results := make([]Result, len(indices))
	for i, idx := range indices {
		score := scores[idx]
		if maxScore > 0 {
			score /= maxScore
		}
		results[i] = Result{
			ID:    chunks[idx].ID,
			Text:  chunks[idx].Text,
			Score: score,
		}
	}

	return results
}
