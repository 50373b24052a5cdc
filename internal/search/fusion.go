package search

import "sort"

// fuseRRF merges the lexical and semantic score maps into one score per
// chunk using Reciprocal Rank Fusion:
//
//	rrf(chunk) = keywordWeight/(k + lexRank) + semanticWeight/(k + semRank)
//
// with each contribution present only when the chunk appears in that
// ranking.
//
// Strategy selection is deliberate policy, not error fallback: when one
// ranking is empty the other's raw scores pass through unfused. That is
// what makes cross-lingual queries work: a Latin-script query against
// CJK content can never overlap lexically, so the semantic ranking must
// survive untouched rather than be dragged down by an empty partner.
func fuseRRF(lexical, semantic map[int]float64, cfg Config) map[int]float64 {
	switch {
	case len(lexical) == 0 && len(semantic) == 0:
		return map[int]float64{}
	case len(lexical) == 0:
		return copyScores(semantic)
	case len(semantic) == 0:
		return copyScores(lexical)
	}

	k := float64(cfg.RRFConstant)
	lexRank := rankOrder(lexical)
	semRank := rankOrder(semantic)

	fused := make(map[int]float64, len(lexRank)+len(semRank))
	for idx, rank := range lexRank {
		fused[idx] += cfg.KeywordWeight / (k + float64(rank))
	}
	for idx, rank := range semRank {
		fused[idx] += cfg.SemanticWeight / (k + float64(rank))
	}

	return fused
}

// rankOrder converts a score map into a 1-indexed rank map, rank 1 being
// the highest score. Equal scores are ordered by ascending chunk index
// so ranking is deterministic.
func rankOrder(scores map[int]float64) map[int]int {
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

	ranks := make(map[int]int, len(indices))
	for pos, idx := range indices {
		ranks[idx] = pos + 1
	}
	return ranks
}

func copyScores(scores map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(scores))
	for idx, s := range scores {
		out[idx] = s
	}
	return out
}
