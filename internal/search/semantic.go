package search

import "math"

// scoreSemantic scores chunks by cosine similarity against the query
// embedding. Chunks without a usable embedding are skipped entirely.
// Raw similarity in [-1,1] is rescaled to [0,1]; only scores strictly
// above the threshold are kept, so near-orthogonal vectors drop out
// while moderate cross-lingual matches survive.
func scoreSemantic(queryEmbedding []float32, chunks []Chunk, threshold float64) map[int]float64 {
	scores := make(map[int]float64)
	if !usableEmbedding(queryEmbedding) {
		return scores
	}

	for i, c := range chunks {
		if !usableEmbedding(c.Embedding) {
			continue
		}

		sim := cosineSimilarity(queryEmbedding, c.Embedding)
		normalized := (sim + 1) / 2
		if normalized > threshold {
			scores[i] = normalized
		}
	}

	return scores
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched dimensions and zero-magnitude vectors both yield 0 rather
// than an error: a bad pair is simply not similar.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		magA += av * av
		magB += bv * bv
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// usableEmbedding reports whether v is present and not all-zero.
func usableEmbedding(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return true
		}
	}
	return false
}
