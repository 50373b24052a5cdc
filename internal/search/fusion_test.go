package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrder(t *testing.T) {
	scores := map[int]float64{3: 0.2, 0: 0.9, 7: 0.5}
	ranks := rankOrder(scores)

	assert.Equal(t, map[int]int{0: 1, 7: 2, 3: 3}, ranks)
}

func TestRankOrder_TiesBreakOnIndex(t *testing.T) {
	scores := map[int]float64{5: 0.5, 2: 0.5, 9: 0.5}
	ranks := rankOrder(scores)

	assert.Equal(t, map[int]int{2: 1, 5: 2, 9: 3}, ranks)
}

func TestFuseRRF_BothPresent(t *testing.T) {
	cfg := DefaultConfig()
	lexical := map[int]float64{0: 3.0, 1: 2.0}  // ranks: 0->1, 1->2
	semantic := map[int]float64{1: 0.9, 2: 0.8} // ranks: 1->1, 2->2

	fused := fuseRRF(lexical, semantic, cfg)

	require.Len(t, fused, 3)
	k := float64(cfg.RRFConstant)
	assert.InDelta(t, 0.4/(k+1), fused[0], 1e-12)
	assert.InDelta(t, 0.4/(k+2)+0.6/(k+1), fused[1], 1e-12)
	assert.InDelta(t, 0.6/(k+2), fused[2], 1e-12)

	// Chunk 1 appears in both rankings and wins.
	assert.Greater(t, fused[1], fused[0])
	assert.Greater(t, fused[1], fused[2])
}

func TestFuseRRF_AdaptiveStrategy(t *testing.T) {
	cfg := DefaultConfig()
	lexical := map[int]float64{0: 1.5}
	semantic := map[int]float64{1: 0.8}

	t.Run("both empty", func(t *testing.T) {
		assert.Empty(t, fuseRRF(nil, nil, cfg))
		assert.Empty(t, fuseRRF(map[int]float64{}, map[int]float64{}, cfg))
	})

	t.Run("lexical empty passes semantic through unfused", func(t *testing.T) {
		fused := fuseRRF(nil, semantic, cfg)
		assert.Equal(t, semantic, fused)
	})

	t.Run("semantic empty passes lexical through unfused", func(t *testing.T) {
		fused := fuseRRF(lexical, nil, cfg)
		assert.Equal(t, lexical, fused)
	})

	t.Run("pass-through copies rather than aliases", func(t *testing.T) {
		fused := fuseRRF(lexical, nil, cfg)
		fused[0] *= 2
		assert.Equal(t, 1.5, lexical[0])
	})
}

func TestFuseRRF_WeightsFavorSemantic(t *testing.T) {
	cfg := DefaultConfig()
	// Same rank on each side: the semantic-only chunk must outscore the
	// lexical-only chunk under the 0.6/0.4 weighting.
	lexical := map[int]float64{0: 1.0}
	semantic := map[int]float64{1: 1.0}

	fused := fuseRRF(lexical, semantic, cfg)
	assert.Greater(t, fused[1], fused[0])
}
