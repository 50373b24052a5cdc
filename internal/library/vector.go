package library

import (
	"fmt"
	"sync"

	"github.com/coder/hnsw"
)

// sessionVectors holds per-process chunk embeddings: an HNSW graph for
// nearest-neighbor shortlisting plus the raw vectors so candidates can
// carry their embedding to the engine. Nothing here is persisted.
type sessionVectors struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[uint64]
	vectors map[string][]float32
	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64
	dims    int
}

func newSessionVectors(dims int) *sessionVectors {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20

	return &sessionVectors{
		graph:   graph,
		vectors: make(map[string][]float32),
		idMap:   make(map[string]uint64),
		keyMap:  make(map[uint64]string),
		dims:    dims,
	}
}

// Add inserts embeddings keyed by chunk ID. Re-adding an ID orphans the
// old graph node rather than deleting it; the stale key is simply no
// longer resolvable.
func (v *sessionVectors) Add(ids []string, embeddings [][]float32) error {
	if len(ids) != len(embeddings) {
		return fmt.Errorf("ids and embeddings length mismatch: %d vs %d", len(ids), len(embeddings))
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for i, id := range ids {
		vec := embeddings[i]
		if len(vec) != v.dims {
			return fmt.Errorf("chunk %s: dimension mismatch: want %d, got %d", id, v.dims, len(vec))
		}

		if oldKey, exists := v.idMap[id]; exists {
			delete(v.keyMap, oldKey)
		}

		key := v.nextKey
		v.nextKey++

		v.graph.Add(hnsw.MakeNode(key, vec))
		v.vectors[id] = vec
		v.idMap[id] = key
		v.keyMap[key] = id
	}
	return nil
}

// Remove forgets the given chunk IDs.
func (v *sessionVectors) Remove(ids []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, id := range ids {
		if key, exists := v.idMap[id]; exists {
			delete(v.keyMap, key)
			delete(v.idMap, id)
		}
		delete(v.vectors, id)
	}
}

// Vector returns the stored embedding for a chunk, or nil.
func (v *sessionVectors) Vector(id string) []float32 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.vectors[id]
}

// Shortlist returns the IDs of the k nearest chunks to the query
// embedding. Orphaned graph nodes are skipped.
func (v *sessionVectors) Shortlist(query []float32, k int) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(query) != v.dims {
		return nil, fmt.Errorf("query dimension mismatch: want %d, got %d", v.dims, len(query))
	}
	if v.graph.Len() == 0 || k <= 0 {
		return nil, nil
	}

	nodes := v.graph.Search(query, k)
	ids := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if id, exists := v.keyMap[node.Key]; exists {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Len reports how many chunks currently have embeddings.
func (v *sessionVectors) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.vectors)
}
