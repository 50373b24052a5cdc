package library

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// keywordRecall maintains an in-memory bleve index used to shortlist
// candidates before the engine runs its own scoring. It is a recall
// stage, not a ranker: the engine re-scores whatever it returns.
type keywordRecall struct {
	mu     sync.RWMutex
	index  bleve.Index
	closed bool
}

// recallDocument is the indexed shape of a chunk.
type recallDocument struct {
	Text string `json:"text"`
}

func newKeywordRecall() (*keywordRecall, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create recall index: %w", err)
	}
	return &keywordRecall{index: idx}, nil
}

// Index adds chunks to the recall index.
func (r *keywordRecall) Index(chunks []StoredChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("recall index is closed")
	}

	batch := r.index.NewBatch()
	for _, c := range chunks {
		if err := batch.Index(c.ID, recallDocument{Text: c.Text}); err != nil {
			return fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
	}
	return r.index.Batch(batch)
}

// Remove drops chunks from the recall index.
func (r *keywordRecall) Remove(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("recall index is closed")
	}

	batch := r.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return r.index.Batch(batch)
}

// Shortlist returns IDs of the chunks bleve considers relevant. An
// empty result is a valid outcome; the caller decides the fallback.
func (r *keywordRecall) Shortlist(ctx context.Context, query string, limit int) ([]string, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, fmt.Errorf("recall index is closed")
	}

	match := bleve.NewMatchQuery(query)
	match.SetField("text")

	req := bleve.NewSearchRequest(match)
	req.Size = limit

	result, err := r.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("recall search: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Close releases the index.
func (r *keywordRecall) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.index.Close()
}
