package library

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/quiverhq/quiver/internal/embed"
	"github.com/quiverhq/quiver/internal/search"
)

// Shortlisting kicks in only past this library size; below it the
// engine simply scores everything.
const (
	DefaultRecallThreshold = 500
	DefaultRecallSize      = 256
)

// Options configures a Library.
type Options struct {
	// Path is the SQLite database file, or ":memory:".
	Path string

	// LockPath guards imports across processes. Empty disables locking
	// (in-memory stores, tests).
	LockPath string

	// Embedder powers the session vector index. May be nil.
	Embedder embed.Embedder

	Logger *slog.Logger

	// RecallThreshold is the library size above which candidate
	// shortlisting starts. RecallSize is the per-stage shortlist size.
	RecallThreshold int
	RecallSize      int
}

// Library is the facade over the chunk store, the keyword recall index
// and the session vector index. It hands candidate chunk sets to the
// search engine; it never ranks anything itself.
type Library struct {
	store    *Store
	recall   *keywordRecall
	embedder embed.Embedder
	logger   *slog.Logger
	lockPath string

	recallThreshold int
	recallSize      int

	mu      sync.RWMutex
	chunks  []StoredChunk
	vectors *sessionVectors
}

// importRecord is one line of a chunk file: JSON Lines, one chunk per
// line, already segmented upstream.
type importRecord struct {
	ID   string `json:"id,omitempty"`
	Doc  string `json:"doc,omitempty"`
	Text string `json:"text"`
}

// Open opens the library, loading the chunk cache and building the
// recall index.
func Open(ctx context.Context, opts Options) (*Library, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RecallThreshold <= 0 {
		opts.RecallThreshold = DefaultRecallThreshold
	}
	if opts.RecallSize <= 0 {
		opts.RecallSize = DefaultRecallSize
	}

	store, err := OpenStore(opts.Path)
	if err != nil {
		return nil, err
	}

	recall, err := newKeywordRecall()
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	lib := &Library{
		store:           store,
		recall:          recall,
		embedder:        opts.Embedder,
		logger:          opts.Logger,
		lockPath:        opts.LockPath,
		recallThreshold: opts.RecallThreshold,
		recallSize:      opts.RecallSize,
	}

	if err := lib.reload(ctx); err != nil {
		_ = lib.Close()
		return nil, err
	}
	return lib, nil
}

// Close releases the store and indexes.
func (l *Library) Close() error {
	return errors.Join(l.recall.Close(), l.store.Close())
}

// reload refreshes the chunk cache and recall index from the store.
func (l *Library) reload(ctx context.Context) error {
	chunks, err := l.store.AllChunks(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.chunks = chunks
	l.mu.Unlock()

	return l.recall.Index(chunks)
}

// AddFile imports a JSON Lines chunk file. Records sharing a doc field
// become one document; records without one fall under a document named
// after the file. Re-importing a document replaces it.
func (l *Library) AddFile(ctx context.Context, path string) (int, error) {
	if l.lockPath != "" {
		release, err := acquireImportLock(ctx, l.lockPath)
		if err != nil {
			return 0, err
		}
		defer release()
	}

	docs, order, err := parseChunkFile(path)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("%s: no chunks found", path)
	}

	imported := 0
	now := time.Now()
	for _, docID := range order {
		chunks := docs[docID]

		// Drop the previous version from the indexes before the
		// store replaces it.
		oldIDs, err := l.store.ChunkIDsForDoc(ctx, docID)
		if err != nil {
			return imported, err
		}
		if err := l.recall.Remove(oldIDs); err != nil {
			return imported, err
		}
		l.forgetVectors(oldIDs)

		doc := Document{ID: docID, Name: docID, ImportedAt: now}
		if err := l.store.PutDocument(ctx, doc, chunks); err != nil {
			return imported, err
		}
		if err := l.recall.Index(chunks); err != nil {
			return imported, err
		}
		imported += len(chunks)
	}

	if err := l.refreshCache(ctx); err != nil {
		return imported, err
	}

	l.logger.Info("imported chunk file",
		slog.String("path", path),
		slog.Int("documents", len(order)),
		slog.Int("chunks", imported))
	return imported, nil
}

// Remove deletes a document from the library.
func (l *Library) Remove(ctx context.Context, docID string) error {
	ids, err := l.store.ChunkIDsForDoc(ctx, docID)
	if err != nil {
		return err
	}

	if err := l.store.DeleteDocument(ctx, docID); err != nil {
		return err
	}
	if err := l.recall.Remove(ids); err != nil {
		return err
	}
	l.forgetVectors(ids)

	return l.refreshCache(ctx)
}

// List returns all documents.
func (l *Library) List(ctx context.Context) ([]Document, error) {
	return l.store.ListDocuments(ctx)
}

// Status summarizes the library for diagnostics.
type Status struct {
	Documents      int    `json:"documents"`
	Chunks         int    `json:"chunks"`
	EmbeddedChunks int    `json:"embedded_chunks"`
	EmbedderModel  string `json:"embedder_model,omitempty"`
	EmbedderReady  bool   `json:"embedder_ready"`
	BuildMode      string `json:"build_mode"`
}

// Stat reports counts and embedder capability.
func (l *Library) Stat(ctx context.Context) (Status, error) {
	docs, chunks, err := l.store.Counts(ctx)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		Documents: docs,
		Chunks:    chunks,
		BuildMode: l.store.BuildMode(),
	}

	l.mu.RLock()
	if l.vectors != nil {
		st.EmbeddedChunks = l.vectors.Len()
	}
	l.mu.RUnlock()

	if l.embedder != nil {
		st.EmbedderModel = l.embedder.ModelName()
		st.EmbedderReady = l.embedder.Available(ctx)
	}
	return st, nil
}

// EnsureEmbeddings computes session embeddings for every chunk that
// does not have one yet. Without an available embedder this is a no-op;
// search still works lexically.
func (l *Library) EnsureEmbeddings(ctx context.Context) error {
	if l.embedder == nil || !l.embedder.Available(ctx) {
		return nil
	}

	l.mu.RLock()
	var missing []StoredChunk
	for _, c := range l.chunks {
		if l.vectors == nil || l.vectors.Vector(c.ID) == nil {
			missing = append(missing, c)
		}
	}
	l.mu.RUnlock()

	if len(missing) == 0 {
		return nil
	}

	texts := make([]string, len(missing))
	ids := make([]string, len(missing))
	for i, c := range missing {
		texts[i] = c.Text
		ids[i] = c.ID
	}

	embeddings, err := l.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(missing), err)
	}
	if len(embeddings) != len(ids) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(ids))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.vectors == nil {
		dims := 0
		if len(embeddings) > 0 {
			dims = len(embeddings[0])
		}
		l.vectors = newSessionVectors(dims)
	}
	return l.vectors.Add(ids, embeddings)
}

// Candidates returns the chunk set the engine should score for a
// query. Small libraries return everything. Large ones are shortlisted
// by keyword recall, vector recall, or both depending on mode; an
// empty shortlist falls back to the full set so cross-script and
// cross-lingual queries are never starved.
func (l *Library) Candidates(ctx context.Context, query string, mode search.Mode, limit int) ([]search.Chunk, error) {
	l.mu.RLock()
	chunks := l.chunks
	vectors := l.vectors
	l.mu.RUnlock()

	if len(chunks) <= l.recallThreshold {
		return l.attach(chunks, vectors), nil
	}

	size := l.recallSize
	if limit > size {
		size = limit
	}

	shortlist := make(map[string]struct{})

	if mode != search.ModeEmbedding {
		ids, err := l.recall.Shortlist(ctx, query, size)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			shortlist[id] = struct{}{}
		}
	}

	if mode != search.ModeText && vectors != nil && l.embedder != nil && l.embedder.Available(ctx) {
		queryVec, err := l.embedder.Embed(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.logger.Warn("vector shortlist skipped",
				slog.String("error", err.Error()))
		} else {
			ids, err := vectors.Shortlist(queryVec, size)
			if err != nil {
				l.logger.Warn("vector shortlist skipped",
					slog.String("error", err.Error()))
			}
			for _, id := range ids {
				shortlist[id] = struct{}{}
			}
		}
	}

	if len(shortlist) == 0 {
		return l.attach(chunks, vectors), nil
	}

	selected := make([]StoredChunk, 0, len(shortlist))
	for _, c := range chunks {
		if _, ok := shortlist[c.ID]; ok {
			selected = append(selected, c)
		}
	}
	return l.attach(selected, vectors), nil
}

// attach converts stored chunks to engine chunks, carrying session
// embeddings where they exist.
func (l *Library) attach(chunks []StoredChunk, vectors *sessionVectors) []search.Chunk {
	out := make([]search.Chunk, len(chunks))
	for i, c := range chunks {
		var embedding []float32
		if vectors != nil {
			embedding = vectors.Vector(c.ID)
		}
		out[i] = search.Chunk{ID: c.ID, Text: c.Text, Embedding: embedding}
	}
	return out
}

// refreshCache reloads the chunk cache from the store.
func (l *Library) refreshCache(ctx context.Context) error {
	chunks, err := l.store.AllChunks(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.chunks = chunks
	l.mu.Unlock()
	return nil
}

// forgetVectors drops session embeddings for removed chunks.
func (l *Library) forgetVectors(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.vectors != nil {
		l.vectors.Remove(ids)
	}
}

// parseChunkFile reads a JSON Lines file into per-document chunk
// slices, preserving first-seen document order.
func parseChunkFile(path string) (map[string][]StoredChunk, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open chunk file: %w", err)
	}
	defer func() { _ = f.Close() }()

	defaultDoc := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	docs := make(map[string][]StoredChunk)
	var order []string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec importRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		if strings.TrimSpace(rec.Text) == "" {
			return nil, nil, fmt.Errorf("%s:%d: chunk has no text", path, lineNo)
		}

		docID := rec.Doc
		if docID == "" {
			docID = defaultDoc
		}
		if _, seen := docs[docID]; !seen {
			order = append(order, docID)
		}

		ordinal := len(docs[docID])
		id := rec.ID
		if id == "" {
			id = fmt.Sprintf("%s#%d", docID, ordinal)
		}

		docs[docID] = append(docs[docID], StoredChunk{
			ID:      id,
			DocID:   docID,
			Ordinal: ordinal,
			Text:    rec.Text,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read chunk file: %w", err)
	}

	return docs, order, nil
}
