// Package library persists a user's pre-chunked documents and supplies
// candidate chunk sets to the search engine. Chunk text is the only
// thing stored durably; embeddings live in a per-process session index
// and are recomputed on startup.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is an imported document record.
type Document struct {
	ID         string
	Name       string
	ChunkCount int
	ImportedAt time.Time
}

// StoredChunk is one persisted chunk of a document.
type StoredChunk struct {
	ID      string
	DocID   string
	Ordinal int
	Text    string
}

// Store is the SQLite-backed chunk store. The driver is selected at
// build time (see driver_cgo.go / driver_purego.go).
type Store struct {
	db *sql.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	imported_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id      TEXT PRIMARY KEY,
	doc_id  TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	ordinal INTEGER NOT NULL,
	text    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks(doc_id);
`

// OpenStore opens (creating if necessary) the store at path. Pass
// ":memory:" for an ephemeral store in tests.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(storeSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BuildMode reports which SQLite driver this binary was built with.
func (s *Store) BuildMode() string { return buildMode }

// PutDocument writes a document and its chunks in one transaction,
// replacing any previous document with the same ID.
func (s *Store) PutDocument(ctx context.Context, doc Document, chunks []StoredChunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ?`, doc.ID); err != nil {
		return fmt.Errorf("replace document %s: %w", doc.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, name, imported_at) VALUES (?, ?, ?)`,
		doc.ID, doc.Name, doc.ImportedAt.Unix()); err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, doc_id, ordinal, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocID, c.Ordinal, c.Text); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document and, via cascade, its chunks.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ListDocuments returns all documents with chunk counts, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.name, d.imported_at, COUNT(c.id)
		FROM documents d LEFT JOIN chunks c ON c.doc_id = d.id
		GROUP BY d.id
		ORDER BY d.imported_at DESC, d.id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []Document
	for rows.Next() {
		var d Document
		var importedAt int64
		if err := rows.Scan(&d.ID, &d.Name, &importedAt, &d.ChunkCount); err != nil {
			return nil, err
		}
		d.ImportedAt = time.Unix(importedAt, 0)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// AllChunks returns every stored chunk ordered by document and ordinal.
func (s *Store) AllChunks(ctx context.Context) ([]StoredChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doc_id, ordinal, text
		FROM chunks ORDER BY doc_id, ordinal`)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []StoredChunk
	for rows.Next() {
		var c StoredChunk
		if err := rows.Scan(&c.ID, &c.DocID, &c.Ordinal, &c.Text); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// ChunkIDsForDoc returns the IDs of a document's chunks.
func (s *Store) ChunkIDsForDoc(ctx context.Context, docID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM chunks WHERE doc_id = ? ORDER BY ordinal`, docID)
	if err != nil {
		return nil, fmt.Errorf("load chunk ids for %s: %w", docID, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Counts returns the number of documents and chunks.
func (s *Store) Counts(ctx context.Context) (docs, chunks int, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM documents), (SELECT COUNT(*) FROM chunks)`)
	if err := row.Scan(&docs, &chunks); err != nil {
		return 0, 0, fmt.Errorf("count rows: %w", err)
	}
	return docs, chunks, nil
}
