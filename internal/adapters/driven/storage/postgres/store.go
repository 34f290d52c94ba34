// Package postgres provides document and vector stores backed by PostgreSQL
// with the pgvector extension.
//
// Chunks live in a vector(D) column. Matching filters on document_id first,
// then orders by cosine distance, so a question never sees chunks of another
// job description.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

// Postgres error codes the store maps onto domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Ensure Store implements both ports.
var (
	_ driven.DocumentStore = (*Store)(nil)
	_ driven.VectorStore   = (*Store)(nil)
)

// Store persists documents and chunks in PostgreSQL.
type Store struct {
	db         *sql.DB
	dimensions int
}

// Open connects to dsn, verifies the connection and creates the schema if
// it does not exist.
func Open(ctx context.Context, dsn string, dimensions int) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	s := New(db, dimensions)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database handle.
func New(db *sql.DB, dimensions int) *Store {
	return &Store{db: db, dimensions: dimensions}
}

// schemaStatements returns the DDL for a given vector dimension.
// No ANN index is created: pgvector's HNSW caps out at 2000 dimensions and
// matching is always confined to one document's chunks.
func schemaStatements(dimensions int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS documents (
			id          TEXT PRIMARY KEY,
			file_name   TEXT NOT NULL,
			mime_type   TEXT NOT NULL DEFAULT '',
			role        TEXT NOT NULL,
			seniority   TEXT NOT NULL,
			chunk_count INTEGER NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id          TEXT PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
			position    INTEGER NOT NULL,
			content     TEXT NOT NULL,
			embedding   vector(%d) NOT NULL
		)`, dimensions),
		`CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks (document_id)`,
	}
}

// EnsureSchema creates the extension, tables and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(s.dimensions) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// SaveDocument stores a new document.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, file_name, mime_type, role, seniority, chunk_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, doc.FileName, doc.MIMEType, doc.Role, doc.Seniority, doc.ChunkCount, doc.CreatedAt.UTC())
	if err != nil {
		if hasCode(err, codeUniqueViolation) {
			return fmt.Errorf("%w: document %s already exists", domain.ErrInvalidInput, doc.ID)
		}
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_name, mime_type, role, seniority, chunk_count, created_at
		FROM documents WHERE id = $1`, id)

	var doc domain.Document
	err := row.Scan(&doc.ID, &doc.FileName, &doc.MIMEType, &doc.Role, &doc.Seniority, &doc.ChunkCount, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.CreatedAt = doc.CreatedAt.UTC()
	return &doc, nil
}

// ListDocuments returns all documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, mime_type, role, seniority, chunk_count, created_at
		FROM documents ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.FileName, &doc.MIMEType, &doc.Role, &doc.Seniority,
			&doc.ChunkCount, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.CreatedAt = doc.CreatedAt.UTC()
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document. Its chunks cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveChunks stores embedded chunks in one transaction.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[i].ID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, content, embedding)
		VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Position, c.Content,
			pgvector.NewVector(c.Embedding)); err != nil {
			if hasCode(err, codeForeignKeyViolation) {
				return fmt.Errorf("saving chunk %s: document %s: %w", c.ID, c.DocumentID, domain.ErrNotFound)
			}
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// MatchChunks returns the chunks of documentID closest to embedding by
// cosine distance.
func (s *Store) MatchChunks(
	ctx context.Context, embedding []float32, documentID string, matchCount int,
) ([]driven.VectorHit, error) {
	if matchCount <= 0 {
		return []driven.VectorHit{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, content, 1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE document_id = $2
		ORDER BY embedding <=> $1, position
		LIMIT $3`, pgvector.NewVector(embedding), documentID, matchCount)
	if err != nil {
		return nil, fmt.Errorf("matching chunks: %w", err)
	}
	defer rows.Close()

	hits := []driven.VectorHit{}
	for rows.Next() {
		var h driven.VectorHit
		if err := rows.Scan(&h.ChunkID, &h.DocumentID, &h.Content, &h.Score); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return hits, nil
}

// DeleteByDocument removes all chunks of a document.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
