package driven

import (
	"context"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

// VectorStore persists embedded chunks and answers nearest-neighbour queries
// restricted to a single document.
type VectorStore interface {
	// SaveChunks stores embedded chunks. Every chunk must carry an embedding.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// MatchChunks returns up to matchCount chunks of documentID ordered by
	// descending similarity to embedding. Chunks of other documents must
	// never be returned. No matches is an empty result, not an error.
	MatchChunks(ctx context.Context, embedding []float32, documentID string, matchCount int) ([]VectorHit, error)

	// DeleteByDocument removes all chunks of a document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the matched chunk's document.
	DocumentID string

	// Content is the matched chunk's text.
	Content string

	// Score is the cosine similarity (higher is closer).
	Score float64
}
