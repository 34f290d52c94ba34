package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/jdrag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Similarity is computed by brute force over the chunks of one document.
type VectorStore struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk // keyed by document ID
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		chunks: make(map[string][]domain.Chunk),
	}
}

// SaveChunks appends chunks to their documents.
func (s *VectorStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[i].ID)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range chunks {
		c := chunks[i]
		c.Embedding = append([]float32(nil), c.Embedding...)
		s.chunks[c.DocumentID] = append(s.chunks[c.DocumentID], c)
	}
	return nil
}

// MatchChunks returns the closest chunks of documentID.
func (s *VectorStore) MatchChunks(
	_ context.Context, embedding []float32, documentID string, matchCount int,
) ([]driven.VectorHit, error) {
	if matchCount <= 0 {
		return []driven.VectorHit{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := s.chunks[documentID]
	candidates := make([][]float32, len(chunks))
	for i := range chunks {
		candidates[i] = chunks[i].Embedding
	}

	best := vecmath.TopK(embedding, candidates, matchCount)
	hits := make([]driven.VectorHit, 0, len(best))
	for _, b := range best {
		c := chunks[b.Index]
		hits = append(hits, driven.VectorHit{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Content:    c.Content,
			Score:      b.Score,
		})
	}
	return hits, nil
}

// DeleteByDocument removes all chunks of a document.
func (s *VectorStore) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentID)
	return nil
}

// Count returns the number of chunks stored for a document.
func (s *VectorStore) Count(documentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[documentID])
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}
