package driving

import (
	"context"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Delete removes a document and all of its chunks.
	Delete(ctx context.Context, documentID string) error
}
