package driving

import (
	"context"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

// IngestService turns an uploaded job description into a stored document
// with embedded chunks.
type IngestService interface {
	// Ingest extracts, chunks, embeds and persists the document.
	// Errors satisfy domain.IsClientError for missing or unreadable input.
	Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.IngestResult, error)
}
