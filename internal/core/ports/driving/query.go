package driving

import (
	"context"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

// QueryService answers questions about a single ingested document.
type QueryService interface {
	// Ask retrieves context for the question and returns the generator's answer.
	Ask(ctx context.Context, query domain.Query) (string, error)

	// Retrieve returns the k chunks of the scoped document closest to the question.
	Retrieve(ctx context.Context, query domain.Query, k int) ([]domain.RetrievedChunk, error)
}
