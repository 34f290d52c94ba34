package driven

import "github.com/custodia-labs/jdrag/internal/core/domain"

// Chunker splits extracted text into the windows that get embedded.
type Chunker interface {
	// Name returns the processor name for logging.
	Name() string

	// Process returns chunks for documentID in document order, without embeddings.
	// An invalid window configuration returns an error wrapping domain.ErrConfiguration.
	Process(documentID, text string) ([]domain.Chunk, error)
}
