package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a missing or malformed request field
	// (file, question, document id).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor handles the document kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrExtraction indicates text extraction failed or produced no text.
	ErrExtraction = errors.New("failed to extract text from file")

	// ErrConfiguration indicates invalid pipeline settings, such as a chunk
	// overlap that is not smaller than the chunk size.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrDependency indicates a collaborator (store or provider) call failed
	// in a way that fails the whole request.
	ErrDependency = errors.New("dependency failure")

	// ErrEmbedding indicates a single embedding call failed.
	// During ingestion the affected chunk is skipped.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch indicates the provider returned a vector of the
	// wrong length. It is always reported together with ErrEmbedding.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrMetadataParse indicates generator output could not be decoded into
	// job metadata. It never leaves the metadata extractor.
	ErrMetadataParse = errors.New("metadata parse failed")

	// ErrLLMUnavailable indicates the text generator is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not configured.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")
)

// IsClientError reports whether err was caused by the caller's input rather
// than by the system or one of its collaborators.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrExtraction) ||
		errors.Is(err, ErrUnsupportedType)
}
