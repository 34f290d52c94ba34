package domain

// DefaultTopK is the number of chunks retrieved per question when the caller
// does not choose one.
const DefaultTopK = 5

// Query is a question scoped to a single document.
type Query struct {
	// Question is the natural-language question.
	Question string

	// DocumentID restricts retrieval to one document's chunks.
	DocumentID string
}

// RetrievedChunk is a single scored hit for a query.
type RetrievedChunk struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// DocumentID is the chunk's owning document. Always equals the query scope.
	DocumentID string

	// Content is the chunk's text.
	Content string

	// Score is the similarity to the question, higher is closer.
	Score float64
}

// IngestResult describes a completed ingestion.
type IngestResult struct {
	// DocumentID is the new document's identifier.
	DocumentID string

	// Role is the extracted job title, or "Unknown".
	Role string

	// Seniority is the extracted seniority level, or "Unknown".
	Seniority string

	// ChunksStored is how many chunks were embedded and persisted.
	ChunksStored int

	// ChunksSkipped is how many chunks were dropped after an embedding failure.
	ChunksSkipped int
}
