package domain

import "time"

// Document is an ingested job description.
// It is created once per ingestion and never mutated afterwards.
type Document struct {
	// ID is the unique identifier (UUID).
	ID string

	// FileName is the name the document was uploaded under.
	FileName string

	// MIMEType is the declared media type of the upload.
	MIMEType string

	// Role is the job title extracted from the text, or "Unknown".
	Role string

	// Seniority is the seniority level extracted from the text, or "Unknown".
	Seniority string

	// ChunkCount is the number of chunks stored for the document.
	ChunkCount int

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk is an embedded window of a document's text.
type Chunk struct {
	// ID is the unique identifier (UUID).
	ID string

	// DocumentID references the owning document.
	DocumentID string

	// Content is the window's text.
	Content string

	// Position is the window's index within the document (0-based).
	Position int

	// Embedding is the vector representation. Its length always equals
	// the embedding provider's dimension once persisted.
	Embedding []float32
}
