// Package domain defines the core business entities for jdrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested job description with extracted metadata
//   - Chunk: An embedded window of a document's text
//   - RawDocument: Uploaded bytes awaiting text extraction
//   - RetrievedChunk: A scored chunk returned for a question
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
