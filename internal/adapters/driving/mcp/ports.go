package mcp

import (
	"github.com/custodia-labs/jdrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions about one document.
	Query driving.QueryService

	// Document lists and reads ingested documents.
	Document driving.DocumentService

	// Ingest adds new documents. Optional; without it ingest_file is not offered.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
