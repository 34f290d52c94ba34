// Package mcp provides an MCP (Model Context Protocol) server adapter for jdrag.
// It lets AI assistants ingest job descriptions and ask questions about them.
package mcp

import "errors"

// Errors returned when required ports are missing.
var (
	ErrMissingQueryService    = errors.New("mcp: query service is required")
	ErrMissingDocumentService = errors.New("mcp: document service is required")
)
