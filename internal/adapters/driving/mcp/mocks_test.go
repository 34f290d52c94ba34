package mcp

import (
	"context"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer    string
	chunks    []domain.RetrievedChunk
	err       error
	lastQuery domain.Query
}

func (m *mockQueryService) Ask(_ context.Context, q domain.Query) (string, error) {
	m.lastQuery = q
	return m.answer, m.err
}

func (m *mockQueryService) Retrieve(_ context.Context, q domain.Query, _ int) ([]domain.RetrievedChunk, error) {
	m.lastQuery = q
	return m.chunks, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result  *domain.IngestResult
	err     error
	lastRaw *domain.RawDocument
}

func (m *mockIngestService) Ingest(_ context.Context, raw *domain.RawDocument) (*domain.IngestResult, error) {
	m.lastRaw = raw
	return m.result, m.err
}

// Verify interface compliance.
var (
	_ driving.QueryService    = (*mockQueryService)(nil)
	_ driving.DocumentService = (*mockDocumentService)(nil)
	_ driving.IngestService   = (*mockIngestService)(nil)
)

func validPorts() *Ports {
	return &Ports{
		Query:    &mockQueryService{},
		Document: &mockDocumentService{},
	}
}
