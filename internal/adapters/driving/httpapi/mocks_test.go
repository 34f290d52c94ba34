package httpapi

import (
	"context"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

type mockIngestService struct {
	result  *domain.IngestResult
	err     error
	lastRaw *domain.RawDocument
}

func (m *mockIngestService) Ingest(_ context.Context, raw *domain.RawDocument) (*domain.IngestResult, error) {
	m.lastRaw = raw
	return m.result, m.err
}

type mockQueryService struct {
	answer    string
	err       error
	lastQuery domain.Query
}

func (m *mockQueryService) Ask(_ context.Context, q domain.Query) (string, error) {
	m.lastQuery = q
	return m.answer, m.err
}

func (m *mockQueryService) Retrieve(_ context.Context, q domain.Query, _ int) ([]domain.RetrievedChunk, error) {
	m.lastQuery = q
	return nil, m.err
}

type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
	deleted   string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}
