package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

var testDocuments = []domain.Document{
	{
		ID:         "doc-1",
		FileName:   "backend.pdf",
		MIMEType:   "application/pdf",
		Role:       "Backend Engineer",
		Seniority:  "Senior",
		ChunkCount: 4,
		CreatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	},
	{
		ID:         "doc-2",
		FileName:   "analyst.txt",
		MIMEType:   "text/plain",
		Role:       "Data Analyst",
		Seniority:  "Junior",
		ChunkCount: 2,
		CreatedAt:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	},
}

type mockIngestService struct {
	calls []*domain.RawDocument
	err   error
}

func (m *mockIngestService) Ingest(_ context.Context, raw *domain.RawDocument) (*domain.IngestResult, error) {
	m.calls = append(m.calls, raw)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{
		DocumentID:   "doc-new",
		Role:         "Backend Engineer",
		Seniority:    "Senior",
		ChunksStored: 3,
	}, nil
}

type mockQueryService struct {
	lastQuery domain.Query
	lastK     int
	answer    string
	chunks    []domain.RetrievedChunk
	err       error
}

func (m *mockQueryService) Ask(_ context.Context, q domain.Query) (string, error) {
	m.lastQuery = q
	return m.answer, m.err
}

func (m *mockQueryService) Retrieve(_ context.Context, q domain.Query, k int) ([]domain.RetrievedChunk, error) {
	m.lastQuery = q
	m.lastK = k
	return m.chunks, m.err
}

type mockDocumentService struct {
	deleted []string
	err     error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testDocuments, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range testDocuments {
		if testDocuments[i].ID == id {
			doc := testDocuments[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockSettingsService struct {
	settings domain.AppSettings
	setCalls [][2]string
	setErr   error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	m.setCalls = append(m.setCalls, [2]string{key, value})
	return m.setErr
}

func (m *mockSettingsService) Validate() error                 { return nil }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error        { return nil }

type testServices struct {
	ingest   *mockIngestService
	query    *mockQueryService
	document *mockDocumentService
	settings *mockSettingsService
}

// setupTestServices wires mocks into the package and returns them with a
// cleanup that restores the previous wiring.
func setupTestServices() (*testServices, func()) {
	prev := Services{
		Ingest:     ingestService,
		Query:      queryService,
		Document:   documentService,
		Settings:   settingsService,
		Extensions: supportedExtensions,
	}

	ts := &testServices{
		ingest:   &mockIngestService{},
		query:    &mockQueryService{answer: "The role is fully remote."},
		document: &mockDocumentService{},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	SetServices(Services{
		Ingest:     ts.ingest,
		Query:      ts.query,
		Document:   ts.document,
		Settings:   ts.settings,
		Extensions: []string{".txt", ".md"},
	})

	return ts, func() { SetServices(prev) }
}
