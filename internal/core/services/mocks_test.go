package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// It returns a fixed vector unless the text is listed in failOn.
type mockEmbeddingService struct {
	mu         sync.Mutex
	dimensions int
	vector     []float32
	failOn     map[string]error
	wrongDims  map[string]bool
	calls      []string
	embedFunc  func(ctx context.Context, text string) ([]float32, error)
}

func newMockEmbedding(dims int) *mockEmbeddingService {
	v := make([]float32, dims)
	for i := range v {
		v[i] = float32(i+1) / float32(dims)
	}
	return &mockEmbeddingService{dimensions: dims, vector: v}
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.embedFunc != nil {
		return m.embedFunc(ctx, text)
	}
	if err, ok := m.failOn[text]; ok {
		return nil, err
	}
	if m.wrongDims[text] {
		return make([]float32, m.dimensions+1), nil
	}
	out := make([]float32, len(m.vector))
	copy(out, m.vector)
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return m.dimensions
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embedding"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockLLMService implements driven.LLMService for testing.
// Responses are consumed in order; the last one repeats.
type mockLLMService struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
	opts      []driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)

	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	if i >= len(m.responses) {
		return m.responses[len(m.responses)-1], nil
	}
	return m.responses[i], nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

func (m *mockLLMService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockVectorStore implements driven.VectorStore for testing.
// MatchChunks returns hits verbatim, ignoring the filter.
type mockVectorStore struct {
	hits      []driven.VectorHit
	matchErr  error
	saveErr   error
	deleteErr error
	saved     []domain.Chunk
	deleted   []string
	lastK     int
}

func (m *mockVectorStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, chunks...)
	return nil
}

func (m *mockVectorStore) MatchChunks(_ context.Context, _ []float32, _ string, k int) ([]driven.VectorHit, error) {
	m.lastK = k
	if m.matchErr != nil {
		return nil, m.matchErr
	}
	return m.hits, nil
}

func (m *mockVectorStore) DeleteByDocument(_ context.Context, documentID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, documentID)
	return nil
}

func (m *mockVectorStore) Close() error {
	return nil
}

// mockDocStore implements driven.DocumentStore for testing.
type mockDocStore struct {
	docs    map[string]domain.Document
	saveErr error
	listErr error
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{docs: make(map[string]domain.Document)}
}

func (m *mockDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs[doc.ID] = *doc
	return nil
}

func (m *mockDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *mockDocStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDocStore) DeleteDocument(_ context.Context, id string) error {
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

// mockExtractor implements driven.TextExtractor for testing.
type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

func (m *mockExtractor) SupportedExtensions() []string {
	return []string{".txt"}
}

func (m *mockExtractor) Extract(_ context.Context, _ *domain.RawDocument) (string, error) {
	return m.text, m.err
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// failingChunker implements driven.Chunker and always fails.
type failingChunker struct{}

func (failingChunker) Name() string { return "failing" }

func (failingChunker) Process(_, _ string) ([]domain.Chunk, error) {
	return nil, domain.ErrConfiguration
}

func repeat(s string, n int) string {
	return strings.Repeat(s, n)
}
