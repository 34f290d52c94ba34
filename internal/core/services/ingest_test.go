package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jdrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
	"github.com/custodia-labs/jdrag/internal/postprocessors/chunker"
)

type ingestFixture struct {
	extractor *mockExtractor
	embedder  *mockEmbeddingService
	llm       *mockLLMService
	docs      *mockDocStore
	vectors   *mockVectorStore
	svc       *IngestService
}

func newIngestFixture(t *testing.T, text string) *ingestFixture {
	t.Helper()
	ch, err := chunker.New()
	require.NoError(t, err)

	f := &ingestFixture{
		extractor: &mockExtractor{text: text},
		embedder:  newMockEmbedding(4),
		llm:       &mockLLMService{responses: []string{`{"role":"Platform Engineer","seniority":"Staff"}`}},
		docs:      newMockDocStore(),
		vectors:   &mockVectorStore{},
	}
	f.svc = NewIngestService(
		f.extractor,
		ch,
		NewMetadataExtractor(f.llm, nil, fastPolicy(2), nil),
		NewEmbeddingOrchestrator(f.embedder, nil),
		f.docs,
		f.vectors,
		nil,
	)
	return f
}

func rawUpload(content string) *domain.RawDocument {
	return &domain.RawDocument{FileName: "jd.txt", MIMEType: "text/plain", Content: []byte(content)}
}

func TestIngestService_Ingest(t *testing.T) {
	text := strings.Repeat("A", 2500)
	f := newIngestFixture(t, text)

	result, err := f.svc.Ingest(context.Background(), rawUpload(text))
	require.NoError(t, err)

	assert.NotEmpty(t, result.DocumentID)
	assert.Equal(t, "Platform Engineer", result.Role)
	assert.Equal(t, "Staff", result.Seniority)
	assert.Equal(t, 4, result.ChunksStored)
	assert.Equal(t, 0, result.ChunksSkipped)

	doc, ok := f.docs.docs[result.DocumentID]
	require.True(t, ok)
	assert.Equal(t, "jd.txt", doc.FileName)
	assert.Equal(t, 4, doc.ChunkCount)
	assert.False(t, doc.CreatedAt.IsZero())

	require.Len(t, f.vectors.saved, 4)
	for i, c := range f.vectors.saved {
		assert.Equal(t, result.DocumentID, c.DocumentID)
		assert.Equal(t, i, c.Position)
		assert.Len(t, c.Embedding, 4)
	}
	assert.Len(t, f.vectors.saved[3].Content, 100)
}

func TestIngestService_Ingest_SkipsFailedChunks(t *testing.T) {
	text := strings.Repeat("B", 1000) + strings.Repeat("C", 600)
	f := newIngestFixture(t, text)
	// Two windows: [0,1000) and [800,1600).
	f.embedder.failOn = map[string]error{text[800:]: errors.New("boom")}

	result, err := f.svc.Ingest(context.Background(), rawUpload(text))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunksStored)
	assert.Equal(t, 1, result.ChunksSkipped)
	assert.Len(t, f.vectors.saved, 1)
	assert.Equal(t, 1, f.docs.docs[result.DocumentID].ChunkCount)
}

func TestIngestService_Ingest_AllChunksSkipped(t *testing.T) {
	f := newIngestFixture(t, "short job description")
	f.embedder.embedFunc = func(_ context.Context, _ string) ([]float32, error) {
		return nil, errors.New("unavailable")
	}

	result, err := f.svc.Ingest(context.Background(), rawUpload("short job description"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.ChunksStored)
	assert.Equal(t, 1, result.ChunksSkipped)
	assert.Empty(t, f.vectors.saved)
	assert.Contains(t, f.docs.docs, result.DocumentID)
}

func TestIngestService_Ingest_EmptyExtraction(t *testing.T) {
	f := newIngestFixture(t, "   \n\t ")

	_, err := f.svc.Ingest(context.Background(), rawUpload("binary"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.True(t, domain.IsClientError(err))
	assert.Empty(t, f.docs.docs)
	assert.Empty(t, f.vectors.saved)
	assert.Equal(t, 0, f.llm.callCount())
	assert.Equal(t, 0, f.embedder.callCount())
}

func TestIngestService_Ingest_ExtractorError(t *testing.T) {
	f := newIngestFixture(t, "")
	f.extractor.err = errors.New("corrupt pdf")

	_, err := f.svc.Ingest(context.Background(), rawUpload("%PDF"))
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Empty(t, f.docs.docs)
}

func TestIngestService_Ingest_ExtractorDependencyError(t *testing.T) {
	f := newIngestFixture(t, "")
	f.extractor.err = fmt.Errorf("%w: pdftotext not found in PATH", domain.ErrDependency)

	_, err := f.svc.Ingest(context.Background(), rawUpload("%PDF"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.NotErrorIs(t, err, domain.ErrExtraction)
	assert.False(t, domain.IsClientError(err))
	assert.Empty(t, f.docs.docs)
}

func TestIngestService_Ingest_UnsupportedType(t *testing.T) {
	f := newIngestFixture(t, "")
	f.extractor.err = domain.ErrUnsupportedType

	_, err := f.svc.Ingest(context.Background(), rawUpload("x"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.True(t, domain.IsClientError(err))
}

func TestIngestService_Ingest_MissingUpload(t *testing.T) {
	f := newIngestFixture(t, "text")

	_, err := f.svc.Ingest(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Ingest(context.Background(), &domain.RawDocument{FileName: "a.txt"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Ingest(context.Background(), &domain.RawDocument{Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestService_Ingest_MetadataFailureStillIngests(t *testing.T) {
	f := newIngestFixture(t, "job text")
	f.llm.responses = []string{"not json"}

	result, err := f.svc.Ingest(context.Background(), rawUpload("job text"))
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownValue, result.Role)
	assert.Equal(t, domain.UnknownValue, result.Seniority)
	assert.Equal(t, 1, result.ChunksStored)
}

func TestIngestService_Ingest_Cancelled(t *testing.T) {
	f := newIngestFixture(t, "job text")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Ingest(ctx, rawUpload("job text"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.docs.docs)
	assert.Empty(t, f.vectors.saved)
}

func TestIngestService_Ingest_ChunkerError(t *testing.T) {
	f := newIngestFixture(t, "job text")
	f.svc.chunker = failingChunker{}

	_, err := f.svc.Ingest(context.Background(), rawUpload("job text"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Empty(t, f.docs.docs)
}

func TestIngestService_Ingest_StoreFailures(t *testing.T) {
	f := newIngestFixture(t, "job text")
	f.docs.saveErr = errors.New("disk full")

	_, err := f.svc.Ingest(context.Background(), rawUpload("job text"))
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.Empty(t, f.vectors.saved)

	f = newIngestFixture(t, "job text")
	f.vectors.saveErr = errors.New("index missing")

	_, err = f.svc.Ingest(context.Background(), rawUpload("job text"))
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.False(t, domain.IsClientError(err))
}

func TestIngestService_EndToEnd_MemoryStores(t *testing.T) {
	text := "Senior Go engineer. You will build ingestion pipelines and review code daily."
	ch, err := chunker.New(chunker.WithChunkSize(40), chunker.WithOverlap(10))
	require.NoError(t, err)

	embedder := newMockEmbedding(3)
	llm := &mockLLMService{responses: []string{
		`{"role":"Go Engineer","seniority":"Senior"}`,
		"- Build pipelines\n- Review code",
	}}
	docs := memory.NewDocumentStore()
	vectors := memory.NewVectorStore()
	embeddings := NewEmbeddingOrchestrator(embedder, nil)

	ingest := NewIngestService(&mockExtractor{text: text}, ch,
		NewMetadataExtractor(llm, nil, fastPolicy(1), nil), embeddings, docs, vectors, nil)
	result, err := ingest.Ingest(context.Background(), rawUpload(text))
	require.NoError(t, err)
	assert.Equal(t, vectors.Count(result.DocumentID), result.ChunksStored)

	query := NewQueryService(NewRetriever(embeddings, vectors, 16, nil), NewAnswerComposer(llm, nil, nil), 2, nil)
	answer, err := query.Ask(context.Background(), domain.Query{Question: "Daily tasks?", DocumentID: result.DocumentID})
	require.NoError(t, err)
	assert.Equal(t, "- Build pipelines\n- Review code", answer)

	documents := NewDocumentService(docs, vectors, nil)
	require.NoError(t, documents.Delete(context.Background(), result.DocumentID))
	assert.Equal(t, 0, vectors.Count(result.DocumentID))

	answer, err = query.Ask(context.Background(), domain.Query{Question: "Daily tasks?", DocumentID: result.DocumentID})
	require.NoError(t, err)
	assert.Equal(t, NoContextAnswer, answer)
}

var _ driven.Chunker = failingChunker{}
