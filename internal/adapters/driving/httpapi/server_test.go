package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	ingest   *mockIngestService
	query    *mockQueryService
	document *mockDocumentService
	server   *Server
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		ingest:   &mockIngestService{},
		query:    &mockQueryService{},
		document: &mockDocumentService{},
	}
	s, err := NewServer(Services{Ingest: f.ingest, Query: f.query, Document: f.document}, nil, opts...)
	require.NoError(t, err)
	f.server = s
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func multipartUpload(t *testing.T, name, contentType string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestNewServer_RequiresServices(t *testing.T) {
	_, err := NewServer(Services{}, nil)
	assert.ErrorIs(t, err, ErrMissingService)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	w := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpload(t *testing.T) {
	t.Run("ingests the file", func(t *testing.T) {
		f := newFixture(t)
		f.ingest.result = &domain.IngestResult{DocumentID: "doc-1", Role: "Backend Engineer", Seniority: "Senior"}

		w := f.do(multipartUpload(t, "jd.txt", "text/plain", []byte("Senior Backend Engineer")))

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "doc-1", body["documentId"])
		assert.Equal(t, "doc-1", body["jdId"])
		assert.Equal(t, "Backend Engineer", body["role"])
		assert.Equal(t, "Senior", body["seniority"])

		require.NotNil(t, f.ingest.lastRaw)
		assert.Equal(t, "jd.txt", f.ingest.lastRaw.FileName)
		assert.Equal(t, "text/plain", f.ingest.lastRaw.MIMEType)
		assert.Equal(t, []byte("Senior Backend Engineer"), f.ingest.lastRaw.Content)
	})

	t.Run("missing file is a bad request", func(t *testing.T) {
		f := newFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

		w := f.do(req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w)["error"], "file is required")
		assert.Nil(t, f.ingest.lastRaw)
	})

	t.Run("extraction failure is a bad request", func(t *testing.T) {
		f := newFixture(t)
		f.ingest.err = fmt.Errorf("%w: no text", domain.ErrExtraction)

		w := f.do(multipartUpload(t, "jd.pdf", "application/pdf", []byte("%PDF")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure is a server error", func(t *testing.T) {
		f := newFixture(t)
		f.ingest.err = fmt.Errorf("%w: disk full", domain.ErrDependency)

		w := f.do(multipartUpload(t, "jd.txt", "text/plain", []byte("x")))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, decode(t, w)["error"], "disk full")
	})

	t.Run("oversized file is rejected", func(t *testing.T) {
		f := newFixture(t, WithMaxUploadBytes(4))

		w := f.do(multipartUpload(t, "jd.txt", "text/plain", []byte("too large")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, f.ingest.lastRaw)
	})
}

func TestChat(t *testing.T) {
	t.Run("answers with documentId", func(t *testing.T) {
		f := newFixture(t)
		f.query.answer = "Go and Kubernetes."

		req := httptest.NewRequest(http.MethodPost, "/api/chat",
			strings.NewReader(`{"question":"What stack?","documentId":"doc-1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Go and Kubernetes.", decode(t, w)["answer"])
		assert.Equal(t, domain.Query{Question: "What stack?", DocumentID: "doc-1"}, f.query.lastQuery)
	})

	t.Run("accepts jdId alias", func(t *testing.T) {
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/api/chat",
			strings.NewReader(`{"question":"Remote?","jdId":"doc-9"}`))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "doc-9", f.query.lastQuery.DocumentID)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid input from the service is a bad request", func(t *testing.T) {
		f := newFixture(t)
		f.query.err = fmt.Errorf("%w: question is required", domain.ErrInvalidInput)

		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"documentId":"doc-1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w)["error"], "question is required")
	})

	t.Run("provider failure is a server error", func(t *testing.T) {
		f := newFixture(t)
		f.query.err = fmt.Errorf("%w: llm down", domain.ErrDependency)

		req := httptest.NewRequest(http.MethodPost, "/api/chat",
			strings.NewReader(`{"question":"q","documentId":"doc-1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestDocuments(t *testing.T) {
	t.Run("lists documents", func(t *testing.T) {
		f := newFixture(t)
		f.document.documents = []domain.Document{{ID: "doc-2", Role: "SRE"}, {ID: "doc-1", Role: "QA"}}

		w := f.do(httptest.NewRequest(http.MethodGet, "/api/documents", nil))

		require.Equal(t, http.StatusOK, w.Code)
		docs, ok := decode(t, w)["documents"].([]any)
		require.True(t, ok)
		require.Len(t, docs, 2)
		assert.Equal(t, "doc-2", docs[0].(map[string]any)["id"])
	})

	t.Run("gets a document", func(t *testing.T) {
		f := newFixture(t)
		f.document.document = &domain.Document{ID: "doc-1", Seniority: "Staff"}

		w := f.do(httptest.NewRequest(http.MethodGet, "/api/documents/doc-1", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Staff", decode(t, w)["seniority"])
	})

	t.Run("unknown document is not found", func(t *testing.T) {
		f := newFixture(t)
		f.document.err = domain.ErrNotFound

		w := f.do(httptest.NewRequest(http.MethodGet, "/api/documents/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("deletes a document", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(httptest.NewRequest(http.MethodDelete, "/api/documents/doc-1", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "doc-1", f.document.deleted)
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrUnsupportedType))
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("get: %w", domain.ErrNotFound)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.ErrConfiguration))
}
