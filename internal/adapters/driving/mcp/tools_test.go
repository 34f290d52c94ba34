package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the answer", func(t *testing.T) {
		query := &mockQueryService{answer: "Go and Postgres."}
		ports := validPorts()
		ports.Query = query
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{DocumentID: "doc-1", Question: "What stack?"})

		require.NoError(t, err)
		assert.Equal(t, "Go and Postgres.", output.Answer)
		assert.Equal(t, domain.Query{Question: "What stack?", DocumentID: "doc-1"}, query.lastQuery)
	})

	t.Run("propagates query errors", func(t *testing.T) {
		ports := validPorts()
		ports.Query = &mockQueryService{err: domain.ErrInvalidInput}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the file and guesses the mime type", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "backend.txt")
		require.NoError(t, os.WriteFile(path, []byte("Senior Backend Engineer"), 0o600))

		ingest := &mockIngestService{result: &domain.IngestResult{
			DocumentID:   "doc-1",
			Role:         "Backend Engineer",
			Seniority:    "Senior",
			ChunksStored: 1,
		}}
		ports := validPorts()
		ports.Ingest = ingest
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleIngest(ctx, nil, IngestInput{Path: path})

		require.NoError(t, err)
		assert.Equal(t, "doc-1", output.DocumentID)
		assert.Equal(t, "Backend Engineer", output.Role)
		assert.Equal(t, "Senior", output.Seniority)
		assert.Equal(t, 1, output.ChunksStored)
		require.NotNil(t, ingest.lastRaw)
		assert.Equal(t, "backend.txt", ingest.lastRaw.FileName)
		assert.Contains(t, ingest.lastRaw.MIMEType, "text/plain")
		assert.Equal(t, []byte("Senior Backend Engineer"), ingest.lastRaw.Content)
	})

	t.Run("empty path is invalid input", func(t *testing.T) {
		ports := validPorts()
		ports.Ingest = &mockIngestService{}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing file is invalid input", func(t *testing.T) {
		ports := validPorts()
		ports.Ingest = &mockIngestService{}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{Path: filepath.Join(t.TempDir(), "nope.pdf")})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleList(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("returns documents", func(t *testing.T) {
		ports := validPorts()
		ports.Document = &mockDocumentService{documents: []domain.Document{
			{ID: "doc-2", FileName: "b.pdf", Role: "SRE", Seniority: "Mid", ChunkCount: 4, CreatedAt: created},
			{ID: "doc-1", FileName: "a.txt", Role: "Unknown", Seniority: "Unknown", CreatedAt: created},
		}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleList(ctx, nil, ListInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "doc-2", output.Documents[0].ID)
		assert.Equal(t, "SRE", output.Documents[0].Role)
		assert.Equal(t, 4, output.Documents[0].ChunkCount)
		assert.Equal(t, "2026-03-01T12:00:00Z", output.Documents[0].CreatedAt)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		ports := validPorts()
		ports.Document = &mockDocumentService{err: errors.New("db down")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleList(ctx, nil, ListInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})
}

func TestServer_handleGet(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the document", func(t *testing.T) {
		ports := validPorts()
		ports.Document = &mockDocumentService{document: &domain.Document{ID: "doc-1", Role: "Data Engineer"}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleGet(ctx, nil, GetInput{DocumentID: "doc-1"})

		require.NoError(t, err)
		assert.Equal(t, "doc-1", output.ID)
		assert.Equal(t, "Data Engineer", output.Role)
	})

	t.Run("not found", func(t *testing.T) {
		ports := validPorts()
		ports.Document = &mockDocumentService{err: domain.ErrNotFound}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleGet(ctx, nil, GetInput{DocumentID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
