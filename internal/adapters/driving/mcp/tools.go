package mcp

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

// AskInput is the input schema for the ask_job_description tool.
type AskInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of the ingested job description"`
	Question   string `json:"question" jsonschema:"question to answer from the job description"`
}

// AskOutput is the output schema for the ask_job_description tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// IngestInput is the input schema for the ingest_file tool.
type IngestInput struct {
	Path     string `json:"path" jsonschema:"absolute path of a pdf, docx, txt, md or html file"`
	MIMEType string `json:"mime_type,omitempty" jsonschema:"media type; guessed from the extension when empty"`
}

// IngestOutput is the output schema for the ingest_file tool.
type IngestOutput struct {
	DocumentID    string `json:"document_id"`
	Role          string `json:"role"`
	Seniority     string `json:"seniority"`
	ChunksStored  int    `json:"chunks_stored"`
	ChunksSkipped int    `json:"chunks_skipped"`
}

// ListInput is the (empty) input schema for list_job_descriptions.
type ListInput struct{}

// ListOutput is the output schema for list_job_descriptions.
type ListOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// GetInput is the input schema for get_job_description.
type GetInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of the ingested job description"`
}

// DocumentOutput describes one ingested job description.
type DocumentOutput struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	MIMEType   string `json:"mime_type,omitempty"`
	Role       string `json:"role"`
	Seniority  string `json:"seniority"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
}

func toDocumentOutput(d *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:         d.ID,
		FileName:   d.FileName,
		MIMEType:   d.MIMEType,
		Role:       d.Role,
		Seniority:  d.Seniority,
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
	}
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_job_description",
		Description: "Answer a question using only the content of one ingested job description",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_job_descriptions",
		Description: "List ingested job descriptions, newest first",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_job_description",
		Description: "Show the stored record of one job description",
	}, s.handleGet)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_file",
			Description: "Ingest a job description file from the local filesystem",
		}, s.handleIngest)
	}
}

// handleAsk handles the ask_job_description tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Query.Ask(ctx, domain.Query{
		Question:   input.Question,
		DocumentID: input.DocumentID,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer}, nil
}

// handleIngest handles the ingest_file tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if input.Path == "" {
		return nil, IngestOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}

	content, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("%w: reading %s: %w", domain.ErrInvalidInput, input.Path, err)
	}

	mimeType := input.MIMEType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(input.Path))
	}

	res, err := s.ports.Ingest.Ingest(ctx, &domain.RawDocument{
		FileName: filepath.Base(input.Path),
		MIMEType: mimeType,
		Content:  content,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		DocumentID:    res.DocumentID,
		Role:          res.Role,
		Seniority:     res.Seniority,
		ChunksStored:  res.ChunksStored,
		ChunksSkipped: res.ChunksSkipped,
	}, nil
}

// handleList handles the list_job_descriptions tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(&docs[i])
	}
	return nil, output, nil
}

// handleGet handles the get_job_description tool invocation.
func (s *Server) handleGet(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	doc, err := s.ports.Document.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, toDocumentOutput(doc), nil
}
