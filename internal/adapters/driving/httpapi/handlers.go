package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

type uploadResponse struct {
	DocumentID string `json:"documentId"`
	JDID       string `json:"jdId"`
	Role       string `json:"role"`
	Seniority  string `json:"seniority"`
}

type chatRequest struct {
	Question   string `json:"question"`
	DocumentID string `json:"documentId"`
	JDID       string `json:"jdId"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type documentResponse struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	MIMEType   string    `json:"mimeType,omitempty"`
	Role       string    `json:"role"`
	Seniority  string    `json:"seniority"`
	ChunkCount int       `json:"chunkCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toDocumentResponse(d *domain.Document) documentResponse {
	return documentResponse{
		ID:         d.ID,
		FileName:   d.FileName,
		MIMEType:   d.MIMEType,
		Role:       d.Role,
		Seniority:  d.Seniority,
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt,
	}
}

// handleUpload ingests the multipart "file" field.
func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes+(1<<20))

	fh, err := c.FormFile("file")
	if err != nil {
		s.handleError(c, fmt.Errorf("%w: file is required", domain.ErrInvalidInput))
		return
	}
	if fh.Size > s.maxUploadBytes {
		s.handleError(c, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidInput, s.maxUploadBytes))
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.handleError(c, fmt.Errorf("%w: opening upload: %w", domain.ErrInvalidInput, err))
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		s.handleError(c, fmt.Errorf("%w: reading upload: %w", domain.ErrInvalidInput, err))
		return
	}

	res, err := s.services.Ingest.Ingest(c.Request.Context(), &domain.RawDocument{
		FileName: fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Content:  content,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		DocumentID: res.DocumentID,
		JDID:       res.DocumentID,
		Role:       res.Role,
		Seniority:  res.Seniority,
	})
}

// handleChat answers a question about one document. jdId is accepted in place of documentId.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}

	docID := req.DocumentID
	if docID == "" {
		docID = req.JDID
	}

	answer, err := s.services.Query.Ask(c.Request.Context(), domain.Query{
		Question:   req.Question,
		DocumentID: docID,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, chatResponse{Answer: answer})
}

func (s *Server) handleListDocuments(c *gin.Context) {
	docs, err := s.services.Document.List(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	out := make([]documentResponse, len(docs))
	for i := range docs {
		out[i] = toDocumentResponse(&docs[i])
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

func (s *Server) handleGetDocument(c *gin.Context) {
	doc, err := s.services.Document.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResponse(doc))
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	if err := s.services.Document.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleError maps domain errors to a status code and an {error} body.
func (s *Server) handleError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case domain.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
