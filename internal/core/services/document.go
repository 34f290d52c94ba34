package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
	"github.com/custodia-labs/jdrag/internal/core/ports/driving"
	"github.com/custodia-labs/jdrag/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested documents.
type DocumentService struct {
	docStore    driven.DocumentStore
	vectorStore driven.VectorStore
	log         *zap.Logger
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore, vectorStore driven.VectorStore, log *zap.Logger) *DocumentService {
	return &DocumentService{
		docStore:    docStore,
		vectorStore: vectorStore,
		log:         logger.OrNop(log),
	}
}

// List returns all documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", domain.ErrDependency, err)
	}
	return docs, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get document: %w", domain.ErrDependency, err)
	}
	return doc, nil
}

// Delete removes a document's chunks, then the document itself.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if _, err := s.Get(ctx, documentID); err != nil {
		return err
	}

	if err := s.vectorStore.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("%w: delete chunks: %w", domain.ErrDependency, err)
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("%w: delete document: %w", domain.ErrDependency, err)
	}

	s.log.Info("document deleted", zap.String("document_id", documentID))
	return nil
}
