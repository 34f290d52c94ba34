package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driving"
	"github.com/custodia-labs/jdrag/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions about one document.
type QueryService struct {
	retriever *Retriever
	composer  *AnswerComposer
	topK      int
	log       *zap.Logger
}

// NewQueryService creates a query service. topK <= 0 selects domain.DefaultTopK.
func NewQueryService(retriever *Retriever, composer *AnswerComposer, topK int, log *zap.Logger) *QueryService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &QueryService{
		retriever: retriever,
		composer:  composer,
		topK:      topK,
		log:       logger.OrNop(log),
	}
}

// Ask retrieves context for the question and composes an answer.
func (s *QueryService) Ask(ctx context.Context, query domain.Query) (string, error) {
	chunks, err := s.retriever.Retrieve(ctx, query.Question, query.DocumentID, s.topK)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		s.log.Info("no chunks for document", zap.String("document_id", query.DocumentID))
	}
	return s.composer.Compose(ctx, query.Question, chunks)
}

// Retrieve exposes retrieval on its own, mainly for inspection.
func (s *QueryService) Retrieve(ctx context.Context, query domain.Query, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = s.topK
	}
	return s.retriever.Retrieve(ctx, query.Question, query.DocumentID, k)
}
