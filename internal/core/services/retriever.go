package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
	"github.com/custodia-labs/jdrag/internal/logger"
)

// Retriever finds the chunks of one document that are closest to a question.
type Retriever struct {
	embeddings *EmbeddingOrchestrator
	store      driven.VectorStore
	cache      *lru.Cache[string, []float32]
	log        *zap.Logger
}

// NewRetriever creates a retriever. cacheSize bounds the number of question
// embeddings kept in memory; zero disables the cache.
func NewRetriever(
	embeddings *EmbeddingOrchestrator,
	store driven.VectorStore,
	cacheSize int,
	log *zap.Logger,
) *Retriever {
	r := &Retriever{
		embeddings: embeddings,
		store:      store,
		log:        logger.OrNop(log),
	}
	if cacheSize > 0 {
		r.cache, _ = lru.New[string, []float32](cacheSize)
	}
	return r
}

// Retrieve returns up to k chunks of documentID ordered by descending score.
// k <= 0 selects domain.DefaultTopK. No matches yields an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, question, documentID string, k int) ([]domain.RetrievedChunk, error) {
	question = strings.TrimSpace(question)
	documentID = strings.TrimSpace(documentID)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}
	if r.store == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDependency, domain.ErrVectorStoreUnavailable)
	}

	embedding, err := r.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	hits, err := r.store.MatchChunks(ctx, embedding, documentID, k)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: match chunks: %w", domain.ErrDependency, err)
	}

	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		if h.DocumentID != documentID {
			r.log.Warn("vector store returned a chunk outside the query scope",
				zap.String("document_id", documentID),
				zap.String("chunk_document_id", h.DocumentID),
				zap.String("chunk_id", h.ChunkID))
			continue
		}
		results = append(results, domain.RetrievedChunk{
			ChunkID:    h.ChunkID,
			DocumentID: h.DocumentID,
			Content:    h.Content,
			Score:      h.Score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}

	r.log.Debug("retrieved chunks",
		zap.String("document_id", documentID),
		zap.Int("requested", k),
		zap.Int("returned", len(results)))
	return results, nil
}

func (r *Retriever) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	if r.cache != nil {
		if v, ok := r.cache.Get(question); ok {
			return v, nil
		}
	}

	v, err := r.embeddings.EmbedOne(ctx, question)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: embed question: %w", domain.ErrDependency, err)
	}

	if r.cache != nil {
		r.cache.Add(question, v)
	}
	return v, nil
}
