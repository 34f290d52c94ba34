package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
	"github.com/custodia-labs/jdrag/internal/logger"
)

// EmbeddedChunk is the outcome of embedding one chunk.
type EmbeddedChunk struct {
	// Chunk carries the embedding when Skipped is false.
	Chunk domain.Chunk

	// Skipped is true when the chunk must not be persisted.
	Skipped bool

	// Err explains why the chunk was skipped.
	Err error
}

// EmbeddingOrchestrator wraps an EmbeddingService, validates vector shape
// and isolates failures to the chunk that caused them.
type EmbeddingOrchestrator struct {
	embedder driven.EmbeddingService
	log      *zap.Logger
	workers  int
	limiter  *rate.Limiter
}

// OrchestratorOption configures the orchestrator.
type OrchestratorOption func(*EmbeddingOrchestrator)

// WithWorkers sets how many chunks are embedded concurrently.
// Values below 2 keep ingestion sequential.
func WithWorkers(n int) OrchestratorOption {
	return func(o *EmbeddingOrchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithRequestsPerMinute spaces provider calls to stay under a per-minute quota.
// Zero disables throttling.
func WithRequestsPerMinute(n int) OrchestratorOption {
	return func(o *EmbeddingOrchestrator) {
		if n > 0 {
			o.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
		} else {
			o.limiter = nil
		}
	}
}

// NewEmbeddingOrchestrator creates an orchestrator around embedder.
func NewEmbeddingOrchestrator(
	embedder driven.EmbeddingService,
	log *zap.Logger,
	opts ...OrchestratorOption,
) *EmbeddingOrchestrator {
	o := &EmbeddingOrchestrator{
		embedder: embedder,
		log:      logger.OrNop(log),
		workers:  1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Dimensions returns the vector length every accepted embedding has.
func (o *EmbeddingOrchestrator) Dimensions() int {
	if o.embedder == nil {
		return 0
	}
	return o.embedder.Dimensions()
}

// ModelName returns the underlying embedding model.
func (o *EmbeddingOrchestrator) ModelName() string {
	if o.embedder == nil {
		return ""
	}
	return o.embedder.ModelName()
}

// EmbedOne embeds a single text with one provider call.
//
// Provider failures and vectors of the wrong length are returned as errors
// wrapping domain.ErrEmbedding. A cancelled context is returned as ctx.Err(),
// and a rate limit wait that would outlast the deadline as an error wrapping
// context.DeadlineExceeded.
func (o *EmbeddingOrchestrator) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if o.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrEmbeddingUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// Wait gives up early when the deadline would pass first.
			return nil, fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
	}

	vec, err := o.embedder.Embed(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}

	if want := o.embedder.Dimensions(); len(vec) != want {
		return nil, fmt.Errorf("%w: %w: got %d values, want %d",
			domain.ErrEmbedding, domain.ErrDimensionMismatch, len(vec), want)
	}
	return vec, nil
}

// EmbedBatch embeds every chunk, preserving input order.
//
// A chunk whose embedding fails or has the wrong dimension is logged and
// returned with Skipped set; the remaining chunks are still processed.
// The error is non-nil only when ctx ends, in which case no results are
// returned.
func (o *EmbeddingOrchestrator) EmbedBatch(ctx context.Context, chunks []domain.Chunk) ([]EmbeddedChunk, error) {
	results := make([]EmbeddedChunk, len(chunks))

	embedAt := func(ctx context.Context, i int) error {
		c := chunks[i]
		vec, err := o.EmbedOne(ctx, c.Content)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if cancelled(err) {
				return err
			}
			o.log.Warn("skipping chunk",
				zap.String("document_id", c.DocumentID),
				zap.String("chunk_id", c.ID),
				zap.Int("position", c.Position),
				zap.Error(err))
			results[i] = EmbeddedChunk{Chunk: c, Skipped: true, Err: err}
			return nil
		}
		c.Embedding = vec
		results[i] = EmbeddedChunk{Chunk: c}
		return nil
	}

	if o.workers <= 1 {
		for i := range chunks {
			if err := embedAt(ctx, i); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range chunks {
		g.Go(func() error {
			return embedAt(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Partition splits batch results into chunks to persist and the skip count.
func Partition(results []EmbeddedChunk) (stored []domain.Chunk, skipped int) {
	stored = make([]domain.Chunk, 0, len(results))
	for _, r := range results {
		if r.Skipped {
			skipped++
			continue
		}
		stored = append(stored, r.Chunk)
	}
	return stored, skipped
}

// cancelled reports a context error that did not come from the provider.
func cancelled(err error) bool {
	if errors.Is(err, domain.ErrEmbedding) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
