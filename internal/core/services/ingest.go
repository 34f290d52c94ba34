package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
	"github.com/custodia-labs/jdrag/internal/core/ports/driving"
	"github.com/custodia-labs/jdrag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the ingestion pipeline for one uploaded document.
type IngestService struct {
	extractor   driven.TextExtractor
	chunker     driven.Chunker
	metadata    *MetadataExtractor
	embeddings  *EmbeddingOrchestrator
	docStore    driven.DocumentStore
	vectorStore driven.VectorStore
	log         *zap.Logger
}

// NewIngestService creates an ingestion service.
func NewIngestService(
	extractor driven.TextExtractor,
	chunker driven.Chunker,
	metadata *MetadataExtractor,
	embeddings *EmbeddingOrchestrator,
	docStore driven.DocumentStore,
	vectorStore driven.VectorStore,
	log *zap.Logger,
) *IngestService {
	return &IngestService{
		extractor:   extractor,
		chunker:     chunker,
		metadata:    metadata,
		embeddings:  embeddings,
		docStore:    docStore,
		vectorStore: vectorStore,
		log:         logger.OrNop(log),
	}
}

// Ingest extracts text from raw, chunks and embeds it, and persists the
// document with every chunk that embedded successfully.
//
// Nothing is written when input is missing, extraction fails or yields no
// text, or ctx ends before persistence. Chunks whose embedding fails are
// skipped; the call still succeeds if all of them are.
func (s *IngestService) Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.IngestResult, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, fmt.Errorf("%w: no file uploaded", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(raw.FileName) == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}

	log := s.log.With(zap.String("file_name", raw.FileName), zap.String("mime_type", raw.MIMEType))

	text, err := s.extractor.Extract(ctx, raw)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, domain.ErrExtraction) || errors.Is(err, domain.ErrDependency) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrExtraction
	}
	log.Debug("text extracted", zap.Int("bytes", len(text)))

	docID := uuid.New().String()
	chunks, err := s.chunker.Process(docID, text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.chunker.Name(), err)
	}
	log.Debug("text chunked", zap.Int("chunks", len(chunks)))

	meta := s.metadata.Extract(ctx, text)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := s.embeddings.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, err
	}
	stored, skipped := Partition(results)
	if len(stored) == 0 && len(chunks) > 0 {
		log.Warn("every chunk was skipped; document has no retrievable content",
			zap.String("document_id", docID),
			zap.Int("skipped", skipped))
	}

	doc := &domain.Document{
		ID:         docID,
		FileName:   raw.FileName,
		MIMEType:   raw.MIMEType,
		Role:       meta.Role,
		Seniority:  meta.Seniority,
		ChunkCount: len(stored),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: save document: %w", domain.ErrDependency, err)
	}

	if len(stored) > 0 {
		if err := s.vectorStore.SaveChunks(ctx, stored); err != nil {
			log.Error("chunks not stored; document record remains without content",
				zap.String("document_id", docID),
				zap.Error(err))
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: save chunks: %w", domain.ErrDependency, err)
		}
	}

	log.Info("document ingested",
		zap.String("document_id", docID),
		zap.String("role", meta.Role),
		zap.String("seniority", meta.Seniority),
		zap.Int("chunks_stored", len(stored)),
		zap.Int("chunks_skipped", skipped))

	return &domain.IngestResult{
		DocumentID:    docID,
		Role:          meta.Role,
		Seniority:     meta.Seniority,
		ChunksStored:  len(stored),
		ChunksSkipped: skipped,
	}, nil
}
