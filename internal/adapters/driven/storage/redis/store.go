// Package redis provides document and vector stores backed by Redis with the
// RediSearch module.
//
// Chunks are hashes indexed by an HNSW vector field and a document_id TAG.
// Matching runs a KNN query pre-filtered on that tag, so only the chunks of
// the requested document are ranked.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/jdrag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

// Hash field names.
const (
	fieldDocumentID = "document_id"
	fieldContent    = "content"
	fieldPosition   = "position"
	fieldEmbedding  = "embedding"
	fieldScore      = "score"

	fieldFileName   = "file_name"
	fieldMIMEType   = "mime_type"
	fieldRole       = "role"
	fieldSeniority  = "seniority"
	fieldChunkCount = "chunk_count"
	fieldCreatedAt  = "created_at"
)

// HNSW build parameters.
const (
	efConstruction = 200
	hnswM          = 16
)

// Ensure Store implements both ports.
var (
	_ driven.DocumentStore = (*Store)(nil)
	_ driven.VectorStore   = (*Store)(nil)
)

// Config holds the Redis connection and index settings.
type Config struct {
	Addr       string
	Password   string
	DB         int
	IndexName  string
	Dimensions int
}

// Store persists documents and chunks in Redis.
type Store struct {
	client     *redis.Client
	index      string
	dimensions int
}

// Open connects to Redis and creates the search index if missing.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.IndexName == "" {
		return nil, errors.New("redis: index name is required")
	}

	// RESP2 keeps FT.SEARCH replies as flat arrays.
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Protocol: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	s := &Store{client: client, index: cfg.IndexName, dimensions: cfg.Dimensions}
	if err := s.ensureIndex(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// ensureIndex creates the HNSW vector index if it doesn't exist.
func (s *Store) ensureIndex(ctx context.Context) error {
	if err := s.client.Do(ctx, "FT.INFO", s.index).Err(); err == nil {
		return nil
	}

	if err := s.client.Do(ctx, createIndexArgs(s.index, s.chunkPrefix(), s.dimensions)...).Err(); err != nil {
		return fmt.Errorf("creating index %s: %w", s.index, err)
	}
	return nil
}

// createIndexArgs builds:
//
//	FT.CREATE <index> ON HASH PREFIX 1 <prefix>
//	  SCHEMA embedding VECTOR HNSW 10 TYPE FLOAT32 DIM <d> DISTANCE_METRIC COSINE EF_CONSTRUCTION 200 M 16
//	         document_id TAG content TEXT position NUMERIC
func createIndexArgs(index, prefix string, dimensions int) []any {
	return []any{
		"FT.CREATE", index,
		"ON", "HASH",
		"PREFIX", "1", prefix,
		"SCHEMA",
		fieldEmbedding, "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(dimensions),
		"DISTANCE_METRIC", "COSINE",
		"EF_CONSTRUCTION", strconv.Itoa(efConstruction),
		"M", strconv.Itoa(hnswM),
		fieldDocumentID, "TAG",
		fieldContent, "TEXT",
		fieldPosition, "NUMERIC",
	}
}

func (s *Store) chunkPrefix() string           { return s.index + ":chunk:" }
func (s *Store) chunkKey(id string) string     { return s.chunkPrefix() + id }
func (s *Store) docKey(id string) string       { return s.index + ":doc:" + id }
func (s *Store) docChunksKey(id string) string { return s.index + ":doc:" + id + ":chunks" }
func (s *Store) docsKey() string               { return s.index + ":docs" }

// ==================== Documents ====================

// SaveDocument stores a new document.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	key := s.docKey(doc.ID)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: document %s already exists", domain.ErrInvalidInput, doc.ID)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, documentToHash(doc))
		pipe.ZAdd(ctx, s.docsKey(), redis.Z{Score: float64(doc.CreatedAt.UnixNano()), Member: doc.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	fields, err := s.client.HGetAll(ctx, s.docKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrNotFound
	}
	return documentFromHash(id, fields)
}

// ListDocuments returns all documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	ids, err := s.client.ZRevRange(ctx, s.docsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.docKey(id))
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}
	}

	docs := make([]domain.Document, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		doc, err := documentFromHash(ids[i], fields)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	sortNewestFirst(docs)
	return docs, nil
}

// DeleteDocument removes a document record.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.docKey(id))
		pipe.ZRem(ctx, s.docsKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Chunks ====================

// SaveChunks stores embedded chunks as hashes picked up by the index.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[i].ID)
		}
	}
	if len(chunks) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, c := range chunks {
			pipe.HSet(ctx, s.chunkKey(c.ID),
				fieldDocumentID, c.DocumentID,
				fieldContent, c.Content,
				fieldPosition, c.Position,
				fieldEmbedding, vecmath.Float32sToBytes(c.Embedding),
			)
			pipe.SAdd(ctx, s.docChunksKey(c.DocumentID), c.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving chunks: %w", err)
	}
	return nil
}

// MatchChunks runs a KNN query restricted to documentID.
func (s *Store) MatchChunks(
	ctx context.Context, embedding []float32, documentID string, matchCount int,
) ([]driven.VectorHit, error) {
	if matchCount <= 0 {
		return []driven.VectorHit{}, nil
	}

	res, err := s.client.Do(ctx, "FT.SEARCH", s.index, knnQuery(documentID, matchCount),
		"PARAMS", "2", "vec", vecmath.Float32sToBytes(embedding),
		"RETURN", "3", fieldDocumentID, fieldContent, fieldScore,
		"SORTBY", fieldScore, "ASC",
		"LIMIT", "0", strconv.Itoa(matchCount),
		"DIALECT", "2",
	).Result()
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	return parseSearchResults(res, s.chunkPrefix())
}

// DeleteByDocument removes all chunks of a document.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	setKey := s.docChunksKey(documentID)
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("listing chunks: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.chunkKey(id))
	}
	keys = append(keys, setKey)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ==================== Helpers ====================

// knnQuery builds a KNN query pre-filtered on the document tag.
func knnQuery(documentID string, k int) string {
	return fmt.Sprintf("(@%s:{%s})=>[KNN %d @%s $vec AS %s]",
		fieldDocumentID, escapeTag(documentID), k, fieldEmbedding, fieldScore)
}

// escapeTag backslash-escapes every character RediSearch treats as a
// separator or operator in TAG queries.
func escapeTag(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(",.<>{}[]\"':;!@#$%^&*()-+=~|/\\ ", r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// parseSearchResults decodes a RESP2 FT.SEARCH reply:
// [total, key1, [field, value, ...], key2, [...], ...].
// The KNN score is a cosine distance and is converted to a similarity.
func parseSearchResults(res any, keyPrefix string) ([]driven.VectorHit, error) {
	values, ok := res.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected search reply %T", res)
	}

	hits := []driven.VectorHit{}
	for i := 1; i+1 < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		fields, ok := values[i+1].([]any)
		if !ok {
			continue
		}

		hit := driven.VectorHit{ChunkID: strings.TrimPrefix(key, keyPrefix)}
		for j := 0; j+1 < len(fields); j += 2 {
			name, _ := fields[j].(string)
			val, _ := fields[j+1].(string)
			switch name {
			case fieldDocumentID:
				hit.DocumentID = val
			case fieldContent:
				hit.Content = val
			case fieldScore:
				dist, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return nil, fmt.Errorf("parsing score %q: %w", val, err)
				}
				hit.Score = 1 - dist
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func documentToHash(doc *domain.Document) map[string]any {
	return map[string]any{
		fieldFileName:   doc.FileName,
		fieldMIMEType:   doc.MIMEType,
		fieldRole:       doc.Role,
		fieldSeniority:  doc.Seniority,
		fieldChunkCount: doc.ChunkCount,
		fieldCreatedAt:  doc.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func documentFromHash(id string, fields map[string]string) (*domain.Document, error) {
	doc := &domain.Document{
		ID:        id,
		FileName:  fields[fieldFileName],
		MIMEType:  fields[fieldMIMEType],
		Role:      fields[fieldRole],
		Seniority: fields[fieldSeniority],
	}

	if v := fields[fieldChunkCount]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing chunk count of %s: %w", id, err)
		}
		doc.ChunkCount = n
	}
	if v := fields[fieldCreatedAt]; v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of %s: %w", id, err)
		}
		doc.CreatedAt = t
	}
	return doc, nil
}

func sortNewestFirst(docs []domain.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}
