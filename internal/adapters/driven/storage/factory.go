// Package storage selects and opens the persistence backend named in settings.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/jdrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jdrag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/jdrag/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/jdrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

// Stores bundles the document and vector stores of one backend.
type Stores struct {
	Documents driven.DocumentStore
	Vectors   driven.VectorStore

	close func() error
}

// Close releases the backend's connections.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open opens the backend selected by settings. dimensions is the embedding
// length, used by backends that declare a typed vector column or index.
func Open(ctx context.Context, settings domain.StorageSettings, dimensions int) (*Stores, error) {
	switch settings.Backend {
	case domain.StorageSQLite:
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("%w: sqlite: %w", domain.ErrDependency, err)
		}
		return &Stores{Documents: store.DocumentStore(), Vectors: store.VectorStore(), close: store.Close}, nil

	case domain.StoragePostgres:
		store, err := postgres.Open(ctx, settings.PostgresDSN, dimensions)
		if err != nil {
			return nil, fmt.Errorf("%w: postgres: %w", domain.ErrDependency, err)
		}
		return &Stores{Documents: store, Vectors: store, close: store.Close}, nil

	case domain.StorageRedis:
		store, err := redis.Open(ctx, redis.Config{
			Addr:       settings.RedisAddr,
			Password:   settings.RedisPassword,
			IndexName:  settings.RedisIndex,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: redis: %w", domain.ErrDependency, err)
		}
		return &Stores{Documents: store, Vectors: store, close: store.Close}, nil

	case domain.StorageMemory:
		vectors := memory.NewVectorStore()
		return &Stores{Documents: memory.NewDocumentStore(), Vectors: vectors, close: vectors.Close}, nil

	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrConfiguration, settings.Backend)
	}
}
