// Package openai provides an embedding service adapter for the OpenAI API and
// OpenAI-compatible endpoints (Ollama, vLLM, LM Studio) reached through BaseURL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaiEmbed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"

	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-large"
	DefaultTimeout = 30 * time.Second
)

// modelDimensions maps known models to their native vector size.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the API key. Local compatible servers may accept any value.
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the embedding model (default: text-embedding-3-large).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the expected vector length. 0 looks the model up.
	Dimensions int
}

// EmbeddingService generates embeddings through an eino embedder.
type EmbeddingService struct {
	embedder   embedding.Embedder
	model      string
	dimensions int
}

// NewEmbeddingService creates an OpenAI-compatible embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	cfg, err := withDefaults(cfg)
	if err != nil {
		return nil, err
	}

	ecfg := &openaiEmbed.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}
	// Only the text-embedding-3 family can shorten vectors on request.
	if strings.HasPrefix(cfg.Model, "text-embedding-3-") {
		dims := cfg.Dimensions
		ecfg.Dimensions = &dims
	}

	embedder, err := openaiEmbed.NewEmbedder(ctx, ecfg)
	if err != nil {
		return nil, fmt.Errorf("openai: create embedder: %w", err)
	}

	return newWithEmbedder(embedder, cfg.Model, cfg.Dimensions), nil
}

func newWithEmbedder(embedder embedding.Embedder, model string, dimensions int) *EmbeddingService {
	return &EmbeddingService{embedder: embedder, model: model, dimensions: dimensions}
}

func withDefaults(cfg Config) (Config, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" && cfg.BaseURL == DefaultBaseURL {
		return cfg, errors.New("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		dims, ok := modelDimensions[cfg.Model]
		if !ok {
			dims = 1536
		}
		cfg.Dimensions = dims
	}
	return cfg, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("openai: embed: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, errors.New("openai: no embedding returned")
	}

	// eino returns float64; stores and the orchestrator work in float32.
	out := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		out[i] = float32(v)
	}
	return out, nil
}

// Dimensions returns the expected embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a single short string.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
