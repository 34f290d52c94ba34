package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOpenAI is the OpenAI API or any OpenAI-compatible endpoint
	// (Ollama, vLLM, LM Studio) reached through BaseURL.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOpenAI:
		return "OpenAI-compatible"
	default:
		return unknownDescription
	}
}

// StorageBackend identifies where documents and chunk vectors are persisted.
type StorageBackend string

// Available storage backends.
const (
	StorageSQLite   StorageBackend = "sqlite"
	StoragePostgres StorageBackend = "postgres"
	StorageRedis    StorageBackend = "redis"
	StorageMemory   StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StoragePostgres, StorageRedis, StorageMemory:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `validate:"required,oneof=gemini openai"`

	// Model is the embedding model name.
	Model string `validate:"required"`

	// BaseURL overrides the API endpoint (OpenAI-compatible only).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the provider API key.
	APIKey string

	// Dimensions is the vector length every embedding must have.
	Dimensions int `validate:"gt=0"`

	// Workers is the number of concurrent embedding calls during ingestion.
	// 1 means strictly sequential.
	Workers int `validate:"gte=1,lte=16"`

	// RequestsPerMinute throttles provider calls. 0 disables throttling.
	RequestsPerMinute int `validate:"gte=0"`
}

// IsConfigured reports whether enough is set to build a client.
// The hosted APIs need a key; a compatible endpoint only needs its BaseURL.
func (e *EmbeddingSettings) IsConfigured() bool {
	return credentialsPresent(e.Provider, e.Model, e.APIKey, e.BaseURL)
}

// LLMSettings holds text generator configuration.
type LLMSettings struct {
	// Provider is the generation service provider.
	Provider AIProvider `validate:"required,oneof=gemini openai"`

	// Model is the generation model name.
	Model string `validate:"required"`

	// BaseURL overrides the API endpoint (OpenAI-compatible only).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the provider API key.
	APIKey string
}

// IsConfigured reports whether enough is set to build a client.
func (l *LLMSettings) IsConfigured() bool {
	return credentialsPresent(l.Provider, l.Model, l.APIKey, l.BaseURL)
}

func credentialsPresent(p AIProvider, model, apiKey, baseURL string) bool {
	if !p.IsValid() || model == "" {
		return false
	}
	if apiKey != "" {
		return true
	}
	return p == AIProviderOpenAI && baseURL != ""
}

// StorageSettings selects and configures the persistence backend.
type StorageSettings struct {
	// Backend is the storage implementation to use.
	Backend StorageBackend `validate:"required,oneof=sqlite postgres redis memory"`

	// DataDir is where the SQLite database lives. Empty means the
	// application's default data directory.
	DataDir string

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `validate:"required_if=Backend postgres"`

	// RedisAddr is host:port for the redis backend.
	RedisAddr string `validate:"required_if=Backend redis"`

	// RedisPassword authenticates to redis, if required.
	RedisPassword string

	// RedisIndex is the RediSearch index name.
	RedisIndex string `validate:"required_if=Backend redis"`
}

// ChunkingSettings configures the text window.
type ChunkingSettings struct {
	// Size is the window length in characters.
	Size int `validate:"gt=0"`

	// Overlap is how many characters consecutive windows share.
	Overlap int `validate:"gte=0,ltfield=Size"`
}

// RetrievalSettings configures question answering.
type RetrievalSettings struct {
	// TopK is the number of chunks fed to the generator.
	TopK int `validate:"gte=1,lte=50"`

	// MaxContextChars bounds the context block in the answer prompt.
	MaxContextChars int `validate:"gt=0"`

	// CacheSize is the number of question embeddings kept in memory. 0 disables caching.
	CacheSize int `validate:"gte=0"`
}

// MetadataSettings configures role and seniority extraction.
type MetadataSettings struct {
	// MaxAttempts is the number of generator calls before giving up.
	MaxAttempts int `validate:"gte=1,lte=10"`

	// Backoff is the base delay, doubled after every failed attempt.
	Backoff time.Duration `validate:"gte=0"`

	// PrefixChars is how much of the document is sent to the generator.
	PrefixChars int `validate:"gt=0"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Storage   StorageSettings
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Metadata  MetadataSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty and must come from the environment or config file.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderGemini,
			Model:      "gemini-embedding-001",
			Dimensions: 3072,
			Workers:    1,
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    "gemini-2.5-flash",
		},
		Storage: StorageSettings{
			Backend:    StorageSQLite,
			RedisIndex: "jdrag_chunks",
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 200,
		},
		Retrieval: RetrievalSettings{
			TopK:            DefaultTopK,
			MaxContextChars: 12000,
			CacheSize:       256,
		},
		Metadata: MetadataSettings{
			MaxAttempts: 5,
			Backoff:     time.Second,
			PrefixChars: 3000,
		},
	}
}

// AllAIProviders returns the supported providers.
func AllAIProviders() []AIProvider {
	return []AIProvider{AIProviderGemini, AIProviderOpenAI}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "gemini-embedding-001",
		AIProviderOpenAI: "text-embedding-3-large",
	}
}

// DefaultLLMModels returns default models for each generation provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "gemini-2.5-flash",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Gemini models
		"gemini-embedding-001": 3072,
		"text-embedding-004":   768,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Common Ollama models served over the OpenAI-compatible API
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
	}
}
