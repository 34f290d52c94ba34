package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
	"github.com/custodia-labs/jdrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedWorkers    = "embedding.workers"
	keyEmbedRPM        = "embedding.requests_per_minute"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyStorageBackend  = "storage.backend"
	keyStorageDataDir  = "storage.data_dir"
	keyPostgresDSN     = "storage.postgres_dsn"
	keyRedisAddr       = "storage.redis_addr"
	keyRedisPassword   = "storage.redis_password"
	keyRedisIndex      = "storage.redis_index"
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyTopK            = "retrieval.top_k"
	keyMaxContext      = "retrieval.max_context_chars"
	keyCacheSize       = "retrieval.cache_size"
	keyMetaAttempts    = "metadata.max_attempts"
	keyMetaBackoff     = "metadata.backoff"
	keyMetaPrefixChars = "metadata.prefix_chars"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvPostgresDSN  = "JDRAG_POSTGRES_DSN"
	EnvRedisAddr    = "JDRAG_REDIS_ADDR"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindDuration
)

// settingKinds lists every key Set accepts.
var settingKinds = map[string]valueKind{
	keyEmbedProvider: kindString, keyEmbedModel: kindString, keyEmbedBaseURL: kindString,
	keyEmbedAPIKey: kindString, keyEmbedDims: kindInt, keyEmbedWorkers: kindInt, keyEmbedRPM: kindInt,
	keyLLMProvider: kindString, keyLLMModel: kindString, keyLLMBaseURL: kindString, keyLLMAPIKey: kindString,
	keyStorageBackend: kindString, keyStorageDataDir: kindString, keyPostgresDSN: kindString,
	keyRedisAddr: kindString, keyRedisPassword: kindString, keyRedisIndex: kindString,
	keyChunkSize: kindInt, keyChunkOverlap: kindInt,
	keyTopK: kindInt, keyMaxContext: kindInt, keyCacheSize: kindInt,
	keyMetaAttempts: kindInt, keyMetaBackoff: kindDuration, keyMetaPrefixChars: kindInt,
}

// SettingKeys returns the keys accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// configReader is the read side of a ConfigStore.
type configReader interface {
	Get(key string) (any, bool)
}

// overlay shadows one key of a configReader.
type overlay struct {
	base  configReader
	key   string
	value any
}

func (o overlay) Get(key string) (any, bool) {
	if key == o.key {
		return o.value, true
	}
	return o.base.Get(key)
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	validate    *validator.Validate
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// aiValidator may be nil, in which case provider pings are skipped.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup. Used by tests.
func (s *SettingsService) SetEnvLookup(fn func(string) (string, bool)) {
	s.lookupEnv = fn
}

// Get retrieves current application settings, applying environment overrides.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.load(s.configStore)
	s.applyEnv(settings)
	return settings, nil
}

func (s *SettingsService) load(r configReader) *domain.AppSettings {
	d := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          getProvider(r, keyEmbedProvider, d.Embedding.Provider),
			Model:             getString(r, keyEmbedModel, d.Embedding.Model),
			BaseURL:           getString(r, keyEmbedBaseURL, ""),
			APIKey:            getString(r, keyEmbedAPIKey, ""),
			Dimensions:        getInt(r, keyEmbedDims, d.Embedding.Dimensions),
			Workers:           getInt(r, keyEmbedWorkers, d.Embedding.Workers),
			RequestsPerMinute: getInt(r, keyEmbedRPM, d.Embedding.RequestsPerMinute),
		},
		LLM: domain.LLMSettings{
			Provider: getProvider(r, keyLLMProvider, d.LLM.Provider),
			Model:    getString(r, keyLLMModel, d.LLM.Model),
			BaseURL:  getString(r, keyLLMBaseURL, ""),
			APIKey:   getString(r, keyLLMAPIKey, ""),
		},
		Storage: domain.StorageSettings{
			Backend:       domain.StorageBackend(getString(r, keyStorageBackend, string(d.Storage.Backend))),
			DataDir:       getString(r, keyStorageDataDir, d.Storage.DataDir),
			PostgresDSN:   getString(r, keyPostgresDSN, ""),
			RedisAddr:     getString(r, keyRedisAddr, ""),
			RedisPassword: getString(r, keyRedisPassword, ""),
			RedisIndex:    getString(r, keyRedisIndex, d.Storage.RedisIndex),
		},
		Chunking: domain.ChunkingSettings{
			Size:    getInt(r, keyChunkSize, d.Chunking.Size),
			Overlap: getInt(r, keyChunkOverlap, d.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:            getInt(r, keyTopK, d.Retrieval.TopK),
			MaxContextChars: getInt(r, keyMaxContext, d.Retrieval.MaxContextChars),
			CacheSize:       getInt(r, keyCacheSize, d.Retrieval.CacheSize),
		},
		Metadata: domain.MetadataSettings{
			MaxAttempts: getInt(r, keyMetaAttempts, d.Metadata.MaxAttempts),
			Backoff:     getDuration(r, keyMetaBackoff, d.Metadata.Backoff),
			PrefixChars: getInt(r, keyMetaPrefixChars, d.Metadata.PrefixChars),
		},
	}
}

// applyEnv fills secrets and endpoints from the environment.
// Environment values win over the config file.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	keyFor := func(p domain.AIProvider) string {
		var name string
		switch p {
		case domain.AIProviderGemini:
			name = EnvGeminiAPIKey
		case domain.AIProviderOpenAI:
			name = EnvOpenAIAPIKey
		default:
			return ""
		}
		v, _ := s.lookupEnv(name)
		return v
	}

	if v := keyFor(settings.Embedding.Provider); v != "" {
		settings.Embedding.APIKey = v
	}
	if v := keyFor(settings.LLM.Provider); v != "" {
		settings.LLM.APIKey = v
	}
	if v, ok := s.lookupEnv(EnvPostgresDSN); ok && v != "" {
		settings.Storage.PostgresDSN = v
	}
	if v, ok := s.lookupEnv(EnvRedisAddr); ok && v != "" {
		settings.Storage.RedisAddr = v
	}
}

// Save persists application settings.
// API keys are only written when set, so environment-only secrets stay out of the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.check(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keyEmbedDims, settings.Embedding.Dimensions, false},
		{keyEmbedWorkers, settings.Embedding.Workers, false},
		{keyEmbedRPM, settings.Embedding.RequestsPerMinute, false},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyStorageBackend, string(settings.Storage.Backend), false},
		{keyStorageDataDir, settings.Storage.DataDir, false},
		{keyPostgresDSN, settings.Storage.PostgresDSN, settings.Storage.PostgresDSN == ""},
		{keyRedisAddr, settings.Storage.RedisAddr, settings.Storage.RedisAddr == ""},
		{keyRedisPassword, settings.Storage.RedisPassword, settings.Storage.RedisPassword == ""},
		{keyRedisIndex, settings.Storage.RedisIndex, false},
		{keyChunkSize, settings.Chunking.Size, false},
		{keyChunkOverlap, settings.Chunking.Overlap, false},
		{keyTopK, settings.Retrieval.TopK, false},
		{keyMaxContext, settings.Retrieval.MaxContextChars, false},
		{keyCacheSize, settings.Retrieval.CacheSize, false},
		{keyMetaAttempts, settings.Metadata.MaxAttempts, false},
		{keyMetaBackoff, settings.Metadata.Backoff.String(), false},
		{keyMetaPrefixChars, settings.Metadata.PrefixChars, false},
	}

	updates := make(map[string]any, len(values))
	for _, v := range values {
		if !v.skip {
			updates[v.key] = v.value
		}
	}
	if err := s.configStore.SetAll(updates); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Set parses value for key, validates the resulting settings and persists the key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	typed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if key == keyEmbedProvider || key == keyLLMProvider {
		if !domain.AIProvider(strings.TrimSpace(value)).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
	}

	candidate := s.load(overlay{base: s.configStore, key: key, value: typed})
	s.applyEnv(candidate)
	if err := s.check(candidate); err != nil {
		return err
	}

	updates := map[string]any{key: typed}
	// When the embedding model changes to a known one, keep dimensions in step.
	if key == keyEmbedModel {
		if d, ok := domain.EmbeddingDimensions()[value]; ok {
			updates[keyEmbedDims] = d
		}
	}
	if err := s.configStore.SetAll(updates); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.check(settings)
}

func (s *SettingsService) check(settings *domain.AppSettings) error {
	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helpers for reading config with defaults.

func parseValue(kind valueKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindInt:
		return strconv.Atoi(raw)
	case kindDuration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	default:
		return raw, nil
	}
}

func getString(r configReader, key, defaultVal string) string {
	v, ok := r.Get(key)
	if !ok {
		return defaultVal
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return defaultVal
	}
	return s
}

func getInt(r configReader, key string, defaultVal int) int {
	v, ok := r.Get(key)
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return defaultVal
}

func getDuration(r configReader, key string, defaultVal time.Duration) time.Duration {
	s := getString(r, key, "")
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

func getProvider(r configReader, key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(getString(r, key, ""))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
