package driven

import "github.com/custodia-labs/jdrag/internal/core/domain"

// AIConfigValidator checks provider settings by pinging the provider.
// Both methods return nil when the section is not configured yet.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
