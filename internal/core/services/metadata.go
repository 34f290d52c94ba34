package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
	"github.com/custodia-labs/jdrag/internal/logger"
	"github.com/custodia-labs/jdrag/internal/retry"
)

// DefaultMetadataPrefixChars is how much of a document is sent for metadata extraction.
const DefaultMetadataPrefixChars = 3000

// DefaultMetadataPrompt is used when no PromptStore is configured.
const DefaultMetadataPrompt = `Extract job metadata from the following job description.
Return JSON ONLY with keys "role" and "seniority".

Job Description:
%s
`

// metadataResponseMIMEType asks providers that support it for a JSON body.
const metadataResponseMIMEType = "application/json"

var errEmptyResponse = errors.New("empty generator response")

// DefaultMetadataPolicy is five attempts with exponential backoff from one second.
func DefaultMetadataPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 5, Backoff: retry.Exponential(time.Second)}
}

// MetadataExtractor derives role and seniority from job description text.
// It never fails: any problem resolves to domain.UnknownMetadata.
type MetadataExtractor struct {
	llm         driven.LLMService
	prompts     driven.PromptStore
	policy      retry.Policy
	prefixChars int
	log         *zap.Logger
}

// NewMetadataExtractor creates an extractor. prompts may be nil.
func NewMetadataExtractor(
	llm driven.LLMService,
	prompts driven.PromptStore,
	policy retry.Policy,
	log *zap.Logger,
) *MetadataExtractor {
	m := &MetadataExtractor{
		llm:         llm,
		prompts:     prompts,
		policy:      policy,
		prefixChars: DefaultMetadataPrefixChars,
		log:         logger.OrNop(log),
	}
	if m.policy.MaxAttempts < 1 {
		m.policy = DefaultMetadataPolicy()
	}
	if m.policy.OnRetry == nil {
		m.policy.OnRetry = func(attempt int, err error, delay time.Duration) {
			m.log.Warn("metadata attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Duration("retry_in", delay),
				zap.Error(err))
		}
	}
	return m
}

// SetPrefixChars changes the character budget sent to the generator.
func (m *MetadataExtractor) SetPrefixChars(n int) {
	if n > 0 {
		m.prefixChars = n
	}
}

// Extract returns the document's role and seniority.
//
// Generator errors and empty responses are retried under the policy.
// A response that is not a decodable record is not retried. In every
// failure case, including a cancelled context, the sentinel is returned.
func (m *MetadataExtractor) Extract(ctx context.Context, text string) domain.JobMetadata {
	if m.llm == nil {
		m.log.Warn("no LLM configured, metadata set to Unknown")
		return domain.UnknownMetadata()
	}

	prompt := m.buildPrompt(truncateRunes(text, m.prefixChars))
	temperature := float32(0)
	opts := driven.GenerateOptions{
		ResponseMIMEType: metadataResponseMIMEType,
		Temperature:      &temperature,
	}

	var response string
	err := m.policy.Do(ctx, func(ctx context.Context) error {
		out, err := m.llm.Generate(ctx, prompt, opts)
		if err != nil {
			return err
		}
		if strings.TrimSpace(out) == "" {
			return errEmptyResponse
		}
		response = out
		return nil
	})
	if err != nil {
		m.log.Warn("metadata extraction failed, using Unknown", zap.Error(err))
		return domain.UnknownMetadata()
	}

	meta, ok := domain.DecodeMetadata(response)
	if !ok {
		m.log.Warn("metadata response not decodable, using Unknown",
			zap.Error(domain.ErrMetadataParse),
			zap.String("response", truncateRunes(response, 200)))
		return domain.UnknownMetadata()
	}

	m.log.Debug("metadata extracted", zap.String("role", meta.Role), zap.String("seniority", meta.Seniority))
	return meta
}

func (m *MetadataExtractor) buildPrompt(text string) string {
	return fmt.Sprintf(loadPrompt(m.prompts, driven.PromptMetadata, DefaultMetadataPrompt), text)
}

// loadPrompt returns the named prompt, or fallback when the store is absent or fails.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	p, err := store.Load(name)
	if err != nil || strings.TrimSpace(p) == "" {
		return fallback
	}
	return p
}

// truncateRunes returns at most n characters of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
