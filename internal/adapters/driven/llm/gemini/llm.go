// Package gemini provides an LLM service adapter for the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// errEmptyResponse is returned when the model produced no candidates.
var errEmptyResponse = errors.New("gemini: empty response")

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the generation model (default: gemini-2.5-flash).
	Model string
}

// contentGenerator is the subset of *genai.GenerativeModel the service uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
	Info(ctx context.Context) (*genai.ModelInfo, error)
}

// LLMService generates text with a Gemini model.
type LLMService struct {
	client    *genai.Client
	modelName string

	// newModel returns a model configured for one call. GenerativeModel
	// carries its generation config, so concurrent calls each get their own.
	newModel func(opts driven.GenerateOptions) contentGenerator
}

// NewLLMService creates a Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	s := &LLMService{client: client, modelName: cfg.Model}
	s.newModel = func(opts driven.GenerateOptions) contentGenerator {
		m := client.GenerativeModel(cfg.Model)
		applyOptions(m, opts)
		return m
	}
	return s, nil
}

// applyOptions copies generation options onto the model's config.
func applyOptions(m *genai.GenerativeModel, opts driven.GenerateOptions) {
	if opts.Temperature != nil {
		m.SetTemperature(*opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.ResponseMIMEType != "" {
		m.ResponseMIMEType = opts.ResponseMIMEType
	}
}

// Generate produces a completion for the prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := s.newModel(opts).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	return responseText(resp)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.modelName
}

// Ping fetches the model's metadata to validate the API key.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.newModel(driven.GenerateOptions{}).Info(ctx); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
