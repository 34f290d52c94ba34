// Package openai provides an LLM service adapter for the OpenAI chat API and
// OpenAI-compatible endpoints.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	aclopenai "github.com/cloudwego/eino-ext/libs/acl/openai"
	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

const mimeJSON = "application/json"

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the API key. Local compatible servers may accept any value.
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the chat model (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// chatGenerator is the subset of an eino chat model the service uses.
type chatGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// LLMService generates text through eino chat models.
type LLMService struct {
	text      chatGenerator
	json      chatGenerator
	modelName string
}

// NewLLMService creates an OpenAI-compatible LLM service.
// Two chat models are built: one plain and one that requests a JSON object
// response, picked per call from GenerateOptions.ResponseMIMEType.
func NewLLMService(ctx context.Context, cfg LLMConfig) (*LLMService, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" && cfg.BaseURL == DefaultBaseURL {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	base := openaiModel.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}
	text, err := openaiModel.NewChatModel(ctx, &base)
	if err != nil {
		return nil, fmt.Errorf("openai: create chat model: %w", err)
	}

	jsonCfg := base
	jsonCfg.ResponseFormat = &aclopenai.ChatCompletionResponseFormat{
		Type: aclopenai.ChatCompletionResponseFormatTypeJSONObject,
	}
	jsonModel, err := openaiModel.NewChatModel(ctx, &jsonCfg)
	if err != nil {
		return nil, fmt.Errorf("openai: create json chat model: %w", err)
	}

	return &LLMService{text: text, json: jsonModel, modelName: cfg.Model}, nil
}

// Generate produces a completion for the prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	cm := s.text
	if opts.ResponseMIMEType == mimeJSON && s.json != nil {
		cm = s.json
	}

	msg, err := cm.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)}, callOptions(opts)...)
	if err != nil {
		return "", fmt.Errorf("openai: generate: %w", err)
	}
	if msg == nil {
		return "", errors.New("openai: empty response")
	}
	return msg.Content, nil
}

// callOptions maps generation options onto eino call options.
func callOptions(opts driven.GenerateOptions) []model.Option {
	var out []model.Option
	if opts.Temperature != nil {
		out = append(out, model.WithTemperature(*opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		out = append(out, model.WithMaxTokens(opts.MaxTokens))
	}
	return out
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.modelName
}

// Ping sends a one-token completion.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.text.Generate(ctx, []*schema.Message{schema.UserMessage("ping")}, model.WithMaxTokens(1))
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
