// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService generates text from a prompt.
//
// Implementations may include:
//   - Gemini (gemini-2.5-flash)
//   - OpenAI and compatible endpoints
type LLMService interface {
	// Generate produces a completion for the prompt.
	// Output format hints in opts are advisory; callers must not assume the
	// returned text conforms to them.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate. 0 uses the provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Nil uses the provider default.
	Temperature *float32

	// ResponseMIMEType hints the desired output format, e.g. "application/json".
	ResponseMIMEType string
}
