package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
	"github.com/custodia-labs/jdrag/internal/retry"
)

// fastPolicy retries without waiting.
func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, Backoff: retry.Constant(0)}
}

func TestMetadataExtractor_Success(t *testing.T) {
	llm := &mockLLMService{responses: []string{`{"role":"Backend Engineer","seniority":"Senior"}`}}
	m := NewMetadataExtractor(llm, nil, fastPolicy(5), nil)

	meta := m.Extract(context.Background(), "We are hiring a senior backend engineer.")
	assert.Equal(t, "Backend Engineer", meta.Role)
	assert.Equal(t, "Senior", meta.Seniority)
	require.Equal(t, 1, llm.callCount())
	assert.Equal(t, "application/json", llm.opts[0].ResponseMIMEType)
	assert.Contains(t, llm.prompts[0], "Return JSON ONLY")
}

func TestMetadataExtractor_RetriesTransientErrors(t *testing.T) {
	llm := &mockLLMService{
		errs:      []error{errors.New("503"), errors.New("503")},
		responses: []string{"", "", `{"role":"Designer","seniority":"Junior"}`},
	}
	m := NewMetadataExtractor(llm, nil, fastPolicy(5), nil)

	meta := m.Extract(context.Background(), "text")
	assert.Equal(t, "Designer", meta.Role)
	assert.Equal(t, 3, llm.callCount())
}

func TestMetadataExtractor_EmptyResponseIsRetried(t *testing.T) {
	llm := &mockLLMService{responses: []string{"  ", `{"role":"QA","seniority":"Mid"}`}}
	m := NewMetadataExtractor(llm, nil, fastPolicy(5), nil)

	meta := m.Extract(context.Background(), "text")
	assert.Equal(t, "QA", meta.Role)
	assert.Equal(t, 2, llm.callCount())
}

func TestMetadataExtractor_ExhaustedReturnsUnknown(t *testing.T) {
	fail := errors.New("unavailable")
	llm := &mockLLMService{errs: []error{fail, fail, fail, fail, fail, fail}}
	m := NewMetadataExtractor(llm, nil, fastPolicy(5), nil)

	meta := m.Extract(context.Background(), "text")
	assert.True(t, meta.IsUnknown())
	assert.Equal(t, 5, llm.callCount())
}

func TestMetadataExtractor_UndecodableIsNotRetried(t *testing.T) {
	llm := &mockLLMService{responses: []string{"I think this is an engineering role."}}
	m := NewMetadataExtractor(llm, nil, fastPolicy(5), nil)

	meta := m.Extract(context.Background(), "text")
	assert.Equal(t, domain.UnknownMetadata(), meta)
	assert.Equal(t, 1, llm.callCount())
}

func TestMetadataExtractor_FencedJSON(t *testing.T) {
	llm := &mockLLMService{responses: []string{"```json\n{\"role\":\"SRE\",\"seniority\":\"Lead\"}\n```"}}
	m := NewMetadataExtractor(llm, nil, fastPolicy(1), nil)

	meta := m.Extract(context.Background(), "text")
	assert.Equal(t, "SRE", meta.Role)
	assert.Equal(t, "Lead", meta.Seniority)
}

func TestMetadataExtractor_PartialRecord(t *testing.T) {
	llm := &mockLLMService{responses: []string{`{"role":"Data Analyst"}`}}
	m := NewMetadataExtractor(llm, nil, fastPolicy(1), nil)

	meta := m.Extract(context.Background(), "text")
	assert.Equal(t, "Data Analyst", meta.Role)
	assert.Equal(t, domain.UnknownValue, meta.Seniority)
}

func TestMetadataExtractor_NoLLM(t *testing.T) {
	m := NewMetadataExtractor(nil, nil, fastPolicy(5), nil)
	assert.True(t, m.Extract(context.Background(), "text").IsUnknown())
}

func TestMetadataExtractor_CancelledContext(t *testing.T) {
	llm := &mockLLMService{responses: []string{`{"role":"X","seniority":"Y"}`}}
	m := NewMetadataExtractor(llm, nil, retry.Policy{MaxAttempts: 5, Backoff: retry.Constant(time.Hour)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	meta := m.Extract(ctx, "text")
	assert.True(t, meta.IsUnknown())
	assert.Equal(t, 0, llm.callCount())
}

func TestMetadataExtractor_TruncatesInput(t *testing.T) {
	llm := &mockLLMService{responses: []string{`{"role":"A","seniority":"B"}`}}
	prompts := &mockPromptStore{prompts: map[string]string{driven.PromptMetadata: "%s"}}
	m := NewMetadataExtractor(llm, prompts, fastPolicy(1), nil)

	m.Extract(context.Background(), strings.Repeat("é", 5000))
	require.Equal(t, 1, llm.callCount())
	assert.Equal(t, DefaultMetadataPrefixChars, utf8.RuneCountInString(llm.prompts[0]))

	m.SetPrefixChars(10)
	m.Extract(context.Background(), strings.Repeat("x", 50))
	assert.Equal(t, strings.Repeat("x", 10), llm.prompts[1])
}

func TestMetadataExtractor_DefaultPolicyWhenInvalid(t *testing.T) {
	m := NewMetadataExtractor(&mockLLMService{}, nil, retry.Policy{}, nil)
	assert.Equal(t, 5, m.policy.MaxAttempts)
	assert.Equal(t, time.Second, m.policy.Backoff(0))
	assert.Equal(t, 2*time.Second, m.policy.Backoff(1))
	assert.NotNil(t, m.policy.OnRetry)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 3, "hel"},
		{"hello", 10, "hello"},
		{"héllo", 2, "hé"},
		{"hello", 0, ""},
		{"", 5, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateRunes(tt.in, tt.n))
	}
}

func TestLoadPrompt_Fallback(t *testing.T) {
	assert.Equal(t, "fb", loadPrompt(nil, "x", "fb"))

	store := &mockPromptStore{prompts: map[string]string{"blank": "   ", "ok": "tmpl"}}
	assert.Equal(t, "fb", loadPrompt(store, "missing", "fb"))
	assert.Equal(t, "fb", loadPrompt(store, "blank", "fb"))
	assert.Equal(t, "tmpl", loadPrompt(store, "ok", "fb"))
}
