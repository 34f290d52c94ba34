package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

type fakeChat struct {
	reply *schema.Message
	err   error
	input []*schema.Message
	opts  *model.Options
	calls int
}

func (f *fakeChat) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls++
	f.input = input
	f.opts = model.GetCommonOptions(nil, opts...)
	return f.reply, f.err
}

func TestNewLLMService_RequiresAPIKeyForHostedAPI(t *testing.T) {
	svc, err := NewLLMService(context.Background(), LLMConfig{})

	require.Error(t, err)
	assert.Nil(t, svc)
}

func TestGenerate_PlainText(t *testing.T) {
	text := &fakeChat{reply: schema.AssistantMessage("Go and Kubernetes.", nil)}
	jsonModel := &fakeChat{}
	svc := &LLMService{text: text, json: jsonModel, modelName: DefaultLLMModel}

	out, err := svc.Generate(context.Background(), "what skills?", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Go and Kubernetes.", out)
	assert.Equal(t, 1, text.calls)
	assert.Zero(t, jsonModel.calls)
	require.Len(t, text.input, 1)
	assert.Equal(t, schema.User, text.input[0].Role)
	assert.Equal(t, "what skills?", text.input[0].Content)
}

func TestGenerate_JSONHintUsesJSONModel(t *testing.T) {
	text := &fakeChat{}
	jsonModel := &fakeChat{reply: schema.AssistantMessage(`{"role":"SRE","seniority":"Senior"}`, nil)}
	svc := &LLMService{text: text, json: jsonModel}

	out, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{ResponseMIMEType: "application/json"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"SRE","seniority":"Senior"}`, out)
	assert.Zero(t, text.calls)
}

func TestGenerate_PassesOptions(t *testing.T) {
	text := &fakeChat{reply: schema.AssistantMessage("ok", nil)}
	svc := &LLMService{text: text}
	temp := float32(0.1)

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{Temperature: &temp, MaxTokens: 64})

	require.NoError(t, err)
	require.NotNil(t, text.opts.Temperature)
	assert.InDelta(t, 0.1, *text.opts.Temperature, 1e-6)
	require.NotNil(t, text.opts.MaxTokens)
	assert.Equal(t, 64, *text.opts.MaxTokens)
}

func TestGenerate_Errors(t *testing.T) {
	svc := &LLMService{text: &fakeChat{err: errors.New("rate limited")}}
	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "rate limited")

	svc = &LLMService{text: &fakeChat{}}
	_, err = svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "empty response")
}

func TestCallOptions_Empty(t *testing.T) {
	assert.Empty(t, callOptions(driven.GenerateOptions{}))
}

func TestPing(t *testing.T) {
	ok := &fakeChat{reply: schema.AssistantMessage("p", nil)}
	assert.NoError(t, (&LLMService{text: ok}).Ping(context.Background()))
	require.NotNil(t, ok.opts.MaxTokens)
	assert.Equal(t, 1, *ok.opts.MaxTokens)

	bad := &LLMService{text: &fakeChat{err: errors.New("down")}}
	assert.ErrorContains(t, bad.Ping(context.Background()), "ping failed")
}
