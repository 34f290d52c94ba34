package pdf

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
	input  []byte
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	// The input path is the second to last argument.
	if len(args) >= 2 {
		m.input, _ = os.ReadFile(args[len(args)-2])
	}
	return m.output, m.err
}

func pdfUpload() *domain.RawDocument {
	return &domain.RawDocument{
		FileName: "jd.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("%PDF-1.4 fake pdf content"),
	}
}

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, execRunner{}, extractor.runner)
}

func TestSupportedTypes(t *testing.T) {
	extractor := New()
	assert.Equal(t, []string{"application/pdf"}, extractor.SupportedMIMETypes())
	assert.Equal(t, []string{".pdf"}, extractor.SupportedExtensions())
}

func TestExtract_WithMockRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("Product Manager  \r\n\nOwn the roadmap.\f\n")}
	extractor := NewWithRunner(runner)

	text, err := extractor.Extract(context.Background(), pdfUpload())
	require.NoError(t, err)
	assert.Equal(t, "Product Manager\n\nOwn the roadmap.", text)

	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
	assert.Equal(t, []byte("%PDF-1.4 fake pdf content"), runner.input)

	// The temporary file is removed afterwards.
	_, statErr := os.Stat(runner.args[len(runner.args)-2])
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtract_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("Syntax Error: Couldn't find trailer dictionary")}
	extractor := NewWithRunner(runner)

	_, err := extractor.Extract(context.Background(), pdfUpload())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "pdftotext failed")
}

func TestExtract_ToolMissing(t *testing.T) {
	extractor := NewWithRunner(&mockRunner{err: ErrPDFToolNotFound})

	_, err := extractor.Extract(context.Background(), pdfUpload())
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.False(t, domain.IsClientError(err))
}

func TestExtract_TempDirUnavailable(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir()+"/missing")
	runner := &mockRunner{output: []byte("unused")}
	extractor := NewWithRunner(runner)

	_, err := extractor.Extract(context.Background(), pdfUpload())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.False(t, domain.IsClientError(err))
	assert.Empty(t, runner.name)
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	extractor := NewWithRunner(&mockRunner{err: errors.New("signal: killed")})

	_, err := extractor.Extract(ctx, pdfUpload())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_NilDocument(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

// Integration test - only runs if pdftotext is available.
func TestExtract_Integration(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not available, skipping integration test")
	}
	_, err := New().Extract(context.Background(), pdfUpload())
	assert.ErrorIs(t, err, domain.ErrExtraction, "a fake PDF must fail extraction")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.TextExtractor = (*Extractor)(nil)
}
