package extractors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
	"github.com/custodia-labs/jdrag/internal/extractors/docx"
	"github.com/custodia-labs/jdrag/internal/extractors/html"
	"github.com/custodia-labs/jdrag/internal/extractors/markdown"
	"github.com/custodia-labs/jdrag/internal/extractors/pdf"
	"github.com/custodia-labs/jdrag/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// genericMIMETypes carry no format information; the suffix decides instead.
var genericMIMETypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"binary/octet-stream":      true,
}

// Registry dispatches an upload to the extractor registered for its MIME
// type or, failing that, its file suffix. Other text/* uploads go to the
// fallback when one is set.
type Registry struct {
	byMIME   map[string]driven.TextExtractor
	byExt    map[string]driven.TextExtractor
	fallback driven.TextExtractor
}

// NewRegistry creates an empty registry. fallback may be nil.
func NewRegistry(fallback driven.TextExtractor) *Registry {
	return &Registry{
		byMIME:   make(map[string]driven.TextExtractor),
		byExt:    make(map[string]driven.TextExtractor),
		fallback: fallback,
	}
}

// Default returns a registry with every built-in extractor.
func Default() *Registry {
	text := plaintext.New()
	r := NewRegistry(text)
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(text)
	return r
}

// Register adds an extractor. Later registrations win for shared keys.
func (r *Registry) Register(e driven.TextExtractor) {
	for _, mt := range e.SupportedMIMETypes() {
		r.byMIME[strings.ToLower(mt)] = e
	}
	for _, ext := range e.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Extract selects an extractor for raw and returns its text.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	e, err := r.Select(raw)
	if err != nil {
		return "", err
	}
	return e.Extract(ctx, raw)
}

// Select returns the extractor that would handle raw.
func (r *Registry) Select(raw *domain.RawDocument) (driven.TextExtractor, error) {
	mt := raw.BaseMIMEType()
	if !genericMIMETypes[mt] {
		if e, ok := r.byMIME[mt]; ok {
			return e, nil
		}
	}
	if e, ok := r.byExt[raw.Extension()]; ok {
		return e, nil
	}
	if r.fallback != nil && strings.HasPrefix(mt, "text/") {
		return r.fallback, nil
	}

	label := mt
	if label == "" {
		label = raw.Extension()
	}
	if label == "" {
		label = "unknown"
	}
	return nil, fmt.Errorf("%w: %w: %s", domain.ErrExtraction, domain.ErrUnsupportedType, label)
}

// SupportedMIMETypes returns every registered MIME type, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	return sortedKeys(r.byMIME)
}

// SupportedExtensions returns every registered file suffix, sorted.
func (r *Registry) SupportedExtensions() []string {
	return sortedKeys(r.byExt)
}

func sortedKeys(m map[string]driven.TextExtractor) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
