package driven

import (
	"context"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

// TextExtractor turns an uploaded document into plain text.
// Each extractor handles specific MIME types and file suffixes.
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// SupportedExtensions returns the file suffixes (with dot) this extractor
	// handles when the MIME type is missing or generic.
	SupportedExtensions() []string

	// Extract returns the document's text.
	Extract(ctx context.Context, raw *domain.RawDocument) (string, error)
}
