package domain

import (
	"path/filepath"
	"strings"
)

// RawDocument is an uploaded file before text extraction.
type RawDocument struct {
	// FileName is the original file name, used for suffix-based extractor selection.
	FileName string

	// MIMEType is the declared media type. It may be empty or generic.
	MIMEType string

	// Content is the raw file bytes.
	Content []byte
}

// Extension returns the lower-cased file suffix including the dot, e.g. ".pdf".
func (r *RawDocument) Extension() string {
	return strings.ToLower(filepath.Ext(r.FileName))
}

// BaseMIMEType returns the media type without parameters such as charset.
func (r *RawDocument) BaseMIMEType() string {
	mt, _, _ := strings.Cut(r.MIMEType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
