// Package html provides a TextExtractor for HTML documents.
// It extracts readable text from the body, dropping scripts, styles and
// other non-content elements.
package html
