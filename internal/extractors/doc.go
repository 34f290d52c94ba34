// Package extractors provides TextExtractor implementations for the upload
// formats a job description arrives in. Each extractor knows how to pull
// plain text out of specific MIME types and file suffixes.
//
// Extractors are registered with a Registry at startup; the Registry picks
// one per upload by MIME type, then by file suffix.
package extractors
