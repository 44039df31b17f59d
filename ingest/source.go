package ingest

import (
	"context"
	"fmt"
)

// RawDocument is one document as fetched from a source, before any
// normalization. Fields hold whatever the source provided, timestamps are kept
// as the raw string so the normalizer owns all parsing.
type RawDocument struct {
	Title       string
	Url         string
	Description string
	PublishedAt string
	Source      string
	CountryCode string
	Location    string
	ImageUrl    string
	Lat         *float64
	Lon         *float64
}

// FetchOptions parameterize one fetch against a source.
type FetchOptions struct {
	// Query is the search term. GDELT DOC 2.0 requires it to be non-empty and
	// OR groups to be parenthesized, e.g. "(AI OR climate OR india)".
	Query string
	// TimespanHours restricts results to the trailing window, when the source
	// supports it.
	TimespanHours int
	// MaxRecords caps the page size.
	MaxRecords int
	// Language filters by article language, when the source supports it.
	Language string
}

// DocumentSource fetches raw documents from one upstream news API or feed.
// Implementations are plain I/O wrappers: no retry, no backoff. Transport and
// decode failures are returned as *SourceError so callers can degrade to an
// empty batch.
type DocumentSource interface {
	Name() string
	FetchDocuments(ctx context.Context, opts FetchOptions) ([]RawDocument, error)
}

// SourceError is the error kind for upstream fetch failures. Ingestion treats
// it as "nothing new this run" rather than aborting.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %s", e.Source, e.Err.Error())
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
