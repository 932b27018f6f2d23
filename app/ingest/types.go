package ingest

import (
	"context"
	"fmt"

	"github.com/leonardovviana/conecta-monitor/app/feed"
)

// FetcherInterface retrieves the raw provider feed body for a search term.
type FetcherInterface interface {
	Run(ctx context.Context, term string) ([]byte, error)
}

// ParserInterface converts a raw feed body into an ordered item slice.
type ParserInterface interface {
	Run(data []byte) ([]feed.Item, error)
}

var _ FetcherInterface = (*feed.Fetcher)(nil)
var _ ParserInterface = (*feed.Parser)(nil)

// Result summarizes one ingestion run. Saved, Duplicates, and Failed always
// sum to Total, so "0 saved because nothing was new" and "0 saved because
// every insert failed" are distinguishable.
type Result struct {
	Total      int
	Saved      int
	Duplicates int
	Failed     int
	Errors     []error
}

// ValidationError reports malformed caller input, rejected before any
// network call is issued.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

// StorageError reports a lookup or insert failure for one mention, for a
// reason other than an expected duplicate-key conflict.
type StorageError struct {
	URL string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.URL, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
