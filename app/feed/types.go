package feed

import (
	"time"
)

// Item is a single entry parsed from the provider feed, before classification.
type Item struct {
	Title       string
	Link        string
	Description string
	Source      string
	PublishedAt time.Time
}

// TransportError reports a failure to retrieve the provider feed through the
// relay: network failure, non-success status, or a malformed relay envelope.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a feed body that is not well-formed syndication markup.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
