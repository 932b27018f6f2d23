package database

import (
	"time"
)

type Monitor struct {
	ID            string // Database UUID
	Name          string // Configuration monitor identifier derived from filename
	Term          string // Search term from configuration
	UserID        string // Owner account the mentions are scoped to
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Mention struct {
	ID                      string
	Title                   string
	Source                  string
	SourceType              string
	Sentiment               string
	Priority                string
	Excerpt                 string
	URL                     string
	UserID                  string
	PublishedAt             time.Time
	Content                 string
	ContentExtractionStatus string // pending, success, failed, skipped
	ContentExtractedAt      *time.Time
	ContentExtractionError  string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type SourceCount struct {
	Source string
	Count  int
}

// MentionStats aggregates one owner's stored mentions for the dashboard.
type MentionStats struct {
	Total      int
	Sentiment  map[string]int
	Priority   map[string]int
	TopSources []SourceCount
}
