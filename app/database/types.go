package database

import (
	"time"
)

// NewMention is the insert payload for a classified mention. Identity and
// audit columns are assigned by the database.
type NewMention struct {
	Title       string
	Source      string
	SourceType  string
	Sentiment   string
	Priority    string
	Excerpt     string
	URL         string
	UserID      string
	PublishedAt time.Time
}

type MentionForExtraction struct {
	ID  string
	URL string
}
