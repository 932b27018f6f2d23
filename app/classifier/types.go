package classifier

import (
	"time"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SourceType identifies the feed origin. It is supplied by the caller per
// origin, not derived from content, so additional origins can share the
// same classifier.
type SourceType string

const (
	SourceTypeNews   SourceType = "news"
	SourceTypeSocial SourceType = "social"
	SourceTypeVideo  SourceType = "video"
	SourceTypeBlog   SourceType = "blog"
)

// Mention is a classified feed item, ready for persistence once an owner
// identity is attached.
type Mention struct {
	Title       string
	Source      string
	SourceType  SourceType
	PublishedAt time.Time
	Sentiment   Sentiment
	Priority    Priority
	Excerpt     string
	URL         string
}
