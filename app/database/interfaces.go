package database

import (
	"time"
)

type MonitorRepository interface {
	GetMonitor(monitorName string) (*Monitor, error)
	GetMonitorCount() (int, error)

	UpsertMonitor(monitorName, term, userID string) error
	UpdateMonitorFetched(monitorName string, nextFetch time.Time) error
}

type MentionRepository interface {
	GetRecentMentions(userID string, limit int) ([]Mention, error)
	GetMentionCount() (int, error)
	GetMentionStats(userID string) (*MentionStats, error)

	MentionExists(url, userID string) (bool, error)
	InsertMention(mention NewMention) (bool, error)

	GetMentionsForExtraction(userID string, limit int) ([]MentionForExtraction, error)
	UpdateExtractedContent(mentionID string, content string, extractedAt time.Time) error
	UpdateExtractionStatus(mentionID string, status string, extractedAt *time.Time, errorMsg string) error
}
