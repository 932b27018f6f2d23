package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ MentionRepository = (*MentionRepositoryImpl)(nil)

// MentionRepositoryImpl handles database operations for stored mentions
type MentionRepositoryImpl struct {
	db *DB
}

func NewMentionRepository(db *DB) *MentionRepositoryImpl {
	return &MentionRepositoryImpl{db: db}
}

// MentionExists checks whether a mention with the same (url, owner) pair is
// already stored. This is a cheap short-circuit only; the unique constraint
// on the table is the correctness mechanism.
func (r *MentionRepositoryImpl) MentionExists(url, userID string) (bool, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT id FROM mentions WHERE url = $1 AND user_id = $2 LIMIT 1
	`, url, userID).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check mention existence: %w", err)
	}

	return true, nil
}

// InsertMention stores a classified mention. A duplicate-key conflict is a
// benign "already exists" outcome, reported as inserted=false rather than
// an error.
func (r *MentionRepositoryImpl) InsertMention(mention NewMention) (bool, error) {
	result, err := r.db.Exec(`
		INSERT INTO mentions (
			title, source, source_type, sentiment, priority,
			excerpt, url, user_id, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url, user_id) DO NOTHING
	`, mention.Title, mention.Source, mention.SourceType, mention.Sentiment,
		mention.Priority, mention.Excerpt, mention.URL, mention.UserID,
		mention.PublishedAt)

	if err != nil {
		return false, fmt.Errorf("failed to insert mention: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return rows > 0, nil
}

// GetRecentMentions returns an owner's stored mentions, newest first.
func (r *MentionRepositoryImpl) GetRecentMentions(userID string, limit int) ([]Mention, error) {
	rows, err := r.db.Query(`
		SELECT id, title, source, source_type, sentiment, priority,
		       excerpt, url, user_id, published_at, content,
		       content_extraction_status, content_extracted_at,
		       content_extraction_error, created_at, updated_at
		FROM mentions
		WHERE user_id = $1
		ORDER BY published_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent mentions: %w", err)
	}
	defer rows.Close()

	var mentions []Mention
	for rows.Next() {
		var mention Mention
		err := rows.Scan(
			&mention.ID, &mention.Title, &mention.Source, &mention.SourceType,
			&mention.Sentiment, &mention.Priority, &mention.Excerpt,
			&mention.URL, &mention.UserID, &mention.PublishedAt,
			&mention.Content, &mention.ContentExtractionStatus,
			&mention.ContentExtractedAt, &mention.ContentExtractionError,
			&mention.CreatedAt, &mention.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mention row: %w", err)
		}
		mentions = append(mentions, mention)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mention rows: %w", err)
	}

	return mentions, nil
}

func (r *MentionRepositoryImpl) GetMentionCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM mentions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get mention count: %w", err)
	}
	return count, nil
}

// GetMentionStats aggregates one owner's mentions: totals, sentiment and
// priority breakdowns, and the most frequent sources.
func (r *MentionRepositoryImpl) GetMentionStats(userID string) (*MentionStats, error) {
	stats := &MentionStats{
		Sentiment: make(map[string]int),
		Priority:  make(map[string]int),
	}

	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM mentions WHERE user_id = $1
	`, userID).Scan(&stats.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to get mention total: %w", err)
	}

	if err := r.countByColumn(userID, "sentiment", stats.Sentiment); err != nil {
		return nil, err
	}
	if err := r.countByColumn(userID, "priority", stats.Priority); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(`
		SELECT source, COUNT(*) AS mention_count
		FROM mentions
		WHERE user_id = $1
		GROUP BY source
		ORDER BY mention_count DESC, source ASC
		LIMIT 5
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get top sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		stats.TopSources = append(stats.TopSources, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source counts: %w", err)
	}

	return stats, nil
}

func (r *MentionRepositoryImpl) countByColumn(userID, column string, dest map[string]int) error {
	// column is one of two fixed call sites, never user input
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) FROM mentions WHERE user_id = $1 GROUP BY %s
	`, column, column)

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return fmt.Errorf("failed to get %s breakdown: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		dest[label] = count
	}

	return rows.Err()
}

// GetMentionsForExtraction returns mentions whose full article content has
// not been fetched yet.
func (r *MentionRepositoryImpl) GetMentionsForExtraction(userID string, limit int) ([]MentionForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT id, url
		FROM mentions
		WHERE user_id = $1
		  AND content_extraction_status = 'pending'
		ORDER BY published_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get mentions for extraction: %w", err)
	}
	defer rows.Close()

	var mentions []MentionForExtraction
	for rows.Next() {
		var m MentionForExtraction
		if err := rows.Scan(&m.ID, &m.URL); err != nil {
			return nil, fmt.Errorf("failed to scan mention for extraction: %w", err)
		}
		mentions = append(mentions, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mentions for extraction: %w", err)
	}

	return mentions, nil
}

func (r *MentionRepositoryImpl) UpdateExtractedContent(mentionID string, content string, extractedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE mentions
		SET content = $2,
		    content_extraction_status = 'success',
		    content_extracted_at = $3,
		    content_extraction_error = '',
		    updated_at = NOW()
		WHERE id = $1
	`, mentionID, content, extractedAt)

	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	return nil
}

func (r *MentionRepositoryImpl) UpdateExtractionStatus(mentionID string, status string, extractedAt *time.Time, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE mentions
		SET content_extraction_status = $2,
		    content_extracted_at = $3,
		    content_extraction_error = $4,
		    updated_at = NOW()
		WHERE id = $1
	`, mentionID, status, extractedAt, errorMsg)

	if err != nil {
		return fmt.Errorf("failed to update extraction status: %w", err)
	}

	return nil
}
