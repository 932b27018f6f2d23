package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ MonitorRepository = (*MonitorRepositoryImpl)(nil)

// MonitorRepositoryImpl handles database operations for monitors
type MonitorRepositoryImpl struct {
	db *DB
}

func NewMonitorRepository(db *DB) *MonitorRepositoryImpl {
	return &MonitorRepositoryImpl{db: db}
}

// UpsertMonitor registers a monitor configuration, updating the term and
// owner if the configuration file changed.
func (r *MonitorRepositoryImpl) UpsertMonitor(monitorName, term, userID string) error {
	_, err := r.db.Exec(`
		INSERT INTO monitors (name, term, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			term = EXCLUDED.term,
			user_id = EXCLUDED.user_id,
			updated_at = NOW()
	`, monitorName, term, userID)

	if err != nil {
		return fmt.Errorf("failed to upsert monitor: %w", err)
	}

	return nil
}

func (r *MonitorRepositoryImpl) GetMonitor(monitorName string) (*Monitor, error) {
	var monitor Monitor
	err := r.db.QueryRow(`
		SELECT id, name, term, user_id, last_fetched_at, next_fetch_at, created_at, updated_at
		FROM monitors
		WHERE name = $1
	`, monitorName).Scan(
		&monitor.ID, &monitor.Name, &monitor.Term, &monitor.UserID,
		&monitor.LastFetchedAt, &monitor.NextFetchAt,
		&monitor.CreatedAt, &monitor.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get monitor: %w", err)
	}

	return &monitor, nil
}

func (r *MonitorRepositoryImpl) GetMonitorCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM monitors").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get monitor count: %w", err)
	}
	return count, nil
}

// UpdateMonitorFetched records a completed ingestion run and schedules the
// next one.
func (r *MonitorRepositoryImpl) UpdateMonitorFetched(monitorName string, nextFetch time.Time) error {
	_, err := r.db.Exec(`
		UPDATE monitors
		SET last_fetched_at = NOW(), next_fetch_at = $2, updated_at = NOW()
		WHERE name = $1
	`, monitorName, nextFetch)

	if err != nil {
		return fmt.Errorf("failed to update monitor fetch state: %w", err)
	}

	return nil
}
