package store

import (
	"fmt"
	"time"
)

// InsightLogEntry is one persisted insight generation result.
type InsightLogEntry struct {
	ID        string
	UserID    string
	Payload   string // JSON
	Status    string
	CreatedAt int64
}

// LogInsight persists a generated insight for history. Callers treat
// failures here as non-critical.
func (db *DB) LogInsight(entry *InsightLogEntry) error {
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().UnixMilli()
	}
	_, err := db.Exec(`
		INSERT INTO insight_log (id, user_id, payload, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, entry.Payload, entry.Status, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("log insight: %w", err)
	}
	return nil
}

// RecentInsights returns a user's newest logged insights.
func (db *DB) RecentInsights(userID string, limit int) ([]InsightLogEntry, error) {
	rows, err := db.Query(`
		SELECT id, user_id, payload, status, created_at
		FROM insight_log WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent insights: %w", err)
	}
	defer rows.Close()

	var entries []InsightLogEntry
	for rows.Next() {
		var e InsightLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Payload, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan insight log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
