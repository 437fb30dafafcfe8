package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ContributionEvent is one recorded act of value from a contact. Immutable
// after creation except for Outcome.
type ContributionEvent struct {
	ID               string
	ContactID        int64
	ContributionType string
	ValueLevel       string
	Description      string
	Outcome          string
	ImpactScore      float64
	DateCreated      int64
	// Populated by joined queries.
	ContactName string
}

// TopContributor is one row of the contribution ranking.
type TopContributor struct {
	ContactID         int64   `json:"contact_id"`
	Name              string  `json:"name"`
	Title             string  `json:"title"`
	Company           string  `json:"company"`
	TrustScore        float64 `json:"trust_score"`
	TotalContribution float64 `json:"total_contribution"`
	ContributionCount int     `json:"contribution_count"`
}

// InsertContribution appends an event to the ledger.
func (db *DB) InsertContribution(ev *ContributionEvent) error {
	if ev.DateCreated == 0 {
		ev.DateCreated = time.Now().UnixMilli()
	}
	_, err := db.Exec(`
		INSERT INTO contribution_events (id, contact_id, contribution_type, value_level, description, outcome, impact_score, date_created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.ContactID, ev.ContributionType, ev.ValueLevel, ev.Description, ev.Outcome, ev.ImpactScore, ev.DateCreated)
	if err != nil {
		return fmt.Errorf("insert contribution: %w", err)
	}
	return nil
}

// GetContribution returns an event by ID, or nil if not found.
func (db *DB) GetContribution(id string) (*ContributionEvent, error) {
	var ev ContributionEvent
	var desc sql.NullString
	err := db.QueryRow(`
		SELECT id, contact_id, contribution_type, value_level, description, outcome, impact_score, date_created
		FROM contribution_events WHERE id = ?
	`, id).Scan(&ev.ID, &ev.ContactID, &ev.ContributionType, &ev.ValueLevel, &desc, &ev.Outcome, &ev.ImpactScore, &ev.DateCreated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contribution: %w", err)
	}
	ev.Description = desc.String
	return &ev, nil
}

// SetContributionOutcome updates the outcome field and nothing else.
// Returns false if the event does not exist.
func (db *DB) SetContributionOutcome(id, outcome string) (bool, error) {
	result, err := db.Exec(`UPDATE contribution_events SET outcome = ? WHERE id = ?`, outcome, id)
	if err != nil {
		return false, fmt.Errorf("set contribution outcome: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// TopContributors ranks a user's contacts by summed impact score, trust
// score as the tie-break. Contacts with no events rank with a total of 0.
func (db *DB) TopContributors(userID string, limit int) ([]TopContributor, error) {
	rows, err := db.Query(`
		SELECT c.id, c.name, COALESCE(c.title, ''), COALESCE(c.company, ''),
			COALESCE(t.trust_score, 0.5),
			COALESCE(SUM(e.impact_score), 0) AS total,
			COUNT(e.id)
		FROM contacts c
		LEFT JOIN contribution_events e ON e.contact_id = c.id
		LEFT JOIN trust_metrics t ON t.contact_id = c.id
		WHERE c.user_id = ?
		GROUP BY c.id
		ORDER BY total DESC, COALESCE(t.trust_score, 0.5) DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("top contributors: %w", err)
	}
	defer rows.Close()

	var top []TopContributor
	for rows.Next() {
		var tc TopContributor
		if err := rows.Scan(&tc.ContactID, &tc.Name, &tc.Title, &tc.Company,
			&tc.TrustScore, &tc.TotalContribution, &tc.ContributionCount); err != nil {
			return nil, fmt.Errorf("scan top contributor: %w", err)
		}
		top = append(top, tc)
	}
	return top, rows.Err()
}

// ContributionsSince returns a user's contribution events after the given
// time, joined with the contact name, newest first.
func (db *DB) ContributionsSince(userID string, since int64) ([]ContributionEvent, error) {
	rows, err := db.Query(`
		SELECT e.id, e.contact_id, e.contribution_type, e.value_level, e.description,
			e.outcome, e.impact_score, e.date_created, c.name
		FROM contribution_events e
		JOIN contacts c ON c.id = e.contact_id
		WHERE c.user_id = ? AND e.date_created >= ?
		ORDER BY e.date_created DESC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("contributions since: %w", err)
	}
	defer rows.Close()

	var events []ContributionEvent
	for rows.Next() {
		var ev ContributionEvent
		var desc sql.NullString
		if err := rows.Scan(&ev.ID, &ev.ContactID, &ev.ContributionType, &ev.ValueLevel, &desc,
			&ev.Outcome, &ev.ImpactScore, &ev.DateCreated, &ev.ContactName); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		ev.Description = desc.String
		events = append(events, ev)
	}
	return events, rows.Err()
}
