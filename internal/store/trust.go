package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"
)

// Trust score component names.
const (
	ComponentReliability    = "reliability"
	ComponentResponsiveness = "responsiveness"
	ComponentValueDelivered = "value_delivered"
	ComponentConsistency    = "consistency"
)

// Composite weights. The trust score is always recomputed from these —
// it is never written independently.
const (
	weightReliability    = 0.3
	weightResponsiveness = 0.2
	weightValueDelivered = 0.4
	weightConsistency    = 0.1
)

// neutralPrior is the starting value for every component of a freshly
// created metric.
const neutralPrior = 0.5

// TrustMetric holds the per-contact trust state. Component scores live in
// [0,1]; TrustScore is derived.
type TrustMetric struct {
	ContactID      int64   `json:"contact_id"`
	Reliability    float64 `json:"reliability"`
	Responsiveness float64 `json:"responsiveness"`
	ValueDelivered float64 `json:"value_delivered"`
	Consistency    float64 `json:"consistency"`
	TrustScore     float64 `json:"trust_score"`
	LastUpdated    int64   `json:"last_updated"`
}

// TrustHistoryRecord is one append-only audit entry explaining a change.
type TrustHistoryRecord struct {
	ID           int64   `json:"id"`
	ContactID    int64   `json:"contact_id"`
	EventType    string  `json:"event_type"`
	ScoreChange  float64 `json:"score_change"`
	Reason       string  `json:"reason"`
	DateRecorded int64   `json:"date_recorded"`
}

// TrustTrendPoint is a daily average of score changes.
type TrustTrendPoint struct {
	Day       string  `json:"day"`
	AvgChange float64 `json:"avg_change"`
	Events    int     `json:"events"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Recompute derives the trust score from the stored components.
func (m *TrustMetric) Recompute() {
	m.TrustScore = weightReliability*m.Reliability +
		weightResponsiveness*m.Responsiveness +
		weightValueDelivered*m.ValueDelivered +
		weightConsistency*m.Consistency
}

// ApplyDelta adds delta to the named component, clamping into [0,1], and
// recomputes the trust score. Unknown components are ignored and reported
// via the false return.
func (m *TrustMetric) ApplyDelta(component string, delta float64) bool {
	switch component {
	case ComponentReliability:
		m.Reliability = clamp01(m.Reliability + delta)
	case ComponentResponsiveness:
		m.Responsiveness = clamp01(m.Responsiveness + delta)
	case ComponentValueDelivered:
		m.ValueDelivered = clamp01(m.ValueDelivered + delta)
	case ComponentConsistency:
		m.Consistency = clamp01(m.Consistency + delta)
	default:
		return false
	}
	m.Recompute()
	return true
}

// GetTrustMetric returns the metric for a contact, or nil if not found.
func (db *DB) GetTrustMetric(contactID int64) (*TrustMetric, error) {
	var m TrustMetric
	err := db.QueryRow(`
		SELECT contact_id, reliability, responsiveness, value_delivered, consistency, trust_score, last_updated
		FROM trust_metrics WHERE contact_id = ?
	`, contactID).Scan(&m.ContactID, &m.Reliability, &m.Responsiveness, &m.ValueDelivered,
		&m.Consistency, &m.TrustScore, &m.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trust metric: %w", err)
	}
	return &m, nil
}

// EnsureTrustMetric returns the metric for a contact, creating it with
// neutral priors if absent. Metrics are never deleted.
func (db *DB) EnsureTrustMetric(contactID int64) (*TrustMetric, error) {
	existing, err := db.GetTrustMetric(contactID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UnixMilli()
	m := &TrustMetric{
		ContactID:      contactID,
		Reliability:    neutralPrior,
		Responsiveness: neutralPrior,
		ValueDelivered: neutralPrior,
		Consistency:    neutralPrior,
		LastUpdated:    now,
	}
	m.Recompute()

	_, err = db.Exec(`
		INSERT OR IGNORE INTO trust_metrics
			(contact_id, reliability, responsiveness, value_delivered, consistency, trust_score, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ContactID, m.Reliability, m.Responsiveness, m.ValueDelivered, m.Consistency, m.TrustScore, m.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("ensure trust metric: %w", err)
	}

	// Another writer may have raced the insert; re-read the stored row.
	return db.GetTrustMetric(contactID)
}

// SaveTrustMetricCAS persists the metric only if the stored row still
// carries prevUpdated, a compare-and-swap on (contact_id, last_updated).
// Returns false if the row changed underneath the caller.
func (db *DB) SaveTrustMetricCAS(m *TrustMetric, prevUpdated int64) (bool, error) {
	now := time.Now().UnixMilli()
	if now <= prevUpdated {
		now = prevUpdated + 1
	}

	result, err := db.Exec(`
		UPDATE trust_metrics
		SET reliability = ?, responsiveness = ?, value_delivered = ?, consistency = ?,
			trust_score = ?, last_updated = ?
		WHERE contact_id = ? AND last_updated = ?
	`, m.Reliability, m.Responsiveness, m.ValueDelivered, m.Consistency,
		m.TrustScore, now, m.ContactID, prevUpdated)
	if err != nil {
		return false, fmt.Errorf("save trust metric: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return false, nil
	}
	m.LastUpdated = now
	return true, nil
}

// AppendTrustHistory writes one audit row. History rows are never mutated
// or deleted.
func (db *DB) AppendTrustHistory(contactID int64, eventType string, scoreChange float64, reason string) error {
	_, err := db.Exec(`
		INSERT INTO trust_history (contact_id, event_type, score_change, reason, date_recorded)
		VALUES (?, ?, ?, ?, ?)
	`, contactID, eventType, scoreChange, reason, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("append trust history: %w", err)
	}
	return nil
}

// TrustHistoryForContact returns the newest audit rows for a contact.
func (db *DB) TrustHistoryForContact(contactID int64, limit int) ([]TrustHistoryRecord, error) {
	rows, err := db.Query(`
		SELECT id, contact_id, event_type, score_change, reason, date_recorded
		FROM trust_history WHERE contact_id = ?
		ORDER BY date_recorded DESC, id DESC LIMIT ?
	`, contactID, limit)
	if err != nil {
		return nil, fmt.Errorf("trust history for contact: %w", err)
	}
	defer rows.Close()

	var records []TrustHistoryRecord
	for rows.Next() {
		var rec TrustHistoryRecord
		var reason sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ContactID, &rec.EventType, &rec.ScoreChange, &reason, &rec.DateRecorded); err != nil {
			return nil, fmt.Errorf("scan trust history: %w", err)
		}
		rec.Reason = reason.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// TrustTrends returns the daily average score change for a user's contacts
// since the given time, oldest day first.
func (db *DB) TrustTrends(userID string, since int64) ([]TrustTrendPoint, error) {
	rows, err := db.Query(`
		SELECT date(h.date_recorded / 1000, 'unixepoch') AS day,
			AVG(h.score_change), COUNT(*)
		FROM trust_history h
		JOIN contacts c ON c.id = h.contact_id
		WHERE c.user_id = ? AND h.date_recorded >= ?
		GROUP BY day
		ORDER BY day
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("trust trends: %w", err)
	}
	defer rows.Close()

	var points []TrustTrendPoint
	for rows.Next() {
		var p TrustTrendPoint
		if err := rows.Scan(&p.Day, &p.AvgChange, &p.Events); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// UserTrustMetrics returns all trust metrics for a user's contacts,
// strongest first.
func (db *DB) UserTrustMetrics(userID string) ([]TrustMetric, error) {
	rows, err := db.Query(`
		SELECT t.contact_id, t.reliability, t.responsiveness, t.value_delivered, t.consistency, t.trust_score, t.last_updated
		FROM trust_metrics t
		JOIN contacts c ON c.id = t.contact_id
		WHERE c.user_id = ?
		ORDER BY t.trust_score DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("user trust metrics: %w", err)
	}
	defer rows.Close()

	var metrics []TrustMetric
	for rows.Next() {
		var m TrustMetric
		if err := rows.Scan(&m.ContactID, &m.Reliability, &m.Responsiveness, &m.ValueDelivered,
			&m.Consistency, &m.TrustScore, &m.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan trust metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// DecayTrustMetrics pulls every component of metrics untouched for longer
// than idleFor toward the neutral prior, with the given half-life. One
// history row is written per decayed contact. Runs only when invoked —
// there is no background scheduler.
func (db *DB) DecayTrustMetrics(idleFor, halfLife time.Duration) (int, error) {
	now := time.Now().UnixMilli()
	cutoff := now - idleFor.Milliseconds()

	rows, err := db.Query(`
		SELECT contact_id, reliability, responsiveness, value_delivered, consistency, trust_score, last_updated
		FROM trust_metrics WHERE last_updated <= ?
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("query decayable metrics: %w", err)
	}
	defer rows.Close()

	var targets []TrustMetric
	for rows.Next() {
		var m TrustMetric
		if err := rows.Scan(&m.ContactID, &m.Reliability, &m.Responsiveness, &m.ValueDelivered,
			&m.Consistency, &m.TrustScore, &m.LastUpdated); err != nil {
			return 0, fmt.Errorf("scan decay target: %w", err)
		}
		targets = append(targets, m)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	updated := 0
	for _, m := range targets {
		elapsed := float64(now - m.LastUpdated)
		if elapsed <= 0 {
			continue
		}

		// factor = 0.5 ^ (elapsed / halfLife); components drift toward the
		// neutral prior, never past it.
		factor := math.Pow(0.5, elapsed/float64(halfLife.Milliseconds()))
		before := m.TrustScore
		m.Reliability = neutralPrior + (m.Reliability-neutralPrior)*factor
		m.Responsiveness = neutralPrior + (m.Responsiveness-neutralPrior)*factor
		m.ValueDelivered = neutralPrior + (m.ValueDelivered-neutralPrior)*factor
		m.Consistency = neutralPrior + (m.Consistency-neutralPrior)*factor
		m.Recompute()

		prev := m.LastUpdated
		ok, err := db.SaveTrustMetricCAS(&m, prev)
		if err != nil {
			return updated, err
		}
		if !ok {
			// Touched by a concurrent writer; it is no longer idle.
			continue
		}
		if err := db.AppendTrustHistory(m.ContactID, "inactivity_decay", m.TrustScore-before, "no trust activity"); err != nil {
			return updated, err
		}
		updated++
	}

	return updated, nil
}
