package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "contacts, goals, contact_interactions: relationship substrate",
		SQL: `
CREATE TABLE contacts (
    id         INTEGER PRIMARY KEY,
    user_id    TEXT NOT NULL,
    name       TEXT NOT NULL,
    title      TEXT,
    company    TEXT,
    email      TEXT,
    tags       TEXT,
    notes      TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX idx_contacts_user ON contacts(user_id);

CREATE TABLE goals (
    id          INTEGER PRIMARY KEY,
    user_id     TEXT NOT NULL,
    title       TEXT NOT NULL,
    description TEXT,
    created_at  INTEGER NOT NULL
);

CREATE INDEX idx_goals_user ON goals(user_id, created_at DESC);

CREATE TABLE contact_interactions (
    id               INTEGER PRIMARY KEY,
    contact_id       INTEGER NOT NULL,
    interaction_type TEXT NOT NULL,
    notes            TEXT,
    occurred_at      INTEGER NOT NULL,
    FOREIGN KEY (contact_id) REFERENCES contacts(id)
);

CREATE INDEX idx_interactions_contact ON contact_interactions(contact_id, occurred_at DESC);
CREATE INDEX idx_interactions_time    ON contact_interactions(occurred_at DESC);
`,
	},
	{
		Version:     2,
		Description: "trust_metrics: per-contact component scores",
		SQL: `
CREATE TABLE trust_metrics (
    contact_id      INTEGER PRIMARY KEY,
    reliability     REAL NOT NULL DEFAULT 0.5,
    responsiveness  REAL NOT NULL DEFAULT 0.5,
    value_delivered REAL NOT NULL DEFAULT 0.5,
    consistency     REAL NOT NULL DEFAULT 0.5,
    trust_score     REAL NOT NULL DEFAULT 0.5,
    last_updated    INTEGER NOT NULL,
    FOREIGN KEY (contact_id) REFERENCES contacts(id)
);
`,
	},
	{
		Version:     3,
		Description: "trust_history: append-only audit of score changes",
		SQL: `
CREATE TABLE trust_history (
    id            INTEGER PRIMARY KEY,
    contact_id    INTEGER NOT NULL,
    event_type    TEXT NOT NULL,
    score_change  REAL NOT NULL,
    reason        TEXT,
    date_recorded INTEGER NOT NULL
);

CREATE INDEX idx_trust_history_contact ON trust_history(contact_id, date_recorded DESC);
CREATE INDEX idx_trust_history_time    ON trust_history(date_recorded DESC);
`,
	},
	{
		Version:     4,
		Description: "contribution_events: append-only value ledger",
		SQL: `
CREATE TABLE contribution_events (
    id                TEXT PRIMARY KEY,
    contact_id        INTEGER NOT NULL,
    contribution_type TEXT NOT NULL,
    value_level       TEXT NOT NULL,
    description       TEXT,
    outcome           TEXT NOT NULL DEFAULT 'pending',
    impact_score      REAL NOT NULL,
    date_created      INTEGER NOT NULL,
    FOREIGN KEY (contact_id) REFERENCES contacts(id)
);

CREATE INDEX idx_contributions_contact ON contribution_events(contact_id, date_created DESC);
CREATE INDEX idx_contributions_time    ON contribution_events(date_created DESC);
`,
	},
	{
		Version:     5,
		Description: "insight_log: generated insight history",
		SQL: `
CREATE TABLE insight_log (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    payload    TEXT NOT NULL,
    status     TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX idx_insight_log_user ON insight_log(user_id, created_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
