package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Contact is a person in a user's network.
type Contact struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Company   string `json:"company,omitempty"`
	Email     string `json:"email,omitempty"`
	Tags      string `json:"tags,omitempty"` // comma-separated
	Notes     string `json:"notes,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Goal is something the user is working toward.
type Goal struct {
	ID          int64  `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

// Interaction is a single touchpoint with a contact.
type Interaction struct {
	ID              int64  `json:"id"`
	ContactID       int64  `json:"contact_id"`
	InteractionType string `json:"interaction_type"`
	Notes           string `json:"notes,omitempty"`
	OccurredAt      int64  `json:"occurred_at"`
	// Populated by joined queries.
	ContactName    string `json:"contact_name,omitempty"`
	ContactCompany string `json:"contact_company,omitempty"`
}

// ContactActivity is a contact annotated with interaction recency data.
type ContactActivity struct {
	Contact
	InteractionCount     int    `json:"interaction_count"`
	LastInteractionAt    *int64 `json:"last_interaction_at,omitempty"`
	LastInteractionType  string `json:"last_interaction_type,omitempty"`
	LastInteractionNotes string `json:"last_interaction_notes,omitempty"`
}

// CreateContact inserts a new contact.
func (db *DB) CreateContact(c *Contact) error {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO contacts (user_id, name, title, company, email, tags, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.UserID, c.Name, c.Title, c.Company, c.Email, c.Tags, c.Notes, now, now)
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	id, _ := result.LastInsertId()
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// GetContact returns a contact by ID, or nil if not found.
func (db *DB) GetContact(id int64) (*Contact, error) {
	var c Contact
	var title, company, email, tags, notes sql.NullString
	err := db.QueryRow(`
		SELECT id, user_id, name, title, company, email, tags, notes, created_at, updated_at
		FROM contacts WHERE id = ?
	`, id).Scan(&c.ID, &c.UserID, &c.Name, &title, &company, &email, &tags, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	c.Title = title.String
	c.Company = company.String
	c.Email = email.String
	c.Tags = tags.String
	c.Notes = notes.String
	return &c, nil
}

// ListContactsByActivity returns a user's contacts ordered by most recent
// interaction, then creation date. Contacts with no interactions sort last.
// Each row is annotated with its interaction count and latest interaction.
func (db *DB) ListContactsByActivity(userID string, limit int) ([]ContactActivity, error) {
	rows, err := db.Query(`
		SELECT c.id, c.user_id, c.name, c.title, c.company, c.email, c.tags, c.notes,
			c.created_at, c.updated_at,
			COUNT(i.id) AS interaction_count,
			MAX(i.occurred_at) AS last_at
		FROM contacts c
		LEFT JOIN contact_interactions i ON i.contact_id = c.id
		WHERE c.user_id = ?
		GROUP BY c.id
		ORDER BY (last_at IS NULL), last_at DESC, c.created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list contacts by activity: %w", err)
	}
	defer rows.Close()

	var contacts []ContactActivity
	for rows.Next() {
		var ca ContactActivity
		var title, company, email, tags, notes sql.NullString
		var lastAt sql.NullInt64
		if err := rows.Scan(&ca.ID, &ca.UserID, &ca.Name, &title, &company, &email, &tags, &notes,
			&ca.CreatedAt, &ca.UpdatedAt, &ca.InteractionCount, &lastAt); err != nil {
			return nil, fmt.Errorf("scan contact activity: %w", err)
		}
		ca.Title = title.String
		ca.Company = company.String
		ca.Email = email.String
		ca.Tags = tags.String
		ca.Notes = notes.String
		if lastAt.Valid {
			ca.LastInteractionAt = &lastAt.Int64
		}
		contacts = append(contacts, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Annotate with the latest interaction type/notes. One extra query per
	// contact is fine at the 20-contact cap.
	for idx := range contacts {
		if contacts[idx].LastInteractionAt == nil {
			continue
		}
		var itype string
		var inotes sql.NullString
		err := db.QueryRow(`
			SELECT interaction_type, notes FROM contact_interactions
			WHERE contact_id = ? ORDER BY occurred_at DESC LIMIT 1
		`, contacts[idx].ID).Scan(&itype, &inotes)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("latest interaction: %w", err)
		}
		contacts[idx].LastInteractionType = itype
		contacts[idx].LastInteractionNotes = inotes.String
	}

	return contacts, nil
}

// CreateGoal inserts a new goal.
func (db *DB) CreateGoal(g *Goal) error {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO goals (user_id, title, description, created_at)
		VALUES (?, ?, ?, ?)
	`, g.UserID, g.Title, g.Description, now)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	id, _ := result.LastInsertId()
	g.ID = id
	g.CreatedAt = now
	return nil
}

// RecentGoals returns the user's most recently created goals.
func (db *DB) RecentGoals(userID string, limit int) ([]Goal, error) {
	rows, err := db.Query(`
		SELECT id, user_id, title, description, created_at
		FROM goals WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		var desc sql.NullString
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &desc, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Description = desc.String
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// AddInteraction records a touchpoint with a contact. A zero occurredAt
// means now.
func (db *DB) AddInteraction(contactID int64, interactionType, notes string, occurredAt int64) (*Interaction, error) {
	if occurredAt == 0 {
		occurredAt = time.Now().UnixMilli()
	}
	result, err := db.Exec(`
		INSERT INTO contact_interactions (contact_id, interaction_type, notes, occurred_at)
		VALUES (?, ?, ?, ?)
	`, contactID, interactionType, notes, occurredAt)
	if err != nil {
		return nil, fmt.Errorf("add interaction: %w", err)
	}
	id, _ := result.LastInsertId()
	return &Interaction{
		ID:              id,
		ContactID:       contactID,
		InteractionType: interactionType,
		Notes:           notes,
		OccurredAt:      occurredAt,
	}, nil
}

// InteractionsSince returns a user's interactions after the given time,
// joined with contact name and company, newest first.
func (db *DB) InteractionsSince(userID string, since int64) ([]Interaction, error) {
	rows, err := db.Query(`
		SELECT i.id, i.contact_id, i.interaction_type, i.notes, i.occurred_at, c.name, c.company
		FROM contact_interactions i
		JOIN contacts c ON c.id = i.contact_id
		WHERE c.user_id = ? AND i.occurred_at >= ?
		ORDER BY i.occurred_at DESC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("interactions since: %w", err)
	}
	defer rows.Close()

	var interactions []Interaction
	for rows.Next() {
		var in Interaction
		var notes, company sql.NullString
		if err := rows.Scan(&in.ID, &in.ContactID, &in.InteractionType, &notes, &in.OccurredAt, &in.ContactName, &company); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.Notes = notes.String
		in.ContactCompany = company.String
		interactions = append(interactions, in)
	}
	return interactions, rows.Err()
}
