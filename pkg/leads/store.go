package leads

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const leadColumns = `l.id, l.user_name, l.company_name, l.contact_number, l.email,
	l.first_contacted_at, l.last_contacted_at, l.comments, l.created_at, l.updated_at,
	s.id, s.name`

// Store persists leads.
type Store struct {
	db *sql.DB
}

// NewStore creates a lead store backed by the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func scanLead(row interface{ Scan(...interface{}) error }) (*Lead, error) {
	var lead Lead
	var comments sql.NullString
	err := row.Scan(
		&lead.ID, &lead.UserName, &lead.CompanyName, &lead.ContactNumber, &lead.Email,
		&lead.FirstContactedAt, &lead.LastContactedAt, &comments, &lead.CreatedAt, &lead.UpdatedAt,
		&lead.Stage.ID, &lead.Stage.Name,
	)
	if err != nil {
		return nil, err
	}
	lead.Comments = comments.String
	return &lead, nil
}

// Create inserts a lead, assigning its ID and timestamps. The caller has
// already validated the stage.
func (s *Store) Create(ctx context.Context, lead *Lead) error {
	lead.ID = uuid.NewString()
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (id, user_name, company_name, contact_number, email,
			first_contacted_at, last_contacted_at, comments, stage_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		lead.ID, lead.UserName, lead.CompanyName, lead.ContactNumber, lead.Email,
		lead.FirstContactedAt, lead.LastContactedAt, nullableString(lead.Comments),
		lead.Stage.ID, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// GetByID returns a single lead with its stage.
func (s *Store) GetByID(ctx context.Context, id string) (*Lead, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+leadColumns+" FROM leads l JOIN lead_stages s ON s.id = l.stage_id WHERE l.id = $1",
		id,
	)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("query lead: %w", err)
	}
	return lead, nil
}

// List returns leads newest first, optionally filtered by stage name.
func (s *Store) List(ctx context.Context, stageName string) ([]Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads l JOIN lead_stages s ON s.id = l.stage_id"
	args := []interface{}{}
	if stageName != "" {
		query += " WHERE s.name = $1"
		args = append(args, stageName)
	}
	query += " ORDER BY l.created_at DESC"

	return s.queryLeads(ctx, query, args...)
}

// Recent returns the most recently created leads.
func (s *Store) Recent(ctx context.Context, limit int) ([]Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads l JOIN lead_stages s ON s.id = l.stage_id" +
		" ORDER BY l.created_at DESC LIMIT $1"
	return s.queryLeads(ctx, query, limit)
}

func (s *Store) queryLeads(ctx context.Context, query string, args ...interface{}) ([]Lead, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

// Update persists every mutable field of the lead.
func (s *Store) Update(ctx context.Context, lead *Lead) error {
	lead.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE leads SET user_name = $1, company_name = $2, contact_number = $3, email = $4,
			first_contacted_at = $5, last_contacted_at = $6, comments = $7, stage_id = $8, updated_at = $9
		WHERE id = $10`,
		lead.UserName, lead.CompanyName, lead.ContactNumber, lead.Email,
		lead.FirstContactedAt, lead.LastContactedAt, nullableString(lead.Comments),
		lead.Stage.ID, lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a lead and, through the schema cascade, its notifications.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM leads WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns the total lead count and a per-stage breakdown. Stages with
// no leads are included with a zero count.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.name, COUNT(l.id) FROM lead_stages s
		LEFT JOIN leads l ON l.stage_id = s.id
		GROUP BY s.name ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("query lead stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{ByStage: make([]StageCount, 0)}
	for rows.Next() {
		var sc StageCount
		if err := rows.Scan(&sc.Stage, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan lead stats: %w", err)
		}
		stats.Total += sc.Count
		stats.ByStage = append(stats.ByStage, sc)
	}
	return stats, rows.Err()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
