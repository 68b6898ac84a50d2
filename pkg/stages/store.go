// Package stages manages the lead pipeline stages.
package stages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates no stage exists with the given ID.
	ErrNotFound = errors.New("stage not found")

	// ErrStageInUse indicates the stage still has leads attached.
	ErrStageInUse = errors.New("stage has existing leads")
)

// Stage is a named step in the lead pipeline.
type Stage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultStages are seeded once when the table is empty.
var DefaultStages = []string{
	"Lead Generation",
	"Lead Capture",
	"Lead Tracking",
	"Lead Qualification",
	"Lead Distribution",
	"Lead Nurturing",
	"Lead Conversion",
}

// Store persists pipeline stages.
type Store struct {
	db *sql.DB
}

// NewStore creates a stage store backed by the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// List returns all stages.
func (s *Store) List(ctx context.Context) ([]Stage, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM lead_stages ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	stages := make([]Stage, 0)
	for rows.Next() {
		var stage Stage
		if err := rows.Scan(&stage.ID, &stage.Name); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}

// GetByID returns a single stage.
func (s *Store) GetByID(ctx context.Context, id string) (*Stage, error) {
	var stage Stage
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM lead_stages WHERE id = $1", id).
		Scan(&stage.ID, &stage.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("query stage: %w", err)
	}
	return &stage, nil
}

// Create inserts a new stage with a generated ID.
func (s *Store) Create(ctx context.Context, name string) (*Stage, error) {
	stage := &Stage{ID: uuid.NewString(), Name: name}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO lead_stages (id, name) VALUES ($1, $2)",
		stage.ID, stage.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert stage: %w", err)
	}
	return stage, nil
}

// Delete removes a stage. A stage with dependent leads is never deleted.
func (s *Store) Delete(ctx context.Context, id string) error {
	var inUse int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leads WHERE stage_id = $1", id,
	).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("count stage leads: %w", err)
	}
	if inUse > 0 {
		return ErrStageInUse
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM lead_stages WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete stage: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete stage: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Seed inserts the default stages when the table is empty. Safe to call on
// every startup.
func (s *Store) Seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lead_stages").Scan(&count); err != nil {
		return fmt.Errorf("count stages: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, name := range DefaultStages {
		if _, err := s.Create(ctx, name); err != nil {
			return fmt.Errorf("seed stage %s: %w", name, err)
		}
	}
	return nil
}
