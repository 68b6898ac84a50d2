// Package todos implements per-user todo items on the lead dashboard.
package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates no todo exists with the given ID for this user.
var ErrNotFound = errors.New("todo not found")

// Todo is a dashboard checklist item, owned by one user.
type Todo struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists todos. Every query is scoped to a user ID; one user can
// never see or touch another's items.
type Store struct {
	db *sql.DB
}

// NewStore creates a todo store backed by the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListByUser returns the user's todos, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Todo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, done, user_id, created_at, updated_at FROM todos
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := make([]Todo, 0)
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Done, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// Create inserts a todo for the user.
func (s *Store) Create(ctx context.Context, text, userID string) (*Todo, error) {
	now := time.Now().UTC()
	todo := &Todo{Text: text, Done: false, UserID: userID, CreatedAt: now, UpdatedAt: now}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO todos (text, done, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		todo.Text, todo.Done, todo.UserID, todo.CreatedAt, todo.UpdatedAt,
	).Scan(&todo.ID)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return todo, nil
}

// Toggle flips the done flag and returns the updated todo.
func (s *Store) Toggle(ctx context.Context, id int64, userID string) (*Todo, error) {
	var t Todo
	err := s.db.QueryRowContext(ctx, `
		UPDATE todos SET done = NOT done, updated_at = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, text, done, user_id, created_at, updated_at`,
		time.Now().UTC(), id, userID,
	).Scan(&t.ID, &t.Text, &t.Done, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("toggle todo: %w", err)
	}
	return &t, nil
}

// Delete removes the user's todo.
func (s *Store) Delete(ctx context.Context, id int64, userID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
