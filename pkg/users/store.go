// Package users implements the user directory: the credential store and the
// HTTP surface other services resolve accounts through.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/leadflow/leadflow/pkg/auth"
	"github.com/leadflow/leadflow/pkg/observability"
	"github.com/leadflow/leadflow/pkg/storage"
)

var (
	// ErrNotFound indicates no user exists for the given email.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// Store persists credential records.
type Store struct {
	db *sql.DB
}

// NewStore creates a user store backed by the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     1,
			Description: "Create users table",
			SQL: `
				CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					email TEXT NOT NULL UNIQUE,
					password_hash TEXT NOT NULL,
					role TEXT NOT NULL,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
			`,
		},
	}
}

// Migrate creates the users schema.
func (s *Store) Migrate(ctx context.Context, logger *observability.Logger) error {
	return storage.RunMigrations(ctx, s.db, "user_migrations", migrations(), logger)
}

// GetByEmail returns the credential record for an exact email match,
// including the password hash.
func (s *Store) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	var user auth.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, role FROM users WHERE email = $1",
		email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &user, nil
}

// Create inserts a new user with a generated ID. The password must already be
// hashed by the caller.
func (s *Store) Create(ctx context.Context, name, email, passwordHash string, role auth.Role) (*auth.User, error) {
	var existing string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&existing)
	if err == nil {
		return nil, ErrEmailTaken
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	user := &auth.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), now, now,
	)
	if err != nil {
		// Two concurrent creates for the same email can both pass the existence
		// check; the unique constraint decides the loser.
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
