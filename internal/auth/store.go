package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLUserStore reads admin_users through database/sql.
type SQLUserStore struct {
	db *sql.DB
}

// NewSQLUserStore wraps db.
func NewSQLUserStore(db *sql.DB) *SQLUserStore {
	if db == nil {
		panic("auth: sql db required")
	}
	return &SQLUserStore{db: db}
}

// FindByUsername returns the account for username or ErrUserNotFound.
func (s *SQLUserStore) FindByUsername(ctx context.Context, username string) (*AdminUser, error) {
	query := `
		SELECT id::text, practice_id::text, username, password_hash, created_at
		FROM admin_users
		WHERE username = $1
	`
	var u AdminUser
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&u.ID,
		&u.PracticeID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth: select admin user: %w", err)
	}
	return &u, nil
}

// Upsert creates the account for username, or resets its practice and
// password hash when it already exists.
func (s *SQLUserStore) Upsert(ctx context.Context, practiceID, username, passwordHash string) (*AdminUser, error) {
	query := `
		INSERT INTO admin_users (practice_id, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE
		SET practice_id = EXCLUDED.practice_id, password_hash = EXCLUDED.password_hash
		RETURNING id::text, created_at
	`
	u := AdminUser{PracticeID: practiceID, Username: username, PasswordHash: passwordHash}
	if err := s.db.QueryRowContext(ctx, query, practiceID, username, passwordHash).Scan(&u.ID, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("auth: upsert admin user: %w", err)
	}
	return &u, nil
}
