// Package auth signs administrators in and issues their session tokens.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrUserNotFound is returned by stores when no user matches.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrInvalidSession is returned for a malformed, forged or expired token.
	ErrInvalidSession = errors.New("auth: invalid session")
)

// AdminUser is a practice staff account.
type AdminUser struct {
	ID           string
	PracticeID   string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal is an authenticated administrator.
type Principal struct {
	UserID     string `json:"user_id"`
	PracticeID string `json:"practice_id"`
	Username   string `json:"username"`
}

// Authenticator checks credentials. They are passed through unmodified.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*Principal, error)
}

// UserStore looks up admin accounts.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*AdminUser, error)
}
