package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/connectient/pkg/logging"
)

// HashPassword returns a bcrypt hash for storage in admin_users.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

// PasswordAuthenticator checks credentials against bcrypt hashes in a UserStore.
type PasswordAuthenticator struct {
	users  UserStore
	logger *logging.Logger
}

// NewPasswordAuthenticator builds an authenticator over users.
func NewPasswordAuthenticator(users UserStore, logger *logging.Logger) *PasswordAuthenticator {
	if users == nil {
		panic("auth: user store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PasswordAuthenticator{users: users, logger: logger}
}

func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("auth: user lookup failed", "username", username, "error", err)
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.logger.Warn("auth: password mismatch", "username", username)
		return nil, ErrInvalidCredentials
	}
	return &Principal{UserID: user.ID, PracticeID: user.PracticeID, Username: user.Username}, nil
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
