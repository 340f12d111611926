package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie carrying the admin session token.
const SessionCookie = "connectient_session"

// Claims are the JWT claims of an admin session.
type Claims struct {
	PracticeID string `json:"practice_id"`
	Username   string `json:"username"`
	jwt.RegisteredClaims
}

// Session is an issued token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionIssuer signs and verifies HS256 session tokens.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer returns nil when secret is empty; admin routes then reject
// every request.
func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	if secret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a session for p.
func (s *SessionIssuer) Issue(p *Principal) (Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		PracticeID: p.PracticeID,
		Username:   p.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			Issuer:    "connectient",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("auth: sign session: %w", err)
	}
	return Session{Token: signed, ExpiresAt: expires}, nil
}

// Parse verifies token and returns its claims.
func (s *SessionIssuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.PracticeID == "" {
		return nil, fmt.Errorf("%w: missing practice", ErrInvalidSession)
	}
	return claims, nil
}

// TTL is the lifetime of issued sessions.
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}
