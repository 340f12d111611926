package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wolfman30/connectient/internal/auth"
	"github.com/wolfman30/connectient/internal/tenancy"
)

type contextKey string

const adminClaimsKey contextKey = "adminClaims"

// AdminSession enforces an admin session token from the session cookie or a
// Bearer header. The session's practice becomes the request's practice scope.
func AdminSession(sessions *auth.SessionIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions == nil {
				http.Error(w, "admin auth disabled", http.StatusUnauthorized)
				return
			}
			tokenString := sessionToken(r)
			if tokenString == "" {
				http.Error(w, "missing session", http.StatusUnauthorized)
				return
			}
			claims, err := sessions.Parse(tokenString)
			if err != nil {
				http.Error(w, "invalid session", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), adminClaimsKey, *claims)
			ctx = tenancy.WithPracticeID(ctx, claims.PracticeID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	if c, err := r.Cookie(auth.SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// AdminClaimsFromContext returns admin session claims if present.
func AdminClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(auth.Claims)
	return claims, ok
}
