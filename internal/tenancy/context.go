// Package tenancy carries the acting practice through a request.
//
// The acting practice is taken from the signed admin session, never from the
// URL or the request body. Appointment queries are always filtered by this
// id, so a practice can only read or change its own rows.
package tenancy

import (
	"context"
	"strings"
)

type practiceKey struct{}

// WithPracticeID records the practice named by the admin session's claims.
// Only the session middleware should call it.
func WithPracticeID(ctx context.Context, practiceID string) context.Context {
	return context.WithValue(ctx, practiceKey{}, strings.TrimSpace(practiceID))
}

// PracticeIDFromContext returns the acting practice. ok is false for a
// request with no signed-in practice.
func PracticeIDFromContext(ctx context.Context) (practiceID string, ok bool) {
	practiceID, _ = ctx.Value(practiceKey{}).(string)
	return practiceID, practiceID != ""
}
