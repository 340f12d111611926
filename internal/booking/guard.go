package booking

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/connectient/pkg/logging"
)

// SubmissionGuard turns rapid repeated confirms of the same preview into a
// single create. It is best effort: when Redis is unavailable every confirm
// is let through.
type SubmissionGuard struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewSubmissionGuard returns nil when client is nil; a nil guard admits
// every submission.
func NewSubmissionGuard(client *redis.Client, ttl time.Duration, logger *logging.Logger) *SubmissionGuard {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SubmissionGuard{redis: client, ttl: ttl, logger: logger}
}

// Acquire claims token. It reports false when the token was already claimed.
func (g *SubmissionGuard) Acquire(ctx context.Context, token string) bool {
	token = strings.TrimSpace(token)
	if g == nil || token == "" {
		return true
	}
	ok, err := g.redis.SetNX(ctx, guardKey(token), "1", g.ttl).Result()
	if err != nil {
		g.logger.Warn("booking: submission guard unavailable", "error", err)
		return true
	}
	return ok
}

// Release frees token so a failed submission can be retried.
func (g *SubmissionGuard) Release(ctx context.Context, token string) {
	token = strings.TrimSpace(token)
	if g == nil || token == "" {
		return
	}
	if err := g.redis.Del(ctx, guardKey(token)).Err(); err != nil {
		g.logger.Warn("booking: submission guard release failed", "error", err)
	}
}

func guardKey(token string) string {
	return "booking:submit:" + token
}
