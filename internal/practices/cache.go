package practices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/connectient/pkg/logging"
)

// CachedRepository is a read-through Redis cache in front of another
// Repository. Empty results are never cached so a newly onboarded practice
// shows up on the next request.
type CachedRepository struct {
	next   Repository
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedRepository wraps next. A nil redis client disables caching.
func NewCachedRepository(next Repository, client *redis.Client, ttl time.Duration, logger *logging.Logger) Repository {
	if client == nil {
		return next
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRepository{next: next, redis: client, ttl: ttl, logger: logger}
}

func (c *CachedRepository) ListByCode(ctx context.Context, code string) ([]Practice, error) {
	return c.cached(ctx, "practice:code:"+code, func() ([]Practice, error) {
		return c.next.ListByCode(ctx, code)
	})
}

func (c *CachedRepository) ListByID(ctx context.Context, id *string) ([]Practice, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	return c.cached(ctx, "practice:id:"+*id, func() ([]Practice, error) {
		return c.next.ListByID(ctx, id)
	})
}

func (c *CachedRepository) cached(ctx context.Context, key string, load func() ([]Practice, error)) ([]Practice, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []Practice
		if jsonErr := json.Unmarshal(data, &out); jsonErr == nil {
			return out, nil
		}
		c.logger.Warn("practices: dropping unreadable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("practices: cache read failed", "key", key, "error", err)
	}

	out, err := load()
	if err != nil || len(out) == 0 {
		return out, err
	}
	if err := c.store(ctx, key, out); err != nil {
		c.logger.Warn("practices: cache write failed", "key", key, "error", err)
	}
	return out, nil
}

func (c *CachedRepository) store(ctx context.Context, key string, practices []Practice) error {
	data, err := json.Marshal(practices)
	if err != nil {
		return fmt.Errorf("practices: marshal cache entry: %w", err)
	}
	return c.redis.Set(ctx, key, data, c.ttl).Err()
}
