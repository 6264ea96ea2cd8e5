package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/headlinepulse/internal/domain"
	"github.com/pscheid92/headlinepulse/internal/metrics"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	recentHeadlinesKey      = "headlines:recent"
	DefaultHeadlineCacheTTL = 10 * time.Minute
)

// HeadlineCache keeps the recent-headline ID pool in Redis. Concurrent misses
// in one process share a single load.
type HeadlineCache struct {
	rdb   goredis.Cmdable
	ttl   time.Duration
	group singleflight.Group
}

var _ domain.HeadlineCache = (*HeadlineCache)(nil)

func NewHeadlineCache(rdb goredis.Cmdable, ttl time.Duration) *HeadlineCache {
	if ttl <= 0 {
		ttl = DefaultHeadlineCacheTTL
	}
	return &HeadlineCache{rdb: rdb, ttl: ttl}
}

func (c *HeadlineCache) RecentIDs(ctx context.Context, load func(ctx context.Context) ([]uuid.UUID, error)) ([]uuid.UUID, error) {
	raw, err := c.rdb.Get(ctx, recentHeadlinesKey).Bytes()
	switch {
	case err == nil:
		var ids []uuid.UUID
		if err := json.Unmarshal(raw, &ids); err == nil {
			metrics.HeadlineCacheRequestsTotal.WithLabelValues("hit").Inc()
			return ids, nil
		}
	case !errors.Is(err, goredis.Nil):
		metrics.HeadlineCacheRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read headline cache: %w", err)
	}

	metrics.HeadlineCacheRequestsTotal.WithLabelValues("miss").Inc()
	// The load is shared, so it must outlive the caller that started it.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(recentHeadlinesKey, func() (any, error) {
		ids, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.store(loadCtx, ids)
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]uuid.UUID), nil
}

func (c *HeadlineCache) store(ctx context.Context, ids []uuid.UUID) {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	// A failed write only costs a later miss.
	_ = c.rdb.Set(ctx, recentHeadlinesKey, raw, c.ttl).Err()
}

func (c *HeadlineCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, recentHeadlinesKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate headline cache: %w", err)
	}
	return nil
}
