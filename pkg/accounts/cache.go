package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	leaderboardKey = "leaderboard:top"

	// leaderboardDepth is how many rows the cached snapshot holds;
	// requests for fewer rows slice it.
	leaderboardDepth = 100
)

// LeaderboardCache serves leaderboard reads through a Redis snapshot with
// a TTL. Cache failures fall back to the underlying store; the cache is
// never authoritative.
type LeaderboardCache struct {
	store  Store
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewLeaderboardCache wraps store with a Redis-backed cache.
func NewLeaderboardCache(store Store, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *LeaderboardCache {
	return &LeaderboardCache{store: store, rdb: rdb, ttl: ttl, logger: logger}
}

// Top returns up to limit accounts ordered by rating, serving from the
// cached snapshot when it is present.
func (c *LeaderboardCache) Top(ctx context.Context, limit int) ([]Account, error) {
	if limit <= 0 || limit > leaderboardDepth {
		limit = leaderboardDepth
	}

	raw, err := c.rdb.Get(ctx, leaderboardKey).Bytes()
	if err == nil {
		var cached []Account
		if err := json.Unmarshal(raw, &cached); err == nil {
			if len(cached) > limit {
				cached = cached[:limit]
			}
			return cached, nil
		}
		c.logger.Warn("discarding corrupt leaderboard cache entry")
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("leaderboard cache read failed", zap.Error(err))
	}

	list, err := c.store.Leaderboard(ctx, leaderboardDepth)
	if err != nil {
		return nil, err
	}

	for i := range list {
		list[i] = list[i].Public()
	}

	if raw, err := json.Marshal(list); err == nil {
		if err := c.rdb.Set(ctx, leaderboardKey, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}

	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Invalidate drops the cached snapshot. Called after any rating write.
func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, leaderboardKey).Err(); err != nil {
		c.logger.Warn("leaderboard cache invalidation failed", zap.Error(err))
	}
}
