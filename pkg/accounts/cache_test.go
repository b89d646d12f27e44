package accounts

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCacheFixture(t *testing.T) (*LeaderboardCache, *MemoryStore) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := NewMemoryStore(zap.NewNop())
	cache := NewLeaderboardCache(store, rdb, time.Minute, zap.NewNop())
	return cache, store
}

func TestLeaderboardCacheServesSnapshotUntilInvalidated(t *testing.T) {
	cache, store := newCacheFixture(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Account{Username: "alice", Email: "a@example.com", Rating: 1200}))
	require.NoError(t, store.Create(ctx, &Account{Username: "bob", Email: "b@example.com", Rating: 1100}))

	top, err := cache.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "alice", top[0].Username)

	// A rating write behind the cache's back is not visible until the
	// snapshot is invalidated.
	bob, err := store.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NoError(t, store.UpdateRating(ctx, bob.ID, 1500))

	top, err = cache.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "alice", top[0].Username, "stale snapshot still served")

	cache.Invalidate(ctx)

	top, err = cache.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "bob", top[0].Username, "fresh snapshot after invalidation")
}

func TestLeaderboardCacheStripsPrivateFields(t *testing.T) {
	cache, store := newCacheFixture(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Account{
		Username: "alice",
		Email:    "a@example.com",
		Password: "hash",
		Rating:   1200,
	}))

	top, err := cache.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Empty(t, top[0].Password)
	assert.Empty(t, top[0].Email)
}

func TestLeaderboardCacheLimitSlices(t *testing.T) {
	cache, store := newCacheFixture(t)
	ctx := context.Background()

	for _, a := range []*Account{
		{Username: "a", Email: "a@example.com", Rating: 1300},
		{Username: "b", Email: "b@example.com", Rating: 1200},
		{Username: "c", Email: "c@example.com", Rating: 1100},
	} {
		require.NoError(t, store.Create(ctx, a))
	}

	top, err := cache.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "a", top[0].Username)
}
