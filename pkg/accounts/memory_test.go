package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/elo"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(zap.NewNop())
}

func TestMemoryStoreCreateAndFind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	account := &Account{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, store.Create(ctx, account))
	require.NotEmpty(t, account.ID)
	assert.Equal(t, elo.DefaultRating, account.Rating)

	byID, err := store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byName.ID)

	byEmail, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)

	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Account{Username: "alice", Email: "a@example.com"}))

	assert.Error(t, store.Create(ctx, &Account{Username: "alice", Email: "b@example.com"}))
	assert.Error(t, store.Create(ctx, &Account{Username: "bob", Email: "a@example.com"}))
}

func TestMemoryStoreUpdateRatingAndStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	account := &Account{Username: "alice", Email: "a@example.com"}
	require.NoError(t, store.Create(ctx, account))

	require.NoError(t, store.UpdateRating(ctx, account.ID, 1150))
	require.NoError(t, store.IncrementStats(ctx, account.ID, elo.Win))
	require.NoError(t, store.IncrementStats(ctx, account.ID, elo.Draw))

	got, err := store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1150, got.Rating)
	assert.Equal(t, 2, got.GamesPlayed)
	assert.Equal(t, 1, got.GamesWon)
	assert.Equal(t, 1, got.GamesDrawn)
	assert.Equal(t, 0, got.GamesLost)

	assert.ErrorIs(t, store.UpdateRating(ctx, "missing", 1), ErrNotFound)
	assert.ErrorIs(t, store.IncrementStats(ctx, "missing", elo.Win), ErrNotFound)
}

func TestMemoryStoreLeaderboardOrdersByRating(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, a := range []*Account{
		{Username: "low", Email: "low@example.com", Rating: 900},
		{Username: "high", Email: "high@example.com", Rating: 1600},
		{Username: "mid", Email: "mid@example.com", Rating: 1200},
	} {
		require.NoError(t, store.Create(ctx, a))
	}

	top, err := store.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "high", top[0].Username)
	assert.Equal(t, "mid", top[1].Username)
}
