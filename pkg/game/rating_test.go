package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/accounts"
	"github.com/tecu23/match-server/pkg/chess"
	"github.com/tecu23/match-server/pkg/elo"
	"github.com/tecu23/match-server/pkg/events"
)

func newRatedPair(t *testing.T, store accounts.Store) (white, black *accounts.Account) {
	t.Helper()
	ctx := context.Background()

	white = &accounts.Account{Username: "alice", Email: "a@example.com"}
	black = &accounts.Account{Username: "bob", Email: "b@example.com"}
	require.NoError(t, store.Create(ctx, white))
	require.NoError(t, store.Create(ctx, black))
	return white, black
}

func TestTriggerUpdatesBothAccounts(t *testing.T) {
	logger := zap.NewNop()
	store := accounts.NewMemoryStore(logger)
	publisher := events.NewPublisher()
	trigger := NewRatingTrigger(store, publisher, logger)

	white, black := newRatedPair(t, store)
	ctx := context.Background()

	trigger.Apply(ctx, &outcomeSnapshot{
		sessionID:    uuid.New(),
		whiteAccount: white.ID,
		blackAccount: black.ID,
		winner:       chess.White,
	})

	gotWhite, err := store.FindByID(ctx, white.ID)
	require.NoError(t, err)
	gotBlack, err := store.FindByID(ctx, black.ID)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, gotWhite.Rating, 1100)
	assert.LessOrEqual(t, gotBlack.Rating, 950)
	assert.GreaterOrEqual(t, gotBlack.Rating, 900)
	assert.Equal(t, 1, gotWhite.GamesWon)
	assert.Equal(t, 1, gotBlack.GamesLost)
	assert.Equal(t, 1, gotWhite.GamesPlayed)
	assert.Equal(t, 1, gotBlack.GamesPlayed)
}

func TestTriggerDrawGivesBothDraw(t *testing.T) {
	logger := zap.NewNop()
	store := accounts.NewMemoryStore(logger)
	trigger := NewRatingTrigger(store, events.NewPublisher(), logger)

	white, black := newRatedPair(t, store)
	ctx := context.Background()

	trigger.Apply(ctx, &outcomeSnapshot{
		sessionID:    uuid.New(),
		whiteAccount: white.ID,
		blackAccount: black.ID,
	})

	gotWhite, err := store.FindByID(ctx, white.ID)
	require.NoError(t, err)
	gotBlack, err := store.FindByID(ctx, black.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, gotWhite.GamesDrawn)
	assert.Equal(t, 1, gotBlack.GamesDrawn)
	assert.Equal(t, 1000, gotWhite.Rating, "equal ratings draw to a zero delta")
	assert.Equal(t, 1000, gotBlack.Rating)
}

func TestTriggerSkipsGuestGames(t *testing.T) {
	logger := zap.NewNop()
	store := accounts.NewMemoryStore(logger)
	trigger := NewRatingTrigger(store, events.NewPublisher(), logger)

	white, _ := newRatedPair(t, store)
	ctx := context.Background()

	trigger.Apply(ctx, &outcomeSnapshot{
		sessionID:    uuid.New(),
		whiteAccount: white.ID,
		blackAccount: "",
		winner:       chess.White,
	})

	got, err := store.FindByID(ctx, white.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, got.Rating)
	assert.Zero(t, got.GamesPlayed)
}

// failingStore wraps a Store and fails rating updates for one account id.
type failingStore struct {
	accounts.Store
	failID string
}

func (f *failingStore) UpdateRating(ctx context.Context, id string, newRating int) error {
	if id == f.failID {
		return errors.New("database unavailable")
	}
	return f.Store.UpdateRating(ctx, id, newRating)
}

func TestTriggerOneFailureDoesNotBlockTheOther(t *testing.T) {
	logger := zap.NewNop()
	inner := accounts.NewMemoryStore(logger)
	publisher := events.NewPublisher()

	white, black := newRatedPair(t, inner)
	store := &failingStore{Store: inner, failID: white.ID}
	trigger := NewRatingTrigger(store, publisher, logger)

	failed := make(chan events.Event, 1)
	publisher.Subscribe(events.EventRatingFailed, func(e events.Event) {
		select {
		case failed <- e:
		default:
		}
	})

	ctx := context.Background()
	trigger.Apply(ctx, &outcomeSnapshot{
		sessionID:    uuid.New(),
		whiteAccount: white.ID,
		blackAccount: black.ID,
		winner:       chess.White,
	})

	gotWhite, err := inner.FindByID(ctx, white.ID)
	require.NoError(t, err)
	gotBlack, err := inner.FindByID(ctx, black.ID)
	require.NoError(t, err)

	assert.Equal(t, 1000, gotWhite.Rating, "failed update leaves the rating alone")
	assert.Less(t, gotBlack.Rating, 1000, "the other account still gets its update")
	assert.Equal(t, 1, gotBlack.GamesLost)

	select {
	case <-failed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a rating failure event")
	}
}

func TestTriggerWithoutStoreIsNoop(t *testing.T) {
	trigger := NewRatingTrigger(nil, events.NewPublisher(), zap.NewNop())
	trigger.Apply(context.Background(), &outcomeSnapshot{sessionID: uuid.New()})
}

func TestSeatResults(t *testing.T) {
	white, black := seatResults(chess.White)
	assert.Equal(t, elo.Win, white)
	assert.Equal(t, elo.Loss, black)

	white, black = seatResults(chess.Black)
	assert.Equal(t, elo.Loss, white)
	assert.Equal(t, elo.Win, black)

	white, black = seatResults("")
	assert.Equal(t, elo.Draw, white)
	assert.Equal(t, elo.Draw, black)
}
