package game

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/accounts"
	"github.com/tecu23/match-server/pkg/chess"
	"github.com/tecu23/match-server/pkg/elo"
	"github.com/tecu23/match-server/pkg/events"
)

// outcomeSnapshot carries everything the rating trigger needs out of the
// session lock: the trigger runs against this copy so a slow account store
// never blocks moves on the same session.
type outcomeSnapshot struct {
	sessionID    uuid.UUID
	whiteAccount string
	blackAccount string
	winner       chess.Color // empty for a draw
}

// outcomeSnapshotLocked copies the rating inputs. Callers hold mu and have
// already set ratingApplied.
func (s *Session) outcomeSnapshotLocked() *outcomeSnapshot {
	return &outcomeSnapshot{
		sessionID:    s.ID,
		whiteAccount: s.white.AccountID,
		blackAccount: s.black.AccountID,
		winner:       s.outcome.Winner,
	}
}

// RatingChange describes one account's applied rating movement; published
// on the event channel so rating persistence stays observable without
// feeding back into game state.
type RatingChange struct {
	AccountID string
	Result    elo.Result
	OldRating int
	NewRating int
	Delta     int
}

// RatingTrigger computes and commits rating plus game-stat updates when a
// session reaches a terminal state. It runs at most once per session; the
// session's ratingApplied flag is set before the trigger is invoked, so a
// failed persistence attempt is never retried.
type RatingTrigger struct {
	store     accounts.Store
	calc      elo.Calculator
	publisher *events.Publisher
	logger    *zap.Logger
}

// NewRatingTrigger creates a trigger over the given account store. A nil
// store disables rating persistence (guest-only deployments).
func NewRatingTrigger(store accounts.Store, publisher *events.Publisher, logger *zap.Logger) *RatingTrigger {
	return &RatingTrigger{store: store, publisher: publisher, logger: logger}
}

// Apply maps the outcome to per-seat results and persists both accounts'
// new ratings and stats. The two updates are independent: failure of one
// never blocks the other, and failures are published and logged, never
// returned into game-state mutation. Sessions with a guest on either seat
// are skipped entirely.
func (t *RatingTrigger) Apply(ctx context.Context, snap *outcomeSnapshot) {
	if t.store == nil {
		return
	}
	if snap.whiteAccount == "" || snap.blackAccount == "" {
		t.logger.Debug("skipping rating update for guest game",
			zap.String("session_id", snap.sessionID.String()))
		return
	}

	white, err := t.store.FindByID(ctx, snap.whiteAccount)
	if err != nil {
		t.fail(snap, snap.whiteAccount, err)
		return
	}
	black, err := t.store.FindByID(ctx, snap.blackAccount)
	if err != nil {
		t.fail(snap, snap.blackAccount, err)
		return
	}

	whiteResult, blackResult := seatResults(snap.winner)

	t.applyOne(ctx, snap, white, black.Rating, whiteResult)
	t.applyOne(ctx, snap, black, white.Rating, blackResult)
}

// applyOne commits a single account's rating and stats.
func (t *RatingTrigger) applyOne(
	ctx context.Context,
	snap *outcomeSnapshot,
	account *accounts.Account,
	opponentRating int,
	result elo.Result,
) {
	delta := t.calc.Delta(account.Rating, opponentRating, result)
	newRating := t.calc.Apply(account.Rating, delta)

	if err := t.store.UpdateRating(ctx, account.ID, newRating); err != nil {
		t.fail(snap, account.ID, err)
		return
	}
	if err := t.store.IncrementStats(ctx, account.ID, result); err != nil {
		t.fail(snap, account.ID, err)
		return
	}

	change := RatingChange{
		AccountID: account.ID,
		Result:    result,
		OldRating: account.Rating,
		NewRating: newRating,
		Delta:     newRating - account.Rating,
	}

	t.logger.Info("rating applied",
		zap.String("session_id", snap.sessionID.String()),
		zap.String("account_id", change.AccountID),
		zap.Int("new_rating", change.NewRating),
		zap.Int("delta", change.Delta))

	t.publisher.Publish(events.Event{
		Type:      events.EventRatingApplied,
		SessionID: snap.sessionID.String(),
		Payload:   change,
	})
}

// fail reports a rating persistence failure on the observable channel. The
// game outcome stands regardless.
func (t *RatingTrigger) fail(snap *outcomeSnapshot, accountID string, err error) {
	t.logger.Error("rating update failed",
		zap.String("session_id", snap.sessionID.String()),
		zap.String("account_id", accountID),
		zap.Error(err))

	t.publisher.Publish(events.Event{
		Type:      events.EventRatingFailed,
		SessionID: snap.sessionID.String(),
		Payload:   err,
	})
}

// seatResults maps a winner to the per-seat results.
func seatResults(winner chess.Color) (white, black elo.Result) {
	switch winner {
	case chess.White:
		return elo.Win, elo.Loss
	case chess.Black:
		return elo.Loss, elo.Win
	default:
		return elo.Draw, elo.Draw
	}
}
