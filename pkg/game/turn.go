package game

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/events"
	"github.com/tecu23/match-server/pkg/messages"
)

// Rejection reasons reported back to the submitting connection. These are
// expected conditions, never propagated past the turn controller boundary.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrGameOver        = errors.New("game already over")
	ErrNotPlayer       = errors.New("not a player")
	ErrNotYourTurn     = errors.New("not your turn")
)

// TurnController validates and applies moves against a session, charges
// the mover's clock and evaluates terminal conditions. It never talks to
// the transport; the caller broadcasts the refreshed state.
type TurnController struct {
	registry *Registry
	logger   *zap.Logger
}

// NewTurnController creates a turn controller over the given registry.
func NewTurnController(registry *Registry, logger *zap.Logger) *TurnController {
	return &TurnController{registry: registry, logger: logger}
}

// SubmitMove applies a move for the given connection. Preconditions are
// checked in order, short-circuiting on the first failure: session exists,
// game still live, connection is seated, it is the connection's turn, and
// the rules engine accepts the move.
//
// On acceptance the position is substituted with the engine's result, the
// elapsed time since the last clock event is charged to the mover, and
// terminal conditions are evaluated in the fixed order timeout, checkmate,
// draw. A move that both exhausts the mover's clock and delivers mate is
// recorded as a time forfeit.
func (tc *TurnController) SubmitMove(
	ctx context.Context,
	sessionID uuid.UUID,
	connID uuid.UUID,
	move string,
) error {
	s, ok := tc.registry.session(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	var (
		gameOver *Outcome
		snap     *outcomeSnapshot
	)

	s.mu.Lock()

	if s.outcome != nil {
		s.mu.Unlock()
		return ErrGameOver
	}

	color, seated := s.occupant(connID)
	if !seated {
		s.mu.Unlock()
		return ErrNotPlayer
	}

	if s.position.Turn() != color {
		s.mu.Unlock()
		return ErrNotYourTurn
	}

	next, err := s.position.Apply(move)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.position = next
	remaining := s.clock.Charge(color, tc.registry.now())

	// Timeout is evaluated before the move's chess-theoretic result: a
	// flagging move that happens to be checkmate is a time forfeit.
	switch {
	case remaining <= 0:
		s.outcome = &Outcome{Winner: color.Opp(), Reason: ReasonTimeout}
	case next.IsCheckmate():
		s.outcome = &Outcome{Winner: color, Reason: ReasonCheckmate}
	case next.IsDraw():
		s.outcome = &Outcome{Reason: ReasonDraw}
	}

	if s.outcome != nil {
		gameOver = s.outcome
		if !s.ratingApplied {
			s.ratingApplied = true
			snap = s.outcomeSnapshotLocked()
		}
	}

	s.mu.Unlock()

	tc.logger.Debug("processed move",
		zap.String("session_id", sessionID.String()),
		zap.String("connection_id", connID.String()),
		zap.String("move", move))

	if gameOver != nil {
		winner := "draw"
		if !gameOver.IsDraw() {
			winner = string(gameOver.Winner)
		}
		tc.logger.Info("game over",
			zap.String("session_id", sessionID.String()),
			zap.String("winner", winner),
			zap.String("reason", gameOver.Reason))
		tc.registry.publisher.Publish(events.Event{
			Type:      events.EventGameOver,
			SessionID: sessionID.String(),
			Payload: messages.GameOverPayload{
				Winner: winner,
				Reason: gameOver.Reason,
			},
		})
	}

	// The account store is slow collaborator territory; the session lock
	// is already released here.
	if snap != nil {
		tc.registry.trigger.Apply(ctx, snap)
	}

	return nil
}
