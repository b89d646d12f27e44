// Package game owns the live session state machine: sessions, the registry
// that admits connections into them, the turn controller that applies
// moves, and the one-shot rating trigger that runs when a game ends.
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tecu23/match-server/pkg/chess"
	"github.com/tecu23/match-server/pkg/messages"
	"github.com/tecu23/match-server/pkg/position"
)

// Outcome reasons reported to clients and recorded on the session.
const (
	ReasonCheckmate  = "checkmate"
	ReasonTimeout    = "ran out of time"
	ReasonDisconnect = "disconnect"
	ReasonDraw       = "draw"
)

// Role is what a connection is inside a session.
type Role string

// A connection is seated on one of the two sides or watches as a spectator.
const (
	RoleWhite     Role = "white"
	RoleBlack     Role = "black"
	RoleSpectator Role = "spectator"
)

// Seat is one of the two playing slots of a session. A seat is empty,
// occupied by a guest connection, or occupied by an identified account.
type Seat struct {
	ConnectionID uuid.UUID // uuid.Nil while the seat is empty
	AccountID    string    // empty for guest connections
}

// Occupied reports whether a connection holds the seat.
func (s Seat) Occupied() bool {
	return s.ConnectionID != uuid.Nil
}

// Outcome is the terminal result of a session. Once set on a session it
// never changes.
type Outcome struct {
	Winner chess.Color // empty for a draw
	Reason string
}

// IsDraw reports whether the outcome has no winning seat.
func (o Outcome) IsDraw() bool {
	return o.Winner == ""
}

// Session is one live game: two seats, any number of spectators, the
// current position, the clock and the eventual outcome. The registry is
// the sole owner of a session's lifecycle; every other component receives
// a handle and serializes all field access through mu.
type Session struct {
	ID uuid.UUID

	mu sync.Mutex

	position   *position.Position
	white      Seat
	black      Seat
	spectators map[uuid.UUID]struct{}

	clock *chess.Clock

	outcome       *Outcome
	ratingApplied bool

	// seatsShuffled guards the one-time random seat permutation that
	// happens the first time the second seat fills.
	seatsShuffled bool

	createdAt time.Time
}

// seat returns a pointer to the seat of the given color. Callers hold mu.
func (s *Session) seat(c chess.Color) *Seat {
	if c == chess.White {
		return &s.white
	}
	return &s.black
}

// occupant returns the color of the seat the connection holds, if any.
// Callers hold mu.
func (s *Session) occupant(connID uuid.UUID) (chess.Color, bool) {
	if s.white.ConnectionID == connID && s.white.Occupied() {
		return chess.White, true
	}
	if s.black.ConnectionID == connID && s.black.Occupied() {
		return chess.Black, true
	}
	return "", false
}

// emptySeat returns the first vacant seat color, white first. Callers hold mu.
func (s *Session) emptySeat() (chess.Color, bool) {
	if !s.white.Occupied() {
		return chess.White, true
	}
	if !s.black.Occupied() {
		return chess.Black, true
	}
	return "", false
}

// deserted reports whether nobody is left in the session. Callers hold mu.
func (s *Session) deserted() bool {
	return !s.white.Occupied() && !s.black.Occupied() && len(s.spectators) == 0
}

// roleOf classifies a connection inside the session. Callers hold mu.
func (s *Session) roleOf(connID uuid.UUID) Role {
	if color, ok := s.occupant(connID); ok {
		return Role(color)
	}
	return RoleSpectator
}

// snapshotLocked builds the broadcastable state payload. Callers hold mu.
func (s *Session) snapshotLocked() *messages.GameStatePayload {
	white, black := s.clock.Remaining()
	if white < 0 {
		white = 0
	}
	if black < 0 {
		black = 0
	}

	payload := &messages.GameStatePayload{
		SessionID:   s.ID.String(),
		BoardFEN:    s.position.FEN(),
		CurrentTurn: string(s.position.Turn()),
		Moves:       s.position.Moves(),
		WhiteTime:   white,
		BlackTime:   black,
		Players:     messages.PlayersPayload{},
		Spectators:  len(s.spectators),
		IsCheckmate: s.position.IsCheckmate(),
		IsDraw:      s.position.IsDraw(),
		GameOver:    s.outcome != nil,
	}

	if s.white.Occupied() {
		payload.Players.White = s.white.ConnectionID.String()
	}
	if s.black.Occupied() {
		payload.Players.Black = s.black.ConnectionID.String()
	}

	if s.outcome != nil {
		winner := "draw"
		if !s.outcome.IsDraw() {
			winner = string(s.outcome.Winner)
		}
		payload.Outcome = &messages.OutcomePayload{
			Winner: winner,
			Reason: s.outcome.Reason,
		}
	}

	return payload
}
