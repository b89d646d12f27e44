package game

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/chess"
	"github.com/tecu23/match-server/pkg/events"
	"github.com/tecu23/match-server/pkg/messages"
	"github.com/tecu23/match-server/pkg/position"
)

// Registry owns the collection of live sessions and the connection to
// session index, and implements matchmaking. The registry mutex serializes
// the join/create/retire path; individual session mutation goes through
// each session's own lock. Lock order is always registry before session,
// never the reverse.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	order    []uuid.UUID // insertion order, keeps lobby scans deterministic
	index    map[uuid.UUID]uuid.UUID

	defaultClockMs int64

	trigger   *RatingTrigger
	publisher *events.Publisher
	logger    *zap.Logger

	// injectable for tests
	now      func() time.Time
	coinFlip func() bool
}

// NewRegistry creates an empty registry. defaultClockMs is the per-side
// budget new sessions start with.
func NewRegistry(
	defaultClockMs int64,
	trigger *RatingTrigger,
	publisher *events.Publisher,
	logger *zap.Logger,
) *Registry {
	return &Registry{
		sessions:       make(map[uuid.UUID]*Session),
		index:          make(map[uuid.UUID]uuid.UUID),
		defaultClockMs: defaultClockMs,
		trigger:        trigger,
		publisher:      publisher,
		logger:         logger,
		now:            time.Now,
		coinFlip:       cryptoCoinFlip,
	}
}

// cryptoCoinFlip is a uniform random boolean decision. The one-time seat
// permutation rides on it rather than on any sort-based shuffle.
func cryptoCoinFlip() bool {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return false
	}
	return n.Int64() == 0
}

// Join admits a connection into a session and returns the session id plus
// the role the connection ended up with. requestedID, when it names an
// existing session, fills that session's first empty seat or adds the
// connection as a spectator; otherwise the registry scans for an open
// lobby in insertion order and finally creates a fresh session. accountID
// ties the seat to a persisted account; empty means guest.
func (r *Registry) Join(connID uuid.UUID, requestedID string, accountID string) (uuid.UUID, Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A connection occupies at most one seat across all sessions.
	if existing, ok := r.index[connID]; ok {
		if s, ok := r.sessions[existing]; ok {
			s.mu.Lock()
			role := s.roleOf(connID)
			s.mu.Unlock()
			return existing, role
		}
	}

	s := r.lookupLocked(requestedID)
	if s == nil {
		s = r.scanOpenLobbyLocked()
	}
	if s == nil {
		s = r.createSessionLocked()
	}

	s.mu.Lock()
	if color, ok := s.emptySeat(); ok {
		seat := s.seat(color)
		seat.ConnectionID = connID
		seat.AccountID = accountID
	} else {
		s.spectators[connID] = struct{}{}
	}

	// The first time the second seat fills, permute sides with a single
	// uniform coin flip. Never re-runs for later joins or spectators.
	if s.white.Occupied() && s.black.Occupied() && !s.seatsShuffled {
		s.seatsShuffled = true
		if r.coinFlip() {
			s.white, s.black = s.black, s.white
		}
		// The game is live from this moment; the first move should not
		// be charged for lobby waiting time.
		s.clock.Rebase(r.now())
	}

	role := s.roleOf(connID)
	s.mu.Unlock()

	r.index[connID] = s.ID

	r.logger.Info("connection joined session",
		zap.String("session_id", s.ID.String()),
		zap.String("connection_id", connID.String()),
		zap.String("role", string(role)))

	return s.ID, role
}

// lookupLocked resolves a requested session id, tolerating garbage input.
func (r *Registry) lookupLocked(requestedID string) *Session {
	if requestedID == "" {
		return nil
	}
	id, err := uuid.Parse(requestedID)
	if err != nil {
		return nil
	}
	return r.sessions[id]
}

// scanOpenLobbyLocked finds the oldest session with exactly one occupied
// seat. Insertion order makes the tie-break deterministic.
func (r *Registry) scanOpenLobbyLocked() *Session {
	for _, id := range r.order {
		s := r.sessions[id]
		s.mu.Lock()
		open := s.white.Occupied() != s.black.Occupied()
		s.mu.Unlock()
		if open {
			return s
		}
	}
	return nil
}

func (r *Registry) createSessionLocked() *Session {
	now := r.now()
	s := &Session{
		ID:         uuid.New(),
		position:   position.New(),
		spectators: make(map[uuid.UUID]struct{}),
		clock:      chess.NewClock(r.defaultClockMs, r.defaultClockMs, now),
		createdAt:  now,
	}

	r.sessions[s.ID] = s
	r.order = append(r.order, s.ID)

	r.logger.Info("created new session", zap.String("session_id", s.ID.String()))
	r.publisher.Publish(events.Event{
		Type:      events.EventSessionCreated,
		SessionID: s.ID.String(),
	})

	return s
}

// Disconnect handles a connection going away. A seated player with a
// seated opponent forfeits the game; a lone player just vacates the seat;
// spectators are removed from the set. The session is retired once nobody
// is left. Unknown connections are a no-op.
func (r *Registry) Disconnect(connID uuid.UUID) {
	r.mu.Lock()

	sid, ok := r.index[connID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.index, connID)

	s, ok := r.sessions[sid]
	if !ok {
		r.mu.Unlock()
		return
	}

	var (
		gameOver *Outcome
		snap     *outcomeSnapshot
	)

	s.mu.Lock()
	if color, seated := s.occupant(connID); seated {
		opponent := s.seat(color.Opp())
		if opponent.Occupied() && s.outcome == nil {
			s.outcome = &Outcome{Winner: color.Opp(), Reason: ReasonDisconnect}
			gameOver = s.outcome
			if !s.ratingApplied {
				s.ratingApplied = true
				snap = s.outcomeSnapshotLocked()
			}
		}
		*s.seat(color) = Seat{}
	} else {
		delete(s.spectators, connID)
	}
	retire := s.deserted()
	s.mu.Unlock()

	if retire {
		delete(r.sessions, sid)
		for i, id := range r.order {
			if id == sid {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
		r.logger.Info("retired session", zap.String("session_id", sid.String()))
	}
	r.mu.Unlock()

	if gameOver != nil {
		r.logger.Info("game over on disconnect",
			zap.String("session_id", sid.String()),
			zap.String("winner", string(gameOver.Winner)))
		r.publisher.Publish(events.Event{
			Type:      events.EventGameOver,
			SessionID: sid.String(),
			Payload: messages.GameOverPayload{
				Winner: string(gameOver.Winner),
				Reason: gameOver.Reason,
			},
		})
	}
	if retire {
		r.publisher.Publish(events.Event{
			Type:      events.EventSessionRetired,
			SessionID: sid.String(),
		})
	}

	// Rating persistence happens outside every lock; a slow account store
	// must not block moves or joins.
	if snap != nil {
		r.trigger.Apply(context.Background(), snap)
	}
}

// session returns a live session handle.
func (r *Registry) session(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// SessionFor resolves the session a connection currently belongs to.
func (r *Registry) SessionFor(connID uuid.UUID) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.index[connID]
	return id, ok
}

// GetState produces the full broadcastable snapshot of a session, or
// (nil, false) when no such session exists.
func (r *Registry) GetState(id uuid.UUID) (*messages.GameStatePayload, bool) {
	s, ok := r.session(id)
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), true
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
