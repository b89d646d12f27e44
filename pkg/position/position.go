// Package position wraps the external rules engine behind the narrow seam
// the game core needs: apply a candidate move, read whose turn it is, and
// ask about terminal conditions. The core never touches the engine types
// directly.
package position

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/tecu23/match-server/pkg/chess"
)

// Position is an immutable snapshot of a game. Apply returns a fresh
// Position and never mutates the receiver, so a session can substitute its
// position wholesale on every accepted move.
type Position struct {
	game  *nchess.Game
	moves []string // lowercase UCI history, for state snapshots
}

// New returns the standard starting position.
func New() *Position {
	return &Position{game: nchess.NewGame()}
}

// FromFEN builds a position from a FEN string.
func FromFEN(fen string) (*Position, error) {
	option, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid fen: %w", err)
	}
	return &Position{game: nchess.NewGame(option)}, nil
}

// Apply validates moveText against the current position and returns the
// resulting position. Both algebraic (SAN) and UCI notations are accepted.
// The returned error message is what gets reported back to the submitting
// connection on rejection.
func (p *Position) Apply(moveText string) (*Position, error) {
	moveText = strings.TrimSpace(moveText)
	if moveText == "" {
		return nil, fmt.Errorf("empty move")
	}

	pos := p.game.Position()

	move, err := nchess.AlgebraicNotation{}.Decode(pos, moveText)
	if err != nil {
		move, err = nchess.UCINotation{}.Decode(pos, strings.ToLower(moveText))
		if err != nil {
			return nil, fmt.Errorf("illegal move %q", moveText)
		}
	}

	next := p.game.Clone()
	if err := next.Move(move, nil); err != nil {
		return nil, fmt.Errorf("illegal move %q", moveText)
	}

	uci := strings.ToLower(nchess.UCINotation{}.Encode(pos, move))

	applied := &Position{
		game:  next,
		moves: append(append([]string(nil), p.moves...), uci),
	}
	return applied, nil
}

// Turn returns the side to move.
func (p *Position) Turn() chess.Color {
	if p.game.Position().Turn() == nchess.White {
		return chess.White
	}
	return chess.Black
}

// FEN serializes the current board state.
func (p *Position) FEN() string {
	return p.game.FEN()
}

// IsCheckmate reports whether the position is checkmate for the side to move.
func (p *Position) IsCheckmate() bool {
	return p.game.Method() == nchess.Checkmate
}

// IsDraw reports whether the game ended in a draw by any rule the engine
// recognizes (stalemate, insufficient material, repetition, move rules).
func (p *Position) IsDraw() bool {
	return p.game.Outcome() == nchess.Draw
}

// Terminal reports whether the engine considers the game over.
func (p *Position) Terminal() bool {
	return p.game.Outcome() != nchess.NoOutcome
}

// GameOverReason names the engine's termination method in lowercase
// ("checkmate", "stalemate", ...), or the empty string while the game is
// live.
func (p *Position) GameOverReason() string {
	if p.game.Outcome() == nchess.NoOutcome {
		return ""
	}
	return strings.ToLower(p.game.Method().String())
}

// Moves returns the UCI move history leading to this position.
func (p *Position) Moves() []string {
	return append([]string(nil), p.moves...)
}
