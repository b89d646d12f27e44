// Package chess defines the game entities shared across the server:
// the two playing colors and the per-session clock.
package chess

// Color represents one of the two playing sides of a session.
type Color string

// The two seats of a game, conventionally white and black.
const (
	White Color = "white"
	Black Color = "black"
)

// Opp returns the opposite color for the given color.
func (c Color) Opp() Color {
	if c == White {
		return Black
	}

	return White
}
