// Package elo implements the pure rating calculation: mapping a player's
// rating, their opponent's rating and a game result to a rating delta.
package elo

import "math"

// Result is a single seat's view of a finished game.
type Result string

// The three possible per-seat results.
const (
	Win  Result = "win"
	Loss Result = "loss"
	Draw Result = "draw"
)

// DefaultRating is the rating assigned to new accounts.
const DefaultRating = 1000

// MinRating is the floor below which no rating can drop.
const MinRating = 100

// Calculator computes rating deltas. It is stateless; the zero value is
// ready to use.
type Calculator struct{}

// Delta returns the signed rating change for a player with the given
// rating against the given opponent rating and result. Wins are clamped to
// [100, 200], losses to [-100, -50] and draws to [-25, 25].
func (Calculator) Delta(rating, opponentRating int, result Result) int {
	k := kFactor(rating)
	expected := expectedScore(rating, opponentRating)

	var actual float64
	switch result {
	case Win:
		actual = 1
	case Loss:
		actual = 0
	case Draw:
		actual = 0.5
	}

	change := int(math.Round(k * (actual - expected)))

	switch result {
	case Win:
		return clamp(abs(change), 100, 200)
	case Loss:
		return clamp(-abs(change), -100, -50)
	default:
		return clamp(change, -25, 25)
	}
}

// Apply adds a delta to a rating, flooring the result at MinRating.
func (Calculator) Apply(rating, delta int) int {
	next := rating + delta
	if next < MinRating {
		return MinRating
	}
	return next
}

func kFactor(rating int) float64 {
	switch {
	case rating < 1200:
		return 32
	case rating < 1800:
		return 24
	default:
		return 16
	}
}

func expectedScore(rating, opponentRating int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponentRating-rating)/400))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
