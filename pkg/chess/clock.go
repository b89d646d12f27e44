package chess

import (
	"fmt"
	"time"
)

// Clock tracks the remaining time budgets for both sides of one session
// plus the timestamp of the last clock-relevant event.
//
// The clock holds no lock of its own: every method takes the wall-clock
// reading as an argument and the owning session's mutex serializes all
// access, so elapsed time is always measured inside the same critical
// section that re-bases lastEvent. Budgets may go negative after a charge;
// callers detect flag fall with FlagFallen.
type Clock struct {
	whiteTimeMs int64
	blackTimeMs int64

	lastEvent time.Time
}

// NewClock creates a clock with the given budgets in milliseconds,
// based at now.
func NewClock(whiteMs, blackMs int64, now time.Time) *Clock {
	return &Clock{
		whiteTimeMs: whiteMs,
		blackTimeMs: blackMs,
		lastEvent:   now,
	}
}

// Charge subtracts the time elapsed since the last event from the given
// side's budget and re-bases the last event to now. It returns the side's
// remaining budget after the charge.
func (c *Clock) Charge(side Color, now time.Time) int64 {
	elapsed := now.Sub(c.lastEvent).Milliseconds()
	c.lastEvent = now

	if side == White {
		c.whiteTimeMs -= elapsed
		return c.whiteTimeMs
	}

	c.blackTimeMs -= elapsed
	return c.blackTimeMs
}

// Rebase resets the last-event timestamp without charging either side.
// Used when a game becomes live and the first move's timing should start
// from that moment.
func (c *Clock) Rebase(now time.Time) {
	c.lastEvent = now
}

// Remaining returns the stored budgets for both sides.
func (c *Clock) Remaining() (white, black int64) {
	return c.whiteTimeMs, c.blackTimeMs
}

// FlagFallen reports whether the given side's budget is exhausted.
func (c *Clock) FlagFallen(side Color) bool {
	if side == White {
		return c.whiteTimeMs <= 0
	}
	return c.blackTimeMs <= 0
}

// FormatClockTime formats a duration in milliseconds to a user-friendly string (e.g., "1:30")
func FormatClockTime(timeMs int64) string {
	if timeMs < 0 {
		timeMs = 0
	}

	totalSeconds := timeMs / 1000
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60

	// For times less than 10 seconds, show decimal
	if timeMs < 10000 {
		tenths := (timeMs % 1000) / 100
		return fmt.Sprintf("%d.%d", totalSeconds, tenths)
	}

	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
