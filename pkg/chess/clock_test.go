package chess

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockChargeSubtractsExactElapsed(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewClock(900000, 900000, base)

	remaining := clock.Charge(White, base.Add(2000*time.Millisecond))
	assert.Equal(t, int64(898000), remaining)

	white, black := clock.Remaining()
	assert.Equal(t, int64(898000), white)
	assert.Equal(t, int64(900000), black, "opponent's budget must be untouched")
}

func TestClockChargeRebasesLastEvent(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewClock(60000, 60000, base)

	clock.Charge(White, base.Add(1500*time.Millisecond))
	clock.Charge(Black, base.Add(2500*time.Millisecond))

	white, black := clock.Remaining()
	assert.Equal(t, int64(58500), white)
	assert.Equal(t, int64(59000), black, "black is charged only for time since white's move")
}

func TestClockRebaseDoesNotCharge(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewClock(30000, 30000, base)

	clock.Rebase(base.Add(10 * time.Second))
	remaining := clock.Charge(White, base.Add(11*time.Second))

	assert.Equal(t, int64(29000), remaining, "only time after the rebase is charged")
}

func TestClockFlagFallen(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewClock(1000, 1000, base)

	assert.False(t, clock.FlagFallen(White))

	clock.Charge(White, base.Add(1500*time.Millisecond))
	assert.True(t, clock.FlagFallen(White))
	assert.False(t, clock.FlagFallen(Black))

	white, _ := clock.Remaining()
	assert.Negative(t, white, "budget goes negative; callers clamp for display")
}

func TestFormatClockTime(t *testing.T) {
	assert.Equal(t, "15:00", FormatClockTime(900000))
	assert.Equal(t, "1:30", FormatClockTime(90000))
	assert.Equal(t, "9.5", FormatClockTime(9500))
	assert.Equal(t, "0.0", FormatClockTime(-100))
}

func TestColorOpp(t *testing.T) {
	assert.Equal(t, Black, White.Opp())
	assert.Equal(t, White, Black.Opp())
}
