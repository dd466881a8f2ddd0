package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockTodayUsesFixedZone(t *testing.T) {
	// 2026-03-01 20:30 UTC is already 2026-03-02 in UTC+9.
	instant := time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC)
	clock := NewClock("KST", 9*60).WithNow(func() time.Time { return instant })

	assert.Equal(t, "2026-03-02", FormatDate(clock.Today()))
	assert.Equal(t, 5, clock.Now().Hour())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-26")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2026-2-26", "26-02-2026", "2026-13-01", "garbage"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 14, DaysBetween(a, a.AddDate(0, 0, 14)))
	assert.Equal(t, -1, DaysBetween(a, a.AddDate(0, 0, -1)))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestClockTimestamp(t *testing.T) {
	instant := time.Date(2026, 3, 12, 0, 15, 30, 0, time.UTC)
	clock := NewClock("KST", 9*60).WithNow(func() time.Time { return instant })
	assert.Equal(t, "2026-03-12 09:15:30", clock.Timestamp())
}
