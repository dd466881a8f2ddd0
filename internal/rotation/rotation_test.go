package rotation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/labstock/internal/config"
	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/timeutil"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := New(config.RotationConfig{
		Teams: []config.TeamConfig{
			{Key: "A", Name: "Team A"},
			{Key: "B", Name: "Dr.Lee/Zhijun", RestrictedCategory: "Dr.Lee"},
			{Key: "C", Name: "Team C"},
		},
		Order:        []string{"A", "B", "C"},
		Start:        "2026-02-26",
		IntervalDays: 14,
	})
	require.NoError(t, err)
	return c
}

func day(s string) time.Time {
	d, err := timeutil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAtExampleSchedule(t *testing.T) {
	c := newTestCalculator(t)

	tests := []struct {
		date     string
		team     string
		duty     string
		nextTeam string
		nextDuty string
	}{
		{"2026-02-26", "A", "2026-02-26", "B", "2026-03-12"},
		{"2026-03-11", "A", "2026-02-26", "B", "2026-03-12"},
		{"2026-03-12", "B", "2026-03-12", "C", "2026-03-26"},
		{"2026-03-25", "B", "2026-03-12", "C", "2026-03-26"},
		{"2026-03-26", "C", "2026-03-26", "A", "2026-04-09"},
		{"2026-04-09", "A", "2026-04-09", "B", "2026-04-23"},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			info := c.At(day(tt.date))
			assert.False(t, info.BeforeStart)
			assert.Equal(t, tt.team, info.Current.Team.Key)
			assert.Equal(t, tt.duty, timeutil.FormatDate(info.Current.Date))
			require.NotNil(t, info.Next)
			assert.Equal(t, tt.nextTeam, info.Next.Team.Key)
			assert.Equal(t, tt.nextDuty, timeutil.FormatDate(info.Next.Date))
		})
	}
}

func TestAtBeforeStart(t *testing.T) {
	c := newTestCalculator(t)
	info := c.At(day("2026-01-01"))

	assert.True(t, info.BeforeStart)
	assert.Equal(t, "A", info.Current.Team.Key)
	assert.Equal(t, "2026-02-26", timeutil.FormatDate(info.Current.Date))
	assert.Nil(t, info.Next)
}

func TestAtIsDeterministic(t *testing.T) {
	c := newTestCalculator(t)
	d := day("2027-07-15")
	assert.Equal(t, c.At(d), c.At(d))
}

func TestAtPeriodBoundary(t *testing.T) {
	c := newTestCalculator(t)
	for k := 0; k < 10; k++ {
		start := c.Start().AddDate(0, 0, k*c.Interval())
		last := start.AddDate(0, 0, c.Interval()-1)
		assert.Equal(t, c.At(start).Current, c.At(last).Current, "period %d", k)
		assert.NotEqual(t, c.At(start).Current.Date, c.At(last.AddDate(0, 0, 1)).Current.Date)
	}
}

func TestPrevious(t *testing.T) {
	c := newTestCalculator(t)

	prev := c.Previous(c.At(day("2026-03-20")))
	assert.Equal(t, "2026-02-26", timeutil.FormatDate(prev.Date))
	assert.Equal(t, "A", prev.Team.Key)

	// One interval before the start falls back to the first team.
	prev = c.Previous(c.At(day("2026-02-27")))
	assert.Equal(t, "2026-02-12", timeutil.FormatDate(prev.Date))
	assert.Equal(t, "A", prev.Team.Key)
}

func TestIsDutyDay(t *testing.T) {
	c := newTestCalculator(t)
	assert.True(t, c.IsDutyDay(day("2026-02-26")))
	assert.True(t, c.IsDutyDay(day("2026-03-12")))
	assert.False(t, c.IsDutyDay(day("2026-03-13")))
	assert.False(t, c.IsDutyDay(day("2026-02-12")))
}

func TestUpcoming(t *testing.T) {
	c := newTestCalculator(t)

	duties, err := c.Upcoming(day("2026-03-12"), 4)
	require.NoError(t, err)
	require.Len(t, duties, 4)

	var got []string
	for _, d := range duties {
		got = append(got, d.Team.Key+" "+timeutil.FormatDate(d.Date))
	}
	assert.Equal(t, []string{
		"B 2026-03-12",
		"C 2026-03-26",
		"A 2026-04-09",
		"B 2026-04-23",
	}, got)

	duties, err = c.Upcoming(day("2025-12-01"), 1)
	require.NoError(t, err)
	require.Len(t, duties, 1)
	assert.Equal(t, "2026-02-26", timeutil.FormatDate(duties[0].Date))
}

func TestCheckSubmission(t *testing.T) {
	c := newTestCalculator(t)
	dutyDay := day("2026-03-12")

	assert.NoError(t, c.CheckSubmission(dutyDay, "Dr.Lee/Zhijun", dutyDay))

	err := c.CheckSubmission(dutyDay, "Team A", dutyDay)
	assert.True(t, errors.Is(err, model.ErrForbidden))

	err = c.CheckSubmission(day("2026-03-13"), "Dr.Lee/Zhijun", day("2026-03-13"))
	assert.True(t, errors.Is(err, model.ErrForbidden))

	err = c.CheckSubmission(dutyDay, "Dr.Lee/Zhijun", day("2026-03-11"))
	assert.True(t, errors.Is(err, model.ErrForbidden))

	assert.True(t, c.CanEdit(day("2026-03-13"), "Team A", true, day("2026-01-01")))
	assert.False(t, c.CanEdit(day("2026-03-13"), "Team A", false, day("2026-03-13")))
}

func TestItemVisible(t *testing.T) {
	c := newTestCalculator(t)
	assert.True(t, c.ItemVisible("Common", "Team A"))
	assert.False(t, c.ItemVisible("Dr.Lee", "Team A"))
	assert.True(t, c.ItemVisible("Dr.Lee", "Dr.Lee/Zhijun"))
}

func TestGroupsAndLookup(t *testing.T) {
	c := newTestCalculator(t)
	assert.Equal(t, []string{"Team A", "Dr.Lee/Zhijun", "Team C"}, c.Groups())

	team, ok := c.TeamForGroup("Team C")
	assert.True(t, ok)
	assert.Equal(t, "C", team.Key)

	_, ok = c.TeamForGroup("Nobody")
	assert.False(t, ok)
}
