package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, ok := ParseDate(" 2026-10-14 ", time.UTC)
	require.True(t, ok)
	assert.Equal(t, 14, d.Day())
	assert.Equal(t, "2026-10-14", FormatDate(d))

	for _, bad := range []string{"", "2026-02-30", "2026-13-01", "2026-1-01", "14/10/2026", "2026-10-14T10:00"} {
		_, ok := ParseDate(bad, time.UTC)
		assert.False(t, ok, bad)
	}
}

func TestActivityStart(t *testing.T) {
	start, ok := ActivityStart("2026-10-14", "18:30", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 14, 18, 30, 0, 0, time.UTC), start)

	start, ok = ActivityStart("2026-10-14", "18:30:15", time.UTC)
	require.True(t, ok)
	assert.Equal(t, 15, start.Second())

	for _, tc := range [][2]string{{"", "10:00"}, {"2026-10-14", ""}, {"2026-10-14", "25:00"}, {"manana", "10:00"}} {
		_, ok := ActivityStart(tc[0], tc[1], time.UTC)
		assert.False(t, ok, tc)
	}
}

func TestCheckCancellation(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	window := DefaultCancelWindow

	cases := []struct {
		name    string
		day     string
		hour    string
		allowed bool
		reason  string
	}{
		{"well ahead", "2026-10-15", "12:00", true, ""},
		{"sixteen minutes", "2026-10-14", "12:16", true, ""},
		{"exactly the window", "2026-10-14", "12:15", false, TooCloseReason(window)},
		{"inside the window", "2026-10-14", "12:05", false, TooCloseReason(window)},
		{"starting now", "2026-10-14", "12:00", false, TooCloseReason(window)},
		{"already started", "2026-10-14", "11:30", false, ReasonAlreadyStarted},
		{"no hour", "2026-10-14", "", false, ReasonInvalidStart},
		{"garbage", "soon", "later", false, ReasonInvalidStart},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckCancellation(tc.day, tc.hour, now, window, time.UTC)
			assert.Equal(t, tc.allowed, got.Allowed)
			assert.Equal(t, tc.reason, got.Reason)
		})
	}
}

func TestCheckCancellationRoundsRecentStart(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 20, 0, time.UTC)
	got := CheckCancellation("2026-10-14", "12:00", now, DefaultCancelWindow, time.UTC)
	assert.False(t, got.Allowed)
	assert.Equal(t, TooCloseReason(DefaultCancelWindow), got.Reason)
}

func TestTooCloseReason(t *testing.T) {
	assert.Equal(t, "Cannot cancel with 15 minutes or less before the start.", TooCloseReason(15*time.Minute))
}

func TestMonthGrid(t *testing.T) {
	cases := []struct {
		month   Month
		leading int
		days    int
	}{
		{Month{2026, time.October}, 3, 31},  // Thursday
		{Month{2026, time.June}, 0, 30},     // Monday
		{Month{2026, time.November}, 6, 30}, // Sunday
		{Month{2026, time.February}, 6, 28},
		{Month{2028, time.February}, 1, 29},
	}
	for _, tc := range cases {
		t.Run(tc.month.String(), func(t *testing.T) {
			grid := tc.month.Grid()
			assert.Equal(t, tc.leading, tc.month.LeadingBlanks())
			assert.Equal(t, tc.days, tc.month.Days())
			assert.Zero(t, len(grid)%7)
			assert.GreaterOrEqual(t, len(grid), tc.leading+tc.days)
			assert.Less(t, len(grid), tc.leading+tc.days+7)

			for i := 0; i < tc.leading; i++ {
				assert.Zero(t, grid[i])
			}
			assert.Equal(t, 1, grid[tc.leading])
			assert.Equal(t, tc.days, grid[tc.leading+tc.days-1])
		})
	}
}

func TestMonthNavigation(t *testing.T) {
	m := Month{2026, time.December}
	assert.Equal(t, Month{2027, time.January}, m.Next())
	assert.Equal(t, Month{2026, time.November}, m.Prev())
	assert.Equal(t, Month{2025, time.December}, m.Add(-12))
	assert.Equal(t, "2026-12-05", m.DayDate(5))

	weeks := Month{2026, time.June}.Weeks()
	require.Len(t, weeks, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, weeks[0])

	selected, ok := ParseDate("2026-12-24", time.UTC)
	require.True(t, ok)
	assert.True(t, m.Contains(selected))
	assert.False(t, m.Next().Contains(selected))
	assert.False(t, m.Contains(time.Time{}))

	parsed, ok := ParseMonth("2026-03")
	require.True(t, ok)
	assert.Equal(t, Month{2026, time.March}, parsed)
	_, ok = ParseMonth("March")
	assert.False(t, ok)
}

func TestClockPicker(t *testing.T) {
	hours := Hours()
	require.Len(t, hours, 24)
	assert.Equal(t, "00", hours[0])
	assert.Equal(t, "23", hours[23])
	assert.Len(t, Minutes(), 60)

	h, m := SplitClock("09:45")
	assert.Equal(t, "09", h)
	assert.Equal(t, "45", m)
	h, m = SplitClock("0945")
	assert.Empty(t, h)
	assert.Empty(t, m)

	assert.Equal(t, "09:00", JoinClock("09", ""))
	assert.Equal(t, "00:30", JoinClock("", "30"))
}
