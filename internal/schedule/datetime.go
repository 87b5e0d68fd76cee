// Package schedule holds the date arithmetic behind the booking screens:
// strict day parsing, activity start times, cancellation eligibility,
// the Monday-first month grid and the clock picker.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of an activity day
const DateLayout = "2006-01-02"

var clockLayouts = []string{"15:04", "15:04:05"}

// ParseDate parses YYYY-MM-DD and rejects dates that do not exist, such as 2026-02-30
func ParseDate(value string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if len(value) != len(DateLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ActivityStart combines an activity's day and hour into an instant in loc.
// Either part missing or malformed yields false.
func ActivityStart(day, hour string, loc *time.Location) (time.Time, bool) {
	day = strings.TrimSpace(day)
	hour = strings.TrimSpace(hour)
	if day == "" || hour == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(DateLayout+"T"+layout, day+"T"+hour, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Hours lists the hour options of the clock picker, 00 to 23
func Hours() []string {
	return twoDigit(24)
}

// Minutes lists the minute options of the clock picker, 00 to 59
func Minutes() []string {
	return twoDigit(60)
}

func twoDigit(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%02d", i)
	}
	return out
}

// SplitClock returns the hour and minute parts of "HH:MM"; both are empty without a colon
func SplitClock(value string) (hour, minute string) {
	if !strings.Contains(value, ":") {
		return "", ""
	}
	parts := strings.Split(value, ":")
	return parts[0], parts[1]
}

// JoinClock builds "HH:MM", keeping whichever part is already chosen
func JoinClock(hour, minute string) string {
	if hour == "" {
		hour = "00"
	}
	if minute == "" {
		minute = "00"
	}
	return hour + ":" + minute
}
