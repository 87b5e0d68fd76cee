package schedule

import "time"

// WeekdayNames heads the grid columns, Monday first
var WeekdayNames = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Month is one page of the day picker
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Add moves delta months forward, or backward when negative
func (m Month) Add(delta int) Month {
	return MonthOf(m.first().AddDate(0, delta, 0))
}

// Next is the following month
func (m Month) Next() Month { return m.Add(1) }

// Prev is the preceding month
func (m Month) Prev() Month { return m.Add(-1) }

// Days is the number of days in the month
func (m Month) Days() int {
	return m.first().AddDate(0, 1, -1).Day()
}

// LeadingBlanks is the Monday-first weekday index of the first day
func (m Month) LeadingBlanks() int {
	return (int(m.first().Weekday()) + 6) % 7
}

// Grid lays the month out in rows of seven. Zero cells are blank.
func (m Month) Grid() []int {
	leading := m.LeadingBlanks()
	days := m.Days()

	cells := make([]int, 0, 42)
	for i := 0; i < leading; i++ {
		cells = append(cells, 0)
	}
	for day := 1; day <= days; day++ {
		cells = append(cells, day)
	}
	for len(cells)%7 != 0 {
		cells = append(cells, 0)
	}
	return cells
}

// Weeks splits Grid into rows
func (m Month) Weeks() [][]int {
	cells := m.Grid()
	weeks := make([][]int, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// Contains reports whether t falls in the month
func (m Month) Contains(t time.Time) bool {
	return !t.IsZero() && t.Year() == m.Year && t.Month() == m.Month
}

// DayDate returns the YYYY-MM-DD value for a day of the month
func (m Month) DayDate(day int) string {
	return FormatDate(time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC))
}

// String renders the month as YYYY-MM
func (m Month) String() string {
	return m.first().Format("2006-01")
}

// ParseMonth parses YYYY-MM
func ParseMonth(value string) (Month, bool) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return Month{}, false
	}
	return MonthOf(t), true
}
