package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"movelite-client/internal/models"
	"movelite-client/internal/schedule"
	"movelite-client/internal/services"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// CalendarHandler renders the day picker
type CalendarHandler struct {
	activities *services.ActivityService
	out        io.Writer
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(activities *services.ActivityService, out io.Writer) *CalendarHandler {
	return &CalendarHandler{
		activities: activities,
		out:        out,
	}
}

// Show prints month as a Monday-first grid. The selected day is bracketed and
// days holding activities carry a star, both together when they coincide.
// With a selected day inside the month, that day's activities are listed below.
func (h *CalendarHandler) Show(ctx context.Context, month schedule.Month, selected string) error {
	var day time.Time
	if selected != "" {
		d, ok := schedule.ParseDate(selected, time.UTC)
		if !ok {
			return &UserError{Message: "Selected day must be a valid YYYY-MM-DD date."}
		}
		day = d
	}

	list, err := h.activities.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Calendar shown without activities")
		list = nil
	}
	byDay := lo.GroupBy(list, func(a models.Activity) string { return a.Day })

	fmt.Fprintf(h.out, "%s\n", month)
	header := lo.Map(schedule.WeekdayNames[:], func(name string, _ int) string { return " " + name + "  " })
	fmt.Fprintln(h.out, strings.TrimRight(strings.Join(header, ""), " "))
	for _, week := range month.Weeks() {
		var b strings.Builder
		for _, cell := range week {
			b.WriteString(cellText(month, cell, day, byDay))
		}
		fmt.Fprintln(h.out, strings.TrimRight(b.String(), " "))
	}

	if !month.Contains(day) {
		return nil
	}
	date := schedule.FormatDate(day)
	fmt.Fprintf(h.out, "\nSelected: %s\n", date)
	if len(byDay[date]) == 0 {
		fmt.Fprintln(h.out, "No activities on this day.")
		return nil
	}
	for _, a := range byDay[date] {
		fmt.Fprintf(h.out, "  %s  %s (%s)\n", orDash(a.Hour), orDash(a.Name), a.ID())
	}
	return nil
}

// cellText renders one five-column cell: bracket, day, bracket, star
func cellText(month schedule.Month, cell int, selected time.Time, byDay map[string][]models.Activity) string {
	if cell == 0 {
		return "     "
	}
	open, closing, star := " ", " ", " "
	if month.Contains(selected) && selected.Day() == cell {
		open, closing = "[", "]"
	}
	if len(byDay[month.DayDate(cell)]) > 0 {
		star = "*"
	}
	return fmt.Sprintf("%s%2d%s%s", open, cell, closing, star)
}
