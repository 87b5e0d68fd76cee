package handlers

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"movelite-client/internal/models"
	"movelite-client/internal/services"

	"github.com/samber/lo"
)

// ReservationHandler renders booking and the "my reservations" screen
type ReservationHandler struct {
	activities   *services.ActivityService
	reservations *services.ReservationService
	out          io.Writer
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(activities *services.ActivityService, reservations *services.ReservationService, out io.Writer) *ReservationHandler {
	return &ReservationHandler{
		activities:   activities,
		reservations: reservations,
		out:          out,
	}
}

// Reserve books the activity with the given id
func (h *ReservationHandler) Reserve(ctx context.Context, id string) error {
	a, err := h.activities.Get(ctx, id)
	if err != nil {
		return fail(err, "Could not load activity")
	}

	if err := h.reservations.Reserve(ctx, *a, h.reservations.ReservedIDs(ctx)); err != nil {
		return fail(err, "Could not reserve")
	}
	fmt.Fprintf(h.out, "Reservation confirmed for %s.\n", orDash(a.Name))
	return nil
}

// Mine prints the user's reservations
func (h *ReservationHandler) Mine(ctx context.Context) error {
	mine, err := h.reservations.Mine(ctx)
	if err != nil {
		return fail(err, "Error loading reservations")
	}
	return h.render(mine)
}

// Cancel asks for confirmation and drops the reservation on the activity with the given id
func (h *ReservationHandler) Cancel(ctx context.Context, id string, prompt Prompter) error {
	mine, err := h.reservations.Mine(ctx)
	if err != nil {
		return fail(err, "Error loading reservations")
	}

	a, found := lo.Find(mine, func(a models.Activity) bool { return a.ID() == id })
	if !found {
		return &UserError{Message: "You have no reservation for this activity."}
	}
	if e := h.reservations.Eligibility(a); !e.Allowed {
		return &UserError{Message: e.Reason}
	}

	ok, err := prompt.Confirm(fmt.Sprintf("Cancel your reservation for %s?", orDash(a.Name)))
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}

	if err := h.reservations.Cancel(ctx, a); err != nil {
		return fail(err, "Could not cancel")
	}
	fmt.Fprintln(h.out, "Reservation cancelled.")

	return h.render(lo.Reject(mine, func(m models.Activity, _ int) bool { return m.ID() == id }))
}

func (h *ReservationHandler) render(mine []models.Activity) error {
	if len(mine) == 0 {
		fmt.Fprintln(h.out, "You have no reservations.")
		return nil
	}

	tw := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDAY\tTIME\tCANCEL")
	for _, a := range mine {
		cancel := "yes"
		if e := h.reservations.Eligibility(a); !e.Allowed {
			cancel = e.Reason
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID(), orDash(a.Name), orDash(a.Day), orDash(a.Hour), cancel)
	}
	return tw.Flush()
}
