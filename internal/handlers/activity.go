package handlers

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"movelite-client/internal/images"
	"movelite-client/internal/models"
	"movelite-client/internal/services"

	"golang.org/x/sync/errgroup"
)

// ActivityHandler renders the main list and the activity detail
type ActivityHandler struct {
	activities   *services.ActivityService
	reservations *services.ReservationService
	images       *images.Resolver
	out          io.Writer
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(
	activities *services.ActivityService,
	reservations *services.ReservationService,
	resolver *images.Resolver,
	out io.Writer,
) *ActivityHandler {
	return &ActivityHandler{
		activities:   activities,
		reservations: reservations,
		images:       resolver,
		out:          out,
	}
}

// load fetches the activity list and the user's reservations together.
// A failed reservation lookup leaves the set empty.
func (h *ActivityHandler) load(ctx context.Context) ([]models.Activity, services.IDSet, error) {
	var (
		list     []models.Activity
		reserved services.IDSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = h.activities.List(gctx)
		return err
	})
	g.Go(func() error {
		reserved = h.reservations.ReservedIDs(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return list, reserved, nil
}

// List prints the activities whose name matches search
func (h *ActivityHandler) List(ctx context.Context, search string) error {
	list, reserved, err := h.load(ctx)
	if err != nil {
		return fail(err, "Error loading activities")
	}

	list = services.Filter(list, search)
	if len(list) == 0 {
		fmt.Fprintln(h.out, "No activities found.")
		return nil
	}

	tw := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDAY\tTIME\tPLACES\tSTATUS")
	for _, a := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID(), orDash(a.Name), orDash(a.Day), orDash(a.Hour), places(a.MaxPeople), status(a, reserved))
	}
	return tw.Flush()
}

// Show prints one activity
func (h *ActivityHandler) Show(ctx context.Context, id string) error {
	a, err := h.activities.Get(ctx, id)
	if err != nil {
		return fail(err, "Could not load activity")
	}
	reserved := h.reservations.ReservedIDs(ctx)

	fmt.Fprintf(h.out, "%s\n\n", orDash(a.Name))
	fmt.Fprintf(h.out, "%s\n\n", orDash(a.Description))
	fmt.Fprintf(h.out, "Day:     %s\n", orDash(a.Day))
	fmt.Fprintf(h.out, "Time:    %s\n", orDash(a.Hour))
	fmt.Fprintf(h.out, "Places:  %s\n", places(a.MaxPeople))
	fmt.Fprintf(h.out, "Status:  %s\n", orDash(status(*a, reserved)))
	if src, ok := h.images.ResolveActivity(a.Photo); ok {
		fmt.Fprintf(h.out, "Picture: %s\n", src)
	}
	if reserved.Has(a.ID()) {
		e := h.reservations.Eligibility(*a)
		if e.Allowed {
			fmt.Fprintln(h.out, "You can still cancel this reservation.")
		} else {
			fmt.Fprintln(h.out, e.Reason)
		}
	}
	return nil
}

func status(a models.Activity, reserved services.IDSet) string {
	switch {
	case reserved.Has(a.ID()):
		return "reserved"
	case a.Full:
		return "full"
	default:
		return "open"
	}
}
