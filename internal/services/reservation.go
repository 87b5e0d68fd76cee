package services

import (
	"context"
	"time"

	"movelite-client/internal/apiclient"
	"movelite-client/internal/models"
	"movelite-client/internal/schedule"
	"movelite-client/internal/session"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// IDSet is the set of activity ids the user has booked
type IDSet map[string]struct{}

// Has reports whether id is in the set
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func idSet(reservations []models.Reservation) IDSet {
	return lo.Associate(reservations, func(r models.Reservation) (string, struct{}) {
		return r.ActivityID.String(), struct{}{}
	})
}

// ReservationService handles booking and cancelling
type ReservationService struct {
	client  *apiclient.Client
	session *session.Session
	window  time.Duration
	loc     *time.Location
	now     func() time.Time
}

// NewReservationService creates a new reservation service.
// window is how close to the start a reservation stops being cancellable.
func NewReservationService(client *apiclient.Client, window time.Duration, loc *time.Location) *ReservationService {
	if window <= 0 {
		window = schedule.DefaultCancelWindow
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReservationService{
		client:  client,
		session: client.Session(),
		window:  window,
		loc:     loc,
		now:     time.Now,
	}
}

// ReservedIDs loads the signed-in user's booked activity ids.
// Without a user, or when loading fails, the set is empty.
func (s *ReservationService) ReservedIDs(ctx context.Context) IDSet {
	uid := s.session.UserID()
	if uid == "" {
		return IDSet{}
	}

	reservations, err := s.client.ListReservations(ctx, uid)
	if err != nil {
		log.Warn().Err(err).Str("user_id", uid).Msg("Failed to load reservations")
		return IDSet{}
	}
	return idSet(reservations)
}

// Reserve books the user onto a, after the checks the API would refuse anyway
func (s *ReservationService) Reserve(ctx context.Context, a models.Activity, reserved IDSet) error {
	id := a.ID()
	switch {
	case id == "":
		return ErrInvalidActivity
	case reserved.Has(id):
		return ErrAlreadyReserved
	case a.Full:
		return ErrActivityFull
	case s.session.UserID() == "":
		return ErrLoginRequired
	}

	if err := s.client.Reserve(ctx, id); err != nil {
		return err
	}
	log.Info().Str("activity_id", id).Str("user_id", s.session.UserID()).Msg("Reservation confirmed")
	return nil
}

// Mine loads the activities the user has booked
func (s *ReservationService) Mine(ctx context.Context) ([]models.Activity, error) {
	if s.session.UserID() == "" {
		return nil, ErrLoginRequired
	}

	var (
		activities   []models.Activity
		reservations []models.Reservation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activities, err = s.client.ListActivities(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		reservations, err = s.client.ListReservations(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	booked := idSet(reservations)
	return lo.Filter(activities, func(a models.Activity, _ int) bool {
		return booked.Has(a.ID())
	}), nil
}

// Eligibility tells whether a reservation on a may still be cancelled
func (s *ReservationService) Eligibility(a models.Activity) schedule.Eligibility {
	return schedule.CheckCancellation(a.Day, a.Hour, s.now(), s.window, s.loc)
}

// Cancel drops the user's reservation on a when it is still allowed
func (s *ReservationService) Cancel(ctx context.Context, a models.Activity) error {
	if e := s.Eligibility(a); !e.Allowed {
		return &CancellationError{Reason: e.Reason}
	}
	id := a.ID()
	if id == "" {
		return ErrInvalidActivity
	}

	if err := s.client.CancelReservation(ctx, id); err != nil {
		return err
	}
	log.Info().Str("activity_id", id).Msg("Reservation cancelled")
	return nil
}
