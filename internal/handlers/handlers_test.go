package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"movelite-client/internal/apiclient"
	"movelite-client/internal/apitest"
	"movelite-client/internal/images"
	"movelite-client/internal/models"
	"movelite-client/internal/schedule"
	"movelite-client/internal/services"
	"movelite-client/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answer struct {
	yes   bool
	asked []string
}

func (a *answer) Confirm(question string) (bool, error) {
	a.asked = append(a.asked, question)
	return a.yes, nil
}

type env struct {
	srv          *apitest.Server
	out          *bytes.Buffer
	auth         *AuthHandler
	activities   *ActivityHandler
	reservations *ReservationHandler
	admin        *AdminHandler
	calendar     *CalendarHandler
	userID       string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := apitest.New(t)
	client := apiclient.New(session.New(), apiclient.Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	out := &bytes.Buffer{}

	authSvc := services.NewAuthService(client, "imagenes/persona1.jpg")
	activitySvc := services.NewActivityService(client)
	reservationSvc := services.NewReservationService(client, 15*time.Minute, time.UTC)
	resolver := images.NewResolver(srv.URL, false, zerolog.Nop())

	e := &env{
		srv:          srv,
		out:          out,
		auth:         NewAuthHandler(authSvc, out),
		activities:   NewActivityHandler(activitySvc, reservationSvc, resolver, out),
		reservations: NewReservationHandler(activitySvc, reservationSvc, out),
		admin:        NewAdminHandler(activitySvc, out),
		calendar:     NewCalendarHandler(activitySvc, out),
	}
	e.userID = srv.AddUser(models.User{Name: "Ana", Surname: "Diaz", Email: "ana@example.com", Role: "cliente"}, "password1")
	srv.AddUser(models.User{Name: "Root", Email: "admin@example.com", Role: models.RoleAdmin}, "password1")
	return e
}

func (e *env) login(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, e.auth.Login(context.Background(), email, "password1"))
	e.out.Reset()
}

func TestLoginGreets(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.auth.Login(context.Background(), "admin@example.com", "password1"))
	assert.Contains(t, e.out.String(), "Welcome, Root!")
	assert.Contains(t, e.out.String(), "administrator")
}

func TestLoginFailureMessage(t *testing.T) {
	e := newEnv(t)
	err := e.auth.Login(context.Background(), "ana@example.com", "nope")
	var uerr *UserError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "Invalid credentials", uerr.Message)

	err = e.auth.EnsureLogin(context.Background(), "", "")
	assert.EqualError(t, err, "You must sign in first.")
	assert.ErrorIs(t, err, services.ErrLoginRequired)
}

func TestEnsureLoginKeepsSession(t *testing.T) {
	e := newEnv(t)
	e.login(t, "ana@example.com")
	before := len(e.srv.Requests())
	require.NoError(t, e.auth.EnsureLogin(context.Background(), "", ""))
	assert.Len(t, e.srv.Requests(), before)
}

func TestRegisterAndProfile(t *testing.T) {
	e := newEnv(t)
	err := e.auth.Register(context.Background(), services.RegisterInput{Name: "Luis", Surname: "Paz", Email: "luis@example.com", Password: "short", Confirm: "short"})
	assert.EqualError(t, err, "Password must have at least 8 characters.")

	require.NoError(t, e.auth.Register(context.Background(), services.RegisterInput{
		Name: "Luis", Surname: "Paz", Email: "luis@example.com", Password: "password1", Confirm: "password1",
	}))
	assert.Contains(t, e.out.String(), "Account created.")

	assert.EqualError(t, e.auth.Profile(), "You must sign in first.")
	e.login(t, "luis@example.com")
	require.NoError(t, e.auth.Profile())
	assert.Contains(t, e.out.String(), "Luis Paz")
	assert.Contains(t, e.out.String(), e.srv.URL+"/imagenes/persona1.jpg")
	assert.Contains(t, e.out.String(), "Token role:    cliente")
	assert.Regexp(t, `Token expires: \d{4}-\d{2}-\d{2}T`, e.out.String())
}

func TestLogoutForgetsSession(t *testing.T) {
	e := newEnv(t)
	e.login(t, "ana@example.com")
	require.NoError(t, e.auth.Profile())

	e.auth.Logout()
	assert.EqualError(t, e.auth.Profile(), "You must sign in first.")
	assert.EqualError(t, e.auth.EnsureLogin(context.Background(), "", ""), "You must sign in first.")
}

func TestListShowsStatusAndFilters(t *testing.T) {
	e := newEnv(t)
	yoga := e.srv.AddActivity(models.Activity{Name: "Yoga", Day: "2030-01-10", Hour: "09:00"})
	e.srv.AddActivity(models.Activity{Name: "Spinning", Day: "2030-01-11", Hour: "10:00", Full: true})
	e.srv.AddReservation(e.userID, yoga)
	e.login(t, "ana@example.com")

	require.NoError(t, e.activities.List(context.Background(), ""))
	out := e.out.String()
	assert.Contains(t, out, "NAME")
	assert.Regexp(t, `Yoga\s+2030-01-10\s+09:00\s+-\s+reserved`, out)
	assert.Regexp(t, `Spinning\s+2030-01-11\s+10:00\s+-\s+full`, out)

	e.out.Reset()
	require.NoError(t, e.activities.List(context.Background(), "SPIN"))
	assert.NotContains(t, e.out.String(), "Yoga")

	e.out.Reset()
	require.NoError(t, e.activities.List(context.Background(), "pilates"))
	assert.Equal(t, "No activities found.\n", e.out.String())
}

func TestListSurvivesReservationFailure(t *testing.T) {
	e := newEnv(t)
	e.srv.AddActivity(models.Activity{Name: "Yoga"})
	e.login(t, "ana@example.com")
	e.srv.Fail(http.MethodGet, "/reservas", http.StatusInternalServerError, "boom")

	require.NoError(t, e.activities.List(context.Background(), ""))
	assert.Regexp(t, `Yoga.*open`, e.out.String())
}

func TestListFailureFallsBack(t *testing.T) {
	e := newEnv(t)
	e.login(t, "ana@example.com")
	e.srv.Fail(http.MethodGet, "/actividades", http.StatusServiceUnavailable, "")

	err := e.activities.List(context.Background(), "")
	assert.EqualError(t, err, "Error loading activities")
}

func TestShow(t *testing.T) {
	e := newEnv(t)
	capacity := 10
	id := e.srv.AddActivity(models.Activity{
		Name: "Kung fu", Description: "Artes marciales", Day: "2020-01-10", Hour: "09:00",
		Photo: "/imagenes/kunfu.jpg", MaxPeople: &capacity,
	})
	e.srv.AddReservation(e.userID, id)
	e.login(t, "ana@example.com")

	require.NoError(t, e.activities.Show(context.Background(), id))
	out := e.out.String()
	assert.Contains(t, out, "Artes marciales")
	assert.Contains(t, out, "Places:  10")
	assert.Contains(t, out, "Picture: assets/images/kunfu.jpg")
	assert.Contains(t, out, schedule.ReasonAlreadyStarted)

	err := e.activities.Show(context.Background(), "missing")
	assert.EqualError(t, err, "Activity not found")
}

func TestReserve(t *testing.T) {
	e := newEnv(t)
	id := e.srv.AddActivity(models.Activity{Name: "Yoga"})
	full := e.srv.AddActivity(models.Activity{Name: "Spinning", Full: true})
	e.login(t, "ana@example.com")

	require.NoError(t, e.reservations.Reserve(context.Background(), id))
	assert.Contains(t, e.out.String(), "Reservation confirmed for Yoga.")
	assert.True(t, e.srv.Reserved(e.userID, id))

	assert.EqualError(t, e.reservations.Reserve(context.Background(), id), "You already have a reservation for this activity.")
	assert.EqualError(t, e.reservations.Reserve(context.Background(), full), "There are no places left for this activity.")
}

func TestMineAndCancel(t *testing.T) {
	e := newEnv(t)
	future := e.srv.AddActivity(models.Activity{Name: "Yoga", Day: "2030-01-10", Hour: "09:00"})
	past := e.srv.AddActivity(models.Activity{Name: "Spinning", Day: "2020-01-10", Hour: "09:00"})
	other := e.srv.AddActivity(models.Activity{Name: "Pilates", Day: "2030-02-10", Hour: "09:00"})
	e.srv.AddReservation(e.userID, future)
	e.srv.AddReservation(e.userID, past)
	e.login(t, "ana@example.com")
	ctx := context.Background()

	require.NoError(t, e.reservations.Mine(ctx))
	out := e.out.String()
	assert.Regexp(t, `Yoga\s+2030-01-10\s+09:00\s+yes`, out)
	assert.Contains(t, out, schedule.ReasonAlreadyStarted)
	assert.NotContains(t, out, "Pilates")

	assert.EqualError(t, e.reservations.Cancel(ctx, other, &answer{yes: true}), "You have no reservation for this activity.")
	assert.EqualError(t, e.reservations.Cancel(ctx, past, &answer{yes: true}), schedule.ReasonAlreadyStarted)

	no := &answer{}
	assert.ErrorIs(t, e.reservations.Cancel(ctx, future, no), ErrAborted)
	assert.Len(t, no.asked, 1)
	assert.True(t, e.srv.Reserved(e.userID, future))

	e.out.Reset()
	require.NoError(t, e.reservations.Cancel(ctx, future, &answer{yes: true}))
	out = e.out.String()
	assert.Contains(t, out, "Reservation cancelled.")
	assert.NotContains(t, out, "Yoga")
	assert.Contains(t, out, "Spinning")
	assert.False(t, e.srv.Reserved(e.userID, future))
}

func TestMineWithoutLogin(t *testing.T) {
	e := newEnv(t)
	assert.EqualError(t, e.reservations.Mine(context.Background()), "You must sign in first.")
}

func TestAdminCreateUpdateDelete(t *testing.T) {
	e := newEnv(t)
	e.login(t, "admin@example.com")
	ctx := context.Background()

	err := e.admin.Create(ctx, ActivityChanges{Name: "Yoga"})
	assert.EqualError(t, err, "Name and description are required.")

	require.NoError(t, e.admin.Create(ctx, ActivityChanges{
		Name: "Yoga", Description: "Suave", Day: "2030-01-10", Time: "09:30", MaxPeople: "12",
	}))
	assert.Contains(t, e.out.String(), "Activity created.")

	last, _ := e.srv.LastRequest()
	assert.Contains(t, last.Body, `"hora":"09:30"`)

	e.out.Reset()
	require.NoError(t, e.activities.List(ctx, ""))
	rows := strings.Split(e.out.String(), "\n")
	require.GreaterOrEqual(t, len(rows), 2)
	id := strings.Fields(rows[1])[0]

	require.NoError(t, e.admin.Update(ctx, id, ActivityChanges{Minute: "45"}))
	a, ok := e.srv.Activity(id)
	require.True(t, ok)
	assert.Equal(t, "09:45", a.Hour)
	assert.Equal(t, "Yoga", a.Name)
	require.NotNil(t, a.MaxPeople)
	assert.Equal(t, 12, *a.MaxPeople)

	assert.EqualError(t, e.admin.Update(ctx, id, ActivityChanges{Hour: "24"}), "Hour must be between 00 and 23.")

	no := &answer{}
	assert.ErrorIs(t, e.admin.Delete(ctx, id, no), ErrAborted)
	require.Len(t, no.asked, 1)
	assert.Contains(t, no.asked[0], "Delete Yoga?")

	require.NoError(t, e.admin.Delete(ctx, id, &answer{yes: true}))
	_, ok = e.srv.Activity(id)
	assert.False(t, ok)
}

func TestAdminRefusedForClients(t *testing.T) {
	e := newEnv(t)
	id := e.srv.AddActivity(models.Activity{Name: "Yoga", Description: "x"})
	e.login(t, "ana@example.com")

	err := e.admin.Update(context.Background(), id, ActivityChanges{Name: "Hack"})
	assert.EqualError(t, err, "Only admins can manage activities.")
	a, _ := e.srv.Activity(id)
	assert.Equal(t, "Yoga", a.Name)
}

func TestCalendar(t *testing.T) {
	e := newEnv(t)
	e.srv.AddActivity(models.Activity{Name: "Yoga", Day: "2026-10-05", Hour: "09:00"})
	e.srv.AddActivity(models.Activity{Name: "Spinning", Day: "2026-10-20", Hour: "18:00"})
	e.login(t, "ana@example.com")

	month := schedule.Month{Year: 2026, Month: time.October}
	require.NoError(t, e.calendar.Show(context.Background(), month, "2026-10-20"))

	lines := strings.Split(strings.TrimRight(e.out.String(), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 7)
	assert.Equal(t, "2026-10", lines[0])
	assert.Equal(t, " Mo   Tu   We   Th   Fr   Sa   Su", lines[1])
	assert.Equal(t, strings.Repeat(" ", 15)+"  1    2    3    4", lines[2])
	assert.Equal(t, "  5*   6    7    8    9   10   11", lines[3])
	assert.Equal(t, " 19  [20]* 21   22   23   24   25", lines[5])
	assert.Contains(t, e.out.String(), "Selected: 2026-10-20")
	assert.Contains(t, e.out.String(), "18:00  Spinning")

	e.out.Reset()
	require.NoError(t, e.calendar.Show(context.Background(), month.Next(), "2026-10-20"))
	assert.NotContains(t, e.out.String(), "Selected")

	e.out.Reset()
	require.NoError(t, e.calendar.Show(context.Background(), month, "2026-10-21"))
	lines = strings.Split(e.out.String(), "\n")
	assert.Equal(t, " 19   20* [21]  22   23   24   25", lines[5])
	assert.Contains(t, e.out.String(), "No activities on this day.")

	assert.Error(t, e.calendar.Show(context.Background(), month, "2026-02-30"))
}

func TestCalendarWithoutActivities(t *testing.T) {
	e := newEnv(t)
	month := schedule.Month{Year: 2026, Month: time.June}
	require.NoError(t, e.calendar.Show(context.Background(), month, ""))
	lines := strings.Split(e.out.String(), "\n")
	assert.Equal(t, "  1    2    3    4    5    6    7", lines[2])
}

func TestLinePrompter(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewLinePrompter(strings.NewReader("yes\nn\n"), out, false)

	ok, err := p.Confirm("Go?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Go? [y/N]: ", out.String())

	ok, err = p.Confirm("Again?")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Confirm("EOF?")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewLinePrompter(strings.NewReader(""), out, true).Confirm("Skip?")
	require.NoError(t, err)
	assert.True(t, ok)
}
