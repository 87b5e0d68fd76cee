package services

import (
	"context"
	"strconv"
	"strings"

	"movelite-client/internal/apiclient"
	"movelite-client/internal/models"
	"movelite-client/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// ActivityService handles the activity list and the admin form
type ActivityService struct {
	client   *apiclient.Client
	session  *session.Session
	validate *validator.Validate
}

// NewActivityService creates a new activity service
func NewActivityService(client *apiclient.Client) *ActivityService {
	return &ActivityService{
		client:   client,
		session:  client.Session(),
		validate: NewValidator(),
	}
}

// List fetches every activity
func (s *ActivityService) List(ctx context.Context) ([]models.Activity, error) {
	return s.client.ListActivities(ctx)
}

// Get fetches one activity
func (s *ActivityService) Get(ctx context.Context, id string) (*models.Activity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidActivity
	}
	return s.client.GetActivity(ctx, id)
}

// Filter keeps activities whose name contains query, ignoring case.
// A blank query keeps everything.
func Filter(list []models.Activity, query string) []models.Activity {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	return lo.Filter(list, func(a models.Activity, _ int) bool {
		return strings.Contains(strings.ToLower(a.Name), q)
	})
}

// activityForm holds the admin form fields that must be filled in.
// The other fields are sent as typed.
type activityForm struct {
	Name        string `form:"name" validate:"notblank"`
	Description string `form:"description" validate:"notblank"`
}

var activityMessages = map[string]string{
	"name":        "Name and description are required.",
	"description": "Name and description are required.",
}

// FormFromActivity prefills the admin form from an existing activity
func FormFromActivity(a models.Activity) models.ActivityForm {
	form := models.ActivityForm{
		Name:        a.Name,
		Photo:       a.Photo,
		Description: a.Description,
		Day:         a.Day,
		Hour:        a.Hour,
	}
	if a.MaxPeople != nil {
		form.MaxPeople = strconv.Itoa(*a.MaxPeople)
	}
	return form
}

// Save creates the activity when id is empty and updates it otherwise.
// It reports whether a new activity was created.
func (s *ActivityService) Save(ctx context.Context, id string, form models.ActivityForm) (bool, error) {
	if !s.session.IsAdmin() {
		return false, ErrAdminRequired
	}

	form = form.Trimmed()
	if err := s.validate.Struct(activityForm{
		Name:        form.Name,
		Description: form.Description,
	}); err != nil {
		return false, &ValidationError{Message: formMessage(err, activityMessages)}
	}

	id = strings.TrimSpace(id)
	if id == "" {
		if err := s.client.CreateActivity(ctx, form); err != nil {
			return false, err
		}
		log.Info().Str("name", form.Name).Msg("Activity created")
		return true, nil
	}

	if err := s.client.UpdateActivity(ctx, id, form); err != nil {
		return false, err
	}
	log.Info().Str("activity_id", id).Msg("Activity updated")
	return false, nil
}

// Delete removes an activity
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	if !s.session.IsAdmin() {
		return ErrAdminRequired
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidActivity
	}

	if err := s.client.DeleteActivity(ctx, id); err != nil {
		return err
	}
	log.Info().Str("activity_id", id).Msg("Activity deleted")
	return nil
}
