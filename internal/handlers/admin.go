package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"movelite-client/internal/models"
	"movelite-client/internal/schedule"
	"movelite-client/internal/services"

	"github.com/samber/lo"
)

// ActivityChanges are the admin form fields the user filled in.
// Empty fields keep the current value on update.
type ActivityChanges struct {
	Name        string
	Description string
	Photo       string
	Day         string
	Time        string
	Hour        string
	Minute      string
	MaxPeople   string
}

// apply merges the changes onto form. Hour and Minute pick one part of the clock
// and keep the other.
func (c ActivityChanges) apply(form models.ActivityForm) (models.ActivityForm, error) {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&form.Name, c.Name)
	set(&form.Description, c.Description)
	set(&form.Photo, c.Photo)
	set(&form.Day, c.Day)
	set(&form.Hour, c.Time)
	set(&form.MaxPeople, c.MaxPeople)

	if c.Hour == "" && c.Minute == "" {
		return form, nil
	}
	if c.Hour != "" && !lo.Contains(schedule.Hours(), c.Hour) {
		return form, &UserError{Message: "Hour must be between 00 and 23."}
	}
	if c.Minute != "" && !lo.Contains(schedule.Minutes(), c.Minute) {
		return form, &UserError{Message: "Minute must be between 00 and 59."}
	}
	hour, minute := schedule.SplitClock(form.Hour)
	if c.Hour != "" {
		hour = c.Hour
	}
	if c.Minute != "" {
		minute = c.Minute
	}
	form.Hour = schedule.JoinClock(hour, minute)
	return form, nil
}

// AdminHandler renders the activity form and deletion
type AdminHandler struct {
	activities *services.ActivityService
	out        io.Writer
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(activities *services.ActivityService, out io.Writer) *AdminHandler {
	return &AdminHandler{
		activities: activities,
		out:        out,
	}
}

// Create saves a new activity
func (h *AdminHandler) Create(ctx context.Context, changes ActivityChanges) error {
	form, err := changes.apply(models.ActivityForm{})
	if err != nil {
		return err
	}
	if _, err := h.activities.Save(ctx, "", form); err != nil {
		return fail(err, "Could not save activity")
	}
	fmt.Fprintln(h.out, "Activity created.")
	return nil
}

// Update prefills the form from the stored activity and saves the changes
func (h *AdminHandler) Update(ctx context.Context, id string, changes ActivityChanges) error {
	a, err := h.activities.Get(ctx, id)
	if err != nil {
		return fail(err, "Could not load activity")
	}

	form, err := changes.apply(services.FormFromActivity(*a))
	if err != nil {
		return err
	}
	if _, err := h.activities.Save(ctx, a.ID(), form); err != nil {
		return fail(err, "Could not save activity")
	}
	fmt.Fprintln(h.out, "Activity updated.")
	return nil
}

// Delete asks for confirmation and removes the activity
func (h *AdminHandler) Delete(ctx context.Context, id string, prompt Prompter) error {
	a, err := h.activities.Get(ctx, id)
	if err != nil {
		return fail(err, "Could not load activity")
	}

	ok, err := prompt.Confirm(fmt.Sprintf("Delete %s? This cannot be undone.", orDash(a.Name)))
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}

	if err := h.activities.Delete(ctx, a.ID()); err != nil {
		return fail(err, "Could not delete activity")
	}
	fmt.Fprintln(h.out, "Activity deleted.")
	return nil
}
