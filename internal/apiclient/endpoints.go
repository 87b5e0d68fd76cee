package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"movelite-client/internal/models"
)

// LoginResult is what a successful login hands back
type LoginResult struct {
	Token string
	User  *models.User
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	Token       string       `json:"token"`
	User        *models.User `json:"usuario"`
	Message     string       `json:"mensaje"`
}

// Login exchanges credentials for a token. Only the HTTP status decides success.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	resp, err := c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      models.LoginRequest{Email: email, Password: password},
		Anonymous: true,
	})
	if err != nil {
		return nil, err
	}

	var data loginResponse
	_ = json.Unmarshal(resp.Body, &data)
	if !resp.OK() {
		return nil, statusError(resp.StatusCode, data.Message)
	}

	token := data.AccessToken
	if token == "" {
		token = data.Token
	}
	return &LoginResult{Token: token, User: data.User}, nil
}

// Register creates an account. Only the HTTP status decides success.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) error {
	resp, err := c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/usuarios",
		Body:      req,
		Anonymous: true,
	})
	if err != nil {
		return err
	}

	var env envelope
	_ = json.Unmarshal(resp.Body, &env)
	if !resp.OK() {
		return statusError(resp.StatusCode, env.Message)
	}
	return nil
}

func statusError(status int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("HTTP error %d", status)
	}
	return &APIError{StatusCode: status, Message: message}
}

// ListActivities fetches every activity
func (c *Client) ListActivities(ctx context.Context) ([]models.Activity, error) {
	var out struct {
		Activities []models.Activity `json:"actividades"`
	}
	err := c.call(ctx, Request{Method: http.MethodGet, Path: "/actividades"}, "Error loading activities", &out)
	if err != nil {
		return nil, err
	}
	if out.Activities == nil {
		return []models.Activity{}, nil
	}
	return out.Activities, nil
}

// GetActivity fetches one activity by id
func (c *Client) GetActivity(ctx context.Context, id string) (*models.Activity, error) {
	var out struct {
		Activity *models.Activity `json:"actividad"`
	}
	err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/actividades/" + url.PathEscape(id),
		Route:  "/actividades/{id}",
	}, "Could not load activity", &out)
	if err != nil {
		return nil, err
	}
	if out.Activity == nil {
		return nil, fmt.Errorf("API did not return the activity: %w", ErrMissingPayload)
	}
	return out.Activity, nil
}

// CreateActivity posts a new activity
func (c *Client) CreateActivity(ctx context.Context, form models.ActivityForm) error {
	return c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/actividades",
		Body:   form,
	}, "Could not save activity", nil)
}

// UpdateActivity replaces an existing activity
func (c *Client) UpdateActivity(ctx context.Context, id string, form models.ActivityForm) error {
	return c.call(ctx, Request{
		Method: http.MethodPut,
		Path:   "/actividades/" + url.PathEscape(id),
		Route:  "/actividades/{id}",
		Body:   form,
	}, "Could not save activity", nil)
}

// DeleteActivity removes an activity
func (c *Client) DeleteActivity(ctx context.Context, id string) error {
	return c.call(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/actividades/" + url.PathEscape(id),
		Route:  "/actividades/{id}",
	}, "Could not delete activity", nil)
}

// ListReservations fetches reservations, narrowed to userID when given
func (c *Client) ListReservations(ctx context.Context, userID string) ([]models.Reservation, error) {
	path := "/reservas"
	if userID != "" {
		path += "?usuarioId=" + url.QueryEscape(userID)
	}
	var out struct {
		Reservations []models.Reservation `json:"reservas"`
	}
	err := c.call(ctx, Request{Method: http.MethodGet, Path: path, Route: "/reservas"}, "Error loading reservations", &out)
	if err != nil {
		return nil, err
	}
	return out.Reservations, nil
}

// Reserve books the current user onto an activity
func (c *Client) Reserve(ctx context.Context, activityID string) error {
	return c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/reservas",
		Body:   models.ReservationRequest{ActivityID: activityID},
	}, "Could not reserve", nil)
}

// CancelReservation drops the current user's booking on an activity
func (c *Client) CancelReservation(ctx context.Context, activityID string) error {
	return c.call(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/reservas",
		Body:   models.ReservationRequest{ActivityID: activityID},
	}, "Could not cancel", nil)
}
