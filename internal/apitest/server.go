// Package apitest runs an in-process stand-in for the Move & Lite API.
// It stores what tests seed and echoes it back; it does not model capacity.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"movelite-client/internal/middleware"
	"movelite-client/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = time.Hour

// RecordedRequest is one request seen by the server
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	Body          string
}

type account struct {
	user     models.User
	password string
}

type failure struct {
	status  int
	message string
}

// Server is a fake API backed by maps
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	secret       []byte
	accounts     map[string]*account
	activities   map[string]models.Activity
	reservations map[string]map[string]bool
	failures     map[string]failure
	requests     []RecordedRequest
	delay        time.Duration
}

// New starts a server that is closed when t finishes
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret:       []byte(uuid.NewString()),
		accounts:     make(map[string]*account),
		activities:   make(map[string]models.Activity),
		reservations: make(map[string]map[string]bool),
		failures:     make(map[string]failure),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Post("/auth/login", s.login)
	r.Post("/usuarios", s.register)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(s))
		r.Get("/actividades", s.listActivities)
		r.Get("/actividades/{id}", s.getActivity)
		r.Get("/reservas", s.listReservations)
		r.Post("/reservas", s.reserve)
		r.Delete("/reservas", s.cancel)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Post("/actividades", s.createActivity)
			r.Put("/actividades/{id}", s.updateActivity)
			r.Delete("/actividades/{id}", s.deleteActivity)
		})
	})
	return r
}

// AddUser seeds an account and returns its id
func (s *Server) AddUser(user models.User, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID() == "" {
		user.MongoID = models.FlexString(uuid.NewString())
	}
	s.accounts[strings.ToLower(user.Email)] = &account{user: user, password: password}
	return user.ID()
}

// AddActivity seeds an activity and returns its id
func (s *Server) AddActivity(a models.Activity) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID() == "" {
		a.MongoID = models.FlexString(uuid.NewString())
	}
	s.activities[a.ID()] = a
	return a.ID()
}

// AddReservation books userID onto activityID
func (s *Server) AddReservation(userID, activityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book(userID, activityID)
}

// Activity returns the stored activity
func (s *Server) Activity(id string) (models.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[id]
	return a, ok
}

// Reserved reports whether userID holds a reservation on activityID
func (s *Server) Reserved(userID, activityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservations[userID][activityID]
}

// Fail makes every request matching "METHOD /path" answer with status and message
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// SetDelay holds every response for d
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns a copy of everything received so far
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// IssueToken signs a token the server accepts
func (s *Server) IssueToken(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"rol": role,
		"exp": time.Now().Add(tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken implements middleware.TokenValidator
func (s *Server) ValidateToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid token claims")
	}

	userID, err := claims.GetSubject()
	if err != nil || userID == "" {
		return "", "", fmt.Errorf("sub not found in token")
	}
	role, _ := claims["rol"].(string)
	return userID, role, nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		fail, failing := s.failures[r.Method+" "+r.URL.Path]
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			middleware.RespondError(w, fail.message, fail.status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondOK(w http.ResponseWriter, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["ok"] = true
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || acc.password != req.Password {
		middleware.RespondError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := s.IssueToken(acc.user.ID(), acc.user.Role)
	if err != nil {
		middleware.RespondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondOK(w, map[string]any{"accessToken": token, "usuario": acc.user})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		middleware.RespondError(w, "Email already registered", http.StatusConflict)
		return
	}
	user := models.User{
		MongoID: models.FlexString(uuid.NewString()),
		Name:    req.Name,
		Surname: req.Surname,
		Email:   req.Email,
		Phone:   req.Phone,
		Role:    "cliente",
	}
	s.accounts[req.Email] = &account{user: user, password: req.Password}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "usuario": user})
}

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := make([]models.Activity, 0, len(s.activities))
	for _, a := range s.activities {
		list = append(list, a)
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Day+list[i].Hour != list[j].Day+list[j].Hour {
			return list[i].Day+list[i].Hour < list[j].Day+list[j].Hour
		}
		return list[i].ID() < list[j].ID()
	})
	respondOK(w, map[string]any{"actividades": list})
}

func (s *Server) getActivity(w http.ResponseWriter, r *http.Request) {
	a, ok := s.Activity(chi.URLParam(r, "id"))
	if !ok {
		middleware.RespondError(w, "Activity not found", http.StatusNotFound)
		return
	}
	respondOK(w, map[string]any{"actividad": a})
}

func (s *Server) createActivity(w http.ResponseWriter, r *http.Request) {
	var form models.ActivityForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		middleware.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	a := activityFromForm(form)
	id := s.AddActivity(a)
	a, _ = s.Activity(id)
	respondOK(w, map[string]any{"actividad": a})
}

func (s *Server) updateActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var form models.ActivityForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		middleware.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.activities[id]
	if !ok {
		middleware.RespondError(w, "Activity not found", http.StatusNotFound)
		return
	}
	a := activityFromForm(form)
	a.MongoID, a.PlainID = existing.MongoID, existing.PlainID
	a.Full = existing.Full
	s.activities[id] = a
	respondOK(w, map[string]any{"actividad": a})
}

func (s *Server) deleteActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[id]; !ok {
		middleware.RespondError(w, "Activity not found", http.StatusNotFound)
		return
	}
	delete(s.activities, id)
	for _, booked := range s.reservations {
		delete(booked, id)
	}
	respondOK(w, nil)
}

func (s *Server) listReservations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("usuarioId")
	if userID == "" {
		userID = middleware.GetUserID(r.Context())
	}

	s.mu.Lock()
	ids := make([]string, 0, len(s.reservations[userID]))
	for id := range s.reservations[userID] {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)

	list := make([]models.Reservation, 0, len(ids))
	for _, id := range ids {
		list = append(list, models.Reservation{
			ActivityID: models.FlexString(id),
			UserID:     models.FlexString(userID),
		})
	}
	respondOK(w, map[string]any{"reservas": list})
}

func (s *Server) reserve(w http.ResponseWriter, r *http.Request) {
	activityID, ok := decodeReservation(w, r)
	if !ok {
		return
	}
	userID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.activities[activityID]; !exists {
		middleware.RespondError(w, "Activity not found", http.StatusNotFound)
		return
	}
	if s.reservations[userID][activityID] {
		middleware.RespondError(w, "Already reserved", http.StatusConflict)
		return
	}
	s.book(userID, activityID)
	respondOK(w, nil)
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	activityID, ok := decodeReservation(w, r)
	if !ok {
		return
	}
	userID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.reservations[userID][activityID] {
		middleware.RespondError(w, "Reservation not found", http.StatusNotFound)
		return
	}
	delete(s.reservations[userID], activityID)
	respondOK(w, nil)
}

func (s *Server) book(userID, activityID string) {
	if s.reservations[userID] == nil {
		s.reservations[userID] = make(map[string]bool)
	}
	s.reservations[userID][activityID] = true
}

func decodeReservation(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req models.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ActivityID == "" {
		middleware.RespondError(w, "actividadId is required", http.StatusBadRequest)
		return "", false
	}
	return req.ActivityID, true
}

func activityFromForm(form models.ActivityForm) models.Activity {
	a := models.Activity{
		Name:        form.Name,
		Description: form.Description,
		Day:         form.Day,
		Hour:        form.Hour,
		Photo:       form.Photo,
	}
	var capacity int
	if _, err := fmt.Sscanf(form.MaxPeople, "%d", &capacity); err == nil {
		a.MaxPeople = &capacity
	}
	return a
}
