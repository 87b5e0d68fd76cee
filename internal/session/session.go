package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"movelite-client/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when claims are requested from an empty session
var ErrNoToken = errors.New("no access token in session")

// Session holds the access token and profile of the signed-in user.
// It lives in memory only and is shared by every component of one process.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.User
}

// New creates an empty session
func New() *Session {
	return &Session{}
}

// Set replaces the token and user wholesale
func (s *Session) Set(token string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	if user == nil {
		s.user = nil
		return
	}
	u := *user
	s.user = &u
}

// Clear forgets the token and user
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
}

// Token returns the access token or an empty string
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// UserID returns the current user's id or an empty string
func (s *Session) UserID() string {
	if u := s.User(); u != nil {
		return u.ID()
	}
	return ""
}

// IsAuthenticated reports whether a token is held
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// IsAdmin reports whether the current user has the admin role
func (s *Session) IsAdmin() bool {
	u := s.User()
	return u != nil && u.IsAdmin()
}

// Claims is the subset of token claims shown to the user
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Claims decodes the access token without verifying its signature.
// The backend is the only party that can validate it; the result is informational.
func (s *Session) Claims() (*Claims, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNoToken
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	claims := &Claims{}
	if sub, err := mapClaims.GetSubject(); err == nil && sub != "" {
		claims.Subject = sub
	} else if id, ok := mapClaims["user_id"].(string); ok {
		claims.Subject = id
	}
	if role, ok := mapClaims["rol"].(string); ok {
		claims.Role = role
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}
