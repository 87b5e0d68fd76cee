package services

import (
	"context"
	"fmt"
	"strings"

	"movelite-client/internal/apiclient"
	"movelite-client/internal/models"
	"movelite-client/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const minPasswordLength = 8

// AuthService handles sign-in, sign-up and the profile header
type AuthService struct {
	client         *apiclient.Client
	session        *session.Session
	validate       *validator.Validate
	avatarFallback string
}

// NewAuthService creates a new auth service
func NewAuthService(client *apiclient.Client, avatarFallback string) *AuthService {
	return &AuthService{
		client:         client,
		session:        client.Session(),
		validate:       NewValidator(),
		avatarFallback: avatarFallback,
	}
}

// Login signs in and stores the token and profile in the session
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, &ValidationError{Message: "Email and password are required."}
	}

	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.session.Set(res.Token, res.User)
	log.Info().
		Str("user_id", s.session.UserID()).
		Bool("admin", s.session.IsAdmin()).
		Msg("Signed in")
	return s.session.User(), nil
}

// Logout forgets the session
func (s *AuthService) Logout() {
	if s.session.IsAuthenticated() {
		log.Debug().Str("user_id", s.session.UserID()).Msg("Signed out")
	}
	s.session.Clear()
}

// SignedIn reports whether the session holds a token
func (s *AuthService) SignedIn() bool {
	return s.session.IsAuthenticated()
}

// TokenClaims decodes the session token for display
func (s *AuthService) TokenClaims() (*session.Claims, error) {
	return s.session.Claims()
}

// CurrentUser returns the signed-in user, or nil
func (s *AuthService) CurrentUser() *models.User {
	return s.session.User()
}

// RegisterInput is the sign-up form
type RegisterInput struct {
	Name     string `form:"name" validate:"notblank"`
	Surname  string `form:"surname" validate:"notblank"`
	Email    string `form:"email" validate:"notblank"`
	Phone    string `form:"phone"`
	Password string `form:"password" validate:"min=8"`
	Confirm  string `form:"confirm" validate:"eqfield=Password"`
}

var registerMessages = map[string]string{
	"name":     "Name is required.",
	"surname":  "Surname is required.",
	"email":    "Email is required.",
	"password": fmt.Sprintf("Password must have at least %d characters.", minPasswordLength),
	"confirm":  "Passwords do not match.",
}

// Register validates the form and creates the account
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	if err := s.validate.Struct(in); err != nil {
		return &ValidationError{Message: formMessage(err, registerMessages)}
	}

	req := models.RegisterRequest{
		Name:     strings.TrimSpace(in.Name),
		Surname:  strings.TrimSpace(in.Surname),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:    strings.TrimSpace(in.Phone),
		Password: in.Password,
	}
	if err := s.client.Register(ctx, req); err != nil {
		return err
	}

	log.Info().Str("email", req.Email).Msg("Account created")
	return nil
}

// DisplayName picks what the header shows for user
func DisplayName(user *models.User) string {
	switch {
	case user == nil:
		return "User"
	case user.Name != "" && user.Surname != "":
		return user.Name + " " + user.Surname
	case user.Name != "":
		return user.Name
	case user.Email != "":
		return user.Email
	default:
		return "User"
	}
}

// AvatarURL resolves the user's picture against the API
func (s *AuthService) AvatarURL(user *models.User) string {
	photo := ""
	if user != nil {
		photo = user.Photo
	}
	return s.client.AbsoluteImageURL(photo, s.avatarFallback)
}
