package handlers

import (
	"context"
	"fmt"
	"io"
	"time"

	"movelite-client/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler renders sign-in, sign-up and the profile header
type AuthHandler struct {
	auth *services.AuthService
	out  io.Writer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, out io.Writer) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		out:  out,
	}
}

// Login signs in and greets the user
func (h *AuthHandler) Login(ctx context.Context, email, password string) error {
	user, err := h.auth.Login(ctx, email, password)
	if err != nil {
		log.Debug().Err(err).Msg("Login failed")
		return fail(err, "Incorrect credentials")
	}

	fmt.Fprintf(h.out, "Welcome, %s!\n", services.DisplayName(user))
	if user != nil && user.IsAdmin() {
		fmt.Fprintln(h.out, "Signed in as administrator.")
	}
	return nil
}

// EnsureLogin signs in only when the session is still empty
func (h *AuthHandler) EnsureLogin(ctx context.Context, email, password string) error {
	if h.auth.SignedIn() {
		return nil
	}
	if email == "" && password == "" {
		return fail(services.ErrLoginRequired, "")
	}
	if _, err := h.auth.Login(ctx, email, password); err != nil {
		return fail(err, "Incorrect credentials")
	}
	return nil
}

// Register creates the account and points the user at the login command
func (h *AuthHandler) Register(ctx context.Context, in services.RegisterInput) error {
	if err := h.auth.Register(ctx, in); err != nil {
		return fail(err, "Could not register")
	}
	fmt.Fprintln(h.out, "Account created. You can now sign in.")
	return nil
}

// Logout forgets the session
func (h *AuthHandler) Logout() {
	h.auth.Logout()
}

// Profile prints the header of the signed-in user
func (h *AuthHandler) Profile() error {
	user := h.auth.CurrentUser()
	if user == nil {
		return fail(services.ErrLoginRequired, "")
	}

	fmt.Fprintf(h.out, "Name:   %s\n", services.DisplayName(user))
	fmt.Fprintf(h.out, "Email:  %s\n", orDash(user.Email))
	fmt.Fprintf(h.out, "Phone:  %s\n", orDash(user.Phone))
	fmt.Fprintf(h.out, "Role:   %s\n", orDash(user.Role))
	fmt.Fprintf(h.out, "Avatar: %s\n", orDash(h.auth.AvatarURL(user)))

	claims, err := h.auth.TokenClaims()
	if err != nil {
		log.Debug().Err(err).Msg("Token claims unavailable")
		return nil
	}
	fmt.Fprintf(h.out, "Token role:    %s\n", orDash(claims.Role))
	if !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(h.out, "Token expires: %s\n", claims.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
