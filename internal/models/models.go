package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString decodes identifiers that the API sends either as strings or numbers
type FlexString string

// UnmarshalJSON accepts "abc", 42 and null
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode string id: %w", err)
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to decode numeric id: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the identifier as plain text
func (f FlexString) String() string {
	return string(f)
}

// Activity represents a bookable session as returned by the API
type Activity struct {
	MongoID     FlexString `json:"_id,omitempty"`
	PlainID     FlexString `json:"id,omitempty"`
	Name        string     `json:"nombre,omitempty"`
	Description string     `json:"descripcion,omitempty"`
	Day         string     `json:"dia,omitempty"`
	Hour        string     `json:"hora,omitempty"`
	Photo       string     `json:"foto,omitempty"`
	Full        bool       `json:"llena,omitempty"`
	MaxPeople   *int       `json:"maximoPersonas,omitempty"`
}

// ID returns whichever identifier the API filled in
func (a Activity) ID() string {
	return firstID(a.MongoID, a.PlainID)
}

// User represents the authenticated user's profile
type User struct {
	MongoID FlexString `json:"_id,omitempty"`
	PlainID FlexString `json:"id,omitempty"`
	Name    string     `json:"nombre,omitempty"`
	Surname string     `json:"apellido,omitempty"`
	Email   string     `json:"correo,omitempty"`
	Phone   string     `json:"telefono,omitempty"`
	Role    string     `json:"rol,omitempty"`
	Photo   string     `json:"foto,omitempty"`
}

// RoleAdmin is the role allowed to manage activities
const RoleAdmin = "admin"

// ID returns whichever identifier the API filled in
func (u User) ID() string {
	return firstID(u.MongoID, u.PlainID)
}

// IsAdmin reports whether the user may create, edit and delete activities
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Reservation is a user's booking against one activity
type Reservation struct {
	ID         FlexString `json:"_id,omitempty"`
	ActivityID FlexString `json:"actividadId"`
	UserID     FlexString `json:"usuarioId,omitempty"`
}

// ActivityForm is the create/update payload of the admin form
type ActivityForm struct {
	Name        string `json:"nombre"`
	Photo       string `json:"foto"`
	Description string `json:"descripcion"`
	Day         string `json:"dia"`
	Hour        string `json:"hora"`
	MaxPeople   string `json:"maximoPersonas"`
}

// Trimmed returns a copy of the form with every field trimmed
func (f ActivityForm) Trimmed() ActivityForm {
	return ActivityForm{
		Name:        strings.TrimSpace(f.Name),
		Photo:       strings.TrimSpace(f.Photo),
		Description: strings.TrimSpace(f.Description),
		Day:         strings.TrimSpace(f.Day),
		Hour:        strings.TrimSpace(f.Hour),
		MaxPeople:   strings.TrimSpace(f.MaxPeople),
	}
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"contrasena"`
}

// RegisterRequest is the body of POST /usuarios
type RegisterRequest struct {
	Name     string `json:"nombre"`
	Surname  string `json:"apellido"`
	Email    string `json:"correo"`
	Phone    string `json:"telefono"`
	Password string `json:"contrasena"`
}

// ReservationRequest is the body of POST and DELETE /reservas
type ReservationRequest struct {
	ActivityID string `json:"actividadId"`
}

func firstID(ids ...FlexString) string {
	for _, id := range ids {
		if s := strings.TrimSpace(id.String()); s != "" {
			return s
		}
	}
	return ""
}
