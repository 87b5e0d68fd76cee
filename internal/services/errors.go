package services

import "errors"

var (
	// ErrLoginRequired is returned when an operation needs a signed-in user
	ErrLoginRequired = errors.New("you must sign in first")
	// ErrAdminRequired is returned when a non-admin tries to manage activities
	ErrAdminRequired = errors.New("only admins can manage activities")
	// ErrInvalidActivity is returned for an activity without an id
	ErrInvalidActivity = errors.New("invalid activity")
	// ErrAlreadyReserved is returned when the user already holds a reservation
	ErrAlreadyReserved = errors.New("you already have a reservation for this activity")
	// ErrActivityFull is returned when no places are left
	ErrActivityFull = errors.New("no places left for this activity")
)

// ValidationError is a form the client refuses to send
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CancellationError is a cancellation refused before reaching the API
type CancellationError struct {
	Reason string
}

func (e *CancellationError) Error() string {
	return e.Reason
}
