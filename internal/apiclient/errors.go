package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when a request does not finish within the client timeout
	ErrTimeout = errors.New("request timed out")
	// ErrMissingPayload is returned when a successful response lacks the expected object
	ErrMissingPayload = errors.New("response is missing the expected payload")
)

// APIError is a non-success answer from the API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d)", e.StatusCode)
	}
	return e.Message
}

// TransportError wraps failures to reach the API at all
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("API connection error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DisplayMessage reduces any client error to the string shown to the user
func DisplayMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
