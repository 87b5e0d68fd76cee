// Package handlers renders the booking screens as text for the command line.
package handlers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"movelite-client/internal/apiclient"
	"movelite-client/internal/services"
)

// UserError is a failure already reduced to the line shown to the user
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// ErrAborted is returned when the user declines a confirmation
var ErrAborted = &UserError{Message: "Cancelled."}

var sentinelMessages = []struct {
	err     error
	message string
}{
	{services.ErrLoginRequired, "You must sign in first."},
	{services.ErrAdminRequired, "Only admins can manage activities."},
	{services.ErrInvalidActivity, "Invalid activity."},
	{services.ErrAlreadyReserved, "You already have a reservation for this activity."},
	{services.ErrActivityFull, "There are no places left for this activity."},
	{apiclient.ErrTimeout, "The request timed out. Please try again."},
}

// fail reduces err to its display string, using fallback when the API sent no message
func fail(err error, fallback string) error {
	var uerr *UserError
	if errors.As(err, &uerr) {
		return uerr
	}
	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return &UserError{Message: s.message, Err: err}
		}
	}
	return &UserError{Message: apiclient.DisplayMessage(err, fallback), Err: err}
}

// Prompter asks the user to confirm destructive actions
type Prompter interface {
	Confirm(question string) (bool, error)
}

// LinePrompter reads y/n answers line by line
type LinePrompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

// NewLinePrompter creates a prompter. With assumeYes it never reads.
func NewLinePrompter(in io.Reader, out io.Writer, assumeYes bool) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

// Confirm implements Prompter
func (p *LinePrompter) Confirm(question string) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", question)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func places(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}
