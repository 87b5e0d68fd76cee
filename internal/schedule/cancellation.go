package schedule

import (
	"fmt"
	"math"
	"time"
)

// DefaultCancelWindow is how long before the start a reservation stops being cancellable
const DefaultCancelWindow = 15 * time.Minute

// Eligibility is the outcome of a cancellation check
type Eligibility struct {
	Allowed bool
	Reason  string
}

// Reasons a cancellation is refused
const (
	ReasonInvalidStart   = "Cannot cancel: the activity has no valid date or time."
	ReasonAlreadyStarted = "Cannot cancel: the activity has already started."
)

// TooCloseReason is the refusal shown inside the window
func TooCloseReason(window time.Duration) string {
	return fmt.Sprintf("Cannot cancel with %d minutes or less before the start.", int(window/time.Minute))
}

// CanCancel reports whether start is strictly more than window after now
func CanCancel(start, now time.Time, window time.Duration) bool {
	return start.Sub(now) > window
}

// CheckCancellation decides whether a reservation on an activity held at day+hour
// can still be cancelled at now
func CheckCancellation(day, hour string, now time.Time, window time.Duration, loc *time.Location) Eligibility {
	start, ok := ActivityStart(day, hour, loc)
	if !ok {
		return Eligibility{Reason: ReasonInvalidStart}
	}
	if CanCancel(start, now, window) {
		return Eligibility{Allowed: true}
	}

	minutes := math.Round(start.Sub(now).Minutes())
	if minutes < 0 {
		return Eligibility{Reason: ReasonAlreadyStarted}
	}
	return Eligibility{Reason: TooCloseReason(window)}
}
