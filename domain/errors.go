package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound  = errors.New("Booking not found")
	ErrPropertyNotFound = errors.New("Property not found")
)

// ValidationError reports malformed or contradictory input. It is returned to
// the caller and never retried automatically.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return e.Errors[0]
}

// ConflictError reports overlapping bookings, with the conflicting set
// attached so the caller can surface it. Conflicts are never auto-resolved.
type ConflictError struct {
	Conflicts Bookings
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Booking conflicts with %d existing booking(s)", len(e.Conflicts))
}

// TransitionError reports a status change outside the fixed transition table.
type TransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot transition from %s to %s", e.From, e.To)
}
