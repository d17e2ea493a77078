package services

import (
	"time"

	"cleaning-scheduler/domain"
)

// Buffer minutes added on top of a property's cleaning duration when judging
// whether a cleaning fits between checkout and checkin.
const (
	TurnBufferMinutes     = 30
	StandardBufferMinutes = 60

	// Standard bookings with less cleaning room than this get a warning
	// suggesting reclassification as a turn.
	MinStandardWindowMinutes = 180
)

// ValidationResult is the structured outcome of validating a candidate
// booking. Domain problems are reported here, never as panics.
type ValidationResult struct {
	Valid     bool            `json:"valid"`
	Errors    []string        `json:"errors"`
	Warnings  []string        `json:"warnings"`
	Conflicts domain.Bookings `json:"conflicts,omitempty"`
}

// WindowFeasibility describes whether the cleaning fits in the window between
// checkout and checkin. SuggestedStart is set when it does not: the latest
// instant the window would have needed to open for the cleaning to fit.
type WindowFeasibility struct {
	Possible         bool       `json:"possible"`
	AvailableMinutes int        `json:"available_minutes"`
	RequiredMinutes  int        `json:"required_minutes"`
	SuggestedStart   *time.Time `json:"suggested_start,omitempty"`
}

// ValidationService validates candidate bookings against their property and
// the other bookings on it: date sanity, interval conflicts, cleaning-window
// feasibility, priority classification and status transitions.
type ValidationService interface {
	ValidateBooking(candidate *domain.Booking, property *domain.Property, others domain.Bookings) *ValidationResult
	DetectConflicts(candidate *domain.Booking, others domain.Bookings) domain.Bookings
	CleaningWindow(candidate *domain.Booking, property *domain.Property) WindowFeasibility
	Priority(booking *domain.Booking, now time.Time) domain.Priority
	AvailableTransitions(from domain.BookingStatus) []domain.BookingStatus
	ValidateTransition(from, to domain.BookingStatus, role domain.UserRole) error
}
