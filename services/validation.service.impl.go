package services

import (
	"fmt"
	"time"

	"cleaning-scheduler/domain"
)

// validTransitions is the fixed status workflow. The in_progress -> scheduled
// revert is not listed here because it is an administrator-only exception,
// handled in ValidateTransition.
var validTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.Pending:    {domain.Scheduled, domain.Cancelled},
	domain.Scheduled:  {domain.InProgress, domain.Cancelled},
	domain.InProgress: {domain.Completed, domain.Cancelled},
	domain.Completed:  {},
	domain.Cancelled:  {domain.Pending},
}

type ValidationServiceImpl struct{}

func NewValidationServiceImpl() ValidationService {
	return &ValidationServiceImpl{}
}

func (s *ValidationServiceImpl) ValidateBooking(candidate *domain.Booking, property *domain.Property, others domain.Bookings) *ValidationResult {
	result := &ValidationResult{Errors: []string{}, Warnings: []string{}}

	if candidate.CheckinDate.IsZero() || candidate.CheckoutDate.IsZero() {
		result.Errors = append(result.Errors, "Check-in and check-out dates are required")
		return result
	}

	if !candidate.CheckinDate.After(candidate.CheckoutDate) {
		result.Errors = append(result.Errors, "Check-in date must be after check-out date")
	}

	if property == nil {
		result.Errors = append(result.Errors, "Property not found")
		result.Valid = len(result.Errors) == 0
		return result
	}

	availableMinutes := int(candidate.CheckinDate.Sub(candidate.CheckoutDate).Minutes())

	if candidate.BookingType == domain.TurnBooking {
		required := property.CleaningDuration + TurnBufferMinutes
		if availableMinutes < required {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Turn booking needs at least %d minutes between checkout and checkin, has %d",
				required, availableMinutes))
		}
	} else if availableMinutes < MinStandardWindowMinutes {
		result.Warnings = append(result.Warnings,
			"Very short cleaning window (under 3 hours). Consider marking as a turn booking.")
	}

	conflicts := s.DetectConflicts(candidate, others)
	if len(conflicts) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Found %d scheduling conflict(s)", len(conflicts)))
		result.Conflicts = conflicts
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// DetectConflicts returns the bookings on the same property whose cleaning
// window collides with the candidate's. Two bookings conflict when either
// window's start falls strictly inside the other window. Boundary touching is
// not a conflict: adjacency is what makes a turn.
func (s *ValidationServiceImpl) DetectConflicts(candidate *domain.Booking, others domain.Bookings) domain.Bookings {
	var conflicts domain.Bookings
	for _, other := range others {
		if other.ID == candidate.ID || other.PropertyID != candidate.PropertyID {
			continue
		}
		if startsStrictlyInside(candidate.CheckoutDate, other) ||
			startsStrictlyInside(other.CheckoutDate, candidate) {
			conflicts = append(conflicts, other)
		}
	}
	return conflicts
}

func startsStrictlyInside(start time.Time, b *domain.Booking) bool {
	return start.After(b.CheckoutDate) && start.Before(b.CheckinDate)
}

func (s *ValidationServiceImpl) CleaningWindow(candidate *domain.Booking, property *domain.Property) WindowFeasibility {
	buffer := StandardBufferMinutes
	if candidate.BookingType == domain.TurnBooking {
		buffer = TurnBufferMinutes
	}
	required := property.CleaningDuration + buffer
	available := int(candidate.CheckinDate.Sub(candidate.CheckoutDate).Minutes())

	feasibility := WindowFeasibility{
		Possible:         available >= required,
		AvailableMinutes: available,
		RequiredMinutes:  required,
	}
	if !feasibility.Possible {
		suggested := candidate.CheckinDate.Add(-time.Duration(required) * time.Minute)
		feasibility.SuggestedStart = &suggested
	}
	return feasibility
}

// Priority classifies how soon a booking needs attention. Turn bookings never
// drop below high and become urgent once their checkout boundary is two hours
// away or already past. Standard bookings step down with time to checkin.
func (s *ValidationServiceImpl) Priority(booking *domain.Booking, now time.Time) domain.Priority {
	if booking.BookingType == domain.TurnBooking {
		hoursUntilCheckout := booking.CheckoutDate.Sub(now).Hours()
		if hoursUntilCheckout <= 2 {
			return domain.PriorityUrgent
		}
		return domain.PriorityHigh
	}

	hoursUntilCheckin := booking.CheckinDate.Sub(now).Hours()
	switch {
	case hoursUntilCheckin <= 4:
		return domain.PriorityUrgent
	case hoursUntilCheckin <= 12:
		return domain.PriorityHigh
	case hoursUntilCheckin <= 24:
		return domain.PriorityNormal
	default:
		return domain.PriorityLow
	}
}

func (s *ValidationServiceImpl) AvailableTransitions(from domain.BookingStatus) []domain.BookingStatus {
	return validTransitions[from]
}

func (s *ValidationServiceImpl) ValidateTransition(from, to domain.BookingStatus, role domain.UserRole) error {
	if from == domain.InProgress && to == domain.Scheduled {
		// Administrator-only revert for cleanings that ran into trouble.
		if role == domain.Administrator {
			return nil
		}
		return &domain.TransitionError{From: from, To: to}
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &domain.TransitionError{From: from, To: to}
}
