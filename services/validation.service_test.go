package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleaning-scheduler/domain"
)

func makeBooking(propertyID uuid.UUID, checkout, checkin time.Time, bookingType domain.BookingType) *domain.Booking {
	return &domain.Booking{
		ID:           uuid.New(),
		PropertyID:   propertyID,
		OwnerID:      uuid.New(),
		CheckoutDate: checkout,
		CheckinDate:  checkin,
		BookingType:  bookingType,
		Status:       domain.Pending,
	}
}

func TestDetectConflictsAdjacencyIsNotAConflict(t *testing.T) {
	svc := NewValidationServiceImpl()
	propertyID := uuid.New()
	boundary := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)

	existing := makeBooking(propertyID,
		time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC), boundary, domain.StandardBooking)
	candidate := makeBooking(propertyID,
		boundary, time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC), domain.StandardBooking)

	conflicts := svc.DetectConflicts(candidate, domain.Bookings{existing})
	assert.Empty(t, conflicts, "boundary touching must not count as a conflict")
}

func TestDetectConflictsOverlappingWindows(t *testing.T) {
	svc := NewValidationServiceImpl()
	propertyID := uuid.New()

	existing := makeBooking(propertyID,
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC), domain.StandardBooking)
	// Starts inside the existing window.
	candidate := makeBooking(propertyID,
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC), domain.StandardBooking)

	conflicts := svc.DetectConflicts(candidate, domain.Bookings{existing})
	require.Len(t, conflicts, 1)
	assert.Equal(t, existing.ID, conflicts[0].ID)

	// Symmetric: the existing window's start inside the candidate's.
	reversed := svc.DetectConflicts(existing, domain.Bookings{candidate})
	require.Len(t, reversed, 1)
}

func TestDetectConflictsIgnoresOtherProperties(t *testing.T) {
	svc := NewValidationServiceImpl()

	existing := makeBooking(uuid.New(),
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC), domain.StandardBooking)
	candidate := makeBooking(uuid.New(),
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC), domain.StandardBooking)

	assert.Empty(t, svc.DetectConflicts(candidate, domain.Bookings{existing}))
}

func TestValidateBookingMissingDates(t *testing.T) {
	svc := NewValidationServiceImpl()
	property := &domain.Property{ID: uuid.New(), CleaningDuration: 60, Active: true}

	candidate := &domain.Booking{ID: uuid.New(), PropertyID: property.ID}
	result := svc.ValidateBooking(candidate, property, nil)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "required")
}

func TestValidateBookingTurnWindowTooShort(t *testing.T) {
	svc := NewValidationServiceImpl()
	property := &domain.Property{ID: uuid.New(), CleaningDuration: 60, Active: true}

	// 60 minute window, turn needs 60 + 30.
	candidate := makeBooking(property.ID,
		time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), domain.TurnBooking)

	result := svc.ValidateBooking(candidate, property, nil)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "90 minutes")
}

func TestValidateBookingShortStandardWindowWarnsOnly(t *testing.T) {
	svc := NewValidationServiceImpl()
	property := &domain.Property{ID: uuid.New(), CleaningDuration: 60, Active: true}

	// Two hours is under the three hour comfort threshold but not an error.
	candidate := makeBooking(property.ID,
		time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC), domain.StandardBooking)

	result := svc.ValidateBooking(candidate, property, nil)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "short cleaning window")
}

func TestValidateBookingAttachesConflicts(t *testing.T) {
	svc := NewValidationServiceImpl()
	property := &domain.Property{ID: uuid.New(), CleaningDuration: 60, Active: true}

	existing := makeBooking(property.ID,
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC), domain.StandardBooking)
	candidate := makeBooking(property.ID,
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC), domain.StandardBooking)

	result := svc.ValidateBooking(candidate, property, domain.Bookings{existing})
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Found 1 scheduling conflict(s)")
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, existing.ID, result.Conflicts[0].ID)
}

func TestCleaningWindowInfeasibleSuggestsEarlierStart(t *testing.T) {
	svc := NewValidationServiceImpl()
	property := &domain.Property{ID: uuid.New(), CleaningDuration: 90, Active: true}

	checkin := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	candidate := makeBooking(property.ID,
		time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), checkin, domain.StandardBooking)

	feasibility := svc.CleaningWindow(candidate, property)
	assert.False(t, feasibility.Possible)
	assert.Equal(t, 60, feasibility.AvailableMinutes)
	assert.Equal(t, 150, feasibility.RequiredMinutes)
	require.NotNil(t, feasibility.SuggestedStart)
	assert.True(t, feasibility.SuggestedStart.Equal(checkin.Add(-150*time.Minute)))
}

func TestCleaningWindowTurnUsesShorterBuffer(t *testing.T) {
	svc := NewValidationServiceImpl()
	property := &domain.Property{ID: uuid.New(), CleaningDuration: 60, Active: true}

	candidate := makeBooking(property.ID,
		time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC), domain.TurnBooking)

	feasibility := svc.CleaningWindow(candidate, property)
	assert.True(t, feasibility.Possible)
	assert.Equal(t, 90, feasibility.RequiredMinutes)
	assert.Nil(t, feasibility.SuggestedStart)
}

func TestPriorityTurnBookings(t *testing.T) {
	svc := NewValidationServiceImpl()
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

	urgent := makeBooking(uuid.New(), now.Add(90*time.Minute), now.Add(5*time.Hour), domain.TurnBooking)
	assert.Equal(t, domain.PriorityUrgent, svc.Priority(urgent, now))

	past := makeBooking(uuid.New(), now.Add(-time.Hour), now.Add(3*time.Hour), domain.TurnBooking)
	assert.Equal(t, domain.PriorityUrgent, svc.Priority(past, now))

	// A turn never drops below high, regardless of how far out it is.
	distant := makeBooking(uuid.New(), now.Add(72*time.Hour), now.Add(76*time.Hour), domain.TurnBooking)
	assert.Equal(t, domain.PriorityHigh, svc.Priority(distant, now))
}

func TestPriorityStandardBookings(t *testing.T) {
	svc := NewValidationServiceImpl()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		hoursUntilCheckin time.Duration
		want              domain.Priority
	}{
		{3 * time.Hour, domain.PriorityUrgent},
		{8 * time.Hour, domain.PriorityHigh},
		{20 * time.Hour, domain.PriorityNormal},
		{48 * time.Hour, domain.PriorityLow},
	}
	for _, tc := range cases {
		checkin := now.Add(tc.hoursUntilCheckin)
		booking := makeBooking(uuid.New(), checkin.Add(-4*time.Hour), checkin, domain.StandardBooking)
		assert.Equal(t, tc.want, svc.Priority(booking, now), "checkin in %s", tc.hoursUntilCheckin)
	}
}

func TestPriorityThresholdsAreInclusiveCutoffs(t *testing.T) {
	svc := NewValidationServiceImpl()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	// Turn: exactly two hours to checkout is still urgent; a minute past the
	// cutoff is not.
	atCutoff := makeBooking(uuid.New(), now.Add(2*time.Hour), now.Add(6*time.Hour), domain.TurnBooking)
	assert.Equal(t, domain.PriorityUrgent, svc.Priority(atCutoff, now))
	pastCutoff := makeBooking(uuid.New(), now.Add(2*time.Hour+time.Minute), now.Add(6*time.Hour), domain.TurnBooking)
	assert.Equal(t, domain.PriorityHigh, svc.Priority(pastCutoff, now))

	// Standard: each threshold includes its boundary.
	cases := []struct {
		hoursUntilCheckin time.Duration
		want              domain.Priority
	}{
		{4 * time.Hour, domain.PriorityUrgent},
		{4*time.Hour + time.Minute, domain.PriorityHigh},
		{12 * time.Hour, domain.PriorityHigh},
		{12*time.Hour + time.Minute, domain.PriorityNormal},
		{24 * time.Hour, domain.PriorityNormal},
		{24*time.Hour + time.Minute, domain.PriorityLow},
	}
	for _, tc := range cases {
		checkin := now.Add(tc.hoursUntilCheckin)
		booking := makeBooking(uuid.New(), checkin.Add(-4*time.Hour), checkin, domain.StandardBooking)
		assert.Equal(t, tc.want, svc.Priority(booking, now), "checkin in %s", tc.hoursUntilCheckin)
	}
}

func TestValidateTransitionWorkflow(t *testing.T) {
	svc := NewValidationServiceImpl()

	assert.NoError(t, svc.ValidateTransition(domain.Pending, domain.Scheduled, domain.Owner))
	assert.NoError(t, svc.ValidateTransition(domain.Scheduled, domain.InProgress, domain.Cleaner))
	assert.NoError(t, svc.ValidateTransition(domain.InProgress, domain.Completed, domain.Cleaner))
	assert.NoError(t, svc.ValidateTransition(domain.Cancelled, domain.Pending, domain.Owner))

	assert.Error(t, svc.ValidateTransition(domain.Pending, domain.InProgress, domain.Administrator))
	assert.Error(t, svc.ValidateTransition(domain.Completed, domain.Pending, domain.Administrator))
	assert.Error(t, svc.ValidateTransition(domain.Completed, domain.Cancelled, domain.Administrator))
}

func TestValidateTransitionAdminOnlyRevert(t *testing.T) {
	svc := NewValidationServiceImpl()

	assert.NoError(t, svc.ValidateTransition(domain.InProgress, domain.Scheduled, domain.Administrator))
	assert.Error(t, svc.ValidateTransition(domain.InProgress, domain.Scheduled, domain.Owner))
	assert.Error(t, svc.ValidateTransition(domain.InProgress, domain.Scheduled, domain.Cleaner))
}

func TestAvailableTransitionsTerminalStates(t *testing.T) {
	svc := NewValidationServiceImpl()

	assert.Empty(t, svc.AvailableTransitions(domain.Completed))
	assert.Equal(t, []domain.BookingStatus{domain.Pending}, svc.AvailableTransitions(domain.Cancelled))
}
