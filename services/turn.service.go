package services

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TurnService derives the turn/standard classification for bookings. A
// booking is a turn when another booking on the same property touches one of
// its boundaries exactly: someone checks out the instant a guest checks in,
// or vice versa, so the cleaning must happen back-to-back on the same day.
//
// Classification is pairwise and symmetric but not transitive: three chained
// same-day bookings are each classified turn individually, with no attempt to
// model the chain as one unit.
type TurnService interface {
	// RecomputeTurnStatus re-derives booking_type for every booking on the
	// property whose checkin or checkout equals one of affectedDates. Runs
	// after every create, update and delete, scoped to the union of old and
	// new boundary dates. Completed and cancelled bookings are never
	// reclassified. Returns how many bookings changed classification.
	RecomputeTurnStatus(ctx context.Context, propertyID uuid.UUID, affectedDates []time.Time) (int, error)
}
