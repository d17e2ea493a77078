package remote

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"cleaning-scheduler/domain"
)

// ErrUnavailable marks transient failures: the remote store could not be
// reached or answered with a server error. Operations failing this way are
// eligible for the offline queue; anything else is permanent and reported to
// the caller.
var ErrUnavailable = errors.New("Remote store unavailable")

// Store is the client-side contract against the remote relational store. The
// store enforces row visibility server side, so reads already come back
// scoped to the authenticated viewer.
type Store interface {
	ListBookings(ctx context.Context) (domain.Bookings, error)
	InsertBooking(ctx context.Context, booking *domain.Booking) error
	UpdateBooking(ctx context.Context, booking *domain.Booking) error
	DeleteBooking(ctx context.Context, id uuid.UUID) error

	ListProperties(ctx context.Context) (domain.Properties, error)
	InsertProperty(ctx context.Context, property *domain.Property) error
	UpdateProperty(ctx context.Context, property *domain.Property) error
	DeleteProperty(ctx context.Context, id uuid.UUID) error
}
