package services

import (
	"context"

	"github.com/google/uuid"

	"cleaning-scheduler/domain"
)

// BookingService is the outward mutation surface consumed by UI forms. Every
// mutation validates first, applies optimistically through the coordinator,
// and re-derives turn classification for the affected boundary dates.
type BookingService interface {
	// FetchAll seeds the ledger with the viewer-visible snapshot from the
	// remote store.
	FetchAll(ctx context.Context) error

	CreateBooking(ctx context.Context, form domain.BookingFormData, viewer domain.Viewer) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, updates domain.BookingUpdate, viewer domain.Viewer) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID, viewer domain.Viewer) error
	ChangeStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, viewer domain.Viewer) error
	AssignCleaner(ctx context.Context, id uuid.UUID, cleanerID uuid.UUID, viewer domain.Viewer) error
}
