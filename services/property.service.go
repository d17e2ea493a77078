package services

import (
	"context"

	"github.com/google/uuid"

	"cleaning-scheduler/domain"
)

// PropertyService is the mutation surface for properties. Properties are
// referenced by bookings, never owned by them; deactivating one does not
// touch its bookings.
type PropertyService interface {
	CreateProperty(ctx context.Context, form domain.PropertyFormData, viewer domain.Viewer) (*domain.Property, error)
	UpdateProperty(ctx context.Context, id uuid.UUID, form domain.PropertyFormData, viewer domain.Viewer) (*domain.Property, error)
	DeleteProperty(ctx context.Context, id uuid.UUID, viewer domain.Viewer) error
}
