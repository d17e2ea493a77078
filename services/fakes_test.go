package services

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"cleaning-scheduler/domain"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeStore implements remote.Store in memory. Per-method error hooks let
// tests simulate outages and permanent rejections; counters record how many
// times each mutation reached the "remote".
type fakeStore struct {
	mu sync.Mutex

	bookings   map[uuid.UUID]*domain.Booking
	properties map[uuid.UUID]*domain.Property

	insertBookingErr  error
	updateBookingErr  error
	deleteBookingErr  error
	insertPropertyErr error
	updatePropertyErr error
	deletePropertyErr error

	insertBookingCalls int
	updateBookingCalls int
	deleteBookingCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings:   make(map[uuid.UUID]*domain.Booking),
		properties: make(map[uuid.UUID]*domain.Property),
	}
}

func (f *fakeStore) ListBookings(ctx context.Context) (domain.Bookings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var bookings domain.Bookings
	for _, b := range f.bookings {
		bookings = append(bookings, b.Clone())
	}
	return bookings, nil
}

func (f *fakeStore) InsertBooking(ctx context.Context, booking *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertBookingCalls++
	if f.insertBookingErr != nil {
		return f.insertBookingErr
	}
	f.bookings[booking.ID] = booking.Clone()
	return nil
}

func (f *fakeStore) UpdateBooking(ctx context.Context, booking *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateBookingCalls++
	if f.updateBookingErr != nil {
		return f.updateBookingErr
	}
	f.bookings[booking.ID] = booking.Clone()
	return nil
}

func (f *fakeStore) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteBookingCalls++
	if f.deleteBookingErr != nil {
		return f.deleteBookingErr
	}
	delete(f.bookings, id)
	return nil
}

func (f *fakeStore) ListProperties(ctx context.Context) (domain.Properties, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var properties domain.Properties
	for _, p := range f.properties {
		properties = append(properties, p.Clone())
	}
	return properties, nil
}

func (f *fakeStore) InsertProperty(ctx context.Context, property *domain.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertPropertyErr != nil {
		return f.insertPropertyErr
	}
	f.properties[property.ID] = property.Clone()
	return nil
}

func (f *fakeStore) UpdateProperty(ctx context.Context, property *domain.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updatePropertyErr != nil {
		return f.updatePropertyErr
	}
	f.properties[property.ID] = property.Clone()
	return nil
}

func (f *fakeStore) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deletePropertyErr != nil {
		return f.deletePropertyErr
	}
	delete(f.properties, id)
	return nil
}
