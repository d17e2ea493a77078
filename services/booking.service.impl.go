package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"cleaning-scheduler/domain"
	"cleaning-scheduler/queue"
	"cleaning-scheduler/remote"
	"cleaning-scheduler/repository"
)

var ErrPermissionDenied = errors.New("Permission denied")

type BookingServiceImpl struct {
	ledger     *repository.Ledger
	store      remote.Store
	sync       SyncService
	turns      TurnService
	validation ValidationService
	queue      *queue.OfflineQueue
	validate   *validator.Validate
	logger     *logger.Logger
}

func NewBookingServiceImpl(ledger *repository.Ledger, store remote.Store, sync SyncService,
	turns TurnService, validation ValidationService, q *queue.OfflineQueue, log *logger.Logger) BookingService {
	return &BookingServiceImpl{
		ledger:     ledger,
		store:      store,
		sync:       sync,
		turns:      turns,
		validation: validation,
		queue:      q,
		validate:   validator.New(),
		logger:     log,
	}
}

func (s *BookingServiceImpl) FetchAll(ctx context.Context) error {
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return err
	}
	properties, err := s.store.ListProperties(ctx)
	if err != nil {
		return err
	}
	s.ledger.Seed(bookings, properties)
	return nil
}

func (s *BookingServiceImpl) CreateBooking(ctx context.Context, form domain.BookingFormData, viewer domain.Viewer) (*domain.Booking, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, &domain.ValidationError{Errors: []string{err.Error()}}
	}

	property := s.ledger.GetProperty(form.PropertyID)
	if property == nil {
		return nil, domain.ErrPropertyNotFound
	}
	if viewer.Role == domain.Owner && property.OwnerID != viewer.ID {
		return nil, ErrPermissionDenied
	}

	now := time.Now()
	booking := &domain.Booking{
		ID:           uuid.New(),
		PropertyID:   form.PropertyID,
		OwnerID:      property.OwnerID,
		CheckinDate:  form.CheckinDate,
		CheckoutDate: form.CheckoutDate,
		BookingType:  domain.StandardBooking,
		Status:       domain.Pending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	others := s.ledger.BookingsByProperty(booking.PropertyID)
	if hasAdjacentBooking(booking, others) {
		booking.BookingType = domain.TurnBooking
	}

	if err := s.checkValidation(booking, property, others); err != nil {
		return nil, err
	}

	key := domain.EntityKey{Collection: domain.BookingsCollection, ID: booking.ID.String()}
	err := s.sync.ExecuteWithOptimism(ctx, key, domain.CreateBookingOp,
		func() { s.ledger.UpsertBooking(booking) },
		s.remoteOrQueue(domain.CreateBookingOp, booking, viewer, func(ctx context.Context) error {
			return s.store.InsertBooking(ctx, booking)
		}),
		func() { s.ledger.RemoveBooking(booking.ID) },
	)
	if err != nil {
		return nil, err
	}

	if _, err := s.turns.RecomputeTurnStatus(ctx, booking.PropertyID,
		[]time.Time{booking.CheckoutDate, booking.CheckinDate}); err != nil {
		s.logger.WithFields(logger.Fields{"path": "booking", "booking_id": booking.ID.String()}).
			Error("Turn recomputation after create failed: ", err)
	}
	return s.ledger.GetBooking(booking.ID), nil
}

func (s *BookingServiceImpl) UpdateBooking(ctx context.Context, id uuid.UUID, updates domain.BookingUpdate, viewer domain.Viewer) (*domain.Booking, error) {
	existing := s.ledger.GetBooking(id)
	if existing == nil {
		return nil, domain.ErrBookingNotFound
	}
	if viewer.Role == domain.Owner && existing.OwnerID != viewer.ID {
		return nil, ErrPermissionDenied
	}

	updated := existing.Clone()
	if updates.PropertyID != nil {
		updated.PropertyID = *updates.PropertyID
	}
	if updates.CheckinDate != nil {
		updated.CheckinDate = *updates.CheckinDate
	}
	if updates.CheckoutDate != nil {
		updated.CheckoutDate = *updates.CheckoutDate
	}
	updated.UpdatedAt = time.Now()

	property := s.ledger.GetProperty(updated.PropertyID)
	if property == nil {
		return nil, domain.ErrPropertyNotFound
	}
	// Classification follows adjacency, so validate with the type the new
	// dates produce, not the stored one: a move that breaks adjacency is
	// judged as a standard booking, a move that creates it as a turn.
	others := s.ledger.BookingsByProperty(updated.PropertyID)
	updated.BookingType = domain.StandardBooking
	if hasAdjacentBooking(updated, others) {
		updated.BookingType = domain.TurnBooking
	}
	if err := s.checkValidation(updated, property, others); err != nil {
		return nil, err
	}

	key := domain.EntityKey{Collection: domain.BookingsCollection, ID: updated.ID.String()}
	err := s.sync.ExecuteWithOptimism(ctx, key, domain.UpdateBookingOp,
		func() { s.ledger.UpsertBooking(updated) },
		s.remoteOrQueue(domain.UpdateBookingOp, updated, viewer, func(ctx context.Context) error {
			return s.store.UpdateBooking(ctx, updated)
		}),
		func() { s.ledger.UpsertBooking(existing) },
	)
	if err != nil {
		return nil, err
	}

	// An update that moved the booking must re-check both properties, scoped
	// to the union of the old and new boundary dates.
	affected := []time.Time{existing.CheckoutDate, existing.CheckinDate, updated.CheckoutDate, updated.CheckinDate}
	if _, err := s.turns.RecomputeTurnStatus(ctx, updated.PropertyID, affected); err != nil {
		s.logger.WithFields(logger.Fields{"path": "booking", "booking_id": id.String()}).
			Error("Turn recomputation after update failed: ", err)
	}
	if existing.PropertyID != updated.PropertyID {
		if _, err := s.turns.RecomputeTurnStatus(ctx, existing.PropertyID, affected); err != nil {
			s.logger.WithFields(logger.Fields{"path": "booking", "booking_id": id.String()}).
				Error("Turn recomputation on previous property failed: ", err)
		}
	}
	return s.ledger.GetBooking(id), nil
}

func (s *BookingServiceImpl) DeleteBooking(ctx context.Context, id uuid.UUID, viewer domain.Viewer) error {
	existing := s.ledger.GetBooking(id)
	if existing == nil {
		return domain.ErrBookingNotFound
	}
	if viewer.Role == domain.Owner && existing.OwnerID != viewer.ID {
		return ErrPermissionDenied
	}

	key := domain.EntityKey{Collection: domain.BookingsCollection, ID: id.String()}
	err := s.sync.ExecuteWithOptimism(ctx, key, domain.DeleteBookingOp,
		func() { s.ledger.RemoveBooking(id) },
		s.remoteOrQueue(domain.DeleteBookingOp, deletePayload{ID: id}, viewer, func(ctx context.Context) error {
			return s.store.DeleteBooking(ctx, id)
		}),
		func() { s.ledger.UpsertBooking(existing) },
	)
	if err != nil {
		return err
	}

	// The deleted booking's neighbors may stop being turns.
	if _, err := s.turns.RecomputeTurnStatus(ctx, existing.PropertyID,
		[]time.Time{existing.CheckoutDate, existing.CheckinDate}); err != nil {
		s.logger.WithFields(logger.Fields{"path": "booking", "booking_id": id.String()}).
			Error("Turn recomputation after delete failed: ", err)
	}
	return nil
}

func (s *BookingServiceImpl) ChangeStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, viewer domain.Viewer) error {
	existing := s.ledger.GetBooking(id)
	if existing == nil {
		return domain.ErrBookingNotFound
	}
	if viewer.Role == domain.Owner && existing.OwnerID != viewer.ID {
		return ErrPermissionDenied
	}
	if err := s.validation.ValidateTransition(existing.Status, status, viewer.Role); err != nil {
		return err
	}

	updated := existing.Clone()
	updated.Status = status
	updated.UpdatedAt = time.Now()

	key := domain.EntityKey{Collection: domain.BookingsCollection, ID: id.String()}
	return s.sync.ExecuteWithOptimism(ctx, key, domain.UpdateBookingOp,
		func() { s.ledger.UpsertBooking(updated) },
		s.remoteOrQueue(domain.UpdateBookingOp, updated, viewer, func(ctx context.Context) error {
			return s.store.UpdateBooking(ctx, updated)
		}),
		func() { s.ledger.UpsertBooking(existing) },
	)
}

func (s *BookingServiceImpl) AssignCleaner(ctx context.Context, id uuid.UUID, cleanerID uuid.UUID, viewer domain.Viewer) error {
	existing := s.ledger.GetBooking(id)
	if existing == nil {
		return domain.ErrBookingNotFound
	}
	if viewer.Role == domain.Owner && existing.OwnerID != viewer.ID {
		return ErrPermissionDenied
	}

	updated := existing.Clone()
	updated.AssignedCleanerID = &cleanerID
	updated.UpdatedAt = time.Now()

	key := domain.EntityKey{Collection: domain.BookingsCollection, ID: id.String()}
	return s.sync.ExecuteWithOptimism(ctx, key, domain.UpdateBookingOp,
		func() { s.ledger.UpsertBooking(updated) },
		s.remoteOrQueue(domain.UpdateBookingOp, updated, viewer, func(ctx context.Context) error {
			return s.store.UpdateBooking(ctx, updated)
		}),
		func() { s.ledger.UpsertBooking(existing) },
	)
}

func (s *BookingServiceImpl) checkValidation(booking *domain.Booking, property *domain.Property, others domain.Bookings) error {
	result := s.validation.ValidateBooking(booking, property, others)
	if result.Valid {
		return nil
	}
	if len(result.Conflicts) > 0 {
		return &domain.ConflictError{Conflicts: result.Conflicts}
	}
	return &domain.ValidationError{Errors: result.Errors, Warnings: result.Warnings}
}

// remoteOrQueue wraps a remote call so that transient failures hand the
// operation to the offline queue instead of rolling back: the optimistic
// local state stays visible and the queued replay eventually confirms it.
// Permanent failures still surface and trigger the coordinator's rollback.
func (s *BookingServiceImpl) remoteOrQueue(kind domain.OperationKind, payload any, viewer domain.Viewer,
	op func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, remote.ErrUnavailable) {
			if _, qerr := s.queue.QueueOperation(kind, payload, viewer); qerr == nil {
				return nil
			}
		}
		return err
	}
}

type deletePayload struct {
	ID uuid.UUID `json:"id"`
}
