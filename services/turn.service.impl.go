package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"cleaning-scheduler/domain"
	"cleaning-scheduler/remote"
	"cleaning-scheduler/repository"
)

type TurnServiceImpl struct {
	ledger *repository.Ledger
	store  remote.Store
	sync   SyncService
	logger *logger.Logger
}

func NewTurnServiceImpl(ledger *repository.Ledger, store remote.Store, sync SyncService, log *logger.Logger) TurnService {
	return &TurnServiceImpl{ledger: ledger, store: store, sync: sync, logger: log}
}

func (s *TurnServiceImpl) RecomputeTurnStatus(ctx context.Context, propertyID uuid.UUID, affectedDates []time.Time) (int, error) {
	bookings := s.ledger.BookingsByProperty(propertyID)
	changed := 0
	var lastErr error

	for _, candidate := range bookings {
		if candidate.Terminal() {
			continue
		}
		if !touchesAffectedDate(candidate, affectedDates) {
			continue
		}

		want := domain.StandardBooking
		if hasAdjacentBooking(candidate, bookings) {
			want = domain.TurnBooking
		}
		if candidate.BookingType == want {
			continue
		}

		previous := candidate.Clone()
		updated := candidate.Clone()
		updated.BookingType = want
		updated.UpdatedAt = time.Now()

		key := domain.EntityKey{Collection: domain.BookingsCollection, ID: updated.ID.String()}
		err := s.sync.ExecuteWithOptimism(ctx, key, domain.UpdateBookingOp,
			func() { s.ledger.UpsertBooking(updated) },
			func(ctx context.Context) error { return s.store.UpdateBooking(ctx, updated) },
			func() { s.ledger.UpsertBooking(previous) },
		)
		if err != nil {
			s.logger.WithFields(logger.Fields{
				"path":       "turn",
				"booking_id": updated.ID.String(),
			}).Error("Failed to persist turn reclassification: ", err)
			lastErr = err
			continue
		}
		changed++
	}
	return changed, lastErr
}

// touchesAffectedDate reports whether one of the booking's boundaries equals
// one of the affected instants exactly. Same-calendar-day is not enough.
func touchesAffectedDate(b *domain.Booking, affectedDates []time.Time) bool {
	for _, date := range affectedDates {
		if b.CheckinDate.Equal(date) || b.CheckoutDate.Equal(date) {
			return true
		}
	}
	return false
}

func hasAdjacentBooking(b *domain.Booking, all domain.Bookings) bool {
	for _, other := range all {
		if other.ID == b.ID {
			continue
		}
		if other.CheckoutDate.Equal(b.CheckinDate) || other.CheckinDate.Equal(b.CheckoutDate) {
			return true
		}
	}
	return false
}
