package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"cleaning-scheduler/domain"
)

// Ledger is the local in-memory replica of the booking and property rows the
// current viewer may see. The mutation coordinator and the change-feed
// reconciler are its only writers; everything else reads derived views from
// it. Merging is replacement by id, which keeps both writers idempotent.
type Ledger struct {
	mu         sync.RWMutex
	bookings   map[uuid.UUID]*domain.Booking
	properties map[uuid.UUID]*domain.Property
	logger     *logger.Logger
}

func NewLedger(log *logger.Logger) *Ledger {
	return &Ledger{
		bookings:   make(map[uuid.UUID]*domain.Booking),
		properties: make(map[uuid.UUID]*domain.Property),
		logger:     log,
	}
}

// Seed replaces the ledger contents with a freshly fetched snapshot.
func (l *Ledger) Seed(bookings domain.Bookings, properties domain.Properties) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bookings = make(map[uuid.UUID]*domain.Booking, len(bookings))
	for _, b := range bookings {
		l.bookings[b.ID] = b.Clone()
	}
	l.properties = make(map[uuid.UUID]*domain.Property, len(properties))
	for _, p := range properties {
		l.properties[p.ID] = p.Clone()
	}
}

func (l *Ledger) UpsertBooking(b *domain.Booking) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bookings[b.ID] = b.Clone()
}

func (l *Ledger) RemoveBooking(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.bookings[id]; !ok {
		return false
	}
	delete(l.bookings, id)
	return true
}

func (l *Ledger) GetBooking(id uuid.UUID) *domain.Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bookings[id].Clone()
}

func (l *Ledger) UpsertProperty(p *domain.Property) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.properties[p.ID] = p.Clone()
}

func (l *Ledger) RemoveProperty(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.properties[id]; !ok {
		return false
	}
	delete(l.properties, id)
	return true
}

func (l *Ledger) GetProperty(id uuid.UUID) *domain.Property {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.properties[id].Clone()
}

// AllBookings returns every booking in the replica, sorted by checkout date.
// Callers receive copies and cannot mutate ledger state through them.
func (l *Ledger) AllBookings() domain.Bookings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	bookings := make(domain.Bookings, 0, len(l.bookings))
	for _, b := range l.bookings {
		bookings = append(bookings, b.Clone())
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CheckoutDate.Before(bookings[j].CheckoutDate)
	})
	return bookings
}

func (l *Ledger) AllProperties() domain.Properties {
	l.mu.RLock()
	defer l.mu.RUnlock()
	properties := make(domain.Properties, 0, len(l.properties))
	for _, p := range l.properties {
		properties = append(properties, p.Clone())
	}
	sort.Slice(properties, func(i, j int) bool {
		return properties[i].CreatedAt.Before(properties[j].CreatedAt)
	})
	return properties
}

// BookingsByProperty returns the bookings on one property, the candidate set
// for conflict detection and turn classification.
func (l *Ledger) BookingsByProperty(propertyID uuid.UUID) domain.Bookings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var bookings domain.Bookings
	for _, b := range l.bookings {
		if b.PropertyID == propertyID {
			bookings = append(bookings, b.Clone())
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CheckoutDate.Before(bookings[j].CheckoutDate)
	})
	return bookings
}

// BookingsByStatus groups every booking under its current status.
func (l *Ledger) BookingsByStatus() map[domain.BookingStatus]domain.Bookings {
	groups := map[domain.BookingStatus]domain.Bookings{
		domain.Pending:    {},
		domain.Scheduled:  {},
		domain.InProgress: {},
		domain.Completed:  {},
		domain.Cancelled:  {},
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, b := range l.bookings {
		groups[b.Status] = append(groups[b.Status], b.Clone())
	}
	return groups
}

// TodayTurns returns the turn bookings whose checkout falls on the same
// calendar day as now and that are not yet completed.
func (l *Ledger) TodayTurns(now time.Time) domain.Bookings {
	today := now.Format("2006-01-02")
	l.mu.RLock()
	defer l.mu.RUnlock()
	var turns domain.Bookings
	for _, b := range l.bookings {
		if b.BookingType == domain.TurnBooking &&
			b.CheckoutDate.Format("2006-01-02") == today &&
			b.Status != domain.Completed {
			turns = append(turns, b.Clone())
		}
	}
	sort.Slice(turns, func(i, j int) bool {
		return turns[i].CheckoutDate.Before(turns[j].CheckoutDate)
	})
	return turns
}

// UpcomingCleanings returns the bookings with a checkout in the next seven
// days that still need cleaning, soonest first.
func (l *Ledger) UpcomingCleanings(now time.Time) domain.Bookings {
	horizon := now.AddDate(0, 0, 7)
	l.mu.RLock()
	defer l.mu.RUnlock()
	var upcoming domain.Bookings
	for _, b := range l.bookings {
		if !b.CheckoutDate.Before(now) && !b.CheckoutDate.After(horizon) &&
			b.Status != domain.Completed {
			upcoming = append(upcoming, b.Clone())
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].CheckoutDate.Before(upcoming[j].CheckoutDate)
	})
	return upcoming
}
