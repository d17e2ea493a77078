package domain

import (
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type BookingType string

const (
	TurnBooking     BookingType = "turn"
	StandardBooking BookingType = "standard"
)

type BookingStatus string

const (
	Pending    BookingStatus = "pending"
	Scheduled  BookingStatus = "scheduled"
	InProgress BookingStatus = "in_progress"
	Completed  BookingStatus = "completed"
	Cancelled  BookingStatus = "cancelled"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Booking is a cleaning booking on a property. CheckoutDate and CheckinDate
// bound the cleaning window: the previous guest leaves at checkout, the next
// one arrives at checkin. BookingType is derived from adjacency with other
// bookings, never taken as authoritative input.
type Booking struct {
	ID                uuid.UUID     `json:"id"`
	PropertyID        uuid.UUID     `json:"property_id"`
	OwnerID           uuid.UUID     `json:"owner_id"`
	CheckinDate       time.Time     `json:"checkin_date"`
	CheckoutDate      time.Time     `json:"checkout_date"`
	BookingType       BookingType   `json:"booking_type"`
	Status            BookingStatus `json:"status"`
	AssignedCleanerID *uuid.UUID    `json:"assigned_cleaner_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Terminal reports whether the booking is in a state that the turn detector
// must never reclassify.
func (b *Booking) Terminal() bool {
	return b.Status == Completed || b.Status == Cancelled
}

// Clone returns a deep copy, so optimistic rollbacks can restore the exact
// pre-mutation value.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	clone := *b
	if b.AssignedCleanerID != nil {
		id := *b.AssignedCleanerID
		clone.AssignedCleanerID = &id
	}
	return &clone
}

type Bookings []*Booking

func (b *Bookings) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(b)
}

func (b *Booking) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(b)
}

func (b *Booking) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(b)
}

// BookingFormData is the payload accepted from UI forms when creating a
// booking.
type BookingFormData struct {
	PropertyID   uuid.UUID `json:"property_id" validate:"required"`
	CheckinDate  time.Time `json:"checkin_date" validate:"required"`
	CheckoutDate time.Time `json:"checkout_date" validate:"required"`
}

func (f *BookingFormData) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(f)
}

// BookingUpdate carries the mutable booking fields for an update. Nil fields
// are left untouched.
type BookingUpdate struct {
	PropertyID   *uuid.UUID `json:"property_id,omitempty"`
	CheckinDate  *time.Time `json:"checkin_date,omitempty"`
	CheckoutDate *time.Time `json:"checkout_date,omitempty"`
}

func (u *BookingUpdate) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(u)
}
