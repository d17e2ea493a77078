package domain

import "github.com/google/uuid"

type UserRole string

const (
	Administrator UserRole = "admin"
	Owner         UserRole = "owner"
	Cleaner       UserRole = "cleaner"
)

// Viewer identifies who is looking at the ledger. Role-scoped visibility is
// enforced server side; the same predicate is mirrored here as defense in
// depth.
type Viewer struct {
	ID   uuid.UUID `json:"id"`
	Role UserRole  `json:"role"`
}

// CanSeeBooking mirrors the server-side row visibility policy: administrators
// see every row, owners their own rows, cleaners the rows assigned to them.
func (v Viewer) CanSeeBooking(b *Booking) bool {
	switch v.Role {
	case Administrator:
		return true
	case Owner:
		return b.OwnerID == v.ID
	case Cleaner:
		return b.AssignedCleanerID != nil && *b.AssignedCleanerID == v.ID
	}
	return false
}

func (v Viewer) CanSeeProperty(p *Property) bool {
	switch v.Role {
	case Administrator:
		return true
	case Owner:
		return p.OwnerID == v.ID
	}
	return false
}
