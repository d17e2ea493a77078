package domain

import (
	"time"

	"github.com/goccy/go-json"
)

type OperationKind string

const (
	CreateBookingOp  OperationKind = "create_booking"
	UpdateBookingOp  OperationKind = "update_booking"
	DeleteBookingOp  OperationKind = "delete_booking"
	CreatePropertyOp OperationKind = "create_property"
	UpdatePropertyOp OperationKind = "update_property"
	DeletePropertyOp OperationKind = "delete_property"
)

// PendingOperation is a mutation that could not reach the remote store and
// waits in the offline queue. It is persisted on every queue change so the
// queue survives a process restart.
type PendingOperation struct {
	ID         string          `json:"id"`
	Operation  OperationKind   `json:"operation"`
	Data       json.RawMessage `json:"data"`
	Timestamp  time.Time       `json:"timestamp"`
	RetryCount int             `json:"retryCount"`
	MaxRetries int             `json:"maxRetries"`
	UserID     string          `json:"userId"`
	UserRole   UserRole        `json:"userRole"`
}

// EntityKey correlates an optimistic local write with the change-feed echo it
// will produce. Collection plus id, not a concatenated string, so ids reused
// across collections cannot collide.
type EntityKey struct {
	Collection string
	ID         string
}

// OptimisticUpdateRecord marks a local mutation whose remote confirmation is
// still in flight. The reconciler consults these records to recognize echoes
// of this client's own writes.
type OptimisticUpdateRecord struct {
	Key       EntityKey
	OpID      string
	Kind      OperationKind
	Timestamp time.Time
}
