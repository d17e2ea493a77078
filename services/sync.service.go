package services

import (
	"context"
	"time"

	"cleaning-scheduler/domain"
)

// SyncService is the optimistic mutation coordinator. A mutation is applied
// to the local ledger first, so the UI never waits on a network round trip,
// and confirmed remotely afterwards. While the confirmation is in flight an
// OptimisticUpdateRecord marks the entity so the change-feed reconciler can
// recognize the echo of our own write.
//
// Concurrent mutations against the same key are not serialized here; callers
// must await one mutation on an entity before issuing the next.
type SyncService interface {
	// ExecuteWithOptimism registers the correlation record, applies the
	// local mutation synchronously, then awaits the remote operation. On
	// remote failure the rollback runs synchronously and the error is
	// returned to the caller.
	ExecuteWithOptimism(ctx context.Context, key domain.EntityKey, kind domain.OperationKind,
		applyLocally func(), remoteOperation func(context.Context) error, rollback func()) error

	// ConsumeEcho reports whether an open record exists for the key and
	// removes it. Each record suppresses exactly one feed event.
	ConsumeEcho(key domain.EntityKey) bool

	// PendingRecords counts the optimistic writes still awaiting their echo.
	PendingRecords() int

	// SweepExpired drops records older than the configured TTL, covering
	// echoes that never arrive. Returns how many were dropped.
	SweepExpired(now time.Time) int
}
