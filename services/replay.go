package services

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"cleaning-scheduler/domain"
	"cleaning-scheduler/queue"
	"cleaning-scheduler/remote"
)

// NewRemoteReplayExecutor builds the executor the offline queue uses to
// replay persisted operations against the remote store once connectivity is
// back.
func NewRemoteReplayExecutor(store remote.Store) queue.Executor {
	return func(ctx context.Context, op domain.PendingOperation) error {
		switch op.Operation {
		case domain.CreateBookingOp:
			var booking domain.Booking
			if err := json.Unmarshal(op.Data, &booking); err != nil {
				return err
			}
			return store.InsertBooking(ctx, &booking)
		case domain.UpdateBookingOp:
			var booking domain.Booking
			if err := json.Unmarshal(op.Data, &booking); err != nil {
				return err
			}
			return store.UpdateBooking(ctx, &booking)
		case domain.DeleteBookingOp:
			var payload deletePayload
			if err := json.Unmarshal(op.Data, &payload); err != nil {
				return err
			}
			return store.DeleteBooking(ctx, payload.ID)
		case domain.CreatePropertyOp:
			var property domain.Property
			if err := json.Unmarshal(op.Data, &property); err != nil {
				return err
			}
			return store.InsertProperty(ctx, &property)
		case domain.UpdatePropertyOp:
			var property domain.Property
			if err := json.Unmarshal(op.Data, &property); err != nil {
				return err
			}
			return store.UpdateProperty(ctx, &property)
		case domain.DeletePropertyOp:
			var payload deletePayload
			if err := json.Unmarshal(op.Data, &payload); err != nil {
				return err
			}
			return store.DeleteProperty(ctx, payload.ID)
		default:
			return fmt.Errorf("Unknown sync operation: %s", op.Operation)
		}
	}
}
