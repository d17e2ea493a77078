package queue

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
	logger "github.com/sirupsen/logrus"

	"cleaning-scheduler/domain"
)

// Executor replays one queued operation against the remote store.
type Executor func(ctx context.Context, op domain.PendingOperation) error

// TerminalFailureFunc is called when an operation exhausts its retry budget
// and is dropped. The local ledger may silently disagree with the remote
// store from that point until the next full reconciliation, so the drop has
// to be surfaced, not swallowed.
type TerminalFailureFunc func(op domain.PendingOperation, err error)

// Status is the queue snapshot consumed by status indicators.
type Status struct {
	Total      int                          `json:"total"`
	Operations map[domain.OperationKind]int `json:"operations"`
	Processing bool                         `json:"processing"`
	LastSync   *time.Time                   `json:"last_sync,omitempty"`
	Dropped    int                          `json:"dropped"`
}

// OfflineQueue holds mutations that could not reach the remote store and
// replays them in FIFO order once connectivity returns. Failures never
// propagate to the caller as errors; they are reported through Status and the
// terminal-failure callback.
type OfflineQueue struct {
	mu         sync.Mutex
	items      []domain.PendingOperation
	storage    *Storage
	executor   Executor
	maxRetries int
	online     bool
	processing bool
	lastSync   *time.Time
	dropped    int
	onTerminal TerminalFailureFunc
	logger     *logger.Logger
}

func NewOfflineQueue(storage *Storage, executor Executor, maxRetries int, log *logger.Logger) (*OfflineQueue, error) {
	items, err := storage.Load()
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		log.WithFields(logger.Fields{"path": "queue", "count": len(items)}).
			Info("Loaded persisted sync queue")
	}
	return &OfflineQueue{
		items:      items,
		storage:    storage,
		executor:   executor,
		maxRetries: maxRetries,
		online:     true,
		logger:     log,
	}, nil
}

// OnTerminalFailure registers the callback invoked for dropped operations.
func (q *OfflineQueue) OnTerminalFailure(fn TerminalFailureFunc) {
	q.mu.Lock()
	q.onTerminal = fn
	q.mu.Unlock()
}

// QueueOperation appends a mutation to the queue and persists it. The payload
// is serialized as-is and replayed by the executor later.
func (q *OfflineQueue) QueueOperation(kind domain.OperationKind, payload any, viewer domain.Viewer) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	item := domain.PendingOperation{
		ID:         ulid.Make().String(),
		Operation:  kind,
		Data:       data,
		Timestamp:  time.Now(),
		RetryCount: 0,
		MaxRetries: q.maxRetries,
		UserID:     viewer.ID.String(),
		UserRole:   viewer.Role,
	}

	q.mu.Lock()
	q.items = append(q.items, item)
	q.persistLocked()
	q.mu.Unlock()

	q.logger.WithFields(logger.Fields{"path": "queue", "operation": string(kind), "id": item.ID}).
		Info("Queued operation for background sync")
	return item.ID, nil
}

// SetOnline records the connectivity state; coming online triggers a drain.
func (q *OfflineQueue) SetOnline(ctx context.Context, online bool) {
	q.mu.Lock()
	wasOnline := q.online
	q.online = online
	q.mu.Unlock()
	if online && !wasOnline {
		q.Drain(ctx)
	}
}

// Drain replays the queue in FIFO order. An operation that fails stays queued
// for a later pass until it hits its retry budget, at which point it is
// dropped and surfaced as a terminal failure.
func (q *OfflineQueue) Drain(ctx context.Context) (succeeded, failed int) {
	q.mu.Lock()
	if !q.online || q.processing || len(q.items) == 0 {
		q.mu.Unlock()
		return 0, 0
	}
	q.processing = true
	batch := make([]domain.PendingOperation, len(q.items))
	copy(batch, q.items)
	q.mu.Unlock()

	var remaining []domain.PendingOperation
	var terminal []terminalFailure
	for _, item := range batch {
		err := q.executor(ctx, item)
		if err == nil {
			succeeded++
			continue
		}
		failed++
		item.RetryCount++
		if item.RetryCount < item.MaxRetries {
			q.logger.WithFields(logger.Fields{
				"path": "queue", "operation": string(item.Operation), "id": item.ID,
				"retry": item.RetryCount, "max": item.MaxRetries,
			}).Info("Operation failed, will retry: ", err)
			remaining = append(remaining, item)
			continue
		}
		q.logger.WithFields(logger.Fields{
			"path": "queue", "operation": string(item.Operation), "id": item.ID,
		}).Error("Max retries exceeded, dropping operation: ", err)
		terminal = append(terminal, terminalFailure{op: item, err: err})
	}

	now := time.Now()
	q.mu.Lock()
	// Operations enqueued while the replay ran sit past the batch boundary
	// and must survive the swap.
	q.items = append(remaining, q.items[len(batch):]...)
	q.dropped += len(terminal)
	q.lastSync = &now
	q.processing = false
	onTerminal := q.onTerminal
	q.persistLocked()
	q.mu.Unlock()

	if onTerminal != nil {
		for _, t := range terminal {
			onTerminal(t.op, t.err)
		}
	}
	return succeeded, failed
}

// StartAutoDrain runs a periodic drain independent of connectivity signals,
// covering missed connectivity-change notifications. Stops when the context
// is cancelled.
func (q *OfflineQueue) StartAutoDrain(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				q.Drain(ctx)
			}
		}
	}()
}

func (q *OfflineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *OfflineQueue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	operations := make(map[domain.OperationKind]int)
	for _, item := range q.items {
		operations[item.Operation]++
	}
	return Status{
		Total:      len(q.items),
		Operations: operations,
		Processing: q.processing,
		LastSync:   q.lastSync,
		Dropped:    q.dropped,
	}
}

func (q *OfflineQueue) persistLocked() {
	if err := q.storage.Save(q.items); err != nil {
		q.logger.WithFields(logger.Fields{"path": "queue"}).Error("Error saving sync queue: ", err)
	}
}

type terminalFailure struct {
	op  domain.PendingOperation
	err error
}
