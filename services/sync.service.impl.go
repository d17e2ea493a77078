package services

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	logger "github.com/sirupsen/logrus"

	"cleaning-scheduler/domain"
)

type SyncServiceImpl struct {
	mu      sync.Mutex
	records map[domain.EntityKey]domain.OptimisticUpdateRecord
	ttl     time.Duration
	logger  *logger.Logger
}

func NewSyncServiceImpl(ttl time.Duration, log *logger.Logger) SyncService {
	return &SyncServiceImpl{
		records: make(map[domain.EntityKey]domain.OptimisticUpdateRecord),
		ttl:     ttl,
		logger:  log,
	}
}

func (s *SyncServiceImpl) ExecuteWithOptimism(ctx context.Context, key domain.EntityKey, kind domain.OperationKind,
	applyLocally func(), remoteOperation func(context.Context) error, rollback func()) error {

	// Register before touching the ledger: a feed event can race in before
	// the remote call resolves and must still be recognized as an echo.
	opID := ulid.Make().String()
	s.mu.Lock()
	s.records[key] = domain.OptimisticUpdateRecord{
		Key:       key,
		OpID:      opID,
		Kind:      kind,
		Timestamp: time.Now(),
	}
	s.mu.Unlock()

	applyLocally()

	if err := remoteOperation(ctx); err != nil {
		rollback()
		s.remove(key)
		s.logger.WithFields(logger.Fields{
			"path":       "sync",
			"op_id":      opID,
			"collection": key.Collection,
			"entity_id":  key.ID,
		}).Error("Remote operation failed, rolled back local mutation: ", err)
		return err
	}

	// Confirmed. If the echo arrives after this point it is applied as a
	// normal peer update, which is fine: the remote-confirmed row is
	// authoritative.
	s.remove(key)
	return nil
}

func (s *SyncServiceImpl) ConsumeEcho(key domain.EntityKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return false
	}
	delete(s.records, key)
	return true
}

func (s *SyncServiceImpl) PendingRecords() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *SyncServiceImpl) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for key, record := range s.records {
		if now.Sub(record.Timestamp) > s.ttl {
			delete(s.records, key)
			dropped++
		}
	}
	if dropped > 0 {
		s.logger.WithFields(logger.Fields{"path": "sync", "dropped": dropped}).
			Info("Swept expired optimistic update records")
	}
	return dropped
}

func (s *SyncServiceImpl) remove(key domain.EntityKey) {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
}
