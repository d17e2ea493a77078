package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	logger "github.com/sirupsen/logrus"

	"cleaning-scheduler/domain"
)

// Subscriber maintains the websocket subscription to the remote change feed
// and hands every envelope to the reconciler in arrival order. A lost
// connection is retried with capped exponential backoff up to a bounded
// number of attempts.
type Subscriber struct {
	url          string
	reconciler   *Reconciler
	maxReconnect int
	backoffMax   time.Duration
	logger       *logger.Logger

	mu             sync.Mutex
	status         domain.ConnectionStatus
	onStatusChange func(domain.ConnectionStatus)
}

func NewSubscriber(url string, reconciler *Reconciler, maxReconnect int, backoffMax time.Duration, log *logger.Logger) *Subscriber {
	return &Subscriber{
		url:          url,
		reconciler:   reconciler,
		maxReconnect: maxReconnect,
		backoffMax:   backoffMax,
		logger:       log,
		status:       domain.StatusDisconnected,
	}
}

// OnStatusChange registers a callback fired on every connection-state
// transition. Used to flip the offline queue's connectivity flag.
func (s *Subscriber) OnStatusChange(fn func(domain.ConnectionStatus)) {
	s.mu.Lock()
	s.onStatusChange = fn
	s.mu.Unlock()
}

func (s *Subscriber) Status() domain.ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

type subscribeRequest struct {
	Collections []string `json:"collections"`
}

// Run connects and consumes the feed until the context is cancelled or the
// reconnect budget is spent.
func (s *Subscriber) Run(ctx context.Context) error {
	attempts := 0
	for {
		if ctx.Err() != nil {
			s.setStatus(domain.StatusDisconnected)
			return ctx.Err()
		}

		s.setStatus(domain.StatusConnecting)
		conn, _, err := websocket.Dial(ctx, s.url, nil)
		if err != nil {
			s.setStatus(domain.StatusDisconnected)
			attempts++
			if attempts >= s.maxReconnect {
				return fmt.Errorf("Feed reconnect budget spent after %d attempts: %w", attempts, err)
			}
			s.logger.WithFields(logger.Fields{"path": "feed", "attempt": attempts}).
				Info("Feed connection failed, backing off: ", err)
			if !sleepContext(ctx, backoffDelay(attempts, s.backoffMax)) {
				return ctx.Err()
			}
			continue
		}

		err = wsjson.Write(ctx, conn, subscribeRequest{Collections: []string{
			domain.BookingsCollection,
			domain.PropertiesCollection,
			domain.ProfilesCollection,
		}})
		if err != nil {
			conn.Close(websocket.StatusInternalError, "subscribe failed")
			s.setStatus(domain.StatusDisconnected)
			attempts++
			if attempts >= s.maxReconnect {
				return fmt.Errorf("Feed reconnect budget spent after %d attempts: %w", attempts, err)
			}
			if !sleepContext(ctx, backoffDelay(attempts, s.backoffMax)) {
				return ctx.Err()
			}
			continue
		}

		s.setStatus(domain.StatusConnected)
		// A successful subscribe restores the full reconnect budget; only
		// consecutive failures count against it, so a long-lived session that
		// drops redials immediately and backs off from one second again.
		attempts = 0
		s.logger.WithFields(logger.Fields{"path": "feed"}).Info("Change feed connected")

		s.readLoop(ctx, conn)
		conn.Close(websocket.StatusNormalClosure, "")
		s.setStatus(domain.StatusDisconnected)
	}
}

func (s *Subscriber) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var envelope domain.FeedEnvelope
		if err := wsjson.Read(ctx, conn, &envelope); err != nil {
			if ctx.Err() == nil {
				s.logger.WithFields(logger.Fields{"path": "feed"}).Error("Feed read failed: ", err)
			}
			return
		}
		s.reconciler.Apply(envelope)
	}
}

func (s *Subscriber) setStatus(status domain.ConnectionStatus) {
	s.mu.Lock()
	changed := s.status != status
	s.status = status
	callback := s.onStatusChange
	s.mu.Unlock()
	if changed && callback != nil {
		callback(status)
	}
}

// backoffDelay doubles per attempt, capped at max.
func backoffDelay(attempt int, max time.Duration) time.Duration {
	delay := time.Second
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
