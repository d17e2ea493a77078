package handlers

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	logger "github.com/sirupsen/logrus"

	"cleaning-scheduler/domain"
	"cleaning-scheduler/feed"
	"cleaning-scheduler/queue"
	"cleaning-scheduler/services"
)

// StatusHandler reports the sync machinery's health: feed connection state,
// optimistic writes still awaiting confirmation, and the offline queue
// backlog. This is what the UI's connectivity indicator polls.
type StatusHandler struct {
	subscriber *feed.Subscriber
	reconciler *feed.Reconciler
	syncSvc    services.SyncService
	queue      *queue.OfflineQueue
	logger     *logger.Logger
}

func NewStatusHandler(subscriber *feed.Subscriber, reconciler *feed.Reconciler,
	syncSvc services.SyncService, q *queue.OfflineQueue, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		subscriber: subscriber,
		reconciler: reconciler,
		syncSvc:    syncSvc,
		queue:      q,
		logger:     log,
	}
}

type statusReport struct {
	Connection       domain.ConnectionStatus `json:"connection"`
	PendingUpdates   int                     `json:"pending_updates"`
	Queue            queue.Status            `json:"queue"`
	LastFeedActivity *time.Time              `json:"last_feed_activity,omitempty"`
}

func (s *StatusHandler) GetStatus(rw http.ResponseWriter, h *http.Request) {
	report := statusReport{
		Connection:     s.subscriber.Status(),
		PendingUpdates: s.syncSvc.PendingRecords(),
		Queue:          s.queue.Status(),
	}
	if last := s.reconciler.LastSync(); !last.IsZero() {
		report.LastFeedActivity = &last
	}
	if err := json.NewEncoder(rw).Encode(report); err != nil {
		s.logger.WithFields(logger.Fields{"path": "handlers"}).Error("Unable to convert to json: ", err)
	}
}
