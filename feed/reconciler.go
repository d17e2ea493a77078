package feed

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"cleaning-scheduler/domain"
	"cleaning-scheduler/repository"
	"cleaning-scheduler/services"
)

// Reconciler merges change-feed events into the local ledger. Events echoing
// this client's own optimistic writes are suppressed; peer events pass the
// viewer's visibility predicate and then replace the local row wholesale.
// True conflict resolution is the remote store's job; locally the last write
// wins.
type Reconciler struct {
	ledger *repository.Ledger
	sync   services.SyncService
	viewer domain.Viewer
	logger *logger.Logger

	mu       sync.Mutex
	lastSync time.Time

	// onProfileChange fires when the viewer's own profile row changes, so
	// the embedding application can reload role information.
	onProfileChange func()
}

func NewReconciler(ledger *repository.Ledger, sync services.SyncService, viewer domain.Viewer, log *logger.Logger) *Reconciler {
	return &Reconciler{ledger: ledger, sync: sync, viewer: viewer, logger: log}
}

func (r *Reconciler) OnProfileChange(fn func()) {
	r.onProfileChange = fn
}

// LastSync returns when the reconciler last applied a feed event.
func (r *Reconciler) LastSync() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSync
}

// Apply merges one feed envelope into the ledger. Events are applied in
// arrival order; the method never fails, malformed events are logged and
// skipped.
func (r *Reconciler) Apply(envelope domain.FeedEnvelope) {
	switch envelope.Collection {
	case domain.BookingsCollection:
		r.applyBooking(envelope.Event)
	case domain.PropertiesCollection:
		r.applyProperty(envelope.Event)
	case domain.ProfilesCollection:
		r.applyProfile(envelope.Event)
	default:
		r.logger.WithFields(logger.Fields{"path": "feed", "collection": envelope.Collection}).
			Info("Ignoring event for unwatched collection")
		return
	}
	r.mu.Lock()
	r.lastSync = time.Now()
	r.mu.Unlock()
}

func (r *Reconciler) applyBooking(event domain.ChangeEvent) {
	newRecord := decodeBooking(event.New, r.logger)
	oldRecord := decodeBooking(event.Old, r.logger)

	id, ok := bookingEventID(newRecord, oldRecord)
	if !ok {
		return
	}

	key := domain.EntityKey{Collection: domain.BookingsCollection, ID: id.String()}
	if r.sync.ConsumeEcho(key) {
		r.logger.WithFields(logger.Fields{"path": "feed", "booking_id": id.String()}).
			Debug("Suppressed echo of own booking write")
		return
	}

	switch event.EventType {
	case domain.EventInsert:
		if newRecord != nil && r.viewer.CanSeeBooking(newRecord) {
			r.ledger.UpsertBooking(newRecord)
		}
	case domain.EventUpdate:
		if newRecord != nil && r.viewer.CanSeeBooking(newRecord) {
			r.ledger.UpsertBooking(newRecord)
			return
		}
		// The row still exists remotely but the viewer may no longer see
		// it (ownership or assignment moved away). Absence of visibility
		// is absence of data, never a stale copy.
		if r.ledger.RemoveBooking(id) {
			r.logger.WithFields(logger.Fields{"path": "feed", "booking_id": id.String()}).
				Info("Pruned booking no longer visible to viewer")
		}
	case domain.EventDelete:
		if oldRecord != nil {
			r.ledger.RemoveBooking(oldRecord.ID)
		}
	}
}

func (r *Reconciler) applyProperty(event domain.ChangeEvent) {
	newRecord := decodeProperty(event.New, r.logger)
	oldRecord := decodeProperty(event.Old, r.logger)

	var id uuid.UUID
	switch {
	case newRecord != nil:
		id = newRecord.ID
	case oldRecord != nil:
		id = oldRecord.ID
	default:
		return
	}

	key := domain.EntityKey{Collection: domain.PropertiesCollection, ID: id.String()}
	if r.sync.ConsumeEcho(key) {
		r.logger.WithFields(logger.Fields{"path": "feed", "property_id": id.String()}).
			Debug("Suppressed echo of own property write")
		return
	}

	switch event.EventType {
	case domain.EventInsert:
		if newRecord != nil && r.viewer.CanSeeProperty(newRecord) {
			r.ledger.UpsertProperty(newRecord)
		}
	case domain.EventUpdate:
		if newRecord != nil && r.viewer.CanSeeProperty(newRecord) {
			r.ledger.UpsertProperty(newRecord)
			return
		}
		if r.ledger.RemoveProperty(id) {
			r.logger.WithFields(logger.Fields{"path": "feed", "property_id": id.String()}).
				Info("Pruned property no longer visible to viewer")
		}
	case domain.EventDelete:
		if oldRecord != nil {
			r.ledger.RemoveProperty(oldRecord.ID)
		}
	}
}

func (r *Reconciler) applyProfile(event domain.ChangeEvent) {
	if event.EventType != domain.EventUpdate || len(event.New) == 0 {
		return
	}
	var profile struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(event.New, &profile); err != nil {
		r.logger.WithFields(logger.Fields{"path": "feed"}).Error("Error decoding profile event: ", err)
		return
	}
	if profile.ID == r.viewer.ID && r.onProfileChange != nil {
		r.onProfileChange()
	}
}

func bookingEventID(newRecord, oldRecord *domain.Booking) (uuid.UUID, bool) {
	if newRecord != nil {
		return newRecord.ID, true
	}
	if oldRecord != nil {
		return oldRecord.ID, true
	}
	return uuid.UUID{}, false
}

func decodeBooking(raw json.RawMessage, log *logger.Logger) *domain.Booking {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var booking domain.Booking
	if err := json.Unmarshal(raw, &booking); err != nil {
		log.WithFields(logger.Fields{"path": "feed"}).Error("Error decoding booking event: ", err)
		return nil
	}
	return &booking
}

func decodeProperty(raw json.RawMessage, log *logger.Logger) *domain.Property {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var property domain.Property
	if err := json.Unmarshal(raw, &property); err != nil {
		log.WithFields(logger.Fields{"path": "feed"}).Error("Error decoding property event: ", err)
		return nil
	}
	return &property
}
