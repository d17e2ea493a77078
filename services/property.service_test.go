package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleaning-scheduler/domain"
	"cleaning-scheduler/queue"
	"cleaning-scheduler/remote"
	"cleaning-scheduler/repository"
)

func newPropertyFixture(t *testing.T) (*repository.Ledger, *fakeStore, *queue.OfflineQueue, PropertyService) {
	t.Helper()
	log := newTestLogger()
	ledger := repository.NewLedger(log)
	store := newFakeStore()

	storage, err := queue.OpenStorage(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	q, err := queue.NewOfflineQueue(storage, NewRemoteReplayExecutor(store), 3, log)
	require.NoError(t, err)

	syncSvc := NewSyncServiceImpl(30*time.Second, log)
	return ledger, store, q, NewPropertyServiceImpl(ledger, store, syncSvc, q, log)
}

func TestCreatePropertyValidatesDuration(t *testing.T) {
	_, _, _, svc := newPropertyFixture(t)
	owner := domain.Viewer{ID: uuid.New(), Role: domain.Owner}

	_, err := svc.CreateProperty(context.Background(),
		domain.PropertyFormData{CleaningDuration: 5, Active: true}, owner)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreatePropertyAssignsViewerAsOwner(t *testing.T) {
	ledger, _, _, svc := newPropertyFixture(t)
	owner := domain.Viewer{ID: uuid.New(), Role: domain.Owner}

	property, err := svc.CreateProperty(context.Background(),
		domain.PropertyFormData{CleaningDuration: 60, Active: true}, owner)
	require.NoError(t, err)

	assert.Equal(t, owner.ID, property.OwnerID)
	assert.NotNil(t, ledger.GetProperty(property.ID))
}

func TestUpdatePropertyScopedToOwner(t *testing.T) {
	ledger, _, _, svc := newPropertyFixture(t)
	owner := domain.Viewer{ID: uuid.New(), Role: domain.Owner}
	stranger := domain.Viewer{ID: uuid.New(), Role: domain.Owner}

	property := &domain.Property{ID: uuid.New(), OwnerID: owner.ID, CleaningDuration: 60, Active: true}
	ledger.UpsertProperty(property)

	_, err := svc.UpdateProperty(context.Background(), property.ID,
		domain.PropertyFormData{CleaningDuration: 90, Active: true}, stranger)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := svc.UpdateProperty(context.Background(), property.ID,
		domain.PropertyFormData{CleaningDuration: 90, Active: true}, owner)
	require.NoError(t, err)
	assert.Equal(t, 90, updated.CleaningDuration)
}

func TestDeletePropertyQueuesOnTransientFailure(t *testing.T) {
	ledger, store, q, svc := newPropertyFixture(t)
	admin := domain.Viewer{ID: uuid.New(), Role: domain.Administrator}

	property := &domain.Property{ID: uuid.New(), OwnerID: uuid.New(), CleaningDuration: 60, Active: true}
	ledger.UpsertProperty(property)
	store.deletePropertyErr = fmt.Errorf("%w: timeout", remote.ErrUnavailable)

	require.NoError(t, svc.DeleteProperty(context.Background(), property.ID, admin))
	assert.Nil(t, ledger.GetProperty(property.ID), "optimistic removal stays")
	assert.Equal(t, 1, q.Len())
}
