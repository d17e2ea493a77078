package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"cleaning-scheduler/domain"
	"cleaning-scheduler/queue"
	"cleaning-scheduler/remote"
	"cleaning-scheduler/repository"
)

type PropertyServiceImpl struct {
	ledger   *repository.Ledger
	store    remote.Store
	sync     SyncService
	queue    *queue.OfflineQueue
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPropertyServiceImpl(ledger *repository.Ledger, store remote.Store, sync SyncService,
	q *queue.OfflineQueue, log *logger.Logger) PropertyService {
	return &PropertyServiceImpl{
		ledger:   ledger,
		store:    store,
		sync:     sync,
		queue:    q,
		validate: validator.New(),
		logger:   log,
	}
}

func (s *PropertyServiceImpl) CreateProperty(ctx context.Context, form domain.PropertyFormData, viewer domain.Viewer) (*domain.Property, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, &domain.ValidationError{Errors: []string{err.Error()}}
	}

	now := time.Now()
	property := &domain.Property{
		ID:               uuid.New(),
		OwnerID:          viewer.ID,
		CleaningDuration: form.CleaningDuration,
		Active:           form.Active,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	key := domain.EntityKey{Collection: domain.PropertiesCollection, ID: property.ID.String()}
	err := s.sync.ExecuteWithOptimism(ctx, key, domain.CreatePropertyOp,
		func() { s.ledger.UpsertProperty(property) },
		s.remoteOrQueue(domain.CreatePropertyOp, property, viewer, func(ctx context.Context) error {
			return s.store.InsertProperty(ctx, property)
		}),
		func() { s.ledger.RemoveProperty(property.ID) },
	)
	if err != nil {
		return nil, err
	}
	return s.ledger.GetProperty(property.ID), nil
}

func (s *PropertyServiceImpl) UpdateProperty(ctx context.Context, id uuid.UUID, form domain.PropertyFormData, viewer domain.Viewer) (*domain.Property, error) {
	existing := s.ledger.GetProperty(id)
	if existing == nil {
		return nil, domain.ErrPropertyNotFound
	}
	if viewer.Role == domain.Owner && existing.OwnerID != viewer.ID {
		return nil, ErrPermissionDenied
	}
	if err := s.validate.Struct(form); err != nil {
		return nil, &domain.ValidationError{Errors: []string{err.Error()}}
	}

	updated := existing.Clone()
	updated.CleaningDuration = form.CleaningDuration
	updated.Active = form.Active
	updated.UpdatedAt = time.Now()

	key := domain.EntityKey{Collection: domain.PropertiesCollection, ID: id.String()}
	err := s.sync.ExecuteWithOptimism(ctx, key, domain.UpdatePropertyOp,
		func() { s.ledger.UpsertProperty(updated) },
		s.remoteOrQueue(domain.UpdatePropertyOp, updated, viewer, func(ctx context.Context) error {
			return s.store.UpdateProperty(ctx, updated)
		}),
		func() { s.ledger.UpsertProperty(existing) },
	)
	if err != nil {
		return nil, err
	}
	return s.ledger.GetProperty(id), nil
}

func (s *PropertyServiceImpl) DeleteProperty(ctx context.Context, id uuid.UUID, viewer domain.Viewer) error {
	existing := s.ledger.GetProperty(id)
	if existing == nil {
		return domain.ErrPropertyNotFound
	}
	if viewer.Role == domain.Owner && existing.OwnerID != viewer.ID {
		return ErrPermissionDenied
	}

	key := domain.EntityKey{Collection: domain.PropertiesCollection, ID: id.String()}
	return s.sync.ExecuteWithOptimism(ctx, key, domain.DeletePropertyOp,
		func() { s.ledger.RemoveProperty(id) },
		s.remoteOrQueue(domain.DeletePropertyOp, deletePayload{ID: id}, viewer, func(ctx context.Context) error {
			return s.store.DeleteProperty(ctx, id)
		}),
		func() { s.ledger.UpsertProperty(existing) },
	)
}

func (s *PropertyServiceImpl) remoteOrQueue(kind domain.OperationKind, payload any, viewer domain.Viewer,
	op func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, remote.ErrUnavailable) {
			if _, qerr := s.queue.QueueOperation(kind, payload, viewer); qerr == nil {
				return nil
			}
		}
		return err
	}
}
