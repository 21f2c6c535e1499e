package services

import (
	"context"
	"fmt"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// recordStore is the slice of a repository that property-scoped records share.
type recordStore[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]T, error)
}

// recordKind describes how one record type plugs into recordService.
type recordKind[T any] struct {
	entity     string
	id         func(*T) uuid.UUID
	propertyID func(*T) uuid.UUID
	label      func(*T) string
	// prepare normalizes and validates the record before every write.
	prepare func(ctx context.Context, entity *T) error
	// author, when set, lets the record's creator edit it without a manager role.
	author func(*T) uuid.UUID
	// membersCreate lets any member of the property create the record.
	membersCreate bool
}

// recordService implements create, read, update, delete and list for records owned by a property.
type recordService[T any] struct {
	kind     recordKind[T]
	store    recordStore[T]
	scope    propertyScope
	recorder *Recorder
}

func newRecordService[T any](kind recordKind[T], store recordStore[T], propertyRepo repositories.PropertyRepository, access *AccessResolver, recorder *Recorder) *recordService[T] {
	return &recordService[T]{
		kind:     kind,
		store:    store,
		scope:    propertyScope{propertyRepo: propertyRepo, access: access},
		recorder: recorder,
	}
}

func (s *recordService[T]) record(ctx context.Context, actor Actor, action models.AuditAction, verb string, entity *T, before, after interface{}) {
	propertyID := s.kind.propertyID(entity)
	s.recorder.Record(ctx, actor, Change{
		Action:      action,
		EntityType:  s.kind.entity,
		EntityID:    s.kind.id(entity),
		PropertyID:  &propertyID,
		Description: fmt.Sprintf("%s %s %q", verb, s.kind.entity, s.kind.label(entity)),
		Before:      before,
		After:       after,
	})
}

func (s *recordService[T]) check(ctx context.Context, entity *T) error {
	if s.kind.prepare == nil {
		return nil
	}
	return s.kind.prepare(ctx, entity)
}

// canEdit lets managers of the property, and the record's author when tracked, change it.
func (s *recordService[T]) canEdit(ctx context.Context, actor Actor, entity *T) error {
	propertyID := s.kind.propertyID(entity)
	if s.kind.author != nil && s.kind.author(entity) == actor.UserID {
		_, err := s.scope.view(ctx, actor, propertyID)
		return err
	}
	_, err := s.scope.manage(ctx, actor, propertyID)
	return err
}

func (s *recordService[T]) Create(ctx context.Context, actor Actor, entity *T) (*T, error) {
	propertyID := s.kind.propertyID(entity)
	if propertyID == uuid.Nil {
		return nil, validationError("property_id is required")
	}
	var err error
	if s.kind.membersCreate {
		_, err = s.scope.view(ctx, actor, propertyID)
	} else {
		_, err = s.scope.manage(ctx, actor, propertyID)
	}
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, entity); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.kind.entity, err)
	}
	s.record(ctx, actor, models.AuditCreate, "Created", entity, nil, entity)
	return entity, nil
}

func (s *recordService[T]) Get(ctx context.Context, actor Actor, id uuid.UUID) (*T, error) {
	entity, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get "+s.kind.entity)
	}
	if _, err := s.scope.view(ctx, actor, s.kind.propertyID(entity)); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *recordService[T]) ListByProperty(ctx context.Context, actor Actor, propertyID uuid.UUID) ([]T, error) {
	if _, err := s.scope.view(ctx, actor, propertyID); err != nil {
		return nil, err
	}
	items, err := s.store.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", s.kind.entity, err)
	}
	return items, nil
}

// Update applies the patch; a record never moves to another property.
func (s *recordService[T]) Update(ctx context.Context, actor Actor, id uuid.UUID, patch Patch[T]) (*T, error) {
	return s.update(ctx, actor, id, func(entity *T) error {
		patch.Apply(entity)
		return nil
	})
}

func (s *recordService[T]) update(ctx context.Context, actor Actor, id uuid.UUID, mutate func(*T) error) (*T, error) {
	entity, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get "+s.kind.entity)
	}
	if err := s.canEdit(ctx, actor, entity); err != nil {
		return nil, err
	}

	before := *entity
	propertyID := s.kind.propertyID(entity)
	if err := mutate(entity); err != nil {
		return nil, err
	}
	if s.kind.propertyID(entity) != propertyID {
		return nil, validationError("property_id cannot be changed")
	}
	if err := s.check(ctx, entity); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", s.kind.entity, err)
	}
	s.record(ctx, actor, models.AuditUpdate, "Updated", entity, before, entity)
	return entity, nil
}

func (s *recordService[T]) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	entity, err := s.store.GetByID(ctx, id)
	if err != nil {
		return translate(err, "get "+s.kind.entity)
	}
	if err := s.canEdit(ctx, actor, entity); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return translate(err, "delete "+s.kind.entity)
	}
	s.record(ctx, actor, models.AuditDelete, "Deleted", entity, entity, nil)
	return nil
}
