package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

const propertyEntity = "property"

// Patch copies the fields a caller supplied onto an entity.
type Patch[T any] interface {
	Apply(entity *T)
}

func isManagerRole(role models.UserRole) bool {
	return role == models.UserRoleOwner || role == models.UserRolePM
}

// propertyScope decides who may see and change the records of one property.
// Members see everything on their property; owners and PMs on it may change it.
// A user whose global role is owner administers every property.
type propertyScope struct {
	propertyRepo repositories.PropertyRepository
	access       *AccessResolver
}

func (p propertyScope) load(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	property, err := p.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, translate(err, "get property")
	}
	return property, nil
}

func (p propertyScope) view(ctx context.Context, actor Actor, propertyID uuid.UUID) (*models.Property, error) {
	property, err := p.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.UserRoleOwner {
		return property, nil
	}
	subject, err := p.access.SubjectFor(ctx, actor, &propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate access: %w", err)
	}
	if !subject.IsProjectMember {
		return nil, ErrForbidden
	}
	return property, nil
}

func (p propertyScope) manage(ctx context.Context, actor Actor, propertyID uuid.UUID) (*models.Property, error) {
	property, err := p.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.UserRoleOwner {
		return property, nil
	}
	subject, err := p.access.SubjectFor(ctx, actor, &propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate access: %w", err)
	}
	if !subject.IsProjectMember || !isManagerRole(subject.Role) {
		return nil, ErrForbidden
	}
	return property, nil
}

// PropertyService manages properties, their team and their dashboard.
type PropertyService struct {
	propertyRepo repositories.PropertyRepository
	memberRepo   repositories.PropertyMemberRepository
	userRepo     repositories.UserRepository
	scope        propertyScope
	recorder     *Recorder
}

func NewPropertyService(
	propertyRepo repositories.PropertyRepository,
	memberRepo repositories.PropertyMemberRepository,
	userRepo repositories.UserRepository,
	access *AccessResolver,
	recorder *Recorder,
) *PropertyService {
	return &PropertyService{
		propertyRepo: propertyRepo,
		memberRepo:   memberRepo,
		userRepo:     userRepo,
		scope:        propertyScope{propertyRepo: propertyRepo, access: access},
		recorder:     recorder,
	}
}

func validateProperty(p *models.Property) error {
	if strings.TrimSpace(p.Name) == "" {
		return validationError("name is required")
	}
	if strings.TrimSpace(p.Address) == "" {
		return validationError("address is required")
	}
	if p.TotalBudget < 0 {
		return validationError("total_budget must not be negative")
	}
	if p.StartDate != nil && p.TargetCompletionDate != nil && p.TargetCompletionDate.Before(*p.StartDate) {
		return validationError("target_completion_date is before start_date")
	}
	return nil
}

// CreateProperty opens a project owned by the actor. Only owners and PMs start projects.
func (s *PropertyService) CreateProperty(ctx context.Context, actor Actor, property *models.Property) (*models.Property, error) {
	if !isManagerRole(actor.Role) {
		return nil, ErrForbidden
	}
	if property.Status == "" {
		property.Status = models.PropertyPlanning
	}
	if err := validateProperty(property); err != nil {
		return nil, err
	}
	property.OwnerID = actor.UserID

	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	propertyID := property.ID
	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditCreate,
		EntityType:  propertyEntity,
		EntityID:    property.ID,
		PropertyID:  &propertyID,
		Description: fmt.Sprintf("Created property %q", property.Name),
		After:       property,
	})
	return property, nil
}

func (s *PropertyService) GetProperty(ctx context.Context, actor Actor, id uuid.UUID) (*models.Property, error) {
	return s.scope.view(ctx, actor, id)
}

// ListProperties returns the properties the actor owns or belongs to; owners see all of them.
func (s *PropertyService) ListProperties(ctx context.Context, actor Actor, filters repositories.PropertyFilters) ([]models.Property, int64, error) {
	if actor.Role != models.UserRoleOwner {
		userID := actor.UserID
		filters.MemberOf = &userID
	}
	properties, total, err := s.propertyRepo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, total, nil
}

func (s *PropertyService) UpdateProperty(ctx context.Context, actor Actor, id uuid.UUID, patch Patch[models.Property]) (*models.Property, error) {
	property, err := s.scope.manage(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := *property
	property.Owner = nil

	patch.Apply(property)
	if err := validateProperty(property); err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditUpdate,
		EntityType:  propertyEntity,
		EntityID:    property.ID,
		PropertyID:  &property.ID,
		Description: fmt.Sprintf("Updated property %q", property.Name),
		Before:      before,
		After:       property,
	})
	return property, nil
}

// DeleteProperty is limited to the property's owner.
func (s *PropertyService) DeleteProperty(ctx context.Context, actor Actor, id uuid.UUID) error {
	property, err := s.scope.load(ctx, id)
	if err != nil {
		return err
	}
	if property.OwnerID != actor.UserID && actor.Role != models.UserRoleOwner {
		return ErrForbidden
	}
	if err := s.propertyRepo.Delete(ctx, id); err != nil {
		return translate(err, "delete property")
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditDelete,
		EntityType:  propertyEntity,
		EntityID:    property.ID,
		Description: fmt.Sprintf("Deleted property %q", property.Name),
		Before:      property,
	})
	return nil
}

func (s *PropertyService) ListMembers(ctx context.Context, actor Actor, propertyID uuid.UUID) ([]models.PropertyMember, error) {
	if _, err := s.scope.view(ctx, actor, propertyID); err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// AddMember adds the user to the team, or changes the role of an existing member.
func (s *PropertyService) AddMember(ctx context.Context, actor Actor, propertyID, userID uuid.UUID, role models.UserRole) (*models.PropertyMember, error) {
	property, err := s.scope.manage(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}
	if !validRole(role) {
		return nil, validationError("invalid role %q", role)
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, validationError("user %s does not exist", userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	member := &models.PropertyMember{PropertyID: propertyID, UserID: userID, Role: role}
	if err := s.memberRepo.Upsert(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditUpdate,
		EntityType:  "property_member",
		EntityID:    member.ID,
		PropertyID:  &propertyID,
		Description: fmt.Sprintf("Added a %s to %q", role, property.Name),
		After:       member,
	})
	return member, nil
}

func (s *PropertyService) RemoveMember(ctx context.Context, actor Actor, propertyID, userID uuid.UUID) error {
	property, err := s.scope.manage(ctx, actor, propertyID)
	if err != nil {
		return err
	}
	if property.OwnerID == userID {
		return validationError("the property owner cannot be removed")
	}
	member, err := s.memberRepo.Get(ctx, propertyID, userID)
	if err != nil {
		return translate(err, "get member")
	}
	if err := s.memberRepo.Remove(ctx, propertyID, userID); err != nil {
		return translate(err, "remove member")
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditDelete,
		EntityType:  "property_member",
		EntityID:    member.ID,
		PropertyID:  &propertyID,
		Description: fmt.Sprintf("Removed a %s from %q", member.Role, property.Name),
		Before:      member,
	})
	return nil
}

// Dashboard aggregates the property's milestones, budget, RFQs, permits, risks and documents.
func (s *PropertyService) Dashboard(ctx context.Context, actor Actor, propertyID uuid.UUID) (*repositories.PropertyDashboard, error) {
	if _, err := s.scope.view(ctx, actor, propertyID); err != nil {
		return nil, err
	}
	dashboard, err := s.propertyRepo.GetDashboard(ctx, propertyID)
	if err != nil {
		return nil, translate(err, "load dashboard")
	}
	return dashboard, nil
}

func validRole(role models.UserRole) bool {
	switch role {
	case models.UserRoleOwner, models.UserRolePM, models.UserRoleTeamMember,
		models.UserRoleContractor, models.UserRoleViewer:
		return true
	}
	return false
}
