package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// AccessSubject is who is asking, as seen from one document's property.
type AccessSubject struct {
	UserID          uuid.UUID
	Authenticated   bool
	Role            models.UserRole
	IsProjectMember bool
}

// AccessTarget is the part of a document the decision reads.
type AccessTarget struct {
	AccessLevel  models.AccessLevel
	HasProperty  bool
	AllowedUsers []string
	AllowedRoles []string
}

// TargetOf extracts the access-relevant fields of a document.
func TargetOf(doc *models.Document) AccessTarget {
	return AccessTarget{
		AccessLevel:  doc.AccessLevel,
		HasProperty:  doc.PropertyID != nil,
		AllowedUsers: doc.AllowedUsers,
		AllowedRoles: doc.AllowedRoles,
	}
}

// EvaluateAccess decides read access from the subject and the document alone.
func EvaluateAccess(subject AccessSubject, target AccessTarget) bool {
	switch target.AccessLevel {
	case models.AccessPublic:
		return true
	case models.AccessProjectTeam:
		if !subject.Authenticated {
			return false
		}
		return subject.IsProjectMember || !target.HasProperty
	case models.AccessProjectManagers:
		return subject.Authenticated && (subject.Role == models.UserRolePM || subject.Role == models.UserRoleOwner)
	case models.AccessOwnersOnly:
		return subject.Authenticated && subject.Role == models.UserRoleOwner
	case models.AccessRestricted:
		if !subject.Authenticated {
			return false
		}
		return contains(target.AllowedUsers, subject.UserID.String()) || contains(target.AllowedRoles, string(subject.Role))
	default:
		return false
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// AccessResolver builds subjects from property membership and user-targeted shares.
type AccessResolver struct {
	propertyRepo repositories.PropertyRepository
	memberRepo   repositories.PropertyMemberRepository
	shareRepo    repositories.ShareRepository
	now          func() time.Time
}

func NewAccessResolver(
	propertyRepo repositories.PropertyRepository,
	memberRepo repositories.PropertyMemberRepository,
	shareRepo repositories.ShareRepository,
) *AccessResolver {
	return &AccessResolver{
		propertyRepo: propertyRepo,
		memberRepo:   memberRepo,
		shareRepo:    shareRepo,
		now:          time.Now,
	}
}

// SubjectFor resolves the actor's effective role on propertyID. The property owner is a member with role owner.
func (r *AccessResolver) SubjectFor(ctx context.Context, actor Actor, propertyID *uuid.UUID) (AccessSubject, error) {
	subject := AccessSubject{
		UserID:        actor.UserID,
		Authenticated: actor.UserID != uuid.Nil,
		Role:          actor.Role,
	}
	if propertyID == nil || !subject.Authenticated {
		return subject, nil
	}

	property, err := r.propertyRepo.GetByID(ctx, *propertyID)
	if err != nil && !errors.Is(err, repositories.ErrRecordNotFound) {
		return subject, fmt.Errorf("failed to load property: %w", err)
	}
	if property != nil && property.OwnerID == actor.UserID {
		subject.IsProjectMember = true
		subject.Role = models.UserRoleOwner
		return subject, nil
	}

	member, err := r.memberRepo.Get(ctx, *propertyID, actor.UserID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return subject, nil
	}
	if err != nil {
		return subject, fmt.Errorf("failed to load membership: %w", err)
	}
	subject.IsProjectMember = true
	subject.Role = member.Role
	return subject, nil
}

// CanRead applies the decision table, then falls back to an active share targeting the actor.
func (r *AccessResolver) CanRead(ctx context.Context, actor Actor, doc *models.Document) (bool, error) {
	subject, err := r.SubjectFor(ctx, actor, doc.PropertyID)
	if err != nil {
		return false, err
	}
	if EvaluateAccess(subject, TargetOf(doc)) {
		return true, nil
	}
	if !subject.Authenticated {
		return false, nil
	}
	ids, err := r.shareRepo.ListDocumentIDsSharedWith(ctx, actor.UserID, r.now())
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == doc.ID {
			return true, nil
		}
	}
	return false, nil
}

// Snapshot resolves the actor's view of every property once, for filtering long result sets.
func (r *AccessResolver) Snapshot(ctx context.Context, actor Actor) (*AccessSnapshot, error) {
	snap := &AccessSnapshot{
		actor:  actor,
		roles:  make(map[uuid.UUID]models.UserRole),
		shared: make(map[uuid.UUID]bool),
	}
	if actor.UserID == uuid.Nil {
		return snap, nil
	}

	memberships, err := r.memberRepo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		snap.roles[m.PropertyID] = m.Role
	}

	owned, err := r.propertyRepo.ListOwnedBy(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	for _, p := range owned {
		snap.roles[p.ID] = models.UserRoleOwner
	}

	ids, err := r.shareRepo.ListDocumentIDsSharedWith(ctx, actor.UserID, r.now())
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		snap.shared[id] = true
	}
	return snap, nil
}

// AccessSnapshot answers CanRead without further queries.
type AccessSnapshot struct {
	actor  Actor
	roles  map[uuid.UUID]models.UserRole
	shared map[uuid.UUID]bool
}

func (s *AccessSnapshot) CanRead(doc *models.Document) bool {
	subject := AccessSubject{
		UserID:        s.actor.UserID,
		Authenticated: s.actor.UserID != uuid.Nil,
		Role:          s.actor.Role,
	}
	if doc.PropertyID != nil {
		if role, ok := s.roles[*doc.PropertyID]; ok {
			subject.IsProjectMember = true
			subject.Role = role
		}
	}
	return EvaluateAccess(subject, TargetOf(doc)) || s.shared[doc.ID]
}
