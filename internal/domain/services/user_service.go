package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

const userEntity = "user"

// UserService handles the user directory and global roles. Sign-in lives in AuthService.
type UserService struct {
	userRepo repositories.UserRepository
	recorder *Recorder
}

func NewUserService(userRepo repositories.UserRepository, recorder *Recorder) *UserService {
	return &UserService{userRepo: userRepo, recorder: recorder}
}

// ProfileUpdate carries the fields a user may change on their own profile.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
}

// ListUsers is available to owners and PMs, who staff projects from it.
func (s *UserService) ListUsers(ctx context.Context, actor Actor, params repositories.ListParams) ([]models.User, int64, error) {
	if !isManagerRole(actor.Role) {
		return nil, 0, ErrForbidden
	}
	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetUser returns the actor's own record, or any record to owners and PMs.
func (s *UserService) GetUser(ctx context.Context, actor Actor, id uuid.UUID) (*models.User, error) {
	if id != actor.UserID && !isManagerRole(actor.Role) {
		return nil, ErrForbidden
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get user")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, update ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, translate(err, "get user")
	}
	before := *user

	if update.FirstName != nil {
		user.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		user.LastName = strings.TrimSpace(*update.LastName)
	}
	if user.FirstName == "" {
		return nil, validationError("first_name is required")
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditUpdate,
		EntityType:  userEntity,
		EntityID:    user.ID,
		Description: fmt.Sprintf("%s updated their profile", user.FullName()),
		Before:      before,
		After:       user,
	})
	return user, nil
}

// UpdateRole changes a user's global role. Owners cannot change their own role.
func (s *UserService) UpdateRole(ctx context.Context, actor Actor, id uuid.UUID, role models.UserRole) (*models.User, error) {
	if actor.Role != models.UserRoleOwner {
		return nil, ErrForbidden
	}
	if id == actor.UserID {
		return nil, validationError("you cannot change your own role")
	}
	if !validRole(role) {
		return nil, validationError("invalid role %q", role)
	}
	return s.mutate(ctx, actor, id, func(user *models.User) string {
		user.Role = role
		return fmt.Sprintf("Changed %s's role to %s", user.FullName(), role)
	})
}

// SetActive enables or disables sign-in for a user other than the actor.
func (s *UserService) SetActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) (*models.User, error) {
	if actor.Role != models.UserRoleOwner {
		return nil, ErrForbidden
	}
	if id == actor.UserID {
		return nil, validationError("you cannot deactivate yourself")
	}
	return s.mutate(ctx, actor, id, func(user *models.User) string {
		user.IsActive = active
		if active {
			return fmt.Sprintf("Reactivated %s", user.FullName())
		}
		return fmt.Sprintf("Deactivated %s", user.FullName())
	})
}

func (s *UserService) mutate(ctx context.Context, actor Actor, id uuid.UUID, change func(*models.User) string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get user")
	}
	before := *user
	description := change(user)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditUpdate,
		EntityType:  userEntity,
		EntityID:    user.ID,
		Description: description,
		Before:      before,
		After:       user,
	})
	return user, nil
}
