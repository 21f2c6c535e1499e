package services

import (
	"context"
	"fmt"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// ActivityService reads the activity feed and the audit trail that Recorder writes.
type ActivityService struct {
	activityRepo repositories.ActivityRepository
	auditRepo    repositories.AuditLogRepository
	scope        propertyScope
}

func NewActivityService(
	activityRepo repositories.ActivityRepository,
	auditRepo repositories.AuditLogRepository,
	propertyRepo repositories.PropertyRepository,
	access *AccessResolver,
) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		auditRepo:    auditRepo,
		scope:        propertyScope{propertyRepo: propertyRepo, access: access},
	}
}

// ListActivities returns the feed of one property, or the company-wide feed when propertyID is nil.
func (s *ActivityService) ListActivities(ctx context.Context, actor Actor, propertyID *uuid.UUID, params repositories.ListParams) ([]models.Activity, int64, error) {
	if propertyID != nil {
		if _, err := s.scope.view(ctx, actor, *propertyID); err != nil {
			return nil, 0, err
		}
	}
	activities, total, err := s.activityRepo.List(ctx, propertyID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, total, nil
}

// ListAuditLogs is restricted to owners and PMs.
func (s *ActivityService) ListAuditLogs(ctx context.Context, actor Actor, filters repositories.AuditLogFilters) ([]models.AuditLog, int64, error) {
	if !isManagerRole(actor.Role) {
		return nil, 0, ErrForbidden
	}
	logs, total, err := s.auditRepo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}
