package services

import (
	"context"
	"encoding/json"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/pkg/logger"
	"github.com/google/uuid"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID    uuid.UUID
	Role      models.UserRole
	IPAddress string
	UserAgent string
}

// Change describes one mutation for the activity feed and the audit trail.
type Change struct {
	Action      models.AuditAction
	EntityType  string
	EntityID    uuid.UUID
	PropertyID  *uuid.UUID
	Description string
	Before      interface{}
	After       interface{}
}

// Recorder writes activity and audit entries. Failures are logged, never returned.
type Recorder struct {
	activityRepo repositories.ActivityRepository
	auditRepo    repositories.AuditLogRepository
	log          *logger.Logger
}

func NewRecorder(activityRepo repositories.ActivityRepository, auditRepo repositories.AuditLogRepository, log *logger.Logger) *Recorder {
	return &Recorder{activityRepo: activityRepo, auditRepo: auditRepo, log: log}
}

// Record stores the change; a nil Recorder is a no-op.
func (r *Recorder) Record(ctx context.Context, actor Actor, change Change) {
	if r == nil {
		return
	}

	entityID := change.EntityID
	activity := &models.Activity{
		PropertyID:  change.PropertyID,
		UserID:      actor.UserID,
		Type:        change.EntityType + "_" + string(change.Action),
		Description: change.Description,
		EntityType:  change.EntityType,
		EntityID:    &entityID,
	}
	if err := r.activityRepo.Create(ctx, activity); err != nil {
		r.log.Warn("failed to record activity",
			"entity_type", change.EntityType,
			"entity_id", change.EntityID,
			"error", err)
	}

	audit := &models.AuditLog{
		UserID:     actor.UserID,
		Action:     change.Action,
		EntityType: change.EntityType,
		EntityID:   change.EntityID,
		OldValues:  snapshot(change.Before),
		NewValues:  snapshot(change.After),
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if err := r.auditRepo.Create(ctx, audit); err != nil {
		r.log.Warn("failed to record audit log",
			"entity_type", change.EntityType,
			"entity_id", change.EntityID,
			"error", err)
	}
}

// snapshot flattens a value into the JSON object stored in the audit row.
func snapshot(v interface{}) models.JSONB {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]interface{}); ok {
		return models.JSONB(m)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out models.JSONB
	if err := json.Unmarshal(raw, &out); err != nil {
		return models.JSONB{"value": string(raw)}
	}
	return out
}
