package postgresql

import (
	"context"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
)

type AuditLogRepository struct {
	crudRepository[models.AuditLog]
}

func NewAuditLogRepository(db *database.DB) repositories.AuditLogRepository {
	return &AuditLogRepository{crudRepository: newCrudRepository[models.AuditLog](db, "audit log")}
}

func (r *AuditLogRepository) List(ctx context.Context, filters repositories.AuditLogFilters) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.EntityType != "" {
		query = query.Where("entity_type = ?", filters.EntityType)
	}
	if filters.EntityID != nil {
		query = query.Where("entity_id = ?", *filters.EntityID)
	}
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	return r.paginate(query, filters.ListParams, map[string]string{
		"created_at":  "created_at",
		"action":      "action",
		"entity_type": "entity_type",
	}, "created_at DESC")
}
