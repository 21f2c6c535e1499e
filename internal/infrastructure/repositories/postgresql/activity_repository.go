package postgresql

import (
	"context"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	crudRepository[models.Activity]
}

func NewActivityRepository(db *database.DB) repositories.ActivityRepository {
	return &ActivityRepository{crudRepository: newCrudRepository[models.Activity](db, "activity")}
}

// List returns the feed newest first, scoped to one property when propertyID is set.
func (r *ActivityRepository) List(ctx context.Context, propertyID *uuid.UUID, params repositories.ListParams) ([]models.Activity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{}).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "first_name", "last_name", "email", "role")
		})

	if propertyID != nil {
		query = query.Where("property_id = ?", *propertyID)
	}

	if params.Search != "" {
		query = query.Where("LOWER(description) LIKE ?"+likeEscape, likePattern(params.Search))
	}

	return r.paginate(query, params, map[string]string{
		"created_at": "created_at",
		"type":       "type",
	}, "created_at DESC")
}
