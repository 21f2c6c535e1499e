package postgresql

import (
	"context"
	"fmt"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

type PermitRepository struct {
	crudRepository[models.Permit]
}

func NewPermitRepository(db *database.DB) repositories.PermitRepository {
	return &PermitRepository{crudRepository: newCrudRepository[models.Permit](db, "permit")}
}

func (r *PermitRepository) CreateBatch(ctx context.Context, permits []models.Permit) error {
	if len(permits) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&permits).Error; err != nil {
		return fmt.Errorf("failed to create permits: %w", err)
	}
	return nil
}

func (r *PermitRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Permit, error) {
	return r.listWhere(ctx, "created_at DESC", "property_id = ?", propertyID)
}
