package postgresql

import (
	"context"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

type MilestoneRepository struct {
	crudRepository[models.Milestone]
}

func NewMilestoneRepository(db *database.DB) repositories.MilestoneRepository {
	return &MilestoneRepository{crudRepository: newCrudRepository[models.Milestone](db, "milestone")}
}

func (r *MilestoneRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Milestone, error) {
	return r.listWhere(ctx, "sort_order ASC, due_date ASC", "property_id = ?", propertyID)
}
