package postgresql

import (
	"context"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

type RiskRepository struct {
	crudRepository[models.Risk]
}

func NewRiskRepository(db *database.DB) repositories.RiskRepository {
	return &RiskRepository{crudRepository: newCrudRepository[models.Risk](db, "risk")}
}

func (r *RiskRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Risk, error) {
	return r.listWhere(ctx, "created_at DESC", "property_id = ?", propertyID)
}
