package postgresql

import (
	"context"
	"fmt"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

type BudgetLineRepository struct {
	crudRepository[models.BudgetLine]
}

func NewBudgetLineRepository(db *database.DB) repositories.BudgetLineRepository {
	return &BudgetLineRepository{crudRepository: newCrudRepository[models.BudgetLine](db, "budget line")}
}

func (r *BudgetLineRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.BudgetLine, error) {
	return r.listWhere(ctx, "category ASC, created_at ASC", "property_id = ?", propertyID)
}

func (r *BudgetLineRepository) SummarizeByCategory(ctx context.Context, propertyID uuid.UUID) ([]repositories.BudgetCategorySummary, error) {
	var summary []repositories.BudgetCategorySummary
	err := r.db.WithContext(ctx).Model(&models.BudgetLine{}).
		Select("category, COALESCE(SUM(estimated_amount), 0) AS estimated, COALESCE(SUM(actual_amount), 0) AS actual, COUNT(*) AS line_count").
		Where("property_id = ?", propertyID).
		Group("category").
		Order("category ASC").
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize budget: %w", err)
	}
	return summary, nil
}
