package postgresql

import (
	"context"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
)

type VendorRepository struct {
	crudRepository[models.Vendor]
}

func NewVendorRepository(db *database.DB) repositories.VendorRepository {
	return &VendorRepository{crudRepository: newCrudRepository[models.Vendor](db, "vendor")}
}

func (r *VendorRepository) List(ctx context.Context, filters repositories.VendorFilters) ([]models.Vendor, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Vendor{})

	if filters.Trade != "" {
		query = query.Where("LOWER(trade) = LOWER(?)", filters.Trade)
	}

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if filters.Search != "" {
		term := likePattern(filters.Search)
		query = query.Where("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(company) LIKE ?"+likeEscape+")", term, term)
	}

	return r.paginate(query, filters.ListParams, map[string]string{
		"name":       "name",
		"rating":     "rating",
		"created_at": "created_at",
	}, "name ASC")
}
