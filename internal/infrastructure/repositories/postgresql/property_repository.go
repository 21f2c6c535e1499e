package postgresql

import (
	"context"
	"fmt"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PropertyRepository struct {
	crudRepository[models.Property]
}

func NewPropertyRepository(db *database.DB) repositories.PropertyRepository {
	return &PropertyRepository{crudRepository: newCrudRepository[models.Property](db, "property")}
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&property).Error
	if err != nil {
		return nil, r.wrapLookup(err)
	}
	return &property, nil
}

// Delete removes the property and its member rows together.
func (r *PropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyMember{}).Error; err != nil {
			return fmt.Errorf("failed to delete property members: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Property{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete property: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return r.notFound()
		}
		return nil
	})
}

func (r *PropertyRepository) List(ctx context.Context, filters repositories.PropertyFilters) ([]models.Property, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Property{})

	if len(filters.Status) > 0 {
		query = query.Where("status IN ?", filters.Status)
	}

	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}

	if filters.MemberOf != nil {
		members := r.db.WithContext(ctx).Model(&models.PropertyMember{}).
			Select("property_id").
			Where("user_id = ?", *filters.MemberOf)
		query = query.Where("(owner_id = ? OR id IN (?))", *filters.MemberOf, members)
	}

	if filters.Search != "" {
		term := likePattern(filters.Search)
		query = query.Where("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(address) LIKE ?"+likeEscape+" OR LOWER(city) LIKE ?"+likeEscape+")", term, term, term)
	}

	return r.paginate(query, filters.ListParams, map[string]string{
		"name":       "name",
		"status":     "status",
		"created_at": "created_at",
		"start_date": "start_date",
	}, "created_at DESC")
}

func (r *PropertyRepository) ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	return r.listWhere(ctx, "created_at DESC", "owner_id = ?", ownerID)
}

func (r *PropertyRepository) GetDashboard(ctx context.Context, propertyID uuid.UUID) (*repositories.PropertyDashboard, error) {
	if _, err := r.crudRepository.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	dashboard := &repositories.PropertyDashboard{PropertyID: propertyID}
	db := r.db.WithContext(ctx)

	counts := []struct {
		target *int64
		model  interface{}
		query  string
		args   []interface{}
	}{
		{&dashboard.MilestonesTotal, &models.Milestone{}, "property_id = ?", []interface{}{propertyID}},
		{&dashboard.MilestonesCompleted, &models.Milestone{}, "property_id = ? AND status = ?", []interface{}{propertyID, models.MilestoneCompleted}},
		{&dashboard.MilestonesDelayed, &models.Milestone{}, "property_id = ? AND status = ?", []interface{}{propertyID, models.MilestoneDelayed}},
		{&dashboard.OpenRFQs, &models.RFQ{}, "property_id = ? AND status = ?", []interface{}{propertyID, models.RFQOpen}},
		{&dashboard.PendingPermits, &models.Permit{}, "property_id = ? AND status IN ?", []interface{}{propertyID, []models.PermitStatus{models.PermitNotStarted, models.PermitApplied}}},
		{&dashboard.OpenRisks, &models.Risk{}, "property_id = ? AND status = ?", []interface{}{propertyID, models.RiskOpen}},
		{&dashboard.Documents, &models.Document{}, "property_id = ? AND is_latest_version = ? AND is_archived = ?", []interface{}{propertyID, true, false}},
		{&dashboard.DocumentsInReview, &models.Document{}, "property_id = ? AND is_latest_version = ? AND status = ?", []interface{}{propertyID, true, models.DocStatusReview}},
	}

	for _, c := range counts {
		if err := db.Model(c.model).Where(c.query, c.args...).Count(c.target).Error; err != nil {
			return nil, fmt.Errorf("failed to build dashboard: %w", err)
		}
	}

	var budget struct {
		Estimated float64
		Actual    float64
	}
	err := db.Model(&models.BudgetLine{}).
		Select("COALESCE(SUM(estimated_amount), 0) AS estimated, COALESCE(SUM(actual_amount), 0) AS actual").
		Where("property_id = ?", propertyID).
		Scan(&budget).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum budget: %w", err)
	}
	dashboard.BudgetEstimated = budget.Estimated
	dashboard.BudgetActual = budget.Actual

	return dashboard, nil
}

type PropertyMemberRepository struct {
	crudRepository[models.PropertyMember]
}

func NewPropertyMemberRepository(db *database.DB) repositories.PropertyMemberRepository {
	return &PropertyMemberRepository{crudRepository: newCrudRepository[models.PropertyMember](db, "property member")}
}

// Upsert adds the member or changes the role of an existing one.
func (r *PropertyMemberRepository) Upsert(ctx context.Context, member *models.PropertyMember) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(member).Error
	if err != nil {
		return fmt.Errorf("failed to save property member: %w", err)
	}
	return nil
}

func (r *PropertyMemberRepository) Get(ctx context.Context, propertyID, userID uuid.UUID) (*models.PropertyMember, error) {
	var member models.PropertyMember
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND user_id = ?", propertyID, userID).
		First(&member).Error
	if err != nil {
		return nil, r.wrapLookup(err)
	}
	return &member, nil
}

func (r *PropertyMemberRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.PropertyMember, error) {
	var members []models.PropertyMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("property_id = ?", propertyID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list property members: %w", err)
	}
	return members, nil
}

func (r *PropertyMemberRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PropertyMember, error) {
	return r.listWhere(ctx, "created_at ASC", "user_id = ?", userID)
}

func (r *PropertyMemberRepository) Remove(ctx context.Context, propertyID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("property_id = ? AND user_id = ?", propertyID, userID).
		Delete(&models.PropertyMember{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove property member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.notFound()
	}
	return nil
}
