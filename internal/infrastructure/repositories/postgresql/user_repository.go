package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

type UserRepository struct {
	crudRepository[models.User]
}

func NewUserRepository(db *database.DB) repositories.UserRepository {
	return &UserRepository{crudRepository: newCrudRepository[models.User](db, "user")}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, r.wrapLookup(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error
	if err != nil {
		return nil, r.wrapLookup(err)
	}
	return &user, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", now)
	if result.Error != nil {
		return fmt.Errorf("failed to update last login: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.notFound()
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, params repositories.ListParams) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if params.Search != "" {
		term := likePattern(params.Search)
		query = query.Where("(LOWER(email) LIKE ?"+likeEscape+" OR LOWER(first_name) LIKE ?"+likeEscape+" OR LOWER(last_name) LIKE ?"+likeEscape+")", term, term, term)
	}

	return r.paginate(query, params, map[string]string{
		"email":      "email",
		"created_at": "created_at",
		"last_name":  "last_name",
	}, "created_at DESC")
}
