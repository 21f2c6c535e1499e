package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShareRepository struct {
	crudRepository[models.DocumentShare]
}

func NewShareRepository(db *database.DB) repositories.ShareRepository {
	return &ShareRepository{crudRepository: newCrudRepository[models.DocumentShare](db, "share")}
}

// GetByToken returns the share regardless of state; callers check active and expiry.
func (r *ShareRepository) GetByToken(ctx context.Context, token string) (*models.DocumentShare, error) {
	var share models.DocumentShare
	err := r.db.WithContext(ctx).
		Preload("Document").
		Where("share_token = ?", token).
		First(&share).Error
	if err != nil {
		return nil, r.wrapLookup(err)
	}
	return &share, nil
}

func (r *ShareRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]models.DocumentShare, error) {
	return r.listWhere(ctx, "created_at DESC", "document_id = ?", documentID)
}

// RecordAccess bumps the counter in SQL so concurrent hits are all counted.
func (r *ShareRepository) RecordAccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.DocumentShare{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_count":     gorm.Expr("access_count + 1"),
			"last_accessed_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record share access: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.notFound()
	}
	return nil
}

// ListDocumentIDsSharedWith returns documents with an active, unexpired share targeting the user.
func (r *ShareRepository) ListDocumentIDsSharedWith(ctx context.Context, userID uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.DocumentShare{}).
		Where("shared_with_user_id = ? AND is_active = ?", userID, true).
		Where("(expires_at IS NULL OR expires_at > ?)", at).
		Distinct().
		Pluck("document_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shared documents: %w", err)
	}
	return ids, nil
}
