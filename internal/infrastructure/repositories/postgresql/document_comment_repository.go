package postgresql

import (
	"context"
	"fmt"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentCommentRepository struct {
	crudRepository[models.DocumentComment]
}

func NewDocumentCommentRepository(db *database.DB) repositories.DocumentCommentRepository {
	return &DocumentCommentRepository{crudRepository: newCrudRepository[models.DocumentComment](db, "document comment")}
}

// ListByDocument returns comments oldest first so replies follow their parents.
func (r *DocumentCommentRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]models.DocumentComment, error) {
	var comments []models.DocumentComment
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "first_name", "last_name", "email", "role")
		}).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list document comments: %w", err)
	}
	return comments, nil
}
