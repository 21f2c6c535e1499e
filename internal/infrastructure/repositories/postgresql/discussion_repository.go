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

type DiscussionRepository struct {
	crudRepository[models.Discussion]
}

func NewDiscussionRepository(db *database.DB) repositories.DiscussionRepository {
	return &DiscussionRepository{crudRepository: newCrudRepository[models.Discussion](db, "discussion")}
}

func (r *DiscussionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Discussion, error) {
	var discussion models.Discussion
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Reactions").
		Where("id = ?", id).
		First(&discussion).Error
	if err != nil {
		return nil, r.wrapLookup(err)
	}
	return &discussion, nil
}

// Delete removes the thread together with its comments and reactions.
func (r *DiscussionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discussion_id = ?", id).Delete(&models.DiscussionReaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete reactions: %w", err)
		}
		if err := tx.Where("discussion_id = ?", id).Delete(&models.DiscussionComment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Discussion{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete discussion: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return r.notFound()
		}
		return nil
	})
}

// ListByProperty returns pinned threads first, newest first within each group.
func (r *DiscussionRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Discussion, error) {
	return r.listWhere(ctx, "is_pinned DESC, created_at DESC", "property_id = ?", propertyID)
}

func (r *DiscussionRepository) AddComment(ctx context.Context, comment *models.DiscussionComment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create discussion comment: %w", err)
	}
	return nil
}

func (r *DiscussionRepository) GetComment(ctx context.Context, id uuid.UUID) (*models.DiscussionComment, error) {
	var comment models.DiscussionComment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("discussion comment %w", repositories.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get discussion comment: %w", err)
	}
	return &comment, nil
}

func (r *DiscussionRepository) ListComments(ctx context.Context, discussionID uuid.UUID) ([]models.DiscussionComment, error) {
	var comments []models.DiscussionComment
	err := r.db.WithContext(ctx).
		Where("discussion_id = ?", discussionID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list discussion comments: %w", err)
	}
	return comments, nil
}

// FindReaction matches on comment_id IS NULL for thread-level reactions.
func (r *DiscussionRepository) FindReaction(ctx context.Context, discussionID uuid.UUID, commentID *uuid.UUID, userID uuid.UUID, emoji string) (*models.DiscussionReaction, error) {
	query := r.db.WithContext(ctx).
		Where("discussion_id = ? AND user_id = ? AND emoji = ?", discussionID, userID, emoji)
	if commentID != nil {
		query = query.Where("comment_id = ?", *commentID)
	} else {
		query = query.Where("comment_id IS NULL")
	}

	var reaction models.DiscussionReaction
	if err := query.First(&reaction).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("reaction %w", repositories.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}
	return &reaction, nil
}

func (r *DiscussionRepository) AddReaction(ctx context.Context, reaction *models.DiscussionReaction) error {
	if err := r.db.WithContext(ctx).Create(reaction).Error; err != nil {
		return fmt.Errorf("failed to create reaction: %w", err)
	}
	return nil
}

func (r *DiscussionRepository) RemoveReaction(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.DiscussionReaction{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete reaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("reaction %w", repositories.ErrRecordNotFound)
	}
	return nil
}
