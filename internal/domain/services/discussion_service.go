package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// DiscussionService runs the team's threads, comments and reactions.
type DiscussionService struct {
	*recordService[models.Discussion]
	repo repositories.DiscussionRepository
}

func NewDiscussionService(repo repositories.DiscussionRepository, propertyRepo repositories.PropertyRepository, access *AccessResolver, recorder *Recorder) *DiscussionService {
	kind := recordKind[models.Discussion]{
		entity:        "discussion",
		id:            func(d *models.Discussion) uuid.UUID { return d.ID },
		propertyID:    func(d *models.Discussion) uuid.UUID { return d.PropertyID },
		label:         func(d *models.Discussion) string { return d.Title },
		author:        func(d *models.Discussion) uuid.UUID { return d.CreatedBy },
		membersCreate: true,
		prepare: func(_ context.Context, d *models.Discussion) error {
			if strings.TrimSpace(d.Title) == "" {
				return validationError("title is required")
			}
			return nil
		},
	}
	return &DiscussionService{
		recordService: newRecordService(kind, repo, propertyRepo, access, recorder),
		repo:          repo,
	}
}

func (s *DiscussionService) Create(ctx context.Context, actor Actor, discussion *models.Discussion) (*models.Discussion, error) {
	discussion.CreatedBy = actor.UserID
	discussion.IsClosed = false
	return s.recordService.Create(ctx, actor, discussion)
}

func (s *DiscussionService) ListComments(ctx context.Context, actor Actor, discussionID uuid.UUID) ([]models.DiscussionComment, error) {
	if _, err := s.Get(ctx, actor, discussionID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, discussionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// AddComment replies to an open thread, optionally under another comment of the same thread.
func (s *DiscussionService) AddComment(ctx context.Context, actor Actor, discussionID uuid.UUID, body string, parentID *uuid.UUID) (*models.DiscussionComment, error) {
	discussion, err := s.Get(ctx, actor, discussionID)
	if err != nil {
		return nil, err
	}
	if discussion.IsClosed {
		return nil, fmt.Errorf("%w: discussion is closed", ErrInvalidTransition)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, validationError("body is required")
	}
	if parentID != nil {
		if err := s.commentInThread(ctx, discussionID, *parentID); err != nil {
			return nil, err
		}
	}

	comment := &models.DiscussionComment{
		DiscussionID:    discussionID,
		UserID:          actor.UserID,
		Body:            body,
		ParentCommentID: parentID,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditCreate,
		EntityType:  "discussion_comment",
		EntityID:    comment.ID,
		PropertyID:  &discussion.PropertyID,
		Description: fmt.Sprintf("Commented on %q", discussion.Title),
		After:       comment,
	})
	return comment, nil
}

func (s *DiscussionService) commentInThread(ctx context.Context, discussionID, commentID uuid.UUID) error {
	comment, err := s.repo.GetComment(ctx, commentID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return validationError("comment %s does not exist", commentID)
	}
	if err != nil {
		return fmt.Errorf("failed to load comment: %w", err)
	}
	if comment.DiscussionID != discussionID {
		return validationError("comment belongs to another discussion")
	}
	return nil
}

func validEmoji(emoji string) error {
	if emoji == "" || utf8.RuneCountInString(emoji) > 32 {
		return validationError("emoji must be 1 to 32 characters")
	}
	return nil
}

// AddReaction is idempotent: reacting twice with the same emoji keeps one reaction.
func (s *DiscussionService) AddReaction(ctx context.Context, actor Actor, discussionID uuid.UUID, commentID *uuid.UUID, emoji string) (*models.DiscussionReaction, error) {
	if err := validEmoji(emoji); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, actor, discussionID); err != nil {
		return nil, err
	}
	if commentID != nil {
		if err := s.commentInThread(ctx, discussionID, *commentID); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.FindReaction(ctx, discussionID, commentID, actor.UserID, emoji)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load reaction: %w", err)
	}

	reaction := &models.DiscussionReaction{
		DiscussionID: discussionID,
		CommentID:    commentID,
		UserID:       actor.UserID,
		Emoji:        emoji,
	}
	if err := s.repo.AddReaction(ctx, reaction); err != nil {
		return nil, fmt.Errorf("failed to add reaction: %w", err)
	}
	return reaction, nil
}

func (s *DiscussionService) RemoveReaction(ctx context.Context, actor Actor, discussionID uuid.UUID, commentID *uuid.UUID, emoji string) error {
	if err := validEmoji(emoji); err != nil {
		return err
	}
	if _, err := s.Get(ctx, actor, discussionID); err != nil {
		return err
	}
	reaction, err := s.repo.FindReaction(ctx, discussionID, commentID, actor.UserID, emoji)
	if err != nil {
		return translate(err, "get reaction")
	}
	if err := s.repo.RemoveReaction(ctx, reaction.ID); err != nil {
		return translate(err, "remove reaction")
	}
	return nil
}
