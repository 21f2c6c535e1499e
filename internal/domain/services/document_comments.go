package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// CommentNode is a comment with its replies nested beneath it.
type CommentNode struct {
	models.DocumentComment
	Replies []*CommentNode `json:"replies"`
}

// AddCommentParams describe a new document comment.
type AddCommentParams struct {
	Content         string
	ParentCommentID *uuid.UUID
	Annotation      map[string]interface{}
}

// AddComment adds a comment to a readable document. A parent must belong to the same document.
func (s *DocumentService) AddComment(ctx context.Context, actor Actor, documentID uuid.UUID, params AddCommentParams) (*models.DocumentComment, error) {
	doc, err := s.load(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Content) == "" {
		return nil, validationError("content is required")
	}
	if params.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *params.ParentCommentID)
		if err != nil {
			return nil, validationError("parent comment %s does not exist", params.ParentCommentID)
		}
		if parent.DocumentID != doc.ID {
			return nil, validationError("parent comment belongs to another document")
		}
	}

	comment := &models.DocumentComment{
		DocumentID:      doc.ID,
		UserID:          actor.UserID,
		Content:         params.Content,
		ParentCommentID: params.ParentCommentID,
	}
	if params.Annotation != nil {
		comment.Annotation = models.JSONB(params.Annotation)
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditCreate,
		EntityType:  "document_comment",
		EntityID:    comment.ID,
		PropertyID:  doc.PropertyID,
		Description: fmt.Sprintf("Commented on %q", doc.Name),
		After:       comment,
	})
	return comment, nil
}

// ListComments returns a readable document's comments oldest first.
func (s *DocumentService) ListComments(ctx context.Context, actor Actor, documentID uuid.UUID) ([]models.DocumentComment, error) {
	if _, err := s.load(ctx, actor, documentID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// ResolveComment sets or clears the resolved marker.
func (s *DocumentService) ResolveComment(ctx context.Context, actor Actor, commentID uuid.UUID, resolved bool) (*models.DocumentComment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, translate(err, "get comment")
	}
	doc, err := s.load(ctx, actor, comment.DocumentID)
	if err != nil {
		return nil, err
	}

	comment.IsResolved = resolved
	if resolved {
		now := s.now().UTC()
		resolver := actor.UserID
		comment.ResolvedAt = &now
		comment.ResolvedBy = &resolver
	} else {
		comment.ResolvedAt = nil
		comment.ResolvedBy = nil
	}
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditUpdate,
		EntityType:  "document_comment",
		EntityID:    comment.ID,
		PropertyID:  doc.PropertyID,
		Description: fmt.Sprintf("Marked a comment on %q resolved=%t", doc.Name, resolved),
		After:       map[string]interface{}{"is_resolved": resolved},
	})
	return comment, nil
}

// BuildCommentTree nests a flat, oldest-first list by parent. Orphans become roots.
func BuildCommentTree(comments []models.DocumentComment) []*CommentNode {
	nodes := make(map[uuid.UUID]*CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &CommentNode{DocumentComment: c, Replies: []*CommentNode{}}
	}

	roots := make([]*CommentNode, 0)
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentCommentID != nil {
			if parent, ok := nodes[*c.ParentCommentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
