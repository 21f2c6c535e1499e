package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

type workflowStep struct {
	action      models.AuditAction
	description string
	// from lists the statuses the step accepts; empty means any.
	from  []models.DocStatus
	check func(doc *models.Document) error
	apply func(doc *models.Document, actor Actor)
}

func (s *DocumentService) transition(ctx context.Context, actor Actor, id uuid.UUID, managerOnly bool, step workflowStep) (*models.Document, error) {
	doc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if managerOnly {
		ok, err := s.isManager(ctx, actor, doc)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
	}
	if len(step.from) > 0 && !statusIn(doc.Status, step.from) {
		return nil, fmt.Errorf("%w: document is %s", ErrInvalidTransition, doc.Status)
	}
	if step.check != nil {
		if err := step.check(doc); err != nil {
			return nil, err
		}
	}

	before := *doc
	step.apply(doc, actor)
	modifier := actor.UserID
	doc.LastModifiedBy = &modifier

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      step.action,
		EntityType:  documentEntity,
		EntityID:    doc.ID,
		PropertyID:  doc.PropertyID,
		Description: fmt.Sprintf(step.description, doc.Name),
		Before:      map[string]interface{}{"status": before.Status, "is_archived": before.IsArchived},
		After:       map[string]interface{}{"status": doc.Status, "is_archived": doc.IsArchived},
	})
	return doc, nil
}

func statusIn(status models.DocStatus, allowed []models.DocStatus) bool {
	for _, candidate := range allowed {
		if status == candidate {
			return true
		}
	}
	return false
}

// reviewable is the precondition for approve and reject when review is required.
func (s *DocumentService) reviewable() []models.DocStatus {
	if s.config.RequireReview {
		return []models.DocStatus{models.DocStatusReview}
	}
	return nil
}

// SubmitForReview moves a draft (or a rejected document being resubmitted) into review.
func (s *DocumentService) SubmitForReview(ctx context.Context, actor Actor, id uuid.UUID) (*models.Document, error) {
	return s.transition(ctx, actor, id, false, workflowStep{
		action:      models.AuditUpdate,
		description: "Submitted %q for review",
		from:        []models.DocStatus{models.DocStatusDraft, models.DocStatusRejected},
		apply: func(doc *models.Document, _ Actor) {
			doc.Status = models.DocStatusReview
		},
	})
}

// Approve marks the document approved; approver and time are set together.
func (s *DocumentService) Approve(ctx context.Context, actor Actor, id uuid.UUID, comments string) (*models.Document, error) {
	return s.transition(ctx, actor, id, true, workflowStep{
		action:      models.AuditApprove,
		description: "Approved %q",
		from:        s.reviewable(),
		apply: func(doc *models.Document, actor Actor) {
			now := s.now().UTC()
			approver := actor.UserID
			doc.Status = models.DocStatusApproved
			doc.ApprovedBy = &approver
			doc.ApprovedAt = &now
			if comments != "" {
				doc.ReviewComments = comments
			}
		},
	})
}

// Reject marks the document rejected; comments are mandatory.
func (s *DocumentService) Reject(ctx context.Context, actor Actor, id uuid.UUID, comments string) (*models.Document, error) {
	if strings.TrimSpace(comments) == "" {
		return nil, validationError("comments are required to reject a document")
	}
	return s.transition(ctx, actor, id, true, workflowStep{
		action:      models.AuditReject,
		description: "Rejected %q",
		from:        s.reviewable(),
		apply: func(doc *models.Document, actor Actor) {
			now := s.now().UTC()
			reviewer := actor.UserID
			doc.Status = models.DocStatusRejected
			doc.ReviewedBy = &reviewer
			doc.ReviewedAt = &now
			doc.ReviewComments = comments
		},
	})
}

// Archive hides the document from default listings. Its workflow status is kept.
func (s *DocumentService) Archive(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Document, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, validationError("reason is required to archive a document")
	}
	return s.transition(ctx, actor, id, true, workflowStep{
		action:      models.AuditArchive,
		description: "Archived %q",
		check: func(doc *models.Document) error {
			if doc.IsArchived {
				return fmt.Errorf("%w: document is already archived", ErrInvalidTransition)
			}
			return nil
		},
		apply: func(doc *models.Document, _ Actor) {
			now := s.now().UTC()
			doc.IsArchived = true
			doc.ArchiveReason = reason
			doc.ArchivedAt = &now
		},
	})
}
