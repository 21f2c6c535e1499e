package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// RFQService manages requests for quotation and the bids vendors return.
type RFQService struct {
	*recordService[models.RFQ]
	repo       repositories.RFQRepository
	bidRepo    repositories.BidRepository
	vendorRepo repositories.VendorRepository
}

func NewRFQService(
	repo repositories.RFQRepository,
	bidRepo repositories.BidRepository,
	vendorRepo repositories.VendorRepository,
	propertyRepo repositories.PropertyRepository,
	access *AccessResolver,
	recorder *Recorder,
) *RFQService {
	kind := recordKind[models.RFQ]{
		entity:     "rfq",
		id:         func(q *models.RFQ) uuid.UUID { return q.ID },
		propertyID: func(q *models.RFQ) uuid.UUID { return q.PropertyID },
		label:      func(q *models.RFQ) string { return q.Title },
		prepare:    prepareRFQ,
	}
	return &RFQService{
		recordService: newRecordService(kind, repo, propertyRepo, access, recorder),
		repo:          repo,
		bidRepo:       bidRepo,
		vendorRepo:    vendorRepo,
	}
}

func prepareRFQ(_ context.Context, q *models.RFQ) error {
	if strings.TrimSpace(q.Title) == "" {
		return validationError("title is required")
	}
	if q.Status == "" {
		q.Status = models.RFQDraft
	}
	switch q.Status {
	case models.RFQDraft, models.RFQOpen, models.RFQClosed:
	case models.RFQAwarded:
		if q.AwardedBidID == nil {
			return fmt.Errorf("%w: an rfq is awarded through a bid", ErrInvalidTransition)
		}
	default:
		return validationError("invalid rfq status %q", q.Status)
	}
	return nil
}

func (s *RFQService) Create(ctx context.Context, actor Actor, rfq *models.RFQ) (*models.RFQ, error) {
	rfq.CreatedBy = actor.UserID
	rfq.AwardedBidID = nil
	return s.recordService.Create(ctx, actor, rfq)
}

// Update refuses to reopen or rename an awarded RFQ's status.
func (s *RFQService) Update(ctx context.Context, actor Actor, id uuid.UUID, patch Patch[models.RFQ]) (*models.RFQ, error) {
	return s.update(ctx, actor, id, func(rfq *models.RFQ) error {
		awarded := rfq.Status == models.RFQAwarded
		patch.Apply(rfq)
		if awarded && rfq.Status != models.RFQAwarded {
			return fmt.Errorf("%w: rfq has already been awarded", ErrInvalidTransition)
		}
		return nil
	})
}

func (s *RFQService) ListBids(ctx context.Context, actor Actor, rfqID uuid.UUID) ([]models.Bid, error) {
	if _, err := s.Get(ctx, actor, rfqID); err != nil {
		return nil, err
	}
	bids, err := s.bidRepo.ListByRFQ(ctx, rfqID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return bids, nil
}

// SubmitBid records a vendor's bid; only open RFQs take bids.
func (s *RFQService) SubmitBid(ctx context.Context, actor Actor, rfqID uuid.UUID, bid *models.Bid) (*models.Bid, error) {
	rfq, err := s.store.GetByID(ctx, rfqID)
	if err != nil {
		return nil, translate(err, "get rfq")
	}
	if _, err := s.scope.manage(ctx, actor, rfq.PropertyID); err != nil {
		return nil, err
	}
	if rfq.Status != models.RFQOpen {
		return nil, fmt.Errorf("%w: rfq is %s", ErrInvalidTransition, rfq.Status)
	}
	if bid.Amount <= 0 {
		return nil, validationError("amount must be positive")
	}
	if bid.TimelineDays < 0 {
		return nil, validationError("timeline_days must not be negative")
	}
	if _, err := s.vendorRepo.GetByID(ctx, bid.VendorID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, validationError("vendor %s does not exist", bid.VendorID)
		}
		return nil, fmt.Errorf("failed to load vendor: %w", err)
	}

	bid.RFQID = rfqID
	bid.Status = models.BidSubmitted
	bid.SubmittedAt = time.Now().UTC()
	if err := s.bidRepo.Create(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to create bid: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditCreate,
		EntityType:  "bid",
		EntityID:    bid.ID,
		PropertyID:  &rfq.PropertyID,
		Description: fmt.Sprintf("Received a bid of %.2f on %q", bid.Amount, rfq.Title),
		After:       bid,
	})
	return bid, nil
}

// UpdateBid edits a bid that is still under consideration.
func (s *RFQService) UpdateBid(ctx context.Context, actor Actor, bidID uuid.UUID, patch Patch[models.Bid]) (*models.Bid, error) {
	bid, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, translate(err, "get bid")
	}
	rfq, err := s.store.GetByID(ctx, bid.RFQID)
	if err != nil {
		return nil, translate(err, "get rfq")
	}
	if _, err := s.scope.manage(ctx, actor, rfq.PropertyID); err != nil {
		return nil, err
	}
	if bid.Status != models.BidSubmitted || rfq.Status == models.RFQAwarded {
		return nil, fmt.Errorf("%w: bid is %s", ErrInvalidTransition, bid.Status)
	}

	before := *bid
	patch.Apply(bid)
	if bid.Amount <= 0 {
		return nil, validationError("amount must be positive")
	}
	if err := s.bidRepo.Update(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to update bid: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditUpdate,
		EntityType:  "bid",
		EntityID:    bid.ID,
		PropertyID:  &rfq.PropertyID,
		Description: fmt.Sprintf("Updated a bid on %q", rfq.Title),
		Before:      before,
		After:       bid,
	})
	return bid, nil
}

// AwardBid accepts one bid and rejects the rest. Draft and already awarded RFQs cannot be awarded.
func (s *RFQService) AwardBid(ctx context.Context, actor Actor, rfqID, bidID uuid.UUID) (*models.RFQ, error) {
	rfq, err := s.store.GetByID(ctx, rfqID)
	if err != nil {
		return nil, translate(err, "get rfq")
	}
	if _, err := s.scope.manage(ctx, actor, rfq.PropertyID); err != nil {
		return nil, err
	}
	if rfq.Status != models.RFQOpen && rfq.Status != models.RFQClosed {
		return nil, fmt.Errorf("%w: rfq is %s", ErrInvalidTransition, rfq.Status)
	}

	awarded, err := s.repo.AwardBid(ctx, rfqID, bidID)
	if errors.Is(err, repositories.ErrBidNotInRFQ) {
		return nil, validationError("bid %s does not belong to this rfq", bidID)
	}
	if err != nil {
		return nil, translate(err, "award bid")
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditApprove,
		EntityType:  "rfq",
		EntityID:    rfq.ID,
		PropertyID:  &rfq.PropertyID,
		Description: fmt.Sprintf("Awarded %q", rfq.Title),
		Before:      map[string]interface{}{"status": rfq.Status},
		After:       map[string]interface{}{"status": awarded.Status, "awarded_bid_id": bidID},
	})
	return awarded, nil
}
