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

type RFQRepository struct {
	crudRepository[models.RFQ]
}

func NewRFQRepository(db *database.DB) repositories.RFQRepository {
	return &RFQRepository{crudRepository: newCrudRepository[models.RFQ](db, "rfq")}
}

func (r *RFQRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RFQ, error) {
	var rfq models.RFQ
	err := r.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB { return db.Order("amount ASC") }).
		Preload("Bids.Vendor").
		Where("id = ?", id).
		First(&rfq).Error
	if err != nil {
		return nil, r.wrapLookup(err)
	}
	return &rfq, nil
}

// Delete removes the RFQ with its bids.
func (r *RFQRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rfq_id = ?", id).Delete(&models.Bid{}).Error; err != nil {
			return fmt.Errorf("failed to delete bids: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.RFQ{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete rfq: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return r.notFound()
		}
		return nil
	})
}

func (r *RFQRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.RFQ, error) {
	return r.listWhere(ctx, "created_at DESC", "property_id = ?", propertyID)
}

// AwardBid accepts one bid, rejects the others and marks the RFQ awarded in one transaction.
func (r *RFQRepository) AwardBid(ctx context.Context, rfqID, bidID uuid.UUID) (*models.RFQ, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rfq models.RFQ
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", rfqID).First(&rfq).Error; err != nil {
			return r.wrapLookup(err)
		}

		var bid models.Bid
		if err := tx.Where("id = ?", bidID).First(&bid).Error; err != nil {
			if isNotFound(err) {
				return fmt.Errorf("bid %w", repositories.ErrRecordNotFound)
			}
			return fmt.Errorf("failed to get bid: %w", err)
		}
		if bid.RFQID != rfqID {
			return repositories.ErrBidNotInRFQ
		}

		if err := tx.Model(&models.Bid{}).
			Where("rfq_id = ? AND id <> ?", rfqID, bidID).
			Update("status", models.BidRejected).Error; err != nil {
			return fmt.Errorf("failed to reject bids: %w", err)
		}
		if err := tx.Model(&models.Bid{}).
			Where("id = ?", bidID).
			Update("status", models.BidAccepted).Error; err != nil {
			return fmt.Errorf("failed to accept bid: %w", err)
		}
		if err := tx.Model(&models.RFQ{}).
			Where("id = ?", rfqID).
			Updates(map[string]interface{}{
				"status":         models.RFQAwarded,
				"awarded_bid_id": bidID,
			}).Error; err != nil {
			return fmt.Errorf("failed to award rfq: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, rfqID)
}

type BidRepository struct {
	crudRepository[models.Bid]
}

func NewBidRepository(db *database.DB) repositories.BidRepository {
	return &BidRepository{crudRepository: newCrudRepository[models.Bid](db, "bid")}
}

func (r *BidRepository) ListByRFQ(ctx context.Context, rfqID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("rfq_id = ?", rfqID).
		Order("amount ASC").
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return bids, nil
}
