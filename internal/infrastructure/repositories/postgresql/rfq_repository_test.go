package postgresql

import (
	"context"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRFQRepository_AwardBid(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	rfqRepo := NewRFQRepository(db.DB)
	bidRepo := NewBidRepository(db.DB)
	vendorRepo := NewVendorRepository(db.DB)
	ctx := context.Background()

	owner := db.CreateTestUser(t, models.UserRoleOwner)
	property := db.CreateTestProperty(t, owner)

	vendorA := &models.Vendor{Name: "Acme Framing", Trade: "framing", Status: models.VendorActive}
	vendorB := &models.Vendor{Name: "Best Builders", Trade: "framing", Status: models.VendorActive}
	require.NoError(t, vendorRepo.Create(ctx, vendorA))
	require.NoError(t, vendorRepo.Create(ctx, vendorB))

	rfq := &models.RFQ{PropertyID: property.ID, Title: "Framing", Status: models.RFQOpen, CreatedBy: owner.ID}
	require.NoError(t, rfqRepo.Create(ctx, rfq))

	now := time.Now().UTC()
	bidA := &models.Bid{RFQID: rfq.ID, VendorID: vendorA.ID, Amount: 12000, Status: models.BidSubmitted, SubmittedAt: now}
	bidB := &models.Bid{RFQID: rfq.ID, VendorID: vendorB.ID, Amount: 9000, Status: models.BidSubmitted, SubmittedAt: now}
	require.NoError(t, bidRepo.Create(ctx, bidA))
	require.NoError(t, bidRepo.Create(ctx, bidB))

	awarded, err := rfqRepo.AwardBid(ctx, rfq.ID, bidA.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RFQAwarded, awarded.Status)
	require.NotNil(t, awarded.AwardedBidID)
	assert.Equal(t, bidA.ID, *awarded.AwardedBidID)

	require.Len(t, awarded.Bids, 2)
	// Bids come back cheapest first
	assert.Equal(t, bidB.ID, awarded.Bids[0].ID)
	assert.Equal(t, models.BidRejected, awarded.Bids[0].Status)
	assert.Equal(t, models.BidAccepted, awarded.Bids[1].Status)
	require.NotNil(t, awarded.Bids[1].Vendor)
	assert.Equal(t, "Acme Framing", awarded.Bids[1].Vendor.Name)
}

func TestRFQRepository_AwardBid_ForeignBid(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	rfqRepo := NewRFQRepository(db.DB)
	bidRepo := NewBidRepository(db.DB)
	ctx := context.Background()

	owner := db.CreateTestUser(t, models.UserRoleOwner)
	property := db.CreateTestProperty(t, owner)
	vendor := &models.Vendor{Name: "Solo", Status: models.VendorActive}
	require.NoError(t, NewVendorRepository(db.DB).Create(ctx, vendor))

	first := &models.RFQ{PropertyID: property.ID, Title: "Roofing", Status: models.RFQOpen, CreatedBy: owner.ID}
	second := &models.RFQ{PropertyID: property.ID, Title: "Siding", Status: models.RFQOpen, CreatedBy: owner.ID}
	require.NoError(t, rfqRepo.Create(ctx, first))
	require.NoError(t, rfqRepo.Create(ctx, second))

	bid := &models.Bid{RFQID: second.ID, VendorID: vendor.ID, Amount: 500, Status: models.BidSubmitted, SubmittedAt: time.Now().UTC()}
	require.NoError(t, bidRepo.Create(ctx, bid))

	_, err := rfqRepo.AwardBid(ctx, first.ID, bid.ID)
	assert.ErrorIs(t, err, repositories.ErrBidNotInRFQ)

	found, err := rfqRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RFQOpen, found.Status)
}
