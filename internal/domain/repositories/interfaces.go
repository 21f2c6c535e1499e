package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// ErrRecordNotFound is returned (wrapped) by every repository lookup that matches no row.
var ErrRecordNotFound = errors.New("record not found")

// ErrBidNotInRFQ is returned when awarding a bid that belongs to another RFQ.
var ErrBidNotInRFQ = errors.New("bid does not belong to rfq")

// Core repository interfaces for clean architecture

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, params ListParams) ([]models.User, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters PropertyFilters) ([]models.Property, int64, error)
	ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error)
	GetDashboard(ctx context.Context, propertyID uuid.UUID) (*PropertyDashboard, error)
}

type PropertyMemberRepository interface {
	Upsert(ctx context.Context, member *models.PropertyMember) error
	Get(ctx context.Context, propertyID, userID uuid.UUID) (*models.PropertyMember, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.PropertyMember, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PropertyMember, error)
	Remove(ctx context.Context, propertyID, userID uuid.UUID) error
}

type MilestoneRepository interface {
	Create(ctx context.Context, milestone *models.Milestone) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Milestone, error)
	Update(ctx context.Context, milestone *models.Milestone) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Milestone, error)
}

type VendorRepository interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters VendorFilters) ([]models.Vendor, int64, error)
}

type BudgetLineRepository interface {
	Create(ctx context.Context, line *models.BudgetLine) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BudgetLine, error)
	Update(ctx context.Context, line *models.BudgetLine) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.BudgetLine, error)
	SummarizeByCategory(ctx context.Context, propertyID uuid.UUID) ([]BudgetCategorySummary, error)
}

type RFQRepository interface {
	Create(ctx context.Context, rfq *models.RFQ) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RFQ, error)
	Update(ctx context.Context, rfq *models.RFQ) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.RFQ, error)
	AwardBid(ctx context.Context, rfqID, bidID uuid.UUID) (*models.RFQ, error)
}

type BidRepository interface {
	Create(ctx context.Context, bid *models.Bid) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	Update(ctx context.Context, bid *models.Bid) error
	ListByRFQ(ctx context.Context, rfqID uuid.UUID) ([]models.Bid, error)
}

type PermitRepository interface {
	Create(ctx context.Context, permit *models.Permit) error
	CreateBatch(ctx context.Context, permits []models.Permit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Permit, error)
	Update(ctx context.Context, permit *models.Permit) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Permit, error)
}

type RiskRepository interface {
	Create(ctx context.Context, risk *models.Risk) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Risk, error)
	Update(ctx context.Context, risk *models.Risk) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Risk, error)
}

type DiscussionRepository interface {
	Create(ctx context.Context, discussion *models.Discussion) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Discussion, error)
	Update(ctx context.Context, discussion *models.Discussion) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Discussion, error)
	AddComment(ctx context.Context, comment *models.DiscussionComment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.DiscussionComment, error)
	ListComments(ctx context.Context, discussionID uuid.UUID) ([]models.DiscussionComment, error)
	FindReaction(ctx context.Context, discussionID uuid.UUID, commentID *uuid.UUID, userID uuid.UUID, emoji string) (*models.DiscussionReaction, error)
	AddReaction(ctx context.Context, reaction *models.DiscussionReaction) error
	RemoveReaction(ctx context.Context, id uuid.UUID) error
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, propertyID *uuid.UUID, params ListParams) ([]models.Activity, int64, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filters AuditLogFilters) ([]models.AuditLog, int64, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	Update(ctx context.Context, document *models.Document) error
	// Delete removes one row; when it was the chain's latest, the highest remaining version takes over.
	Delete(ctx context.Context, id uuid.UUID) error
	// AppendVersion inserts doc as the new latest version of the chain rooted at rootID.
	AppendVersion(ctx context.Context, rootID uuid.UUID, doc *models.Document) error
	GetLatestInChain(ctx context.Context, rootID uuid.UUID) (*models.Document, error)
	ListChain(ctx context.Context, rootID uuid.UUID) ([]models.Document, error)
	Search(ctx context.Context, query DocumentSearchQuery) ([]models.Document, error)
}

type DocumentCommentRepository interface {
	Create(ctx context.Context, comment *models.DocumentComment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DocumentComment, error)
	Update(ctx context.Context, comment *models.DocumentComment) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]models.DocumentComment, error)
}

type ShareRepository interface {
	Create(ctx context.Context, share *models.DocumentShare) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DocumentShare, error)
	GetByToken(ctx context.Context, token string) (*models.DocumentShare, error)
	Update(ctx context.Context, share *models.DocumentShare) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]models.DocumentShare, error)
	RecordAccess(ctx context.Context, id uuid.UUID, at time.Time) error
	ListDocumentIDsSharedWith(ctx context.Context, userID uuid.UUID, at time.Time) ([]uuid.UUID, error)
}

// Supporting types for repository operations

type ListParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	SortBy   string `json:"sort_by"`
	SortDesc bool   `json:"sort_desc"`
	Search   string `json:"search"`
}

// Offset returns the row offset for the page, treating pages as 1-based.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the page size with a default of 20.
func (p ListParams) Limit() int {
	if p.PageSize < 1 {
		return 20
	}
	return p.PageSize
}

type PropertyFilters struct {
	ListParams
	Status  []models.PropertyStatus `json:"status"`
	OwnerID *uuid.UUID              `json:"owner_id"`
	// MemberOf restricts results to properties the user owns or belongs to.
	MemberOf *uuid.UUID `json:"member_of"`
}

type VendorFilters struct {
	ListParams
	Trade  string              `json:"trade"`
	Status models.VendorStatus `json:"status"`
}

type AuditLogFilters struct {
	ListParams
	UserID     *uuid.UUID          `json:"user_id"`
	EntityType string              `json:"entity_type"`
	EntityID   *uuid.UUID          `json:"entity_id"`
	Action     *models.AuditAction `json:"action"`
	DateFrom   *time.Time          `json:"date_from"`
	DateTo     *time.Time          `json:"date_to"`
}

// DocumentSearchQuery is a conjunctive filter; zero-valued fields are ignored.
type DocumentSearchQuery struct {
	Query           string               `json:"query"`
	PropertyID      *uuid.UUID           `json:"property_id"`
	MilestoneID     *uuid.UUID           `json:"milestone_id"`
	Category        string               `json:"category"`
	Type            *models.DocumentType `json:"type"`
	UploadedBy      *uuid.UUID           `json:"uploaded_by"`
	Status          *models.DocStatus    `json:"status"`
	DateFrom        *time.Time           `json:"date_from"`
	DateTo          *time.Time           `json:"date_to"`
	Tags            []string             `json:"tags"`
	IncludeArchived bool                 `json:"include_archived"`
	AllVersions     bool                 `json:"all_versions"`
	Limit           int                  `json:"limit"`
	Offset          int                  `json:"offset"`
}

type BudgetCategorySummary struct {
	Category  string  `json:"category"`
	Estimated float64 `json:"estimated"`
	Actual    float64 `json:"actual"`
	LineCount int64   `json:"line_count"`
}

type PropertyDashboard struct {
	PropertyID          uuid.UUID `json:"property_id"`
	MilestonesTotal     int64     `json:"milestones_total"`
	MilestonesCompleted int64     `json:"milestones_completed"`
	MilestonesDelayed   int64     `json:"milestones_delayed"`
	BudgetEstimated     float64   `json:"budget_estimated"`
	BudgetActual        float64   `json:"budget_actual"`
	OpenRFQs            int64     `json:"open_rfqs"`
	PendingPermits      int64     `json:"pending_permits"`
	OpenRisks           int64     `json:"open_risks"`
	Documents           int64     `json:"documents"`
	DocumentsInReview   int64     `json:"documents_in_review"`
}
