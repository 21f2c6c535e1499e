package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Custom Types
type UserRole string
type PropertyStatus string
type MilestoneStatus string
type VendorStatus string
type BudgetStatus string
type RFQStatus string
type BidStatus string
type PermitStatus string
type RiskLevel string
type RiskStatus string
type AuditAction string
type DocumentType string
type AccessLevel string
type DocStatus string

const (
	// User Roles
	UserRoleOwner      UserRole = "owner"
	UserRolePM         UserRole = "pm"
	UserRoleTeamMember UserRole = "team_member"
	UserRoleContractor UserRole = "contractor"
	UserRoleViewer     UserRole = "viewer"

	// Property Status
	PropertyPlanning  PropertyStatus = "planning"
	PropertyActive    PropertyStatus = "active"
	PropertyOnHold    PropertyStatus = "on_hold"
	PropertyCompleted PropertyStatus = "completed"

	// Milestone Status
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneDelayed    MilestoneStatus = "delayed"

	// Vendor Status
	VendorActive   VendorStatus = "active"
	VendorInactive VendorStatus = "inactive"

	// Budget Status
	BudgetPlanned   BudgetStatus = "planned"
	BudgetCommitted BudgetStatus = "committed"
	BudgetPaid      BudgetStatus = "paid"

	// RFQ Status
	RFQDraft   RFQStatus = "draft"
	RFQOpen    RFQStatus = "open"
	RFQClosed  RFQStatus = "closed"
	RFQAwarded RFQStatus = "awarded"

	// Bid Status
	BidSubmitted BidStatus = "submitted"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"

	// Permit Status
	PermitNotStarted PermitStatus = "not_started"
	PermitApplied    PermitStatus = "applied"
	PermitApproved   PermitStatus = "approved"
	PermitRejected   PermitStatus = "rejected"
	PermitExpired    PermitStatus = "expired"

	// Risk Levels
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"

	// Risk Status
	RiskOpen      RiskStatus = "open"
	RiskMitigated RiskStatus = "mitigated"
	RiskClosed    RiskStatus = "closed"

	// Audit Actions
	AuditCreate  AuditAction = "create"
	AuditUpdate  AuditAction = "update"
	AuditDelete  AuditAction = "delete"
	AuditApprove AuditAction = "approve"
	AuditReject  AuditAction = "reject"
	AuditArchive AuditAction = "archive"
	AuditShare   AuditAction = "share"
	AuditAccess  AuditAction = "access"
	AuditLogin   AuditAction = "login"

	// Document Types
	DocTypeContract      DocumentType = "contract"
	DocTypePermit        DocumentType = "permit"
	DocTypePhoto         DocumentType = "photo"
	DocTypePlan          DocumentType = "plan"
	DocTypeInvoice       DocumentType = "invoice"
	DocTypeReport        DocumentType = "report"
	DocTypeSpecification DocumentType = "specification"
	DocTypeOther         DocumentType = "other"

	// Access Levels
	AccessPublic          AccessLevel = "public"
	AccessProjectTeam     AccessLevel = "project_team"
	AccessProjectManagers AccessLevel = "project_managers"
	AccessOwnersOnly      AccessLevel = "owners_only"
	AccessRestricted      AccessLevel = "restricted"

	// Document Workflow Status
	DocStatusDraft    DocStatus = "draft"
	DocStatusReview   DocStatus = "review"
	DocStatusApproved DocStatus = "approved"
	DocStatusRejected DocStatus = "rejected"
	DocStatusArchived DocStatus = "archived"
)

// Base carries the identity and timestamps shared by every table.
type Base struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

// BeforeCreate assigns an id when the caller did not.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Core Models
type User struct {
	Base
	ExternalID  string     `json:"external_id" gorm:"type:varchar(255);index"`
	Email       string     `json:"email" gorm:"type:varchar(320);not null;uniqueIndex"`
	FirstName   string     `json:"first_name" gorm:"type:varchar(100)"`
	LastName    string     `json:"last_name" gorm:"type:varchar(100)"`
	Role        UserRole   `json:"role" gorm:"type:varchar(20);not null"`
	IsActive    bool       `json:"is_active" gorm:"not null"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Property struct {
	Base
	Name                 string         `json:"name" gorm:"type:varchar(255);not null"`
	Address              string         `json:"address" gorm:"type:varchar(500);not null"`
	City                 string         `json:"city" gorm:"type:varchar(100)"`
	State                string         `json:"state" gorm:"type:varchar(50)"`
	ZipCode              string         `json:"zip_code" gorm:"type:varchar(20)"`
	PropertyType         string         `json:"property_type" gorm:"type:varchar(50)"`
	Status               PropertyStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Description          string         `json:"description" gorm:"type:text"`
	StartDate            *time.Time     `json:"start_date"`
	TargetCompletionDate *time.Time     `json:"target_completion_date"`
	TotalBudget          float64        `json:"total_budget" gorm:"type:decimal(14,2)"`
	OwnerID              uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	ImageURL             string         `json:"image_url" gorm:"type:varchar(1000)"`

	Owner   *User            `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Members []PropertyMember `json:"members,omitempty" gorm:"foreignKey:PropertyID"`
}

// PropertyMember associates a user with a project and their role on it.
type PropertyMember struct {
	Base
	PropertyID uuid.UUID `json:"property_id" gorm:"type:uuid;not null;uniqueIndex:idx_property_member"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_property_member;index"`
	Role       UserRole  `json:"role" gorm:"type:varchar(20);not null"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type Milestone struct {
	Base
	PropertyID  uuid.UUID       `json:"property_id" gorm:"type:uuid;not null;index"`
	Title       string          `json:"title" gorm:"type:varchar(255);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Status      MilestoneStatus `json:"status" gorm:"type:varchar(20);not null"`
	StartDate   *time.Time      `json:"start_date"`
	DueDate     *time.Time      `json:"due_date"`
	CompletedAt *time.Time      `json:"completed_at"`
	Progress    int             `json:"progress" gorm:"not null"`
	SortOrder   int             `json:"sort_order" gorm:"not null"`
}

type Vendor struct {
	Base
	Name            string       `json:"name" gorm:"type:varchar(255);not null"`
	Company         string       `json:"company" gorm:"type:varchar(255)"`
	Trade           string       `json:"trade" gorm:"type:varchar(100);index"`
	Email           string       `json:"email" gorm:"type:varchar(320)"`
	Phone           string       `json:"phone" gorm:"type:varchar(50)"`
	Address         string       `json:"address" gorm:"type:varchar(500)"`
	LicenseNumber   string       `json:"license_number" gorm:"type:varchar(100)"`
	InsuranceExpiry *time.Time   `json:"insurance_expiry"`
	Rating          float64      `json:"rating" gorm:"type:decimal(3,2)"`
	Status          VendorStatus `json:"status" gorm:"type:varchar(20);not null"`
	Notes           string       `json:"notes" gorm:"type:text"`
}

type BudgetLine struct {
	Base
	PropertyID      uuid.UUID    `json:"property_id" gorm:"type:uuid;not null;index"`
	MilestoneID     *uuid.UUID   `json:"milestone_id" gorm:"type:uuid;index"`
	VendorID        *uuid.UUID   `json:"vendor_id" gorm:"type:uuid;index"`
	Category        string       `json:"category" gorm:"type:varchar(100);not null"`
	Description     string       `json:"description" gorm:"type:text"`
	EstimatedAmount float64      `json:"estimated_amount" gorm:"type:decimal(14,2);not null"`
	ActualAmount    float64      `json:"actual_amount" gorm:"type:decimal(14,2);not null"`
	Status          BudgetStatus `json:"status" gorm:"type:varchar(20);not null"`
}

type RFQ struct {
	Base
	PropertyID   uuid.UUID  `json:"property_id" gorm:"type:uuid;not null;index"`
	Title        string     `json:"title" gorm:"type:varchar(255);not null"`
	Description  string     `json:"description" gorm:"type:text"`
	ScopeOfWork  string     `json:"scope_of_work" gorm:"type:text"`
	DueDate      *time.Time `json:"due_date"`
	Status       RFQStatus  `json:"status" gorm:"type:varchar(20);not null"`
	AwardedBidID *uuid.UUID `json:"awarded_bid_id" gorm:"type:uuid"`
	CreatedBy    uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`

	Bids []Bid `json:"bids,omitempty" gorm:"foreignKey:RFQID"`
}

func (RFQ) TableName() string { return "rfqs" }

type Bid struct {
	Base
	RFQID        uuid.UUID `json:"rfq_id" gorm:"column:rfq_id;type:uuid;not null;index"`
	VendorID     uuid.UUID `json:"vendor_id" gorm:"type:uuid;not null;index"`
	Amount       float64   `json:"amount" gorm:"type:decimal(14,2);not null"`
	TimelineDays int       `json:"timeline_days"`
	Notes        string    `json:"notes" gorm:"type:text"`
	Status       BidStatus `json:"status" gorm:"type:varchar(20);not null"`
	SubmittedAt  time.Time `json:"submitted_at" gorm:"not null"`

	Vendor *Vendor `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}

type Permit struct {
	Base
	PropertyID     uuid.UUID    `json:"property_id" gorm:"type:uuid;not null;index"`
	Name           string       `json:"name" gorm:"type:varchar(255);not null"`
	Authority      string       `json:"authority" gorm:"type:varchar(255)"`
	PermitNumber   string       `json:"permit_number" gorm:"type:varchar(100)"`
	Status         PermitStatus `json:"status" gorm:"type:varchar(20);not null"`
	FormURL        string       `json:"form_url" gorm:"type:varchar(1000)"`
	Fee            string       `json:"fee" gorm:"type:varchar(100)"`
	ProcessingTime string       `json:"processing_time" gorm:"type:varchar(100)"`
	Notes          string       `json:"notes" gorm:"type:text"`
	AppliedAt      *time.Time   `json:"applied_at"`
	ApprovedAt     *time.Time   `json:"approved_at"`
	ExpiresAt      *time.Time   `json:"expires_at"`
	AIGenerated    bool         `json:"ai_generated" gorm:"not null"`
}

type Risk struct {
	Base
	PropertyID     uuid.UUID  `json:"property_id" gorm:"type:uuid;not null;index"`
	Title          string     `json:"title" gorm:"type:varchar(255);not null"`
	Description    string     `json:"description" gorm:"type:text"`
	Severity       RiskLevel  `json:"severity" gorm:"type:varchar(20);not null"`
	Likelihood     RiskLevel  `json:"likelihood" gorm:"type:varchar(20);not null"`
	Status         RiskStatus `json:"status" gorm:"type:varchar(20);not null"`
	MitigationPlan string     `json:"mitigation_plan" gorm:"type:text"`
	OwnerID        *uuid.UUID `json:"owner_id" gorm:"type:uuid"`
}

// Activity is the user-facing feed entry.
type Activity struct {
	Base
	PropertyID  *uuid.UUID `json:"property_id" gorm:"type:uuid;index"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Type        string     `json:"type" gorm:"type:varchar(50);not null"`
	Description string     `json:"description" gorm:"type:text;not null"`
	EntityType  string     `json:"entity_type" gorm:"type:varchar(50)"`
	EntityID    *uuid.UUID `json:"entity_id" gorm:"type:uuid"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// AuditLog is the compliance trail with before/after values.
type AuditLog struct {
	Base
	UserID     uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	Action     AuditAction `json:"action" gorm:"type:varchar(20);not null"`
	EntityType string      `json:"entity_type" gorm:"type:varchar(50);not null;index:idx_audit_entity"`
	EntityID   uuid.UUID   `json:"entity_id" gorm:"type:uuid;not null;index:idx_audit_entity"`
	OldValues  JSONB       `json:"old_values"`
	NewValues  JSONB       `json:"new_values"`
	IPAddress  string      `json:"ip_address" gorm:"type:varchar(64)"`
	UserAgent  string      `json:"user_agent" gorm:"type:varchar(500)"`
}

type Discussion struct {
	Base
	PropertyID uuid.UUID `json:"property_id" gorm:"type:uuid;not null;index"`
	Title      string    `json:"title" gorm:"type:varchar(255);not null"`
	Body       string    `json:"body" gorm:"type:text"`
	CreatedBy  uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	IsPinned   bool      `json:"is_pinned" gorm:"not null"`
	IsClosed   bool      `json:"is_closed" gorm:"not null"`

	Comments  []DiscussionComment  `json:"comments,omitempty" gorm:"foreignKey:DiscussionID"`
	Reactions []DiscussionReaction `json:"reactions,omitempty" gorm:"foreignKey:DiscussionID"`
}

type DiscussionComment struct {
	Base
	DiscussionID    uuid.UUID  `json:"discussion_id" gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID  `json:"user_id" gorm:"type:uuid;not null"`
	Body            string     `json:"body" gorm:"type:text;not null"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id" gorm:"type:uuid"`
}

type DiscussionReaction struct {
	Base
	DiscussionID uuid.UUID  `json:"discussion_id" gorm:"type:uuid;not null;uniqueIndex:idx_reaction_target"`
	CommentID    *uuid.UUID `json:"comment_id" gorm:"type:uuid;uniqueIndex:idx_reaction_target"`
	UserID       uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reaction_target"`
	Emoji        string     `json:"emoji" gorm:"type:varchar(32);not null;uniqueIndex:idx_reaction_target"`
}

// Document is one uploaded file and one row of its version chain.
type Document struct {
	Base
	Name        string       `json:"name" gorm:"type:varchar(255);not null"`
	Description string       `json:"description" gorm:"type:text"`
	Type        DocumentType `json:"type" gorm:"type:varchar(30);not null"`
	Category    string       `json:"category" gorm:"type:varchar(100);index"`
	Tags        StringList   `json:"tags"`
	PropertyID  *uuid.UUID   `json:"property_id" gorm:"type:uuid;index"`
	MilestoneID *uuid.UUID   `json:"milestone_id" gorm:"type:uuid;index"`

	// File
	StoragePath      string `json:"storage_path" gorm:"type:varchar(1000);not null"`
	OriginalFilename string `json:"original_filename" gorm:"type:varchar(255);not null"`
	FileSize         int64  `json:"file_size" gorm:"not null"`
	MimeType         string `json:"mime_type" gorm:"type:varchar(150)"`
	Checksum         string `json:"checksum" gorm:"type:varchar(128)"`

	// Versioning
	Version          int        `json:"version" gorm:"not null"`
	ParentDocumentID *uuid.UUID `json:"parent_document_id" gorm:"type:uuid;index"`
	IsLatestVersion  bool       `json:"is_latest_version" gorm:"not null;index"`
	VersionNotes     string     `json:"version_notes" gorm:"type:text"`

	// Access
	AccessLevel  AccessLevel `json:"access_level" gorm:"type:varchar(30);not null"`
	AllowedUsers StringList  `json:"allowed_users"`
	AllowedRoles StringList  `json:"allowed_roles"`

	// Workflow
	Status         DocStatus  `json:"status" gorm:"type:varchar(20);not null;index"`
	ReviewedBy     *uuid.UUID `json:"reviewed_by" gorm:"type:uuid"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	ApprovedBy     *uuid.UUID `json:"approved_by" gorm:"type:uuid"`
	ApprovedAt     *time.Time `json:"approved_at"`
	ReviewComments string     `json:"review_comments" gorm:"type:text"`

	UploadedBy     uuid.UUID  `json:"uploaded_by" gorm:"type:uuid;not null;index"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by" gorm:"type:uuid"`
	ExpiresAt      *time.Time `json:"expires_at"`
	IsArchived     bool       `json:"is_archived" gorm:"not null;index"`
	ArchiveReason  string     `json:"archive_reason" gorm:"type:text"`
	ArchivedAt     *time.Time `json:"archived_at"`
}

// ChainRootID is the identity shared by every version of this document.
func (d *Document) ChainRootID() uuid.UUID {
	if d.ParentDocumentID != nil {
		return *d.ParentDocumentID
	}
	return d.ID
}

// DocumentComment is a threaded comment; Annotation carries the PDF widget payload untouched.
type DocumentComment struct {
	Base
	DocumentID      uuid.UUID  `json:"document_id" gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID  `json:"user_id" gorm:"type:uuid;not null"`
	Content         string     `json:"content" gorm:"type:text;not null"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id" gorm:"type:uuid;index"`
	Annotation      JSONB      `json:"annotation,omitempty"`
	IsResolved      bool       `json:"is_resolved" gorm:"not null"`
	ResolvedBy      *uuid.UUID `json:"resolved_by" gorm:"type:uuid"`
	ResolvedAt      *time.Time `json:"resolved_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// DocumentShare grants access to one document, either to a user or via a bearer token.
type DocumentShare struct {
	Base
	DocumentID       uuid.UUID  `json:"document_id" gorm:"type:uuid;not null;index"`
	SharedBy         uuid.UUID  `json:"shared_by" gorm:"type:uuid;not null"`
	SharedWithUserID *uuid.UUID `json:"shared_with_user_id" gorm:"type:uuid;index"`
	ShareToken       *string    `json:"share_token,omitempty" gorm:"type:varchar(64);uniqueIndex"`
	PasswordHash     string     `json:"-" gorm:"type:varchar(255)"`
	ExpiresAt        *time.Time `json:"expires_at"`
	CanDownload      bool       `json:"can_download" gorm:"not null"`
	CanComment       bool       `json:"can_comment" gorm:"not null"`
	AccessCount      int        `json:"access_count" gorm:"not null"`
	LastAccessedAt   *time.Time `json:"last_accessed_at"`
	IsActive         bool       `json:"is_active" gorm:"not null"`

	Document *Document `json:"document,omitempty" gorm:"foreignKey:DocumentID"`
}

// HasPassword reports whether the link is password protected.
func (s *DocumentShare) HasPassword() bool {
	return s.PasswordHash != ""
}

// GetAllModels returns every model in migration order.
func GetAllModels() []interface{} {
	return []interface{}{
		&User{},
		&Property{},
		&PropertyMember{},
		&Milestone{},
		&Vendor{},
		&BudgetLine{},
		&RFQ{},
		&Bid{},
		&Permit{},
		&Risk{},
		&Activity{},
		&AuditLog{},
		&Discussion{},
		&DiscussionComment{},
		&DiscussionReaction{},
		&Document{},
		&DocumentComment{},
		&DocumentShare{},
	}
}
