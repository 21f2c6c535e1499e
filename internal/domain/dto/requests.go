package dto

import (
	"time"

	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// Authentication DTOs
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserInfo  `json:"user"`
}

type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// NewUserInfo projects a user onto the public profile shape.
func NewUserInfo(u *models.User) UserInfo {
	return UserInfo{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
	}
}

// Property DTOs
type CreatePropertyRequest struct {
	Name                 string                `json:"name" binding:"required,max=255"`
	Address              string                `json:"address" binding:"required,max=500"`
	City                 string                `json:"city" binding:"omitempty,max=100"`
	State                string                `json:"state" binding:"omitempty,max=50"`
	ZipCode              string                `json:"zip_code" binding:"omitempty,max=20"`
	PropertyType         string                `json:"property_type" binding:"omitempty,max=50"`
	Status               models.PropertyStatus `json:"status" binding:"omitempty,oneof=planning active on_hold completed"`
	Description          string                `json:"description"`
	StartDate            *time.Time            `json:"start_date"`
	TargetCompletionDate *time.Time            `json:"target_completion_date"`
	TotalBudget          float64               `json:"total_budget" binding:"min=0"`
	ImageURL             string                `json:"image_url" binding:"omitempty,url"`
}

func (r *CreatePropertyRequest) Model() *models.Property {
	status := r.Status
	if status == "" {
		status = models.PropertyPlanning
	}
	return &models.Property{
		Name:                 r.Name,
		Address:              r.Address,
		City:                 r.City,
		State:                r.State,
		ZipCode:              r.ZipCode,
		PropertyType:         r.PropertyType,
		Status:               status,
		Description:          r.Description,
		StartDate:            r.StartDate,
		TargetCompletionDate: r.TargetCompletionDate,
		TotalBudget:          r.TotalBudget,
		ImageURL:             r.ImageURL,
	}
}

type UpdatePropertyRequest struct {
	Name                 *string                `json:"name" binding:"omitempty,max=255"`
	Address              *string                `json:"address" binding:"omitempty,max=500"`
	City                 *string                `json:"city" binding:"omitempty,max=100"`
	State                *string                `json:"state" binding:"omitempty,max=50"`
	ZipCode              *string                `json:"zip_code" binding:"omitempty,max=20"`
	PropertyType         *string                `json:"property_type" binding:"omitempty,max=50"`
	Status               *models.PropertyStatus `json:"status" binding:"omitempty,oneof=planning active on_hold completed"`
	Description          *string                `json:"description"`
	StartDate            *time.Time             `json:"start_date"`
	TargetCompletionDate *time.Time             `json:"target_completion_date"`
	TotalBudget          *float64               `json:"total_budget" binding:"omitempty,min=0"`
	ImageURL             *string                `json:"image_url" binding:"omitempty,url"`
}

func (r *UpdatePropertyRequest) Apply(p *models.Property) {
	setString(&p.Name, r.Name)
	setString(&p.Address, r.Address)
	setString(&p.City, r.City)
	setString(&p.State, r.State)
	setString(&p.ZipCode, r.ZipCode)
	setString(&p.PropertyType, r.PropertyType)
	if r.Status != nil {
		p.Status = *r.Status
	}
	setString(&p.Description, r.Description)
	setTime(&p.StartDate, r.StartDate)
	setTime(&p.TargetCompletionDate, r.TargetCompletionDate)
	if r.TotalBudget != nil {
		p.TotalBudget = *r.TotalBudget
	}
	setString(&p.ImageURL, r.ImageURL)
}

type AddMemberRequest struct {
	UserID uuid.UUID       `json:"user_id" binding:"required"`
	Role   models.UserRole `json:"role" binding:"required,oneof=owner pm team_member contractor viewer"`
}

// Milestone DTOs
type CreateMilestoneRequest struct {
	PropertyID  uuid.UUID              `json:"property_id" binding:"required"`
	Title       string                 `json:"title" binding:"required,max=255"`
	Description string                 `json:"description"`
	Status      models.MilestoneStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed delayed"`
	StartDate   *time.Time             `json:"start_date"`
	DueDate     *time.Time             `json:"due_date"`
	Progress    int                    `json:"progress" binding:"min=0,max=100"`
	SortOrder   int                    `json:"sort_order"`
}

func (r *CreateMilestoneRequest) Model() *models.Milestone {
	status := r.Status
	if status == "" {
		status = models.MilestonePending
	}
	return &models.Milestone{
		PropertyID:  r.PropertyID,
		Title:       r.Title,
		Description: r.Description,
		Status:      status,
		StartDate:   r.StartDate,
		DueDate:     r.DueDate,
		Progress:    r.Progress,
		SortOrder:   r.SortOrder,
	}
}

type UpdateMilestoneRequest struct {
	Title       *string                 `json:"title" binding:"omitempty,max=255"`
	Description *string                 `json:"description"`
	Status      *models.MilestoneStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed delayed"`
	StartDate   *time.Time              `json:"start_date"`
	DueDate     *time.Time              `json:"due_date"`
	Progress    *int                    `json:"progress" binding:"omitempty,min=0,max=100"`
	SortOrder   *int                    `json:"sort_order"`
}

func (r *UpdateMilestoneRequest) Apply(m *models.Milestone) {
	setString(&m.Title, r.Title)
	setString(&m.Description, r.Description)
	if r.Status != nil {
		m.Status = *r.Status
	}
	setTime(&m.StartDate, r.StartDate)
	setTime(&m.DueDate, r.DueDate)
	if r.Progress != nil {
		m.Progress = *r.Progress
	}
	if r.SortOrder != nil {
		m.SortOrder = *r.SortOrder
	}
}

// Vendor DTOs
type CreateVendorRequest struct {
	Name            string              `json:"name" binding:"required,max=255"`
	Company         string              `json:"company" binding:"omitempty,max=255"`
	Trade           string              `json:"trade" binding:"omitempty,max=100"`
	Email           string              `json:"email" binding:"omitempty,email"`
	Phone           string              `json:"phone" binding:"omitempty,max=50"`
	Address         string              `json:"address" binding:"omitempty,max=500"`
	LicenseNumber   string              `json:"license_number" binding:"omitempty,max=100"`
	InsuranceExpiry *time.Time          `json:"insurance_expiry"`
	Rating          float64             `json:"rating" binding:"min=0,max=5"`
	Status          models.VendorStatus `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes           string              `json:"notes"`
}

func (r *CreateVendorRequest) Model() *models.Vendor {
	status := r.Status
	if status == "" {
		status = models.VendorActive
	}
	return &models.Vendor{
		Name:            r.Name,
		Company:         r.Company,
		Trade:           r.Trade,
		Email:           r.Email,
		Phone:           r.Phone,
		Address:         r.Address,
		LicenseNumber:   r.LicenseNumber,
		InsuranceExpiry: r.InsuranceExpiry,
		Rating:          r.Rating,
		Status:          status,
		Notes:           r.Notes,
	}
}

type UpdateVendorRequest struct {
	Name            *string              `json:"name" binding:"omitempty,max=255"`
	Company         *string              `json:"company" binding:"omitempty,max=255"`
	Trade           *string              `json:"trade" binding:"omitempty,max=100"`
	Email           *string              `json:"email" binding:"omitempty,email"`
	Phone           *string              `json:"phone" binding:"omitempty,max=50"`
	Address         *string              `json:"address" binding:"omitempty,max=500"`
	LicenseNumber   *string              `json:"license_number" binding:"omitempty,max=100"`
	InsuranceExpiry *time.Time           `json:"insurance_expiry"`
	Rating          *float64             `json:"rating" binding:"omitempty,min=0,max=5"`
	Status          *models.VendorStatus `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes           *string              `json:"notes"`
}

func (r *UpdateVendorRequest) Apply(v *models.Vendor) {
	setString(&v.Name, r.Name)
	setString(&v.Company, r.Company)
	setString(&v.Trade, r.Trade)
	setString(&v.Email, r.Email)
	setString(&v.Phone, r.Phone)
	setString(&v.Address, r.Address)
	setString(&v.LicenseNumber, r.LicenseNumber)
	setTime(&v.InsuranceExpiry, r.InsuranceExpiry)
	if r.Rating != nil {
		v.Rating = *r.Rating
	}
	if r.Status != nil {
		v.Status = *r.Status
	}
	setString(&v.Notes, r.Notes)
}

// Budget DTOs
type CreateBudgetLineRequest struct {
	PropertyID      uuid.UUID           `json:"property_id" binding:"required"`
	MilestoneID     *uuid.UUID          `json:"milestone_id"`
	VendorID        *uuid.UUID          `json:"vendor_id"`
	Category        string              `json:"category" binding:"required,max=100"`
	Description     string              `json:"description"`
	EstimatedAmount float64             `json:"estimated_amount" binding:"min=0"`
	ActualAmount    float64             `json:"actual_amount" binding:"min=0"`
	Status          models.BudgetStatus `json:"status" binding:"omitempty,oneof=planned committed paid"`
}

func (r *CreateBudgetLineRequest) Model() *models.BudgetLine {
	status := r.Status
	if status == "" {
		status = models.BudgetPlanned
	}
	return &models.BudgetLine{
		PropertyID:      r.PropertyID,
		MilestoneID:     r.MilestoneID,
		VendorID:        r.VendorID,
		Category:        r.Category,
		Description:     r.Description,
		EstimatedAmount: r.EstimatedAmount,
		ActualAmount:    r.ActualAmount,
		Status:          status,
	}
}

type UpdateBudgetLineRequest struct {
	MilestoneID     *uuid.UUID           `json:"milestone_id"`
	VendorID        *uuid.UUID           `json:"vendor_id"`
	Category        *string              `json:"category" binding:"omitempty,max=100"`
	Description     *string              `json:"description"`
	EstimatedAmount *float64             `json:"estimated_amount" binding:"omitempty,min=0"`
	ActualAmount    *float64             `json:"actual_amount" binding:"omitempty,min=0"`
	Status          *models.BudgetStatus `json:"status" binding:"omitempty,oneof=planned committed paid"`
}

func (r *UpdateBudgetLineRequest) Apply(b *models.BudgetLine) {
	setUUID(&b.MilestoneID, r.MilestoneID)
	setUUID(&b.VendorID, r.VendorID)
	setString(&b.Category, r.Category)
	setString(&b.Description, r.Description)
	if r.EstimatedAmount != nil {
		b.EstimatedAmount = *r.EstimatedAmount
	}
	if r.ActualAmount != nil {
		b.ActualAmount = *r.ActualAmount
	}
	if r.Status != nil {
		b.Status = *r.Status
	}
}

// RFQ DTOs
type CreateRFQRequest struct {
	PropertyID  uuid.UUID        `json:"property_id" binding:"required"`
	Title       string           `json:"title" binding:"required,max=255"`
	Description string           `json:"description"`
	ScopeOfWork string           `json:"scope_of_work"`
	DueDate     *time.Time       `json:"due_date"`
	Status      models.RFQStatus `json:"status" binding:"omitempty,oneof=draft open closed"`
}

func (r *CreateRFQRequest) Model() *models.RFQ {
	status := r.Status
	if status == "" {
		status = models.RFQDraft
	}
	return &models.RFQ{
		PropertyID:  r.PropertyID,
		Title:       r.Title,
		Description: r.Description,
		ScopeOfWork: r.ScopeOfWork,
		DueDate:     r.DueDate,
		Status:      status,
	}
}

// UpdateRFQRequest cannot set awarded; that goes through the award endpoint.
type UpdateRFQRequest struct {
	Title       *string           `json:"title" binding:"omitempty,max=255"`
	Description *string           `json:"description"`
	ScopeOfWork *string           `json:"scope_of_work"`
	DueDate     *time.Time        `json:"due_date"`
	Status      *models.RFQStatus `json:"status" binding:"omitempty,oneof=draft open closed"`
}

func (r *UpdateRFQRequest) Apply(q *models.RFQ) {
	setString(&q.Title, r.Title)
	setString(&q.Description, r.Description)
	setString(&q.ScopeOfWork, r.ScopeOfWork)
	setTime(&q.DueDate, r.DueDate)
	if r.Status != nil {
		q.Status = *r.Status
	}
}

type CreateBidRequest struct {
	VendorID     uuid.UUID `json:"vendor_id" binding:"required"`
	Amount       float64   `json:"amount" binding:"required,gt=0"`
	TimelineDays int       `json:"timeline_days" binding:"min=0"`
	Notes        string    `json:"notes"`
}

func (r *CreateBidRequest) Model(rfqID uuid.UUID) *models.Bid {
	return &models.Bid{
		RFQID:        rfqID,
		VendorID:     r.VendorID,
		Amount:       r.Amount,
		TimelineDays: r.TimelineDays,
		Notes:        r.Notes,
		Status:       models.BidSubmitted,
	}
}

type UpdateBidRequest struct {
	Amount       *float64 `json:"amount" binding:"omitempty,gt=0"`
	TimelineDays *int     `json:"timeline_days" binding:"omitempty,min=0"`
	Notes        *string  `json:"notes"`
}

func (r *UpdateBidRequest) Apply(b *models.Bid) {
	if r.Amount != nil {
		b.Amount = *r.Amount
	}
	if r.TimelineDays != nil {
		b.TimelineDays = *r.TimelineDays
	}
	setString(&b.Notes, r.Notes)
}

type AwardBidRequest struct {
	BidID uuid.UUID `json:"bid_id" binding:"required"`
}

// Permit DTOs
type CreatePermitRequest struct {
	PropertyID     uuid.UUID           `json:"property_id" binding:"required"`
	Name           string              `json:"name" binding:"required,max=255"`
	Authority      string              `json:"authority" binding:"omitempty,max=255"`
	PermitNumber   string              `json:"permit_number" binding:"omitempty,max=100"`
	Status         models.PermitStatus `json:"status" binding:"omitempty,oneof=not_started applied approved rejected expired"`
	FormURL        string              `json:"form_url" binding:"omitempty,max=1000"`
	Fee            string              `json:"fee" binding:"omitempty,max=100"`
	ProcessingTime string              `json:"processing_time" binding:"omitempty,max=100"`
	Notes          string              `json:"notes"`
	AppliedAt      *time.Time          `json:"applied_at"`
	ApprovedAt     *time.Time          `json:"approved_at"`
	ExpiresAt      *time.Time          `json:"expires_at"`
}

func (r *CreatePermitRequest) Model() *models.Permit {
	status := r.Status
	if status == "" {
		status = models.PermitNotStarted
	}
	return &models.Permit{
		PropertyID:     r.PropertyID,
		Name:           r.Name,
		Authority:      r.Authority,
		PermitNumber:   r.PermitNumber,
		Status:         status,
		FormURL:        r.FormURL,
		Fee:            r.Fee,
		ProcessingTime: r.ProcessingTime,
		Notes:          r.Notes,
		AppliedAt:      r.AppliedAt,
		ApprovedAt:     r.ApprovedAt,
		ExpiresAt:      r.ExpiresAt,
	}
}

type UpdatePermitRequest struct {
	Name           *string              `json:"name" binding:"omitempty,max=255"`
	Authority      *string              `json:"authority" binding:"omitempty,max=255"`
	PermitNumber   *string              `json:"permit_number" binding:"omitempty,max=100"`
	Status         *models.PermitStatus `json:"status" binding:"omitempty,oneof=not_started applied approved rejected expired"`
	FormURL        *string              `json:"form_url" binding:"omitempty,max=1000"`
	Fee            *string              `json:"fee" binding:"omitempty,max=100"`
	ProcessingTime *string              `json:"processing_time" binding:"omitempty,max=100"`
	Notes          *string              `json:"notes"`
	AppliedAt      *time.Time           `json:"applied_at"`
	ApprovedAt     *time.Time           `json:"approved_at"`
	ExpiresAt      *time.Time           `json:"expires_at"`
}

func (r *UpdatePermitRequest) Apply(p *models.Permit) {
	setString(&p.Name, r.Name)
	setString(&p.Authority, r.Authority)
	setString(&p.PermitNumber, r.PermitNumber)
	if r.Status != nil {
		p.Status = *r.Status
	}
	setString(&p.FormURL, r.FormURL)
	setString(&p.Fee, r.Fee)
	setString(&p.ProcessingTime, r.ProcessingTime)
	setString(&p.Notes, r.Notes)
	setTime(&p.AppliedAt, r.AppliedAt)
	setTime(&p.ApprovedAt, r.ApprovedAt)
	setTime(&p.ExpiresAt, r.ExpiresAt)
}

type PermitLookupRequest struct {
	Address     string     `json:"address" binding:"required,max=500"`
	ScopeOfWork string     `json:"scope_of_work" binding:"required"`
	PropertyID  *uuid.UUID `json:"property_id"`
	Save        bool       `json:"save"`
}

// Risk DTOs
type CreateRiskRequest struct {
	PropertyID     uuid.UUID        `json:"property_id" binding:"required"`
	Title          string           `json:"title" binding:"required,max=255"`
	Description    string           `json:"description"`
	Severity       models.RiskLevel `json:"severity" binding:"required,oneof=low medium high critical"`
	Likelihood     models.RiskLevel `json:"likelihood" binding:"required,oneof=low medium high critical"`
	MitigationPlan string           `json:"mitigation_plan"`
	OwnerID        *uuid.UUID       `json:"owner_id"`
}

func (r *CreateRiskRequest) Model() *models.Risk {
	return &models.Risk{
		PropertyID:     r.PropertyID,
		Title:          r.Title,
		Description:    r.Description,
		Severity:       r.Severity,
		Likelihood:     r.Likelihood,
		Status:         models.RiskOpen,
		MitigationPlan: r.MitigationPlan,
		OwnerID:        r.OwnerID,
	}
}

type UpdateRiskRequest struct {
	Title          *string            `json:"title" binding:"omitempty,max=255"`
	Description    *string            `json:"description"`
	Severity       *models.RiskLevel  `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	Likelihood     *models.RiskLevel  `json:"likelihood" binding:"omitempty,oneof=low medium high critical"`
	Status         *models.RiskStatus `json:"status" binding:"omitempty,oneof=open mitigated closed"`
	MitigationPlan *string            `json:"mitigation_plan"`
	OwnerID        *uuid.UUID         `json:"owner_id"`
}

func (r *UpdateRiskRequest) Apply(k *models.Risk) {
	setString(&k.Title, r.Title)
	setString(&k.Description, r.Description)
	if r.Severity != nil {
		k.Severity = *r.Severity
	}
	if r.Likelihood != nil {
		k.Likelihood = *r.Likelihood
	}
	if r.Status != nil {
		k.Status = *r.Status
	}
	setString(&k.MitigationPlan, r.MitigationPlan)
	setUUID(&k.OwnerID, r.OwnerID)
}

// Discussion DTOs
type CreateDiscussionRequest struct {
	PropertyID uuid.UUID `json:"property_id" binding:"required"`
	Title      string    `json:"title" binding:"required,max=255"`
	Body       string    `json:"body"`
}

func (r *CreateDiscussionRequest) Model() *models.Discussion {
	return &models.Discussion{
		PropertyID: r.PropertyID,
		Title:      r.Title,
		Body:       r.Body,
	}
}

type UpdateDiscussionRequest struct {
	Title    *string `json:"title" binding:"omitempty,max=255"`
	Body     *string `json:"body"`
	IsPinned *bool   `json:"is_pinned"`
	IsClosed *bool   `json:"is_closed"`
}

func (r *UpdateDiscussionRequest) Apply(d *models.Discussion) {
	setString(&d.Title, r.Title)
	setString(&d.Body, r.Body)
	if r.IsPinned != nil {
		d.IsPinned = *r.IsPinned
	}
	if r.IsClosed != nil {
		d.IsClosed = *r.IsClosed
	}
}

type CreateDiscussionCommentRequest struct {
	Body            string     `json:"body" binding:"required"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id"`
}

type ReactionRequest struct {
	Emoji     string     `json:"emoji" binding:"required,max=32"`
	CommentID *uuid.UUID `json:"comment_id"`
}

// Document DTOs
type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

type UploadURLResponse struct {
	UploadURL   string    `json:"upload_url"`
	StoragePath string    `json:"storage_path"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// DocumentAttributes are the descriptive fields shared by register, upload and update.
type DocumentAttributes struct {
	Name         string              `json:"name" form:"name" binding:"omitempty,max=255"`
	Description  string              `json:"description" form:"description"`
	Type         models.DocumentType `json:"type" form:"type" binding:"omitempty,oneof=contract permit photo plan invoice report specification other"`
	Category     string              `json:"category" form:"category" binding:"omitempty,max=100"`
	Tags         []string            `json:"tags" form:"tags"`
	PropertyID   *uuid.UUID          `json:"property_id" form:"-"`
	MilestoneID  *uuid.UUID          `json:"milestone_id" form:"-"`
	AccessLevel  models.AccessLevel  `json:"access_level" form:"access_level" binding:"omitempty,oneof=public project_team project_managers owners_only restricted"`
	AllowedUsers []string            `json:"allowed_users" form:"allowed_users"`
	AllowedRoles []string            `json:"allowed_roles" form:"allowed_roles"`
	ExpiresAt    *time.Time          `json:"expires_at" form:"-"`
}

// RegisterDocumentRequest records an object the client already PUT to an upload URL.
type RegisterDocumentRequest struct {
	DocumentAttributes
	StoragePath      string `json:"storage_path" binding:"required,max=1000"`
	OriginalFilename string `json:"original_filename" binding:"required,max=255"`
	FileSize         int64  `json:"file_size" binding:"min=0"`
	MimeType         string `json:"mime_type" binding:"omitempty,max=150"`
	Checksum         string `json:"checksum" binding:"omitempty,max=128"`
}

type UpdateDocumentRequest struct {
	Name         *string              `json:"name" binding:"omitempty,max=255"`
	Description  *string              `json:"description"`
	Type         *models.DocumentType `json:"type" binding:"omitempty,oneof=contract permit photo plan invoice report specification other"`
	Category     *string              `json:"category" binding:"omitempty,max=100"`
	Tags         *[]string            `json:"tags"`
	MilestoneID  *uuid.UUID           `json:"milestone_id"`
	AccessLevel  *models.AccessLevel  `json:"access_level" binding:"omitempty,oneof=public project_team project_managers owners_only restricted"`
	AllowedUsers *[]string            `json:"allowed_users"`
	AllowedRoles *[]string            `json:"allowed_roles"`
	ExpiresAt    *time.Time           `json:"expires_at"`
}

func (r *UpdateDocumentRequest) Apply(d *models.Document) {
	setString(&d.Name, r.Name)
	setString(&d.Description, r.Description)
	if r.Type != nil {
		d.Type = *r.Type
	}
	setString(&d.Category, r.Category)
	if r.Tags != nil {
		d.Tags = models.StringList(*r.Tags)
	}
	setUUID(&d.MilestoneID, r.MilestoneID)
	if r.AccessLevel != nil {
		d.AccessLevel = *r.AccessLevel
	}
	if r.AllowedUsers != nil {
		d.AllowedUsers = models.StringList(*r.AllowedUsers)
	}
	if r.AllowedRoles != nil {
		d.AllowedRoles = models.StringList(*r.AllowedRoles)
	}
	setTime(&d.ExpiresAt, r.ExpiresAt)
}

// CreateVersionRequest carries the new file; empty descriptive fields are inherited.
type CreateVersionRequest struct {
	DocumentAttributes
	StoragePath      string `json:"storage_path" binding:"required,max=1000"`
	OriginalFilename string `json:"original_filename" binding:"required,max=255"`
	FileSize         int64  `json:"file_size" binding:"min=0"`
	MimeType         string `json:"mime_type" binding:"omitempty,max=150"`
	Checksum         string `json:"checksum" binding:"omitempty,max=128"`
	VersionNotes     string `json:"version_notes"`
}

type ReviewRequest struct {
	Comments string `json:"comments"`
}

type ArchiveRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type DocumentCommentRequest struct {
	Content         string                 `json:"content" binding:"required"`
	ParentCommentID *uuid.UUID             `json:"parent_comment_id"`
	Annotation      map[string]interface{} `json:"annotation"`
}

type ResolveCommentRequest struct {
	Resolved *bool `json:"resolved"`
}

type CreateShareRequest struct {
	SharedWithUserID *uuid.UUID `json:"shared_with_user_id"`
	ExpiresAt        *time.Time `json:"expires_at"`
	CanDownload      bool       `json:"can_download"`
	CanComment       bool       `json:"can_comment"`
	Password         string     `json:"password" binding:"omitempty,min=4,max=128"`
}

type AccessShareRequest struct {
	Password string `json:"password"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setTime(dst **time.Time, src *time.Time) {
	if src != nil {
		t := *src
		*dst = &t
	}
}

func setUUID(dst **uuid.UUID, src *uuid.UUID) {
	if src != nil {
		id := *src
		*dst = &id
	}
}
