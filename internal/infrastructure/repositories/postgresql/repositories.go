package postgresql

import (
	"context"
	"fmt"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	UserRepo            repositories.UserRepository
	PropertyRepo        repositories.PropertyRepository
	MemberRepo          repositories.PropertyMemberRepository
	MilestoneRepo       repositories.MilestoneRepository
	VendorRepo          repositories.VendorRepository
	BudgetRepo          repositories.BudgetLineRepository
	RFQRepo             repositories.RFQRepository
	BidRepo             repositories.BidRepository
	PermitRepo          repositories.PermitRepository
	RiskRepo            repositories.RiskRepository
	DiscussionRepo      repositories.DiscussionRepository
	ActivityRepo        repositories.ActivityRepository
	AuditRepo           repositories.AuditLogRepository
	DocumentRepo        repositories.DocumentRepository
	DocumentCommentRepo repositories.DocumentCommentRepository
	ShareRepo           repositories.ShareRepository

	// Internal reference to database for health checks
	db *database.DB
}

// NewRepositories creates a new repositories container
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		UserRepo:            NewUserRepository(db),
		PropertyRepo:        NewPropertyRepository(db),
		MemberRepo:          NewPropertyMemberRepository(db),
		MilestoneRepo:       NewMilestoneRepository(db),
		VendorRepo:          NewVendorRepository(db),
		BudgetRepo:          NewBudgetLineRepository(db),
		RFQRepo:             NewRFQRepository(db),
		BidRepo:             NewBidRepository(db),
		PermitRepo:          NewPermitRepository(db),
		RiskRepo:            NewRiskRepository(db),
		DiscussionRepo:      NewDiscussionRepository(db),
		ActivityRepo:        NewActivityRepository(db),
		AuditRepo:           NewAuditLogRepository(db),
		DocumentRepo:        NewDocumentRepository(db),
		DocumentCommentRepo: NewDocumentCommentRepository(db),
		ShareRepo:           NewShareRepository(db),
		db:                  db,
	}
}

// HealthCheck verifies database connectivity
func (r *Repositories) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
