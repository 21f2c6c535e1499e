package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// BudgetSummary rolls a property's budget lines up by category.
type BudgetSummary struct {
	PropertyID     uuid.UUID                            `json:"property_id"`
	TotalBudget    float64                              `json:"total_budget"`
	TotalEstimated float64                              `json:"total_estimated"`
	TotalActual    float64                              `json:"total_actual"`
	Variance       float64                              `json:"variance"`
	Remaining      float64                              `json:"remaining"`
	Categories     []repositories.BudgetCategorySummary `json:"categories"`
}

// BudgetService manages budget lines.
type BudgetService struct {
	*recordService[models.BudgetLine]
	repo          repositories.BudgetLineRepository
	milestoneRepo repositories.MilestoneRepository
	vendorRepo    repositories.VendorRepository
}

func NewBudgetService(
	repo repositories.BudgetLineRepository,
	milestoneRepo repositories.MilestoneRepository,
	vendorRepo repositories.VendorRepository,
	propertyRepo repositories.PropertyRepository,
	access *AccessResolver,
	recorder *Recorder,
) *BudgetService {
	s := &BudgetService{repo: repo, milestoneRepo: milestoneRepo, vendorRepo: vendorRepo}
	kind := recordKind[models.BudgetLine]{
		entity:     "budget_line",
		id:         func(b *models.BudgetLine) uuid.UUID { return b.ID },
		propertyID: func(b *models.BudgetLine) uuid.UUID { return b.PropertyID },
		label:      func(b *models.BudgetLine) string { return b.Category },
		prepare:    s.prepare,
	}
	s.recordService = newRecordService(kind, repo, propertyRepo, access, recorder)
	return s
}

func (s *BudgetService) prepare(ctx context.Context, b *models.BudgetLine) error {
	if strings.TrimSpace(b.Category) == "" {
		return validationError("category is required")
	}
	if b.EstimatedAmount < 0 || b.ActualAmount < 0 {
		return validationError("amounts must not be negative")
	}
	if b.Status == "" {
		b.Status = models.BudgetPlanned
	}
	switch b.Status {
	case models.BudgetPlanned, models.BudgetCommitted, models.BudgetPaid:
	default:
		return validationError("invalid budget status %q", b.Status)
	}

	if b.MilestoneID != nil {
		milestone, err := s.milestoneRepo.GetByID(ctx, *b.MilestoneID)
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return validationError("milestone %s does not exist", *b.MilestoneID)
		}
		if err != nil {
			return fmt.Errorf("failed to load milestone: %w", err)
		}
		if milestone.PropertyID != b.PropertyID {
			return validationError("milestone belongs to another property")
		}
	}
	if b.VendorID != nil {
		if _, err := s.vendorRepo.GetByID(ctx, *b.VendorID); err != nil {
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return validationError("vendor %s does not exist", *b.VendorID)
			}
			return fmt.Errorf("failed to load vendor: %w", err)
		}
	}
	return nil
}

// Summary totals estimated and actual spend against the property's budget.
func (s *BudgetService) Summary(ctx context.Context, actor Actor, propertyID uuid.UUID) (*BudgetSummary, error) {
	property, err := s.scope.view(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.SummarizeByCategory(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize budget: %w", err)
	}

	summary := &BudgetSummary{
		PropertyID:  propertyID,
		TotalBudget: property.TotalBudget,
		Categories:  categories,
	}
	for _, c := range categories {
		summary.TotalEstimated += c.Estimated
		summary.TotalActual += c.Actual
	}
	summary.Variance = summary.TotalEstimated - summary.TotalActual
	summary.Remaining = summary.TotalBudget - summary.TotalActual
	return summary, nil
}
