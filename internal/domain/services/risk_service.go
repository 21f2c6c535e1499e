package services

import (
	"context"
	"strings"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// RiskService manages a property's risk register.
type RiskService struct {
	*recordService[models.Risk]
}

func NewRiskService(repo repositories.RiskRepository, propertyRepo repositories.PropertyRepository, access *AccessResolver, recorder *Recorder) *RiskService {
	kind := recordKind[models.Risk]{
		entity:     "risk",
		id:         func(r *models.Risk) uuid.UUID { return r.ID },
		propertyID: func(r *models.Risk) uuid.UUID { return r.PropertyID },
		label:      func(r *models.Risk) string { return r.Title },
		prepare:    prepareRisk,
		// Anyone on the team can raise a risk.
		membersCreate: true,
	}
	return &RiskService{newRecordService(kind, repo, propertyRepo, access, recorder)}
}

func validRiskLevel(level models.RiskLevel) bool {
	switch level {
	case models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskCritical:
		return true
	}
	return false
}

func prepareRisk(_ context.Context, r *models.Risk) error {
	if strings.TrimSpace(r.Title) == "" {
		return validationError("title is required")
	}
	if !validRiskLevel(r.Severity) {
		return validationError("invalid severity %q", r.Severity)
	}
	if !validRiskLevel(r.Likelihood) {
		return validationError("invalid likelihood %q", r.Likelihood)
	}
	if r.Status == "" {
		r.Status = models.RiskOpen
	}
	switch r.Status {
	case models.RiskOpen, models.RiskMitigated, models.RiskClosed:
	default:
		return validationError("invalid risk status %q", r.Status)
	}
	return nil
}
