package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// PermitLookupParams asks which permits a job needs and, optionally, saves them to a property.
type PermitLookupParams struct {
	Address     string
	ScopeOfWork string
	PropertyID  *uuid.UUID
	Save        bool
}

// PermitLookupResult carries the suggestions and any permits created from them.
type PermitLookupResult struct {
	Suggestions []PermitSuggestion `json:"suggestions"`
	Saved       []models.Permit    `json:"saved,omitempty"`
}

// PermitService tracks permits and drafts them from the AI lookup.
type PermitService struct {
	*recordService[models.Permit]
	repo   repositories.PermitRepository
	lookup PermitLookupClient
}

func NewPermitService(
	repo repositories.PermitRepository,
	lookup PermitLookupClient,
	propertyRepo repositories.PropertyRepository,
	access *AccessResolver,
	recorder *Recorder,
) *PermitService {
	kind := recordKind[models.Permit]{
		entity:     "permit",
		id:         func(p *models.Permit) uuid.UUID { return p.ID },
		propertyID: func(p *models.Permit) uuid.UUID { return p.PropertyID },
		label:      func(p *models.Permit) string { return p.Name },
		prepare:    preparePermit,
	}
	return &PermitService{
		recordService: newRecordService(kind, repo, propertyRepo, access, recorder),
		repo:          repo,
		lookup:        lookup,
	}
}

// preparePermit stamps applied_at and approved_at the first time a permit reaches those states.
func preparePermit(_ context.Context, p *models.Permit) error {
	if strings.TrimSpace(p.Name) == "" {
		return validationError("name is required")
	}
	if p.Status == "" {
		p.Status = models.PermitNotStarted
	}
	now := time.Now().UTC()
	switch p.Status {
	case models.PermitNotStarted, models.PermitRejected, models.PermitExpired:
	case models.PermitApplied:
		if p.AppliedAt == nil {
			p.AppliedAt = &now
		}
	case models.PermitApproved:
		if p.AppliedAt == nil {
			p.AppliedAt = &now
		}
		if p.ApprovedAt == nil {
			p.ApprovedAt = &now
		}
	default:
		return validationError("invalid permit status %q", p.Status)
	}
	return nil
}

// Lookup never fails on the AI side; a broken or disabled collaborator yields the fallback suggestion.
func (s *PermitService) Lookup(ctx context.Context, actor Actor, params PermitLookupParams) (*PermitLookupResult, error) {
	address := strings.TrimSpace(params.Address)
	scope := strings.TrimSpace(params.ScopeOfWork)
	if address == "" || scope == "" {
		return nil, validationError("address and scope_of_work are required")
	}
	if params.Save && params.PropertyID == nil {
		return nil, validationError("property_id is required to save permits")
	}

	var property *models.Property
	if params.Save {
		var err error
		if property, err = s.scope.manage(ctx, actor, *params.PropertyID); err != nil {
			return nil, err
		}
	}

	suggestions := s.lookup.Lookup(ctx, address, scope)
	result := &PermitLookupResult{Suggestions: suggestions}
	if property == nil || len(suggestions) == 0 {
		return result, nil
	}

	permits := make([]models.Permit, 0, len(suggestions))
	for _, suggestion := range suggestions {
		name := strings.TrimSpace(suggestion.Name)
		if name == "" {
			continue
		}
		permits = append(permits, models.Permit{
			PropertyID:     property.ID,
			Name:           name,
			Authority:      suggestion.Authority,
			Status:         models.PermitNotStarted,
			FormURL:        suggestion.FormURL,
			Fee:            suggestion.Fee,
			ProcessingTime: suggestion.ProcessingTime,
			Notes:          suggestion.Notes,
			AIGenerated:    true,
		})
	}
	if err := s.repo.CreateBatch(ctx, permits); err != nil {
		return nil, fmt.Errorf("failed to save permits: %w", err)
	}
	result.Saved = permits

	for i := range permits {
		s.record(ctx, actor, models.AuditCreate, "Drafted", &permits[i], nil, &permits[i])
	}
	return result, nil
}
