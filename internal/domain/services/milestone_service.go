package services

import (
	"context"
	"strings"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// MilestoneService manages a property's schedule.
type MilestoneService struct {
	*recordService[models.Milestone]
}

func NewMilestoneService(repo repositories.MilestoneRepository, propertyRepo repositories.PropertyRepository, access *AccessResolver, recorder *Recorder) *MilestoneService {
	kind := recordKind[models.Milestone]{
		entity:     "milestone",
		id:         func(m *models.Milestone) uuid.UUID { return m.ID },
		propertyID: func(m *models.Milestone) uuid.UUID { return m.PropertyID },
		label:      func(m *models.Milestone) string { return m.Title },
		prepare:    prepareMilestone,
	}
	return &MilestoneService{newRecordService(kind, repo, propertyRepo, access, recorder)}
}

// prepareMilestone stamps completion: a completed milestone is at 100% with a completion time.
func prepareMilestone(_ context.Context, m *models.Milestone) error {
	if strings.TrimSpace(m.Title) == "" {
		return validationError("title is required")
	}
	if m.Status == "" {
		m.Status = models.MilestonePending
	}
	switch m.Status {
	case models.MilestonePending, models.MilestoneInProgress, models.MilestoneCompleted, models.MilestoneDelayed:
	default:
		return validationError("invalid milestone status %q", m.Status)
	}
	if m.Progress < 0 || m.Progress > 100 {
		return validationError("progress must be between 0 and 100")
	}
	if m.StartDate != nil && m.DueDate != nil && m.DueDate.Before(*m.StartDate) {
		return validationError("due_date is before start_date")
	}

	if m.Status == models.MilestoneCompleted {
		m.Progress = 100
		if m.CompletedAt == nil {
			now := time.Now().UTC()
			m.CompletedAt = &now
		}
	} else {
		m.CompletedAt = nil
	}
	return nil
}
