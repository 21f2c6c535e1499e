package handlers

import (
	"github.com/buildtrack/buildtrack/internal/domain/dto"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// MilestoneHandler handles the schedule of a property
type MilestoneHandler struct {
	*recordHandler[models.Milestone, dto.CreateMilestoneRequest, dto.UpdateMilestoneRequest, *dto.CreateMilestoneRequest, *dto.UpdateMilestoneRequest]
}

// NewMilestoneHandler creates a new milestone handler
func NewMilestoneHandler(base *BaseHandler, milestoneService *services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{
		recordHandler: newRecordHandler[models.Milestone, dto.CreateMilestoneRequest, dto.UpdateMilestoneRequest, *dto.CreateMilestoneRequest, *dto.UpdateMilestoneRequest](base, milestoneService),
	}
}

// RegisterRoutes registers all milestone routes
func (h *MilestoneHandler) RegisterRoutes(router *gin.RouterGroup) {
	h.register(router, "milestones", "milestones")
}
