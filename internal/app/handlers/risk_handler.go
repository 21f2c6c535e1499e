package handlers

import (
	"github.com/buildtrack/buildtrack/internal/domain/dto"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// RiskHandler handles the risk register of a property
type RiskHandler struct {
	*recordHandler[models.Risk, dto.CreateRiskRequest, dto.UpdateRiskRequest, *dto.CreateRiskRequest, *dto.UpdateRiskRequest]
}

func NewRiskHandler(base *BaseHandler, riskService *services.RiskService) *RiskHandler {
	return &RiskHandler{
		recordHandler: newRecordHandler[models.Risk, dto.CreateRiskRequest, dto.UpdateRiskRequest, *dto.CreateRiskRequest, *dto.UpdateRiskRequest](base, riskService),
	}
}

func (h *RiskHandler) RegisterRoutes(router *gin.RouterGroup) {
	h.register(router, "risks", "risks")
}
