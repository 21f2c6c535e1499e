package handlers

import (
	"github.com/buildtrack/buildtrack/internal/domain/dto"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// BudgetHandler handles budget lines and the budget roll-up
type BudgetHandler struct {
	*recordHandler[models.BudgetLine, dto.CreateBudgetLineRequest, dto.UpdateBudgetLineRequest, *dto.CreateBudgetLineRequest, *dto.UpdateBudgetLineRequest]
	budgetService *services.BudgetService
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(base *BaseHandler, budgetService *services.BudgetService) *BudgetHandler {
	return &BudgetHandler{
		recordHandler: newRecordHandler[models.BudgetLine, dto.CreateBudgetLineRequest, dto.UpdateBudgetLineRequest, *dto.CreateBudgetLineRequest, *dto.UpdateBudgetLineRequest](base, budgetService),
		budgetService: budgetService,
	}
}

// RegisterRoutes registers all budget routes
func (h *BudgetHandler) RegisterRoutes(router *gin.RouterGroup) {
	h.register(router, "budget", "budget-lines")
	router.GET("/properties/:id/budget/summary", h.Summary)
}

// Summary returns totals, variance and per-category figures for a property
// @Summary Budget summary
// @Tags budget
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} services.BudgetSummary
// @Router /properties/{id}/budget/summary [get]
func (h *BudgetHandler) Summary(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	propertyID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.budgetService.Summary(c.Request.Context(), actor, propertyID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, summary)
}
