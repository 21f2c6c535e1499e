package handlers

import (
	"github.com/buildtrack/buildtrack/internal/domain/dto"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// PermitHandler handles permits and the AI permit lookup
type PermitHandler struct {
	*recordHandler[models.Permit, dto.CreatePermitRequest, dto.UpdatePermitRequest, *dto.CreatePermitRequest, *dto.UpdatePermitRequest]
	permitService *services.PermitService
}

// NewPermitHandler creates a new permit handler
func NewPermitHandler(base *BaseHandler, permitService *services.PermitService) *PermitHandler {
	return &PermitHandler{
		recordHandler: newRecordHandler[models.Permit, dto.CreatePermitRequest, dto.UpdatePermitRequest, *dto.CreatePermitRequest, *dto.UpdatePermitRequest](base, permitService),
		permitService: permitService,
	}
}

// RegisterRoutes registers all permit routes
func (h *PermitHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/permits/lookup", h.Lookup)
	h.register(router, "permits", "permits")
}

// Lookup suggests the permits a job needs, optionally saving them to a property
// @Summary Permit lookup
// @Tags permits
// @Accept json
// @Produce json
// @Param request body dto.PermitLookupRequest true "Lookup"
// @Success 200 {object} services.PermitLookupResult
// @Router /permits/lookup [post]
func (h *PermitHandler) Lookup(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.PermitLookupRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.permitService.Lookup(c.Request.Context(), actor, services.PermitLookupParams{
		Address:     req.Address,
		ScopeOfWork: req.ScopeOfWork,
		PropertyID:  req.PropertyID,
		Save:        req.Save,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, result)
}
