package handlers

import (
	"github.com/buildtrack/buildtrack/internal/domain/dto"
	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// PropertyHandler handles properties and their members
type PropertyHandler struct {
	*BaseHandler
	propertyService *services.PropertyService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(base *BaseHandler, propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		BaseHandler:     base,
		propertyService: propertyService,
	}
}

// RegisterRoutes registers all property routes
func (h *PropertyHandler) RegisterRoutes(router *gin.RouterGroup) {
	properties := router.Group("/properties")
	{
		properties.GET("", h.ListProperties)
		properties.POST("", h.CreateProperty)
		properties.GET("/:id", h.GetProperty)
		properties.PUT("/:id", h.UpdateProperty)
		properties.DELETE("/:id", h.DeleteProperty)
		properties.GET("/:id/dashboard", h.GetDashboard)

		properties.GET("/:id/members", h.ListMembers)
		properties.POST("/:id/members", h.AddMember)
		properties.DELETE("/:id/members/:userId", h.RemoveMember)
	}
}

// ListProperties lists the properties visible to the caller
// @Summary List properties
// @Tags properties
// @Produce json
// @Param status query string false "Comma-separated statuses"
// @Param search query string false "Name or address search"
// @Success 200 {object} PaginatedResponse
// @Router /properties [get]
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	filters := repositories.PropertyFilters{ListParams: h.ParseListParams(c, "created_at")}
	for _, status := range getStringArrayParam(c, "status") {
		filters.Status = append(filters.Status, models.PropertyStatus(status))
	}
	ownerID, ok := getUUIDParam(c, "owner_id")
	if !ok {
		h.RespondBadRequest(c, "Invalid owner_id format")
		return
	}
	filters.OwnerID = ownerID

	properties, total, err := h.propertyService.ListProperties(c.Request.Context(), actor, filters)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondPage(c, properties, total, filters.Page, filters.PageSize)
}

// CreateProperty creates a property owned by the caller
// @Summary Create property
// @Tags properties
// @Accept json
// @Produce json
// @Param request body dto.CreatePropertyRequest true "Property"
// @Success 201 {object} models.Property
// @Router /properties [post]
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.CreatePropertyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.CreateProperty(c.Request.Context(), actor, req.Model())
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, property)
}

// GetProperty returns one property
// @Summary Get property
// @Tags properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} models.Property
// @Router /properties/{id} [get]
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	property, err := h.propertyService.GetProperty(c.Request.Context(), actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, property)
}

// UpdateProperty applies a partial update
// @Summary Update property
// @Tags properties
// @Accept json
// @Produce json
// @Param id path string true "Property ID"
// @Param request body dto.UpdatePropertyRequest true "Changes"
// @Success 200 {object} models.Property
// @Router /properties/{id} [put]
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePropertyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.UpdateProperty(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, property)
}

// DeleteProperty removes a property
// @Summary Delete property
// @Tags properties
// @Param id path string true "Property ID"
// @Success 204
// @Router /properties/{id} [delete]
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.propertyService.DeleteProperty(c.Request.Context(), actor, id); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondNoContent(c)
}

// GetDashboard returns the aggregate counters of a property
// @Summary Property dashboard
// @Tags properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} repositories.PropertyDashboard
// @Router /properties/{id}/dashboard [get]
func (h *PropertyHandler) GetDashboard(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	dashboard, err := h.propertyService.Dashboard(c.Request.Context(), actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, dashboard)
}

// ListMembers lists the project team
// @Summary List members
// @Tags properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} PaginatedResponse
// @Router /properties/{id}/members [get]
func (h *PropertyHandler) ListMembers(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	members, err := h.propertyService.ListMembers(c.Request.Context(), actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	respondSlice(h.BaseHandler, c, members)
}

// AddMember adds a user to the project team or changes their project role
// @Summary Add member
// @Tags properties
// @Accept json
// @Produce json
// @Param id path string true "Property ID"
// @Param request body dto.AddMemberRequest true "Member"
// @Success 201 {object} models.PropertyMember
// @Router /properties/{id}/members [post]
func (h *PropertyHandler) AddMember(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}

	member, err := h.propertyService.AddMember(c.Request.Context(), actor, id, req.UserID, req.Role)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, member)
}

// RemoveMember removes a user from the project team
// @Summary Remove member
// @Tags properties
// @Param id path string true "Property ID"
// @Param userId path string true "User ID"
// @Success 204
// @Router /properties/{id}/members/{userId} [delete]
func (h *PropertyHandler) RemoveMember(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.PathUUID(c, "userId")
	if !ok {
		return
	}

	if err := h.propertyService.RemoveMember(c.Request.Context(), actor, id, userID); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondNoContent(c)
}
