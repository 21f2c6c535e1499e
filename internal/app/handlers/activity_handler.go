package handlers

import (
	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// ActivityHandler serves the activity feed and the audit trail
type ActivityHandler struct {
	*BaseHandler
	activityService *services.ActivityService
}

func NewActivityHandler(base *BaseHandler, activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     base,
		activityService: activityService,
	}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/activities", h.ListActivities)
	router.GET("/audit-logs", h.ListAuditLogs)
}

// ListActivities returns the newest feed entries, for one property when property_id is given
// @Summary Activity feed
// @Tags activity
// @Produce json
// @Param property_id query string false "Property ID"
// @Success 200 {object} PaginatedResponse
// @Router /activities [get]
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	propertyID, ok := getUUIDParam(c, "property_id")
	if !ok {
		h.RespondBadRequest(c, "Invalid property_id format")
		return
	}

	params := h.ParseListParams(c, "created_at")
	activities, total, err := h.activityService.ListActivities(c.Request.Context(), actor, propertyID, params)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondPage(c, activities, total, params.Page, params.PageSize)
}

// ListAuditLogs searches the audit trail
// @Summary Audit logs
// @Tags activity
// @Produce json
// @Param entity_type query string false "Entity type"
// @Param entity_id query string false "Entity ID"
// @Param user_id query string false "Acting user"
// @Param action query string false "Action"
// @Param date_from query string false "From date"
// @Param date_to query string false "To date"
// @Success 200 {object} PaginatedResponse
// @Failure 403 {object} ErrorResponse
// @Router /audit-logs [get]
func (h *ActivityHandler) ListAuditLogs(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	filters := repositories.AuditLogFilters{
		ListParams: h.ParseListParams(c, "created_at"),
		EntityType: c.Query("entity_type"),
	}
	if filters.EntityID, ok = getUUIDParam(c, "entity_id"); !ok {
		h.RespondBadRequest(c, "Invalid entity_id format")
		return
	}
	if filters.UserID, ok = getUUIDParam(c, "user_id"); !ok {
		h.RespondBadRequest(c, "Invalid user_id format")
		return
	}
	if action := c.Query("action"); action != "" {
		a := models.AuditAction(action)
		filters.Action = &a
	}
	filters.DateFrom, filters.DateTo = parseDateRange(c, "date_from", "date_to")

	logs, total, err := h.activityService.ListAuditLogs(c.Request.Context(), actor, filters)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondPage(c, logs, total, filters.Page, filters.PageSize)
}
