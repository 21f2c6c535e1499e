package handlers

import (
	"errors"
	"net/http"

	"github.com/buildtrack/buildtrack/internal/app/middleware"
	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	config *HandlerConfig
	log    *logger.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(config *HandlerConfig, log *logger.Logger) *BaseHandler {
	if config == nil {
		config = NewHandlerConfig()
	}
	return &BaseHandler{config: config, log: log}
}

// AuthenticateUser extracts the authenticated caller as a service actor
func (b *BaseHandler) AuthenticateUser(c *gin.Context) (services.Actor, bool) {
	userCtx := middleware.GetUserContext(c)
	if userCtx == nil {
		b.RespondUnauthorized(c, "User authentication required")
		return services.Actor{}, false
	}
	return services.Actor{
		UserID:    userCtx.UserID,
		Role:      userCtx.Role,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}, true
}

// RespondError sends a standardized error response
func (b *BaseHandler) RespondError(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	response := ErrorResponse{
		Error:   errorCode,
		Message: message,
		Status:  statusCode,
	}

	// Include details based on environment
	if len(details) > 0 && b.config.EnableDebugErrors {
		response.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, response)
}

// RespondServiceError maps the service error taxonomy onto HTTP statuses
func (b *BaseHandler) RespondServiceError(c *gin.Context, err error) {
	detail := err.Error()
	switch {
	case errors.Is(err, services.ErrValidation):
		b.RespondBadRequest(c, detail)
	case errors.Is(err, services.ErrUnauthorized):
		b.RespondUnauthorized(c, "Authentication failed")
	case errors.Is(err, services.ErrForbidden):
		b.RespondError(c, http.StatusForbidden, "access_denied", "Access denied to resource")
	case errors.Is(err, services.ErrNotFound), errors.Is(err, repositories.ErrRecordNotFound):
		b.RespondNotFound(c, "Resource not found")
	case errors.Is(err, services.ErrInvalidTransition):
		b.RespondError(c, http.StatusConflict, "invalid_transition", detail)
	case errors.Is(err, services.ErrConflict):
		b.RespondConflict(c, detail)
	case errors.Is(err, services.ErrUpstream):
		b.log.Warn("upstream failure",
			"request_id", middleware.GetRequestID(c),
			"path", c.FullPath(),
			"error", err)
		b.RespondError(c, http.StatusBadGateway, "upstream_error", "An upstream service failed", detail)
	default:
		b.log.Error("request failed",
			"request_id", middleware.GetRequestID(c),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)
		b.RespondInternalError(c, "An unexpected error occurred", detail)
	}
}

// RespondUnauthorized sends a standardized unauthorized response
func (b *BaseHandler) RespondUnauthorized(c *gin.Context, message string) {
	b.RespondError(c, http.StatusUnauthorized, "unauthorized", message)
}

// RespondBadRequest sends a standardized bad request response
func (b *BaseHandler) RespondBadRequest(c *gin.Context, message string, details ...string) {
	b.RespondError(c, http.StatusBadRequest, "invalid_request", message, details...)
}

// RespondNotFound sends a standardized not found response
func (b *BaseHandler) RespondNotFound(c *gin.Context, message string) {
	b.RespondError(c, http.StatusNotFound, "not_found", message)
}

// RespondConflict sends a standardized conflict response
func (b *BaseHandler) RespondConflict(c *gin.Context, message string) {
	b.RespondError(c, http.StatusConflict, "conflict", message)
}

// RespondInternalError sends a standardized internal server error response
func (b *BaseHandler) RespondInternalError(c *gin.Context, message string, details ...string) {
	b.RespondError(c, http.StatusInternalServerError, "internal_error", message, details...)
}

// RespondSuccess sends a standardized success response
func (b *BaseHandler) RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a standardized created response
func (b *BaseHandler) RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// RespondNoContent ends a successful delete
func (b *BaseHandler) RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondPage sends one page of a list with its totals
func (b *BaseHandler) RespondPage(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, NewPaginatedResponse(data, total, page, pageSize))
}

// BindJSON binds the request body, answering 400 on failure
func (b *BaseHandler) BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		b.RespondBadRequest(c, "Invalid request format", err.Error())
		return false
	}
	return true
}

// ParsePagination extracts and validates pagination parameters
func (b *BaseHandler) ParsePagination(c *gin.Context) (page, pageSize int) {
	page = getIntParam(c, "page", 1)
	pageSize = getIntParam(c, "page_size", getIntParam(c, "per_page", b.config.DefaultPageSize))

	if page < 1 {
		page = 1
	}
	pageSize = b.config.ValidatePageSize(pageSize)

	return page, pageSize
}

// ParseListParams reads pagination, sorting and the free-text search term
func (b *BaseHandler) ParseListParams(c *gin.Context, defaultSortBy string) repositories.ListParams {
	page, pageSize := b.ParsePagination(c)
	sortBy, sortDesc := b.ParseSorting(c, defaultSortBy)
	return repositories.ListParams{
		Page:     page,
		PageSize: pageSize,
		SortBy:   sortBy,
		SortDesc: sortDesc,
		Search:   c.Query("search"),
	}
}

// ParseSorting extracts and validates sorting parameters
func (b *BaseHandler) ParseSorting(c *gin.Context, defaultSortBy string) (sortBy string, sortDesc bool) {
	sortBy = c.DefaultQuery("sort_by", defaultSortBy)
	sortDesc = c.DefaultQuery("sort_desc", "true") == "true"
	return sortBy, sortDesc
}

// ValidateUUID validates UUID parameter and responds with error if invalid
func (b *BaseHandler) ValidateUUID(c *gin.Context, paramName, uuidStr string) (uuid.UUID, bool) {
	id, err := uuid.Parse(uuidStr)
	if err != nil {
		b.RespondBadRequest(c, "Invalid "+paramName+" format")
		return uuid.Nil, false
	}
	return id, true
}

// PathUUID parses a UUID route parameter
func (b *BaseHandler) PathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	return b.ValidateUUID(c, param, c.Param(param))
}
