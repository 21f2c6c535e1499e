package handlers

import (
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// UserHandler handles user management operations
type UserHandler struct {
	*BaseHandler
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(base *BaseHandler, userService *services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
}

// UpdateRoleRequest represents a role change request
type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required,oneof=owner pm team_member contractor viewer"`
}

// RegisterRoutes sets up the user management routes
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.PUT("/me", h.UpdateProfile)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id/role", h.UpdateUserRole)
		users.POST("/:id/activate", h.ActivateUser)
		users.POST("/:id/deactivate", h.DeactivateUser)
	}
}

// ListUsers lists users for staffing projects
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} PaginatedResponse
// @Failure 403 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	params := h.ParseListParams(c, "created_at")
	users, total, err := h.userService.ListUsers(c.Request.Context(), actor, params)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondPage(c, users, total, params.Page, params.PageSize)
}

// GetUser returns a single user
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, user)
}

// UpdateProfile updates the current user's name
// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile update"
// @Success 200 {object} models.User
// @Router /users/me [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), actor, services.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, user)
}

// UpdateUserRole changes a user's global role
// @Summary Update user role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UpdateRoleRequest true "New role"
// @Success 200 {object} models.User
// @Router /users/{id}/role [put]
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), actor, id, req.Role)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, user)
}

// ActivateUser re-enables sign-in for a user
// @Summary Activate user
// @Tags users
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Router /users/{id}/activate [post]
func (h *UserHandler) ActivateUser(c *gin.Context) {
	h.updateUserStatus(c, true)
}

// DeactivateUser disables sign-in for a user
// @Summary Deactivate user
// @Tags users
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Router /users/{id}/deactivate [post]
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	h.updateUserStatus(c, false)
}

func (h *UserHandler) updateUserStatus(c *gin.Context, isActive bool) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.SetActive(c.Request.Context(), actor, id, isActive)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, user)
}
