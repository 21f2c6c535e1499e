package handlers

import (
	"net/http"

	"github.com/buildtrack/buildtrack/internal/app/middleware"
	"github.com/buildtrack/buildtrack/internal/domain/dto"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles login, registration and session lifecycle
type AuthHandler struct {
	*BaseHandler
	authService *services.AuthService
	cookies     middleware.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(base *BaseHandler, authService *services.AuthService, cookies middleware.CookieConfig) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
		cookies:     cookies,
	}
}

// RegisterRoutes sets up the public authentication routes
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
	}
}

// RegisterProtectedRoutes sets up the authentication routes that need a user
func (h *AuthHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.GET("/auth/me", h.Me)
}

func (h *AuthHandler) loginResponse(result *services.AuthResult) dto.LoginResponse {
	return dto.LoginResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.Claims.ExpiresAt,
		User:        dto.NewUserInfo(result.User),
	}
}

// Register creates an account at the identity provider and locally
// @Summary Register user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.UserInfo
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, dto.NewUserInfo(user))
}

// Login authenticates the user and sets the session cookies
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginParams{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	middleware.SetAuthCookies(c, h.cookies, result)
	h.RespondSuccess(c, h.loginResponse(result))
}

// Refresh issues a new access token from the session cookie
// @Summary Refresh access token
// @Tags auth
// @Produce json
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	result, err := h.authService.Refresh(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		middleware.ClearAuthCookies(c, h.cookies)
		h.RespondServiceError(c, err)
		return
	}

	middleware.SetAuthCookies(c, h.cookies, result)
	h.RespondSuccess(c, h.loginResponse(result))
}

// Logout revokes the presented token and closes the session
// @Summary Logout user
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.authService.LogoutToken(c.Request.Context(), middleware.BearerToken(c), middleware.SessionID(c))
	middleware.ClearAuthCookies(c, h.cookies)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the authenticated user's profile
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserInfo
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), actor.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, dto.NewUserInfo(user))
}
