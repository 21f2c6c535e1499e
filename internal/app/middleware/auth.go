package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Cookie names carrying the access token and the server-side session id.
const (
	AccessCookie  = "st_access"
	SessionCookie = "st_session"
)

// UserContext holds user information extracted from the access token
type UserContext struct {
	UserID   uuid.UUID              `json:"user_id"`
	Email    string                 `json:"email"`
	Role     models.UserRole        `json:"role"`
	IsActive bool                   `json:"is_active"`
	Claims   *services.AccessClaims `json:"-"`
}

// CookieConfig controls how auth cookies are written.
type CookieConfig struct {
	Domain string
	Secure bool
}

// SetAuthCookies writes the access token and session cookies, both HttpOnly.
func SetAuthCookies(c *gin.Context, cfg CookieConfig, result *services.AuthResult) {
	c.SetSameSite(http.SameSiteLaxMode)
	accessAge := int(time.Until(result.Claims.ExpiresAt).Seconds())
	sessionAge := int(time.Until(result.SessionExpiresAt).Seconds())
	// The access cookie outlives the token so an expired token can still be refreshed.
	if accessAge < sessionAge {
		accessAge = sessionAge
	}
	c.SetCookie(AccessCookie, result.AccessToken, accessAge, "/", cfg.Domain, cfg.Secure, true)
	c.SetCookie(SessionCookie, result.SessionID, sessionAge, "/", cfg.Domain, cfg.Secure, true)
}

// ClearAuthCookies expires both auth cookies.
func ClearAuthCookies(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", cfg.Domain, cfg.Secure, true)
	c.SetCookie(SessionCookie, "", -1, "/", cfg.Domain, cfg.Secure, true)
}

// BearerToken reads the Authorization header, falling back to the access cookie.
func BearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	token, _ := c.Cookie(AccessCookie)
	return token
}

// SessionID returns the session cookie, if any.
func SessionID(c *gin.Context) string {
	id, _ := c.Cookie(SessionCookie)
	return id
}

// AuthMiddleware verifies the access token and refreshes it silently through the session when it has expired.
func AuthMiddleware(authService *services.AuthService, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, err := authService.Authenticate(c.Request.Context(), BearerToken(c), SessionID(c))
		if err != nil {
			status, code := http.StatusUnauthorized, "unauthorized"
			if !errors.Is(err, services.ErrUnauthorized) {
				status, code = http.StatusInternalServerError, "internal_error"
			}
			if status == http.StatusUnauthorized {
				ClearAuthCookies(c, cookies)
			}
			c.AbortWithStatusJSON(status, gin.H{
				"error":   code,
				"message": "Authentication required",
				"status":  status,
			})
			return
		}

		if auth.Refreshed != nil {
			SetAuthCookies(c, cookies, auth.Refreshed)
			c.Header("X-Access-Token", auth.Refreshed.AccessToken)
		}

		SetUserContext(c, &UserContext{
			UserID:   auth.User.ID,
			Email:    auth.User.Email,
			Role:     auth.User.Role,
			IsActive: auth.User.IsActive,
			Claims:   auth.Claims,
		})
		c.Next()
	}
}

// RequireRoles lets only users with one of the global roles through.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx := GetUserContext(c)
		if userCtx == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User must be authenticated",
				"status":  http.StatusUnauthorized,
			})
			return
		}
		for _, role := range roles {
			if userCtx.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "access_denied",
			"message": "Insufficient role for this operation",
			"status":  http.StatusForbidden,
		})
	}
}

// SetUserContext stores the authenticated user on the request.
func SetUserContext(c *gin.Context, userCtx *UserContext) {
	c.Set("user", userCtx)
	c.Set("user_id", userCtx.UserID)
	c.Set("user_role", userCtx.Role)
}

// GetUserContext retrieves user context from gin context
func GetUserContext(c *gin.Context) *UserContext {
	if userCtx, exists := c.Get("user"); exists {
		if user, ok := userCtx.(*UserContext); ok {
			return user
		}
	}
	return nil
}

// GetUserID retrieves user ID from gin context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
