package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/infrastructure/cache"
	"github.com/buildtrack/buildtrack/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 10, 0, time.UTC)
	router := gin.New()
	router.Use(rateLimit(cache.NewMemoryCache(), 2, time.Minute, logger.NewForTesting(), func() time.Time { return now }))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "50", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	// next window starts a fresh count
	now = now.Add(time.Minute)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(cache.NewMemoryCache(), 0, time.Minute, logger.NewForTesting()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "client-supplied", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "client-supplied", w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	router := gin.New()
	router.GET("/anon", RequireRoles("owner"), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/viewer", func(c *gin.Context) {
		SetUserContext(c, &UserContext{Role: "viewer"})
	}, RequireRoles("owner", "pm"), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/pm", func(c *gin.Context) {
		SetUserContext(c, &UserContext{Role: "pm"})
	}, RequireRoles("owner", "pm"), func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := map[string]int{
		"/anon":   http.StatusUnauthorized,
		"/viewer": http.StatusForbidden,
		"/pm":     http.StatusOK,
	}
	for path, want := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}
