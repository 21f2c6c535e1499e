package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/app/config"
	appservices "github.com/buildtrack/buildtrack/internal/app/services"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/cache"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/buildtrack/buildtrack/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopIdP struct{}

func (noopIdP) SignIn(context.Context, string, string) (*services.IdentitySession, error) {
	return nil, services.ErrUnauthorized
}

func (noopIdP) SignUp(context.Context, string, string, map[string]interface{}) (*services.Identity, error) {
	return nil, services.ErrUnauthorized
}

func (noopIdP) Refresh(context.Context, string) (*services.IdentitySession, error) {
	return nil, services.ErrUnauthorized
}

func (noopIdP) SignOut(context.Context, string) error { return nil }

func newTestServer(t *testing.T, rateLimit int) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Cleanup(t) })

	cfg := &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{PublicURL: "http://buildtrack.test", AllowedOrigins: []string{"http://app.buildtrack.test"}},
		JWT:         config.JWTConfig{Secret: "test-secret", Issuer: "buildtrack", AccessTTL: time.Minute, SessionTTL: time.Hour},
		Storage:     config.StorageConfig{Type: "local", Path: t.TempDir(), SigningKey: "k"},
		Limits:      config.LimitsConfig{RateLimit: rateLimit, RateLimitWindow: time.Minute},
	}
	log := logger.NewForTesting()
	sm, err := appservices.NewServiceManager(cfg, db.DB, log,
		appservices.WithCache(cache.NewMemoryCache()),
		appservices.WithIdentityProvider(noopIdP{}),
	)
	require.NoError(t, err)
	return New(cfg, log, sm)
}

func TestHealthAndStatus(t *testing.T) {
	srv := newTestServer(t, 0)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status["database"])
	assert.Equal(t, "healthy", status["cache"])
	assert.Equal(t, Version, status["version"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/properties", nil)
	req.Header.Set("Origin", "http://app.buildtrack.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.buildtrack.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRateLimitApplies(t *testing.T) {
	srv := newTestServer(t, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestLocalStorageMountsFileRoutes(t *testing.T) {
	srv := newTestServer(t, 0)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files/documents/x.pdf?expires=1&signature=bad", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
