package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/app/config"
	"github.com/buildtrack/buildtrack/internal/app/handlers"
	"github.com/buildtrack/buildtrack/internal/app/server"
	appservices "github.com/buildtrack/buildtrack/internal/app/services"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/cache"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/buildtrack/buildtrack/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery"

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeIdP accepts testPassword for every email.
type fakeIdP struct{}

func (fakeIdP) SignIn(_ context.Context, email, password string) (*services.IdentitySession, error) {
	if password != testPassword {
		return nil, errors.Join(services.ErrUnauthorized, errors.New("invalid login credentials"))
	}
	return &services.IdentitySession{
		Identity:     services.Identity{Subject: "sub-" + email, Email: email},
		AccessToken:  "idp-access",
		RefreshToken: "idp-refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (fakeIdP) SignUp(_ context.Context, email, _ string, metadata map[string]interface{}) (*services.Identity, error) {
	first, _ := metadata["first_name"].(string)
	return &services.Identity{Subject: "sub-" + email, Email: email, FirstName: first}, nil
}

func (fakeIdP) Refresh(_ context.Context, refreshToken string) (*services.IdentitySession, error) {
	return &services.IdentitySession{AccessToken: "idp-access", RefreshToken: refreshToken, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (fakeIdP) SignOut(context.Context, string) error { return nil }

type fakePermitLookup struct{}

func (fakePermitLookup) Lookup(_ context.Context, address, _ string) []services.PermitSuggestion {
	return []services.PermitSuggestion{{Name: "Building Permit", Authority: "City of " + address}}
}

type testAPI struct {
	router *gin.Engine
	db     *testutil.TestDB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Cleanup(t) })

	cfg := &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Port:           "8080",
			PublicURL:      "http://buildtrack.test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		JWT: config.JWTConfig{
			Secret:     "test-secret",
			Issuer:     "buildtrack",
			AccessTTL:  15 * time.Minute,
			SessionTTL: time.Hour,
		},
		Storage: config.StorageConfig{
			Type:       "local",
			Path:       t.TempDir(),
			SigningKey: "test-signing-key",
		},
		Documents: config.DocumentsConfig{PresignExpiry: 15 * time.Minute},
		Limits:    config.LimitsConfig{MaxFileSize: 1 << 20},
	}

	log := logger.NewForTesting()
	sm, err := appservices.NewServiceManager(cfg, db.DB, log,
		appservices.WithCache(cache.NewMemoryCache()),
		appservices.WithIdentityProvider(fakeIdP{}),
		appservices.WithPermitLookup(fakePermitLookup{}),
	)
	require.NoError(t, err)

	return &testAPI{router: server.New(cfg, log, sm).Router(), db: db}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// login creates a user with the given global role and returns it with an access token.
func (a *testAPI) login(t *testing.T, role models.UserRole) (*models.User, string) {
	t.Helper()
	user := a.db.CreateTestUser(t, role)
	w := a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": user.Email, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return user, resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestAuthLifecycle(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "New.User@Example.com", "password": testPassword, "first_name": "New", "last_name": "User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var info struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	decode(t, w, &info)
	assert.Equal(t, "new.user@example.com", info.Email)
	assert.Equal(t, string(models.UserRoleTeamMember), info.Role)

	w = api.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "new.user@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "new.user@example.com", "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &login)

	cookies := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c.HttpOnly
	}
	assert.True(t, cookies["st_access"])
	assert.True(t, cookies["st_session"])

	w = api.do(t, http.MethodGet, "/api/v1/auth/me", login.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/auth/logout", login.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/auth/me", login.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireAuthentication(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/api/v1/properties", "/api/v1/vendors", "/api/v1/documents", "/api/v1/activities"} {
		w := api.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := api.do(t, http.MethodGet, "/api/v1/properties", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPropertyTeamAndRecords(t *testing.T) {
	api := newTestAPI(t)
	_, pmToken := api.login(t, models.UserRolePM)
	crew, crewToken := api.login(t, models.UserRoleTeamMember)
	_, outsiderToken := api.login(t, models.UserRoleTeamMember)

	// team members cannot create projects
	w := api.do(t, http.MethodPost, "/api/v1/properties", crewToken, gin.H{"name": "Nope", "address": "1 Elm"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/properties", pmToken, gin.H{"name": "Maple Duplex", "address": "120 Maple St", "total_budget": 450000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var property models.Property
	decode(t, w, &property)
	assert.Equal(t, models.PropertyPlanning, property.Status)

	w = api.do(t, http.MethodPost, "/api/v1/properties/"+property.ID.String()+"/members", pmToken, gin.H{"user_id": crew.ID, "role": "team_member"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/api/v1/properties/"+property.ID.String(), crewToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(t, http.MethodGet, "/api/v1/properties/"+property.ID.String(), outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(t, http.MethodGet, "/api/v1/properties/not-a-uuid", pmToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var page handlers.PaginatedResponse
	w = api.do(t, http.MethodGet, "/api/v1/properties", outsiderToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Equal(t, int64(0), page.Total)

	for i, title := range []string{"Foundation", "Framing", "Roofing"} {
		w = api.do(t, http.MethodPost, "/api/v1/milestones", pmToken, gin.H{"property_id": property.ID, "title": title, "sort_order": i})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = api.do(t, http.MethodGet, "/api/v1/properties/"+property.ID.String()+"/milestones?page=2&page_size=2", crewToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var milestones struct {
		Data       []models.Milestone `json:"data"`
		Total      int64              `json:"total"`
		TotalPages int                `json:"total_pages"`
	}
	decode(t, w, &milestones)
	assert.Equal(t, int64(3), milestones.Total)
	assert.Equal(t, 2, milestones.TotalPages)
	require.Len(t, milestones.Data, 1)
	assert.Equal(t, "Roofing", milestones.Data[0].Title)

	w = api.do(t, http.MethodGet, "/api/v1/properties/"+property.ID.String()+"/dashboard", pmToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/activities?property_id="+property.ID.String(), pmToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.NotZero(t, page.Total)
}

func TestPermitLookup(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.login(t, models.UserRolePM)

	w := api.do(t, http.MethodPost, "/api/v1/permits/lookup", token, gin.H{"address": "Portland", "scope_of_work": "deck addition"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result services.PermitLookupResult
	decode(t, w, &result)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "City of Portland", result.Suggestions[0].Authority)

	w = api.do(t, http.MethodPost, "/api/v1/permits/lookup", token, gin.H{"address": "Portland"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func uploadDocument(t *testing.T, api *testAPI, token string, property *models.Property, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Framing plan"))
	require.NoError(t, mw.WriteField("category", "plans"))
	require.NoError(t, mw.WriteField("property_id", property.ID.String()))

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func TestDocumentUploadAndSignedDownload(t *testing.T) {
	api := newTestAPI(t)
	pm, token := api.login(t, models.UserRolePM)
	property := api.db.CreateTestProperty(t, pm)

	w := uploadDocument(t, api, token, property, "framing.pdf", "%PDF framing plan")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc models.Document
	decode(t, w, &doc)
	assert.Equal(t, 1, doc.Version)
	assert.True(t, doc.IsLatestVersion)
	assert.NotEmpty(t, doc.Checksum)

	w = api.do(t, http.MethodGet, "/api/v1/documents?search=framing&category=plans", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Data  []models.Document `json:"data"`
		Total int64             `json:"total"`
	}
	decode(t, w, &page)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, doc.ID, page.Data[0].ID)

	w = api.do(t, http.MethodGet, "/api/v1/documents/"+doc.ID.String()+"/download?stream=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF framing plan", w.Body.String())

	w = api.do(t, http.MethodGet, "/api/v1/documents/"+doc.ID.String()+"/download", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var download struct {
		DownloadURL string `json:"download_url"`
	}
	decode(t, w, &download)
	signed, err := url.Parse(download.DownloadURL)
	require.NoError(t, err)
	assert.Equal(t, "buildtrack.test", signed.Host)

	// the signed URL alone is enough, no session needed
	w = api.do(t, http.MethodGet, signed.RequestURI(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF framing plan", w.Body.String())

	q := signed.Query()
	q.Set("signature", "deadbeef")
	signed.RawQuery = q.Encode()
	w = api.do(t, http.MethodGet, signed.RequestURI(), "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDocumentAccessDeniedOutsideTeam(t *testing.T) {
	api := newTestAPI(t)
	pm, pmToken := api.login(t, models.UserRolePM)
	_, outsiderToken := api.login(t, models.UserRoleContractor)
	property := api.db.CreateTestProperty(t, pm)

	w := uploadDocument(t, api, pmToken, property, "contract.pdf", "%PDF contract")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc models.Document
	decode(t, w, &doc)

	w = api.do(t, http.MethodGet, "/api/v1/documents/"+doc.ID.String(), outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// listings filter instead of failing
	w = api.do(t, http.MethodGet, "/api/v1/documents", outsiderToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page handlers.PaginatedResponse
	decode(t, w, &page)
	assert.Equal(t, int64(0), page.Total)
}

func TestErrorResponseShape(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.login(t, models.UserRolePM)

	w := api.do(t, http.MethodGet, "/api/v1/vendors/00000000-0000-0000-0000-000000000001", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp handlers.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.NotEmpty(t, resp.Error)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
