package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/auth/token"
	"github.com/buildtrack/buildtrack/internal/infrastructure/cache"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/buildtrack/buildtrack/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIdP accepts one password for every email and rotates refresh tokens.
type fakeIdP struct {
	password  string
	refreshes int
	signOuts  []string
	failNext  bool
}

func (f *fakeIdP) SignIn(_ context.Context, email, password string) (*services.IdentitySession, error) {
	if password != f.password {
		return nil, errors.Join(services.ErrUnauthorized, errors.New("invalid login credentials"))
	}
	return &services.IdentitySession{
		Identity:     services.Identity{Subject: "sub-" + email, Email: email, FirstName: "Pat"},
		AccessToken:  "idp-access",
		RefreshToken: "refresh-0",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeIdP) SignUp(_ context.Context, email, _ string, metadata map[string]interface{}) (*services.Identity, error) {
	first, _ := metadata["first_name"].(string)
	return &services.Identity{Subject: "sub-" + email, Email: email, FirstName: first}, nil
}

func (f *fakeIdP) Refresh(_ context.Context, refreshToken string) (*services.IdentitySession, error) {
	if f.failNext {
		return nil, services.ErrUnauthorized
	}
	f.refreshes++
	return &services.IdentitySession{
		AccessToken:  "idp-access-refreshed",
		RefreshToken: refreshToken + "+",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeIdP) SignOut(_ context.Context, accessToken string) error {
	f.signOuts = append(f.signOuts, accessToken)
	return nil
}

type authFixture struct {
	db    *testutil.TestDB
	repos *postgresql.Repositories
	idp   *fakeIdP
	cache *cache.MemoryCache
	svc   *services.AuthService
}

func newAuthFixture(t *testing.T, tokenTTL time.Duration) *authFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Cleanup(t) })

	repos := postgresql.NewRepositories(db.DB)
	idp := &fakeIdP{password: "correct-horse"}
	mem := cache.NewMemoryCache()
	log := logger.NewForTesting()
	svc := services.NewAuthService(
		repos.UserRepo, idp, token.New("test-secret", "buildtrack", tokenTTL), mem,
		services.NewRecorder(repos.ActivityRepo, repos.AuditRepo, log), log,
		services.AuthServiceConfig{SessionTTL: time.Hour},
	)
	return &authFixture{db: db, repos: repos, idp: idp, cache: mem, svc: svc}
}

func TestAuthService_LoginCreatesUserAndSession(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, time.Minute)

	result, err := f.svc.Login(ctx, services.LoginParams{Email: " New@Example.com ", Password: "correct-horse"})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", result.User.Email)
	assert.Equal(t, models.UserRoleTeamMember, result.User.Role)
	assert.Equal(t, "sub-new@example.com", result.User.ExternalID)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.SessionID)

	fields, err := f.cache.HGetAll(ctx, "session:"+result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID.String(), fields["user_id"])
	assert.Equal(t, "refresh-0", fields["refresh_token"])

	// second login reuses the row
	again, err := f.svc.Login(ctx, services.LoginParams{Email: "new@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, again.User.ID)
}

func TestAuthService_LoginLinksExistingUserByEmail(t *testing.T) {
	f := newAuthFixture(t, time.Minute)
	seeded := f.db.CreateTestUser(t, models.UserRolePM)
	seeded.ExternalID = ""
	require.NoError(t, f.repos.UserRepo.Update(context.Background(), seeded))

	result, err := f.svc.Login(context.Background(), services.LoginParams{Email: seeded.Email, Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, result.User.ID)
	assert.Equal(t, models.UserRolePM, result.User.Role)
	assert.Equal(t, "sub-"+seeded.Email, result.User.ExternalID)
}

func TestAuthService_LoginRejections(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, time.Minute)

	_, err := f.svc.Login(ctx, services.LoginParams{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = f.svc.Login(ctx, services.LoginParams{Email: "", Password: "x"})
	assert.ErrorIs(t, err, services.ErrValidation)

	inactive := f.db.CreateTestUser(t, models.UserRoleViewer)
	inactive.IsActive = false
	require.NoError(t, f.repos.UserRepo.Update(ctx, inactive))
	_, err = f.svc.Login(ctx, services.LoginParams{Email: inactive.Email, Password: "correct-horse"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, time.Minute)

	user, err := f.svc.Register(ctx, services.RegisterParams{Email: "crew@example.com", Password: "long-enough", FirstName: "Sam", LastName: "Lee"})
	require.NoError(t, err)
	assert.Equal(t, "Sam", user.FirstName)
	assert.Equal(t, "Lee", user.LastName)

	_, err = f.svc.Register(ctx, services.RegisterParams{Email: "crew@example.com", Password: "long-enough"})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = f.svc.Register(ctx, services.RegisterParams{Email: "not-an-email", Password: "long-enough"})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = f.svc.Register(ctx, services.RegisterParams{Email: "b@example.com", Password: "short"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestAuthService_AuthenticateValidToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, time.Minute)
	login, err := f.svc.Login(ctx, services.LoginParams{Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	auth, err := f.svc.Authenticate(ctx, login.AccessToken, "")
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, auth.User.ID)
	assert.Nil(t, auth.Refreshed)

	_, err = f.svc.Authenticate(ctx, "garbage", "")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = f.svc.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestAuthService_SilentRefresh(t *testing.T) {
	ctx := context.Background()
	// negative TTL issues tokens that are already expired
	f := newAuthFixture(t, -time.Minute)
	login, err := f.svc.Login(ctx, services.LoginParams{Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	t.Run("expired without session fails closed", func(t *testing.T) {
		_, err := f.svc.Authenticate(ctx, login.AccessToken, "")
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	})

	t.Run("expired with live session refreshes", func(t *testing.T) {
		auth, err := f.svc.Authenticate(ctx, login.AccessToken, login.SessionID)
		require.NoError(t, err)
		require.NotNil(t, auth.Refreshed)
		assert.Equal(t, login.User.ID, auth.User.ID)
		assert.NotEqual(t, login.AccessToken, auth.Refreshed.AccessToken)
		assert.Equal(t, 1, f.idp.refreshes)

		fields, err := f.cache.HGetAll(ctx, "session:"+login.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "refresh-0+", fields["refresh_token"], "refresh credential rotates")
	})

	t.Run("unknown session fails closed", func(t *testing.T) {
		_, err := f.svc.Authenticate(ctx, login.AccessToken, "no-such-session")
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	})

	t.Run("rejected refresh drops the session", func(t *testing.T) {
		f.idp.failNext = true
		_, err := f.svc.Authenticate(ctx, login.AccessToken, login.SessionID)
		assert.ErrorIs(t, err, services.ErrUnauthorized)

		exists, err := f.cache.Exists(ctx, "session:"+login.SessionID)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, time.Minute)
	login, err := f.svc.Login(ctx, services.LoginParams{Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, login.Claims, login.SessionID))

	_, err = f.svc.Authenticate(ctx, login.AccessToken, "")
	assert.ErrorIs(t, err, services.ErrUnauthorized, "revoked token is rejected")

	_, err = f.svc.Refresh(ctx, login.SessionID)
	assert.ErrorIs(t, err, services.ErrUnauthorized, "session is gone")
	assert.Equal(t, []string{"idp-access"}, f.idp.signOuts)
}
