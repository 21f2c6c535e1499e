package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/pkg/logger"
	"github.com/google/uuid"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

const minPasswordLength = 8

// session hash fields
const (
	sessionUserID       = "user_id"
	sessionRefreshToken = "refresh_token"
	sessionIdPToken     = "idp_access_token"
)

// AuthServiceConfig holds session settings.
type AuthServiceConfig struct {
	SessionTTL  time.Duration
	DefaultRole models.UserRole
}

// AuthService links identity-provider logins to local users, our access
// tokens and the server-side sessions that allow silent refresh.
type AuthService struct {
	userRepo repositories.UserRepository
	idp      IdentityProvider
	tokens   TokenManager
	cache    CacheService
	recorder *Recorder
	logger   *logger.Logger
	config   AuthServiceConfig
	now      func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	idp IdentityProvider,
	tokens TokenManager,
	cache CacheService,
	recorder *Recorder,
	log *logger.Logger,
	config AuthServiceConfig,
) *AuthService {
	if config.SessionTTL <= 0 {
		config.SessionTTL = SessionDuration
	}
	if config.DefaultRole == "" {
		config.DefaultRole = models.UserRoleTeamMember
	}
	return &AuthService{
		userRepo: userRepo,
		idp:      idp,
		tokens:   tokens,
		cache:    cache,
		recorder: recorder,
		logger:   log,
		config:   config,
		now:      time.Now,
	}
}

type LoginParams struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is a freshly issued access token bound to a session.
type AuthResult struct {
	User             *models.User
	AccessToken      string
	Claims           *AccessClaims
	SessionID        string
	SessionExpiresAt time.Time
}

// Authentication is the outcome of verifying a request's credentials.
// Refreshed is set when an expired token was silently replaced.
type Authentication struct {
	User      *models.User
	Claims    *AccessClaims
	Refreshed *AuthResult
}

// Login authenticates at the identity provider and opens a session.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	email := normalizeEmail(params.Email)
	if email == "" || params.Password == "" {
		return nil, validationError("email and password are required")
	}

	session, err := s.idp.SignIn(ctx, email, params.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.upsertUser(ctx, session.Identity)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user account is inactive", ErrUnauthorized)
	}
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	result, err := s.openSession(ctx, user, session)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, Actor{UserID: user.ID, Role: user.Role, IPAddress: params.IPAddress, UserAgent: params.UserAgent}, Change{
		Action:      models.AuditLogin,
		EntityType:  "user",
		EntityID:    user.ID,
		Description: fmt.Sprintf("%s signed in", user.Email),
	})
	return result, nil
}

// Register creates the identity at the provider and the matching local user.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	email := normalizeEmail(params.Email)
	if !emailRegex.MatchString(email) {
		return nil, validationError("invalid email format")
	}
	if len(params.Password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if existing != nil && existing.ExternalID != "" {
		return nil, fmt.Errorf("%w: user already exists", ErrConflict)
	}

	identity, err := s.idp.SignUp(ctx, email, params.Password, map[string]interface{}{
		"first_name": params.FirstName,
		"last_name":  params.LastName,
	})
	if err != nil {
		return nil, err
	}
	if identity.FirstName == "" {
		identity.FirstName = params.FirstName
	}
	if identity.LastName == "" {
		identity.LastName = params.LastName
	}
	if identity.Email == "" {
		identity.Email = email
	}
	return s.upsertUser(ctx, *identity)
}

// Refresh rotates the provider credential held by the session and issues a new access token.
func (s *AuthService) Refresh(ctx context.Context, sessionID string) (*AuthResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: no session", ErrUnauthorized)
	}
	key := sessionKey(sessionID)
	fields, err := s.cache.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, fmt.Errorf("%w: session expired", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	refreshToken := fields[sessionRefreshToken]
	userID, err := uuid.Parse(fields[sessionUserID])
	if refreshToken == "" || err != nil {
		_ = s.cache.Delete(ctx, key)
		return nil, fmt.Errorf("%w: session has no refresh credential", ErrUnauthorized)
	}

	session, err := s.idp.Refresh(ctx, refreshToken)
	if err != nil {
		_ = s.cache.Delete(ctx, key)
		return nil, err
	}

	user, err := s.activeUser(ctx, userID)
	if err != nil {
		_ = s.cache.Delete(ctx, key)
		return nil, err
	}

	if err := s.cache.HSet(ctx, key, map[string]string{
		sessionRefreshToken: session.RefreshToken,
		sessionIdPToken:     session.AccessToken,
	}); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if err := s.cache.Expire(ctx, key, s.config.SessionTTL); err != nil {
		return nil, fmt.Errorf("failed to extend session: %w", err)
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:             user,
		AccessToken:      token,
		Claims:           claims,
		SessionID:        sessionID,
		SessionExpiresAt: s.now().Add(s.config.SessionTTL),
	}, nil
}

// Authenticate verifies an access token. An expired but well-signed token is
// refreshed through the session when one is given; everything else fails closed.
func (s *AuthService) Authenticate(ctx context.Context, rawToken, sessionID string) (*Authentication, error) {
	if rawToken == "" {
		if sessionID == "" {
			return nil, fmt.Errorf("%w: missing credentials", ErrUnauthorized)
		}
		return s.refreshAuthentication(ctx, sessionID, nil)
	}

	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		if claims != nil && claims.Expired && sessionID != "" {
			return s.refreshAuthentication(ctx, sessionID, claims)
		}
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	revoked, err := s.cache.Exists(ctx, revokedKey(claims.TokenID))
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", ErrUnauthorized)
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &Authentication{User: user, Claims: claims}, nil
}

func (s *AuthService) refreshAuthentication(ctx context.Context, sessionID string, expired *AccessClaims) (*Authentication, error) {
	result, err := s.Refresh(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if expired != nil && expired.UserID != result.User.ID {
		return nil, fmt.Errorf("%w: session does not match token", ErrUnauthorized)
	}
	return &Authentication{User: result.User, Claims: result.Claims, Refreshed: result}, nil
}

// Logout revokes the token until it expires and closes the session.
// Signing out at the provider is best effort.
func (s *AuthService) Logout(ctx context.Context, claims *AccessClaims, sessionID string) error {
	if claims != nil && claims.TokenID != "" {
		ttl := claims.ExpiresAt.Sub(s.now())
		if ttl > 0 {
			if _, err := s.cache.SetNX(ctx, revokedKey(claims.TokenID), "1", ttl); err != nil {
				return fmt.Errorf("failed to revoke token: %w", err)
			}
		}
	}
	if sessionID == "" {
		return nil
	}

	key := sessionKey(sessionID)
	fields, err := s.cache.HGetAll(ctx, key)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if idpToken := fields[sessionIdPToken]; idpToken != "" {
		if err := s.idp.SignOut(ctx, idpToken); err != nil {
			s.logger.Warn("identity provider sign-out failed", "error", err)
		}
	}
	return nil
}

// LogoutToken is Logout for a raw token; an expired token is still revoked and a malformed one is ignored.
func (s *AuthService) LogoutToken(ctx context.Context, rawToken, sessionID string) error {
	var claims *AccessClaims
	if rawToken != "" {
		claims, _ = s.tokens.Parse(rawToken)
	}
	return s.Logout(ctx, claims, sessionID)
}

// Me returns the active user behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.activeUser(ctx, userID)
}

func (s *AuthService) openSession(ctx context.Context, user *models.User, session *IdentitySession) (*AuthResult, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	sessionID, err := newSessionID()
	if err != nil {
		return nil, err
	}
	key := sessionKey(sessionID)
	if err := s.cache.HSet(ctx, key, map[string]string{
		sessionUserID:       user.ID.String(),
		sessionRefreshToken: session.RefreshToken,
		sessionIdPToken:     session.AccessToken,
	}); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.cache.Expire(ctx, key, s.config.SessionTTL); err != nil {
		return nil, fmt.Errorf("failed to set session expiry: %w", err)
	}

	return &AuthResult{
		User:             user,
		AccessToken:      token,
		Claims:           claims,
		SessionID:        sessionID,
		SessionExpiresAt: s.now().Add(s.config.SessionTTL),
	}, nil
}

// upsertUser finds the local user by provider subject, then by email, and
// creates one with the default role when neither matches.
func (s *AuthService) upsertUser(ctx context.Context, identity Identity) (*models.User, error) {
	email := normalizeEmail(identity.Email)

	var user *models.User
	err := repositories.ErrRecordNotFound
	if identity.Subject != "" {
		user, err = s.userRepo.GetByExternalID(ctx, identity.Subject)
	}
	if errors.Is(err, repositories.ErrRecordNotFound) && email != "" {
		user, err = s.userRepo.GetByEmail(ctx, email)
	}
	if err != nil && !errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		user = &models.User{
			ExternalID: identity.Subject,
			Email:      email,
			FirstName:  identity.FirstName,
			LastName:   identity.LastName,
			Role:       s.config.DefaultRole,
			IsActive:   true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}

	changed := false
	if user.ExternalID == "" && identity.Subject != "" {
		user.ExternalID = identity.Subject
		changed = true
	}
	if user.FirstName == "" && identity.FirstName != "" {
		user.FirstName = identity.FirstName
		changed = true
	}
	if user.LastName == "" && identity.LastName != "" {
		user.LastName = identity.LastName
		changed = true
	}
	if changed {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}
	return user, nil
}

func (s *AuthService) activeUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user account is inactive", ErrUnauthorized)
	}
	return user, nil
}

func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sessionKey(id string) string { return fmt.Sprintf(SessionKeyPattern, id) }

func revokedKey(jti string) string { return fmt.Sprintf(RevokedTokenKeyPattern, jti) }
