package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Manager signs and verifies HS256 access tokens.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

var _ services.TokenManager = (*Manager)(nil)

func New(secret, issuer string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

type accessClaims struct {
	UserID uuid.UUID       `json:"uid"`
	Role   models.UserRole `json:"role"`
	Email  string          `json:"email"`
	jwt.RegisteredClaims
}

func (m *Manager) Issue(user *models.User) (string, *services.AccessClaims, error) {
	if user == nil {
		return "", nil, errors.New("user is required")
	}
	now := m.now().UTC()
	jti := uuid.NewString()

	cl := accessClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, toDomain(&cl, false), nil
}

// Parse verifies the signature. A well-signed token past its expiry is
// returned with Expired set alongside jwt.ErrTokenExpired.
func (m *Manager) Parse(raw string) (*services.AccessClaims, error) {
	var out accessClaims
	tkn, err := jwt.ParseWithClaims(raw, &out, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && out.ExpiresAt != nil {
			return toDomain(&out, true), err
		}
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return toDomain(&out, false), nil
}

func toDomain(cl *accessClaims, expired bool) *services.AccessClaims {
	out := &services.AccessClaims{
		TokenID: cl.ID,
		UserID:  cl.UserID,
		Role:    cl.Role,
		Email:   cl.Email,
		Expired: expired,
	}
	if cl.ExpiresAt != nil {
		out.ExpiresAt = cl.ExpiresAt.Time
	}
	return out
}
