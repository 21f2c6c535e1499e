package token

import (
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	u := &models.User{Email: "pm@example.com", Role: models.UserRolePM, IsActive: true}
	u.ID = uuid.New()
	return u
}

func TestManager_IssueAndParse(t *testing.T) {
	m := New("secret", "buildtrack", 15*time.Minute)
	user := testUser()

	raw, issued, err := m.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.UserRolePM, claims.Role)
	assert.Equal(t, "pm@example.com", claims.Email)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.False(t, claims.Expired)
}

func TestManager_ParseExpired(t *testing.T) {
	m := New("secret", "buildtrack", time.Minute)
	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }

	raw, _, err := m.Issue(testUser())
	require.NoError(t, err)

	m.now = time.Now
	claims, err := m.Parse(raw)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
	require.NotNil(t, claims)
	assert.True(t, claims.Expired)
}

func TestManager_ParseRejectsForeignSignature(t *testing.T) {
	raw, _, err := New("other", "buildtrack", time.Minute).Issue(testUser())
	require.NoError(t, err)

	claims, err := New("secret", "buildtrack", time.Minute).Parse(raw)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestManager_ParseRejectsWrongIssuer(t *testing.T) {
	raw, _, err := New("secret", "someone-else", time.Minute).Issue(testUser())
	require.NoError(t, err)

	_, err = New("secret", "buildtrack", time.Minute).Parse(raw)
	assert.Error(t, err)
}
