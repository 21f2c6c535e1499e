package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql/testutil"
)

func TestSeedDefaultFixturesIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	require.NoError(t, runMigrations(db.DB))

	fixtures, err := loadFixtures("")
	require.NoError(t, err)
	require.NoError(t, seedDatabase(db.DB, fixtures))
	require.NoError(t, seedDatabase(db.DB, fixtures))

	counts := map[string]int64{}
	for name, model := range map[string]interface{}{
		"users":      &models.User{},
		"vendors":    &models.Vendor{},
		"properties": &models.Property{},
		"members":    &models.PropertyMember{},
		"milestones": &models.Milestone{},
	} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		counts[name] = n
	}
	assert.Equal(t, map[string]int64{
		"users": 3, "vendors": 3, "properties": 1, "members": 3, "milestones": 3,
	}, counts)

	var owner models.PropertyMember
	require.NoError(t, db.Joins("JOIN users ON users.id = property_members.user_id").
		Where("users.email = ?", "owner@buildtrack.local").First(&owner).Error)
	assert.Equal(t, models.UserRoleOwner, owner.Role)

	var framing models.Milestone
	require.NoError(t, db.Where("title = ?", "Framing").First(&framing).Error)
	assert.Equal(t, 1, framing.SortOrder)
	assert.Equal(t, models.MilestoneInProgress, framing.Status)
}

func TestSeedFromFileRejectsUnknownOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
users:
  - {email: PM@Example.com, role: pm}
properties:
  - {name: Garage, address: 9 Oak Ave, owner_email: nobody@example.com}
`), 0o600))

	fixtures, err := loadFixtures(path)
	require.NoError(t, err)
	require.Len(t, fixtures.Users, 1)

	err = seedDatabase(db.DB, fixtures)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody@example.com")

	// the transaction rolled back the user as well
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestLoadFixturesMissingFile(t *testing.T) {
	_, err := loadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMaskDatabaseURL(t *testing.T) {
	masked := maskDatabaseURL("postgres://app:secret@db:5432/buildtrack")
	assert.NotContains(t, masked, "secret")
	assert.Contains(t, masked, "@db:5432/buildtrack")
	assert.Equal(t, "file:buildtrack.db", maskDatabaseURL("file:buildtrack.db"))
}
