package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestGetAllModelsMigrate(t *testing.T) {
	db := openMemoryDB(t)

	require.NoError(t, db.AutoMigrate(GetAllModels()...))
	for _, model := range GetAllModels() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
}

func TestJSONColumnsRoundTrip(t *testing.T) {
	db := openMemoryDB(t)
	require.NoError(t, db.AutoMigrate(&AuditLog{}, &Document{}))

	entry := &AuditLog{
		UserID:     uuid.New(),
		Action:     AuditUpdate,
		EntityType: "document",
		EntityID:   uuid.New(),
		NewValues:  JSONB{"status": "approved"},
	}
	require.NoError(t, db.Create(entry).Error)

	var loaded AuditLog
	require.NoError(t, db.First(&loaded, "id = ?", entry.ID).Error)
	assert.Equal(t, "approved", loaded.NewValues["status"])
	assert.Nil(t, loaded.OldValues)

	doc := &Document{
		Name:             "Site plan",
		Type:             DocTypePlan,
		StoragePath:      "documents/2026/10/plan.pdf",
		OriginalFilename: "plan.pdf",
		Version:          1,
		IsLatestVersion:  true,
		AccessLevel:      AccessRestricted,
		AllowedUsers:     StringList{"a", "b"},
		Status:           DocStatusDraft,
		UploadedBy:       uuid.New(),
	}
	require.NoError(t, db.Create(doc).Error)

	var stored Document
	require.NoError(t, db.First(&stored, "id = ?", doc.ID).Error)
	assert.Equal(t, StringList{"a", "b"}, stored.AllowedUsers)
	assert.Equal(t, StringList{}, stored.Tags)
	assert.True(t, stored.AllowedUsers.Contains("b"))
}
