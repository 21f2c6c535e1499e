package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// TestDB wraps the database for testing
type TestDB struct {
	*database.DB
}

// NewTestDB creates a new test database connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	// Use DATABASE_URL_TEST if available (for Docker), otherwise a private SQLite memory database
	databaseURL := os.Getenv("DATABASE_URL_TEST")
	if databaseURL == "" {
		databaseURL = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	} else {
		t.Logf("Using PostgreSQL database for testing: %s", databaseURL)
	}

	db, err := database.New(databaseURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Auto-migrate all models
	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDB{DB: db}
}

// Cleanup closes the test database
func (db *TestDB) Cleanup(t *testing.T) {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Errorf("Failed to close test database: %v", err)
	}
}

// CreateTestUser creates an active user with the given global role
func (db *TestDB) CreateTestUser(t *testing.T, role models.UserRole) *models.User {
	t.Helper()

	suffix := uuid.New().String()[:8]
	user := &models.User{
		ExternalID: "idp-" + suffix,
		Email:      fmt.Sprintf("test-%s@example.com", suffix),
		FirstName:  "Test",
		LastName:   "User",
		Role:       role,
		IsActive:   true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestProperty creates a property owned by owner
func (db *TestDB) CreateTestProperty(t *testing.T, owner *models.User) *models.Property {
	t.Helper()

	property := &models.Property{
		Name:    fmt.Sprintf("Test Property %s", uuid.New().String()[:8]),
		Address: "1 Main St",
		City:    "Springfield",
		Status:  models.PropertyActive,
		OwnerID: owner.ID,
	}

	if err := db.Create(property).Error; err != nil {
		t.Fatalf("Failed to create test property: %v", err)
	}

	return property
}

// AddTestMember adds user to property with role
func (db *TestDB) AddTestMember(t *testing.T, property *models.Property, user *models.User, role models.UserRole) *models.PropertyMember {
	t.Helper()

	member := &models.PropertyMember{
		PropertyID: property.ID,
		UserID:     user.ID,
		Role:       role,
	}

	if err := db.Create(member).Error; err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}

	return member
}

// CreateTestDocument creates a version-1 draft document; property may be nil
func (db *TestDB) CreateTestDocument(t *testing.T, property *models.Property, user *models.User) *models.Document {
	t.Helper()

	suffix := uuid.New().String()[:8]
	document := &models.Document{
		Name:             "Test Document " + suffix,
		Type:             models.DocTypeOther,
		StoragePath:      "documents/test/" + suffix + ".pdf",
		OriginalFilename: "test-document.pdf",
		FileSize:         1024,
		MimeType:         "application/pdf",
		Checksum:         "hash-" + suffix,
		Version:          1,
		IsLatestVersion:  true,
		AccessLevel:      models.AccessProjectTeam,
		Status:           models.DocStatusDraft,
		UploadedBy:       user.ID,
	}
	if property != nil {
		document.PropertyID = &property.ID
	}

	if err := db.Create(document).Error; err != nil {
		t.Fatalf("Failed to create test document: %v", err)
	}

	return document
}
