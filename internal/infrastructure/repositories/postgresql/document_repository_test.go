package postgresql

import (
	"context"
	"testing"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVersionOf(doc *models.Document, uploader uuid.UUID) *models.Document {
	return &models.Document{
		Name:             doc.Name,
		Type:             doc.Type,
		PropertyID:       doc.PropertyID,
		StoragePath:      doc.StoragePath + ".next",
		OriginalFilename: doc.OriginalFilename,
		FileSize:         doc.FileSize,
		AccessLevel:      doc.AccessLevel,
		Status:           models.DocStatusDraft,
		UploadedBy:       uploader,
	}
}

func TestDocumentRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestDocumentRepository_AppendVersion(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t, models.UserRolePM)
	root := db.CreateTestDocument(t, nil, user)

	v2 := newVersionOf(root, user.ID)
	require.NoError(t, repo.AppendVersion(ctx, root.ID, v2))
	assert.Equal(t, 2, v2.Version)
	require.NotNil(t, v2.ParentDocumentID)
	assert.Equal(t, root.ID, *v2.ParentDocumentID)
	assert.True(t, v2.IsLatestVersion)

	v3 := newVersionOf(root, user.ID)
	require.NoError(t, repo.AppendVersion(ctx, root.ID, v3))
	assert.Equal(t, 3, v3.Version)
	assert.Equal(t, root.ID, *v3.ParentDocumentID)

	chain, err := repo.ListChain(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{chain[0].Version, chain[1].Version, chain[2].Version})

	latest := 0
	for _, doc := range chain {
		if doc.IsLatestVersion {
			latest++
			assert.Equal(t, v3.ID, doc.ID)
		}
	}
	assert.Equal(t, 1, latest)
}

func TestDocumentRepository_AppendVersion_UnknownRoot(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	user := db.CreateTestUser(t, models.UserRolePM)

	doc := &models.Document{Name: "orphan", UploadedBy: user.ID}
	err := repo.AppendVersion(context.Background(), uuid.New(), doc)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestDocumentRepository_GetLatestInChain(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t, models.UserRolePM)
	root := db.CreateTestDocument(t, nil, user)

	latest, err := repo.GetLatestInChain(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, latest.ID)

	v2 := newVersionOf(root, user.ID)
	require.NoError(t, repo.AppendVersion(ctx, root.ID, v2))

	latest, err = repo.GetLatestInChain(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, latest.ID)

	_, err = repo.GetLatestInChain(ctx, uuid.New())
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestDocumentRepository_Delete_PromotesPreviousVersion(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t, models.UserRolePM)
	root := db.CreateTestDocument(t, nil, user)
	v2 := newVersionOf(root, user.ID)
	require.NoError(t, repo.AppendVersion(ctx, root.ID, v2))

	require.NoError(t, repo.Delete(ctx, v2.ID))

	latest, err := repo.GetLatestInChain(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, latest.ID)
	assert.True(t, latest.IsLatestVersion)

	assert.ErrorIs(t, repo.Delete(ctx, v2.ID), repositories.ErrRecordNotFound)
}

func TestDocumentRepository_Delete_RootKeepsChain(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t, models.UserRolePM)
	root := db.CreateTestDocument(t, nil, user)
	v2 := newVersionOf(root, user.ID)
	require.NoError(t, repo.AppendVersion(ctx, root.ID, v2))

	require.NoError(t, repo.Delete(ctx, root.ID))

	v3 := newVersionOf(v2, user.ID)
	require.NoError(t, repo.AppendVersion(ctx, root.ID, v3))
	assert.Equal(t, 3, v3.Version)
}

func TestDocumentRepository_Search(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t, models.UserRolePM)
	property := db.CreateTestProperty(t, user)

	permit := db.CreateTestDocument(t, property, user)
	permit.Name = "Building Permit Application"
	permit.Category = "permits"
	permit.Tags = models.StringList{"city", "electrical"}
	require.NoError(t, repo.Update(ctx, permit))

	archived := db.CreateTestDocument(t, property, user)
	archived.Name = "Old permit"
	archived.Category = "permits"
	archived.IsArchived = true
	require.NoError(t, repo.Update(ctx, archived))

	other := db.CreateTestDocument(t, property, user)
	other.Description = "Foundation PERMIT notes"
	require.NoError(t, repo.Update(ctx, other))

	t.Run("text and category exclude archived", func(t *testing.T) {
		docs, err := repo.Search(ctx, repositories.DocumentSearchQuery{Query: "permit", Category: "permits"})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, permit.ID, docs[0].ID)
	})

	t.Run("text matches description case-insensitively", func(t *testing.T) {
		docs, err := repo.Search(ctx, repositories.DocumentSearchQuery{Query: "PerMit"})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("archived opt-in", func(t *testing.T) {
		docs, err := repo.Search(ctx, repositories.DocumentSearchQuery{Query: "permit", IncludeArchived: true})
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})

	t.Run("every tag must match", func(t *testing.T) {
		docs, err := repo.Search(ctx, repositories.DocumentSearchQuery{Tags: []string{"city", "electrical"}})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, permit.ID, docs[0].ID)

		docs, err = repo.Search(ctx, repositories.DocumentSearchQuery{Tags: []string{"city", "plumbing"}})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("latest only unless all versions", func(t *testing.T) {
		v2 := newVersionOf(permit, user.ID)
		require.NoError(t, repo.AppendVersion(ctx, permit.ID, v2))

		docs, err := repo.Search(ctx, repositories.DocumentSearchQuery{Query: "building permit"})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, v2.ID, docs[0].ID)

		docs, err = repo.Search(ctx, repositories.DocumentSearchQuery{Query: "building permit", AllVersions: true})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})
}

func TestDocumentRepository_SearchTreatsWildcardsLiterally(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t, models.UserRolePM)
	property := db.CreateTestProperty(t, user)

	named := func(name string, tags ...string) *models.Document {
		doc := db.CreateTestDocument(t, property, user)
		doc.Name = name
		doc.Tags = models.StringList(tags)
		require.NoError(t, repo.Update(ctx, doc))
		return doc
	}
	named("Electrical Permit", "phaseX1")
	named("Kitchen Photo")
	odd := named(`100% complete_v2 \ final`, "phase_1")

	for _, term := range []string{"%", "_", "e_v", `\`} {
		t.Run("text "+term, func(t *testing.T) {
			docs, err := repo.Search(ctx, repositories.DocumentSearchQuery{Query: term})
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, odd.ID, docs[0].ID)
		})
	}

	t.Run("underscore is not a single-character wildcard", func(t *testing.T) {
		docs, err := repo.Search(ctx, repositories.DocumentSearchQuery{Query: "e_e"})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("tag match is literal", func(t *testing.T) {
		docs, err := repo.Search(ctx, repositories.DocumentSearchQuery{Tags: []string{"phase_1"}})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, odd.ID, docs[0].ID)

		docs, err = repo.Search(ctx, repositories.DocumentSearchQuery{Tags: []string{"%"}})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("limit and offset page in a stable order", func(t *testing.T) {
		all, err := repo.Search(ctx, repositories.DocumentSearchQuery{})
		require.NoError(t, err)
		require.Len(t, all, 3)

		first, err := repo.Search(ctx, repositories.DocumentSearchQuery{Limit: 2})
		require.NoError(t, err)
		rest, err := repo.Search(ctx, repositories.DocumentSearchQuery{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, first, 2)
		require.Len(t, rest, 1)
		assert.Equal(t, all[2].ID, rest[0].ID)
	})
}
