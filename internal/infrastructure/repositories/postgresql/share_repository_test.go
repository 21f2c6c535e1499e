package postgresql

import (
	"context"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareRepository_GetByToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewShareRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t, models.UserRolePM)
	doc := db.CreateTestDocument(t, nil, user)

	token := "tok-abc"
	share := &models.DocumentShare{DocumentID: doc.ID, SharedBy: user.ID, ShareToken: &token, IsActive: true, CanDownload: true}
	require.NoError(t, repo.Create(ctx, share))

	found, err := repo.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, share.ID, found.ID)
	require.NotNil(t, found.Document)
	assert.Equal(t, doc.ID, found.Document.ID)

	_, err = repo.GetByToken(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestShareRepository_RecordAccess(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewShareRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t, models.UserRolePM)
	doc := db.CreateTestDocument(t, nil, user)
	token := "tok-count"
	share := &models.DocumentShare{DocumentID: doc.ID, SharedBy: user.ID, ShareToken: &token, IsActive: true}
	require.NoError(t, repo.Create(ctx, share))

	now := time.Now().UTC()
	require.NoError(t, repo.RecordAccess(ctx, share.ID, now))
	require.NoError(t, repo.RecordAccess(ctx, share.ID, now))

	found, err := repo.GetByID(ctx, share.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.AccessCount)
	assert.NotNil(t, found.LastAccessedAt)
}

func TestShareRepository_ListDocumentIDsSharedWith(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewShareRepository(db.DB)
	ctx := context.Background()

	owner := db.CreateTestUser(t, models.UserRolePM)
	viewer := db.CreateTestUser(t, models.UserRoleViewer)
	active := db.CreateTestDocument(t, nil, owner)
	expired := db.CreateTestDocument(t, nil, owner)
	revoked := db.CreateTestDocument(t, nil, owner)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, &models.DocumentShare{DocumentID: active.ID, SharedBy: owner.ID, SharedWithUserID: &viewer.ID, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &models.DocumentShare{DocumentID: expired.ID, SharedBy: owner.ID, SharedWithUserID: &viewer.ID, IsActive: true, ExpiresAt: &past}))
	require.NoError(t, repo.Create(ctx, &models.DocumentShare{DocumentID: revoked.ID, SharedBy: owner.ID, SharedWithUserID: &viewer.ID, IsActive: false}))

	ids, err := repo.ListDocumentIDsSharedWith(ctx, viewer.ID, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, active.ID, ids[0])
}
