package services_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/auth/password"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/buildtrack/buildtrack/internal/infrastructure/storage/local"
	"github.com/buildtrack/buildtrack/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type documentFixture struct {
	db       *testutil.TestDB
	repos    *postgresql.Repositories
	svc      *services.DocumentService
	pm       *models.User
	property *models.Property
	actor    services.Actor
}

func newDocumentFixture(t *testing.T, requireReview bool) *documentFixture {
	t.Helper()
	return newDocumentFixtureWithConfig(t, services.DocumentServiceConfig{
		MaxFileSize:   1 << 20,
		RequireReview: requireReview,
		PresignExpiry: time.Minute,
	})
}

func newDocumentFixtureWithConfig(t *testing.T, cfg services.DocumentServiceConfig) *documentFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Cleanup(t) })

	repos := postgresql.NewRepositories(db.DB)
	log := logger.NewForTesting()
	access := services.NewAccessResolver(repos.PropertyRepo, repos.MemberRepo, repos.ShareRepo)
	svc := services.NewDocumentService(services.DocumentServiceDeps{
		DocumentRepo: repos.DocumentRepo,
		CommentRepo:  repos.DocumentCommentRepo,
		ShareRepo:    repos.ShareRepo,
		UserRepo:     repos.UserRepo,
		PropertyRepo: repos.PropertyRepo,
		Access:       access,
		Storage:      local.NewStorageService(t.TempDir(), "http://buildtrack.test/api/v1/files", "signing-key"),
		Hasher:       password.NewDefault(),
		Recorder:     services.NewRecorder(repos.ActivityRepo, repos.AuditRepo, log),
		Logger:       log,
	}, cfg)

	pm := db.CreateTestUser(t, models.UserRolePM)
	property := db.CreateTestProperty(t, pm)
	return &documentFixture{
		db:       db,
		repos:    repos,
		svc:      svc,
		pm:       pm,
		property: property,
		actor:    services.Actor{UserID: pm.ID, Role: pm.Role},
	}
}

func (f *documentFixture) upload(t *testing.T, name, category, content string) *models.Document {
	t.Helper()
	doc, err := f.svc.UploadDocument(context.Background(), f.actor, services.UploadDocumentParams{
		DocumentAttributes: services.DocumentAttributes{Name: name, Category: category, PropertyID: &f.property.ID},
		Filename:           strings.ReplaceAll(strings.ToLower(name), " ", "-") + ".pdf",
		ContentType:        "application/pdf",
		Size:               int64(len(content)),
		Content:            strings.NewReader(content),
	})
	require.NoError(t, err)
	return doc
}

func versionParams(n int) services.CreateVersionParams {
	return services.CreateVersionParams{
		FileAttributes: services.FileAttributes{
			StoragePath:      fmt.Sprintf("documents/2026/10/v%d.pdf", n),
			OriginalFilename: fmt.Sprintf("plan-v%d.pdf", n),
			FileSize:         100,
			MimeType:         "application/pdf",
		},
		VersionNotes: fmt.Sprintf("revision %d", n),
	}
}

func latestCount(chain []models.Document) int {
	n := 0
	for _, d := range chain {
		if d.IsLatestVersion {
			n++
		}
	}
	return n
}

func TestDocumentService_UploadStoresAndHashes(t *testing.T) {
	f := newDocumentFixture(t, false)
	ctx := context.Background()

	doc := f.upload(t, "Site Survey", "surveys", "survey contents")
	assert.Equal(t, 1, doc.Version)
	assert.True(t, doc.IsLatestVersion)
	assert.Equal(t, models.DocStatusDraft, doc.Status)
	assert.Equal(t, models.AccessProjectTeam, doc.AccessLevel)
	assert.Len(t, doc.Checksum, 64)
	assert.True(t, strings.HasPrefix(doc.StoragePath, "documents/"))

	reader, _, err := f.svc.OpenContent(ctx, f.actor, doc.ID)
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "survey contents", string(data))
}

func TestDocumentService_UploadRejectsInvalidFiles(t *testing.T) {
	f := newDocumentFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.UploadDocument(ctx, f.actor, services.UploadDocumentParams{
		Filename: "empty.pdf", ContentType: "application/pdf", Size: 0, Content: strings.NewReader(""),
	})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = f.svc.UploadDocument(ctx, f.actor, services.UploadDocumentParams{
		Filename: "huge.pdf", ContentType: "application/pdf", Size: 2 << 20, Content: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = f.svc.CreateDocument(ctx, f.actor, services.CreateDocumentParams{
		FileAttributes: services.FileAttributes{StoragePath: "../etc/passwd", OriginalFilename: "passwd"},
	})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestDocumentService_VersionChainHasOneLatest(t *testing.T) {
	f := newDocumentFixture(t, false)
	ctx := context.Background()

	root := f.upload(t, "Floor Plan", "plans", "v1")
	v2, err := f.svc.CreateVersion(ctx, f.actor, root.ID, versionParams(2))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	require.NotNil(t, v2.ParentDocumentID)
	assert.Equal(t, root.ID, *v2.ParentDocumentID)
	assert.Equal(t, "Floor Plan", v2.Name)

	v3, err := f.svc.CreateVersion(ctx, f.actor, v2.ID, versionParams(3))
	require.NoError(t, err)
	assert.Equal(t, 3, v3.Version)

	// appending through a middle version still extends the end of the chain
	v4, err := f.svc.CreateVersion(ctx, f.actor, v2.ID, versionParams(4))
	require.NoError(t, err)
	assert.Equal(t, 4, v4.Version)
	assert.Equal(t, root.ID, *v4.ParentDocumentID)

	chain, err := f.svc.GetVersionHistory(ctx, f.actor, root.ID)
	require.NoError(t, err)
	require.Len(t, chain, 4)
	assert.Equal(t, 1, latestCount(chain))
	assert.Equal(t, 4, chain[0].Version)

	latest, err := f.svc.GetLatestVersion(ctx, f.actor, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, v4.ID, latest.ID)

	// search returns only the latest row by default
	docs, total, err := f.svc.SearchDocuments(ctx, f.actor, services.SearchParams{
		DocumentSearchQuery: repositories.DocumentSearchQuery{Query: "floor"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, v4.ID, docs[0].ID)
}

func TestDocumentService_SearchFiltersAndArchive(t *testing.T) {
	f := newDocumentFixture(t, false)
	ctx := context.Background()

	permit := f.upload(t, "Electrical Permit", "permits", "a")
	f.upload(t, "Plumbing Permit", "inspections", "b")
	f.upload(t, "Kitchen Photo", "photos", "c")

	docs, total, err := f.svc.SearchDocuments(ctx, f.actor, services.SearchParams{
		DocumentSearchQuery: repositories.DocumentSearchQuery{Query: "permit"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, docs, 2)

	docs, total, err = f.svc.SearchDocuments(ctx, f.actor, services.SearchParams{
		DocumentSearchQuery: repositories.DocumentSearchQuery{Query: "PERMIT", Category: "permits"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, permit.ID, docs[0].ID)

	_, err = f.svc.Archive(ctx, f.actor, permit.ID, "")
	assert.ErrorIs(t, err, services.ErrValidation)

	archived, err := f.svc.Archive(ctx, f.actor, permit.ID, "superseded by county form")
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.NotNil(t, archived.ArchivedAt)
	assert.Equal(t, models.DocStatusDraft, archived.Status)

	_, err = f.svc.Archive(ctx, f.actor, permit.ID, "again")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, total, err = f.svc.SearchDocuments(ctx, f.actor, services.SearchParams{
		DocumentSearchQuery: repositories.DocumentSearchQuery{Query: "permit"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = f.svc.SearchDocuments(ctx, f.actor, services.SearchParams{
		DocumentSearchQuery: repositories.DocumentSearchQuery{Query: "permit", IncludeArchived: true},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	got, err := f.svc.GetDocument(ctx, f.actor, permit.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)
}

func TestDocumentService_ApproveWithoutReviewGuard(t *testing.T) {
	f := newDocumentFixture(t, false)
	ctx := context.Background()

	doc := f.upload(t, "Contract", "contracts", "terms")
	approved, err := f.svc.Approve(ctx, f.actor, doc.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, f.pm.ID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
}

func TestDocumentService_ReviewGuard(t *testing.T) {
	f := newDocumentFixture(t, true)
	ctx := context.Background()

	doc := f.upload(t, "Contract", "contracts", "terms")
	_, err := f.svc.Approve(ctx, f.actor, doc.ID, "")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = f.svc.Reject(ctx, f.actor, doc.ID, "")
	assert.ErrorIs(t, err, services.ErrValidation)

	inReview, err := f.svc.SubmitForReview(ctx, f.actor, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusReview, inReview.Status)

	rejected, err := f.svc.Reject(ctx, f.actor, doc.ID, "missing signature page")
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusRejected, rejected.Status)
	assert.Equal(t, "missing signature page", rejected.ReviewComments)

	_, err = f.svc.SubmitForReview(ctx, f.actor, doc.ID)
	require.NoError(t, err)
	approved, err := f.svc.Approve(ctx, f.actor, doc.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusApproved, approved.Status)
}

func TestDocumentService_AccessLevels(t *testing.T) {
	f := newDocumentFixture(t, false)
	ctx := context.Background()

	crew := f.db.CreateTestUser(t, models.UserRoleTeamMember)
	f.db.AddTestMember(t, f.property, crew, models.UserRoleTeamMember)
	outsider := f.db.CreateTestUser(t, models.UserRoleContractor)
	crewActor := services.Actor{UserID: crew.ID, Role: crew.Role}
	outsiderActor := services.Actor{UserID: outsider.ID, Role: outsider.Role}

	teamDoc := f.upload(t, "Schedule", "schedules", "s")
	_, err := f.svc.GetDocument(ctx, crewActor, teamDoc.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetDocument(ctx, outsiderActor, teamDoc.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	restricted, err := f.svc.UploadDocument(ctx, f.actor, services.UploadDocumentParams{
		DocumentAttributes: services.DocumentAttributes{
			Name:         "Payroll",
			PropertyID:   &f.property.ID,
			AccessLevel:  models.AccessRestricted,
			AllowedUsers: []string{outsider.ID.String()},
		},
		Filename:    "payroll.pdf",
		ContentType: "application/pdf",
		Size:        1,
		Content:     strings.NewReader("p"),
	})
	require.NoError(t, err)

	_, err = f.svc.GetDocument(ctx, outsiderActor, restricted.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetDocument(ctx, crewActor, restricted.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	// the outsider's listing holds only what they may read
	docs, total, err := f.svc.SearchDocuments(ctx, outsiderActor, services.SearchParams{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, restricted.ID, docs[0].ID)

	// team members cannot approve
	_, err = f.svc.Approve(ctx, crewActor, teamDoc.ID, "")
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestDocumentService_PublicLinkShare(t *testing.T) {
	f := newDocumentFixture(t, false)
	ctx := context.Background()

	doc := f.upload(t, "Inspection Report", "inspections", "report")
	past := time.Now().Add(-time.Hour)
	_, err := f.svc.CreateShare(ctx, f.actor, doc.ID, services.CreateShareParams{ExpiresAt: &past})
	assert.ErrorIs(t, err, services.ErrValidation)

	share, err := f.svc.CreateShare(ctx, f.actor, doc.ID, services.CreateShareParams{
		CanDownload: true,
		Password:    "open-sesame",
	})
	require.NoError(t, err)
	require.NotNil(t, share.ShareToken)
	assert.NotEqual(t, "open-sesame", share.PasswordHash)

	_, err = f.svc.AccessShare(ctx, *share.ShareToken, "wrong")
	assert.ErrorIs(t, err, services.ErrForbidden)

	opened, err := f.svc.AccessShare(ctx, *share.ShareToken, "open-sesame")
	require.NoError(t, err)
	assert.Equal(t, 1, opened.AccessCount)
	assert.NotNil(t, opened.LastAccessedAt)

	url, err := f.svc.ShareDownloadURL(ctx, opened)
	require.NoError(t, err)
	assert.Contains(t, url, doc.StoragePath)

	_, err = f.svc.RevokeShare(ctx, f.actor, share.ID)
	require.NoError(t, err)
	_, err = f.svc.AccessShare(ctx, *share.ShareToken, "open-sesame")
	assert.ErrorIs(t, err, services.ErrNotFound)

	shares, err := f.svc.ListShares(ctx, f.actor, doc.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.False(t, shares[0].IsActive)
}

func TestDocumentService_CommentThreads(t *testing.T) {
	f := newDocumentFixture(t, false)
	ctx := context.Background()

	doc := f.upload(t, "Elevations", "plans", "e")
	other := f.upload(t, "Sections", "plans", "s")

	root, err := f.svc.AddComment(ctx, f.actor, doc.ID, services.AddCommentParams{
		Content:    "North wall height?",
		Annotation: map[string]interface{}{"page": 2},
	})
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, f.actor, doc.ID, services.AddCommentParams{Content: "Confirmed at 9ft", ParentCommentID: &root.ID})
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, f.actor, other.ID, services.AddCommentParams{Content: "wrong doc", ParentCommentID: &root.ID})
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = f.svc.AddComment(ctx, f.actor, doc.ID, services.AddCommentParams{Content: "  "})
	assert.ErrorIs(t, err, services.ErrValidation)

	comments, err := f.svc.ListComments(ctx, f.actor, doc.ID)
	require.NoError(t, err)
	tree := services.BuildCommentTree(comments)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, "Confirmed at 9ft", tree[0].Replies[0].Content)

	resolved, err := f.svc.ResolveComment(ctx, f.actor, root.ID, true)
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, f.pm.ID, *resolved.ResolvedBy)

	reopened, err := f.svc.ResolveComment(ctx, f.actor, root.ID, false)
	require.NoError(t, err)
	assert.False(t, reopened.IsResolved)
	assert.Nil(t, reopened.ResolvedBy)
}

func TestDocumentService_CreateVersionRequiresEditRights(t *testing.T) {
	f := newDocumentFixture(t, false)
	ctx := context.Background()

	crew := f.db.CreateTestUser(t, models.UserRoleTeamMember)
	f.db.AddTestMember(t, f.property, crew, models.UserRoleTeamMember)
	crewActor := services.Actor{UserID: crew.ID, Role: crew.Role}

	doc := f.upload(t, "Roof Plan", "plans", "r")
	_, err := f.svc.GetDocument(ctx, crewActor, doc.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateVersion(ctx, crewActor, doc.ID, versionParams(2))
	assert.ErrorIs(t, err, services.ErrForbidden)

	latest, err := f.svc.GetLatestVersion(ctx, f.actor, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, latest.ID)
	assert.Equal(t, f.pm.ID, latest.UploadedBy)

	// a team member who uploaded the document may revise it
	own, err := f.svc.UploadDocument(ctx, crewActor, services.UploadDocumentParams{
		DocumentAttributes: services.DocumentAttributes{Name: "Daily Log", PropertyID: &f.property.ID},
		Filename:           "log.pdf",
		ContentType:        "application/pdf",
		Size:               1,
		Content:            strings.NewReader("l"),
	})
	require.NoError(t, err)
	v2, err := f.svc.CreateVersion(ctx, crewActor, own.ID, versionParams(2))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
}

func TestDocumentService_CreateVersionRejectsOversizedFile(t *testing.T) {
	f := newDocumentFixture(t, false)
	ctx := context.Background()

	doc := f.upload(t, "Survey", "surveys", "s")
	params := versionParams(2)
	params.FileSize = 2 << 20

	_, err := f.svc.CreateVersion(ctx, f.actor, doc.ID, params)
	assert.ErrorIs(t, err, services.ErrValidation)

	chain, err := f.svc.GetVersionHistory(ctx, f.actor, doc.ID)
	require.NoError(t, err)
	assert.Len(t, chain, 1)
}

func TestDocumentService_SearchCountsBeyondOneBatch(t *testing.T) {
	f := newDocumentFixtureWithConfig(t, services.DocumentServiceConfig{
		MaxFileSize: 1 << 20,
		SearchBatch: 2,
	})
	ctx := context.Background()

	for _, name := range []string{"Permit A", "Permit B"} {
		f.upload(t, name, "permits", name)
	}
	// unreadable even for the property owner: no allow-list entries
	_, err := f.svc.UploadDocument(ctx, f.actor, services.UploadDocumentParams{
		DocumentAttributes: services.DocumentAttributes{Name: "Permit Hidden", PropertyID: &f.property.ID, AccessLevel: models.AccessRestricted},
		Filename:           "hidden.pdf",
		ContentType:        "application/pdf",
		Size:               1,
		Content:            strings.NewReader("h"),
	})
	require.NoError(t, err)
	f.upload(t, "Permit C", "permits", "c")

	seen := map[string]bool{}
	for page := 1; page <= 2; page++ {
		docs, total, err := f.svc.SearchDocuments(ctx, f.actor, services.SearchParams{
			DocumentSearchQuery: repositories.DocumentSearchQuery{Query: "permit"},
			Page:                page,
			PageSize:            2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		for _, d := range docs {
			seen[d.Name] = true
		}
		if page == 1 {
			assert.Len(t, docs, 2)
		} else {
			assert.Len(t, docs, 1)
		}
	}
	assert.Equal(t, map[string]bool{"Permit A": true, "Permit B": true, "Permit C": true}, seen)

	docs, total, err := f.svc.SearchDocuments(ctx, f.actor, services.SearchParams{
		DocumentSearchQuery: repositories.DocumentSearchQuery{Query: "permit"},
		Page:                3,
		PageSize:            2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, docs)
}
