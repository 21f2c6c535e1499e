package postgresql

import (
	"context"
	"testing"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyRepository_ListMemberOf(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewPropertyRepository(db.DB)
	ctx := context.Background()

	owner := db.CreateTestUser(t, models.UserRoleOwner)
	member := db.CreateTestUser(t, models.UserRoleTeamMember)
	owned := db.CreateTestProperty(t, owner)
	db.CreateTestProperty(t, owner)
	db.AddTestMember(t, owned, member, models.UserRoleTeamMember)

	properties, total, err := repo.List(ctx, repositories.PropertyFilters{MemberOf: &member.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, properties, 1)
	assert.Equal(t, owned.ID, properties[0].ID)

	_, total, err = repo.List(ctx, repositories.PropertyFilters{MemberOf: &owner.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestPropertyMemberRepository_UpsertChangesRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewPropertyMemberRepository(db.DB)
	ctx := context.Background()

	owner := db.CreateTestUser(t, models.UserRoleOwner)
	user := db.CreateTestUser(t, models.UserRoleTeamMember)
	property := db.CreateTestProperty(t, owner)

	require.NoError(t, repo.Upsert(ctx, &models.PropertyMember{PropertyID: property.ID, UserID: user.ID, Role: models.UserRoleTeamMember}))
	require.NoError(t, repo.Upsert(ctx, &models.PropertyMember{PropertyID: property.ID, UserID: user.ID, Role: models.UserRolePM}))

	members, err := repo.ListByProperty(ctx, property.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, models.UserRolePM, members[0].Role)

	require.NoError(t, repo.Remove(ctx, property.ID, user.ID))
	assert.ErrorIs(t, repo.Remove(ctx, property.ID, user.ID), repositories.ErrRecordNotFound)
}

func TestPropertyRepository_GetDashboard(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewPropertyRepository(db.DB)
	budgetRepo := NewBudgetLineRepository(db.DB)
	milestoneRepo := NewMilestoneRepository(db.DB)
	ctx := context.Background()

	owner := db.CreateTestUser(t, models.UserRoleOwner)
	property := db.CreateTestProperty(t, owner)

	require.NoError(t, milestoneRepo.Create(ctx, &models.Milestone{PropertyID: property.ID, Title: "Foundation", Status: models.MilestoneCompleted}))
	require.NoError(t, milestoneRepo.Create(ctx, &models.Milestone{PropertyID: property.ID, Title: "Framing", Status: models.MilestoneInProgress}))
	require.NoError(t, budgetRepo.Create(ctx, &models.BudgetLine{PropertyID: property.ID, Category: "labor", EstimatedAmount: 1000, ActualAmount: 400, Status: models.BudgetCommitted}))
	require.NoError(t, budgetRepo.Create(ctx, &models.BudgetLine{PropertyID: property.ID, Category: "materials", EstimatedAmount: 500, ActualAmount: 600, Status: models.BudgetPaid}))
	db.CreateTestDocument(t, property, owner)

	dashboard, err := repo.GetDashboard(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dashboard.MilestonesTotal)
	assert.Equal(t, int64(1), dashboard.MilestonesCompleted)
	assert.InDelta(t, 1500, dashboard.BudgetEstimated, 0.001)
	assert.InDelta(t, 1000, dashboard.BudgetActual, 0.001)
	assert.Equal(t, int64(1), dashboard.Documents)

	summary, err := budgetRepo.SummarizeByCategory(ctx, property.ID)
	require.NoError(t, err)
	assert.Len(t, summary, 2)
}
