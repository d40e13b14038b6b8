package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

func TestLimitsService_FallbackWithoutPlan(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme") // no plan seeded, no subscription

	limits, err := env.limits.UsageLimits(org.ID)
	require.NoError(t, err)
	require.Equal(t, 1, limits.MaxWorkspaces)
	require.Equal(t, 1, limits.MaxUsers)
	require.Equal(t, 0, limits.MaxStorageGB)
	require.Equal(t, 1, limits.MaxProjectsPerWorkspace)

	sub, err := env.limits.CurrentSubscription(org.ID)
	require.NoError(t, err)
	require.Nil(t, sub)

	enabled, err := env.limits.IsFeatureEnabled(org.ID, "api_access")
	require.NoError(t, err)
	require.False(t, enabled)
}

func TestLimitsService_PlanLimits(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPlan(t, models.PlanFree, 2, 3, 4)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")

	limits, err := env.limits.UsageLimits(org.ID)
	require.NoError(t, err)
	require.Equal(t, 2, limits.MaxWorkspaces)
	require.Equal(t, 3, limits.MaxUsers)
	require.Equal(t, 4, limits.MaxProjectsPerWorkspace)

	ok, err := env.limits.CheckUsageLimit(org.ID, LimitWorkspaces)
	require.NoError(t, err)
	require.True(t, ok)

	env.createWorkspace(t, org, owner, "One", models.WorkspaceGeneral)
	env.createWorkspace(t, org, owner, "Two", models.WorkspaceGeneral)

	ok, err = env.limits.CheckUsageLimit(org.ID, LimitWorkspaces)
	require.NoError(t, err)
	require.False(t, ok)

	enabled, err := env.limits.IsFeatureEnabled(org.ID, "api_access")
	require.NoError(t, err)
	require.True(t, enabled)

	enabled, err = env.limits.IsFeatureEnabled(org.ID, "sso")
	require.NoError(t, err)
	require.False(t, enabled)
}

func TestLimitsService_ProjectsPerWorkspaceLimit(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPlan(t, models.PlanFree, 2, 3, 1)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	first := env.createWorkspace(t, org, owner, "One", models.WorkspaceGeneral)
	second := env.createWorkspace(t, org, owner, "Two", models.WorkspaceGeneral)

	ok, err := env.limits.CheckUsageLimit(first.ID, LimitProjectsPerWorkspace)
	require.NoError(t, err)
	require.True(t, ok)

	env.createProject(t, first, owner, "Backend")

	// The ceiling counts projects per workspace, not per organization.
	ok, err = env.limits.CheckUsageLimit(first.ID, LimitProjectsPerWorkspace)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = env.limits.CheckUsageLimit(second.ID, LimitProjectsPerWorkspace)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLimitsService_CurrentUsage(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPlan(t, models.PlanFree, 5, 10, 5)
	owner := env.createUser(t, "owner@example.com")
	colleague := env.createUser(t, "colleague@example.com")
	org := env.createOrganization(t, owner, "Acme")
	env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)

	_, err := env.orgs.AddMember(AddMemberInput{
		OrganizationID: org.ID,
		UserID:         colleague.ID,
		InvitedByID:    &owner.ID,
	})
	require.NoError(t, err)

	workspaces, members, err := env.limits.CurrentUsage(org.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, workspaces)
	require.EqualValues(t, 2, members)
}

func TestLimitsService_ExpiredTrialKeepsPlan(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")

	sub, err := env.limits.CurrentSubscription(org.ID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, models.SubscriptionTrialing, sub.Status)
	require.True(t, sub.IsTrial(env.clock.Now()))

	// Past the trial window the subscription still resolves; only the
	// trial flag flips.
	env.clock.Add(15 * 24 * time.Hour)
	require.False(t, sub.IsTrial(env.clock.Now()))

	plan, err := env.limits.CurrentPlan(org.ID)
	require.NoError(t, err)
	require.NotNil(t, plan)
	require.Equal(t, models.PlanFree, plan.PlanType)
}

func TestLimitsService_CancelSubscription(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")

	// At period end: the subscription stays live and only carries the flag.
	sub, err := env.limits.CancelSubscription(org.ID, true)
	require.NoError(t, err)
	require.True(t, sub.CancelAtPeriodEnd)
	require.Equal(t, models.SubscriptionTrialing, sub.Status)
	require.Nil(t, sub.CancelledAt)

	current, err := env.limits.CurrentSubscription(org.ID)
	require.NoError(t, err)
	require.NotNil(t, current)

	// Immediate: the subscription is terminal and no longer resolves.
	sub, err = env.limits.CancelSubscription(org.ID, false)
	require.NoError(t, err)
	require.Equal(t, models.SubscriptionCancelled, sub.Status)
	require.NotNil(t, sub.CancelledAt)

	current, err = env.limits.CurrentSubscription(org.ID)
	require.NoError(t, err)
	require.Nil(t, current)

	_, err = env.limits.CancelSubscription(org.ID, false)
	require.ErrorIs(t, err, ErrSubscriptionNotFound)
}
