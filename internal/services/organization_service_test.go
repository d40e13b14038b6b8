package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

func TestOrganizationService_CreateOrganization(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")

	org, err := env.orgs.CreateOrganization(CreateOrganizationInput{
		Name:    "Acme Inc",
		OwnerID: owner.ID,
		Email:   "hello@acme.test",
	})
	require.NoError(t, err)
	require.Equal(t, "acme-inc", org.Slug)
	require.Equal(t, models.OrganizationActive, org.Status)

	// Owner membership is created with role OWNER.
	membership, err := env.orgRepo.FindActiveMember(org.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrgRoleOwner, membership.Role)

	// A 14-day trial subscription on the FREE plan is started.
	sub, err := env.limits.CurrentSubscription(org.ID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, models.SubscriptionTrialing, sub.Status)
	require.Equal(t, models.PlanFree, sub.Plan.PlanType)
	require.NotNil(t, sub.TrialEnd)
	require.WithinDuration(t, env.clock.Now().Add(14*24*time.Hour), *sub.TrialEnd, time.Second)
	require.True(t, sub.IsTrial(env.clock.Now()))
	require.False(t, sub.IsTrial(env.clock.Now().Add(15*24*time.Hour)))

	// Default settings echo the owner's localization.
	stored, err := env.orgs.GetOrganization(org.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Settings.Version)
	require.Equal(t, "web", stored.Settings.CreatedVia)
	require.False(t, stored.Settings.OnboardingCompleted)
	require.Equal(t, "Europe/Berlin", stored.Settings.Preferences.DefaultTimezone)
	require.Equal(t, "de", stored.Settings.Preferences.DefaultLanguage)
}

func TestOrganizationService_CreateOrganization_SlugCollision(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")

	first := env.createOrganization(t, owner, "Acme Inc")
	second := env.createOrganization(t, owner, "Acme Inc!")

	require.Equal(t, "acme-inc", first.Slug)
	require.Equal(t, "acme-inc-1", second.Slug)
}

func TestOrganizationService_CreateOrganization_NoFreePlan(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")

	// A missing FREE plan must not fail the creation, only skip the trial.
	org, err := env.orgs.CreateOrganization(CreateOrganizationInput{
		Name:    "Planless",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	sub, err := env.limits.CurrentSubscription(org.ID)
	require.NoError(t, err)
	require.Nil(t, sub)

	membership, err := env.orgRepo.FindActiveMember(org.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrgRoleOwner, membership.Role)
}

func TestOrganizationService_CreateOrganization_EmptyName(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")

	_, err := env.orgs.CreateOrganization(CreateOrganizationInput{
		Name:    "   ",
		OwnerID: owner.ID,
	})
	require.Error(t, err)

	var rejection *RejectedWriteError
	require.ErrorAs(t, err, &rejection)
	require.Equal(t, RejectionInvalidInput, rejection.Code)
}

func TestOrganizationService_AddAndRemoveMember(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	member := env.createUser(t, "member@example.com")
	org := env.createOrganization(t, owner, "Acme")

	membership, err := env.orgs.AddMember(AddMemberInput{
		OrganizationID: org.ID,
		UserID:         member.ID,
		InvitedByID:    &owner.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.OrgRoleMember, membership.Role)
	require.NotNil(t, membership.InvitedAt)

	// The owner cannot be removed.
	err = env.orgs.RemoveMember(org.ID, owner.ID)
	require.ErrorIs(t, err, &RejectedWriteError{Code: RejectionInvalidInput})

	require.NoError(t, env.orgs.RemoveMember(org.ID, member.ID))
	_, err = env.orgRepo.FindActiveMember(org.ID, member.ID)
	require.Error(t, err)
}

func TestOrganizationService_AddMember_ReactivatesMembership(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	member := env.createUser(t, "member@example.com")
	org := env.createOrganization(t, owner, "Acme")

	_, err := env.orgs.AddMember(AddMemberInput{
		OrganizationID: org.ID,
		UserID:         member.ID,
		InvitedByID:    &owner.ID,
	})
	require.NoError(t, err)

	// Re-adding an active member is a duplicate.
	_, err = env.orgs.AddMember(AddMemberInput{OrganizationID: org.ID, UserID: member.ID})
	require.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, env.orgs.RemoveMember(org.ID, member.ID))

	// Re-adding flips the existing row back instead of inserting a second one.
	reactivated, err := env.orgs.AddMember(AddMemberInput{
		OrganizationID: org.ID,
		UserID:         member.ID,
		Role:           models.OrgRoleAdmin,
	})
	require.NoError(t, err)
	require.True(t, reactivated.IsActive)
	require.Equal(t, models.OrgRoleAdmin, reactivated.Role)

	var count int64
	env.db.Model(&models.OrganizationMembership{}).
		Where("organization_id = ? AND user_id = ?", org.ID, member.ID).
		Count(&count)
	require.EqualValues(t, 1, count)
}

func TestOrganizationService_DeleteOrganization(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")

	require.NoError(t, env.orgs.DeleteOrganization(org.ID))

	_, err := env.orgs.GetOrganization(org.ID)
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	// Live subscriptions are cancelled as part of the cascade.
	sub, err := env.limits.CurrentSubscription(org.ID)
	require.NoError(t, err)
	require.Nil(t, sub)
}
