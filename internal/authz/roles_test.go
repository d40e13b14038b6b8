package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

func TestOrganizationRoleHas(t *testing.T) {
	require.True(t, OrganizationRoleHas(models.OrgRoleOwner, PermManageBilling))
	require.False(t, OrganizationRoleHas(models.OrgRoleAdmin, PermManageBilling))
	require.True(t, OrganizationRoleHas(models.OrgRoleAdmin, PermManageUsers))
	require.True(t, OrganizationRoleHas(models.OrgRoleMember, PermCreateProjects))
	require.False(t, OrganizationRoleHas(models.OrgRoleViewer, PermCreateProjects))
	require.True(t, OrganizationRoleHas(models.OrgRoleViewer, PermViewProjects))

	// Unknown roles hold nothing.
	require.False(t, OrganizationRoleHas(models.OrganizationRole("superuser"), PermViewProjects))
}

func TestWorkspaceRoleHas(t *testing.T) {
	require.True(t, WorkspaceRoleHas(models.WorkspaceRoleAdmin, PermManageWorkspaceMembers))
	require.False(t, WorkspaceRoleHas(models.WorkspaceRoleManager, PermManageWorkspaceMembers))
	require.True(t, WorkspaceRoleHas(models.WorkspaceRoleMember, PermCreateTasks))
	require.True(t, WorkspaceRoleHas(models.WorkspaceRoleContributor, PermManageOwnTasks))
	require.False(t, WorkspaceRoleHas(models.WorkspaceRoleContributor, PermViewProjects))
	require.True(t, WorkspaceRoleHas(models.WorkspaceRoleViewer, PermCommentOnTasks))
	require.False(t, WorkspaceRoleHas(models.WorkspaceRoleViewer, PermCreateTasks))
}

func TestProjectRoleHas(t *testing.T) {
	require.True(t, ProjectRoleHas(models.ProjectRoleLead, PermManageProjectSettings))
	require.True(t, ProjectRoleHas(models.ProjectRoleMember, PermManageOwnTasks))
	require.False(t, ProjectRoleHas(models.ProjectRoleMember, PermManageAllTasks))
	require.True(t, ProjectRoleHas(models.ProjectRoleReviewer, PermReviewTasks))
	require.False(t, ProjectRoleHas(models.ProjectRoleObserver, PermCommentOnTasks))
}

func TestIsOrgElevated(t *testing.T) {
	require.True(t, IsOrgElevated(models.OrgRoleOwner))
	require.True(t, IsOrgElevated(models.OrgRoleAdmin))
	require.False(t, IsOrgElevated(models.OrgRoleMember))
	require.False(t, IsOrgElevated(models.OrgRoleViewer))
}

func TestEffectiveWorkspaceRole(t *testing.T) {
	// Org owners and admins act as workspace admins regardless of the
	// stored role.
	require.Equal(t, models.WorkspaceRoleAdmin,
		EffectiveWorkspaceRole(models.OrgRoleOwner, models.WorkspaceRoleViewer))
	require.Equal(t, models.WorkspaceRoleAdmin,
		EffectiveWorkspaceRole(models.OrgRoleAdmin, models.WorkspaceRoleContributor))

	// Plain members keep whatever the workspace membership says.
	require.Equal(t, models.WorkspaceRoleMember,
		EffectiveWorkspaceRole(models.OrgRoleMember, models.WorkspaceRoleMember))
	require.Equal(t, models.WorkspaceRoleViewer,
		EffectiveWorkspaceRole(models.OrgRoleViewer, models.WorkspaceRoleViewer))
}
