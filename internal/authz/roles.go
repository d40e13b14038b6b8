// Package authz holds the single role/permission model shared by all three
// membership scopes. Roles map to permission sets per (scope, role) pair, and
// the parent-scope escalation rule (org owner/admin implies workspace admin)
// lives here as one function instead of being repeated inline.
package authz

import "github.com/deyby01/nexus-pm-v2/internal/models"

// Permission is a named capability checked by handlers and services.
type Permission string

const (
	// Organization scope
	PermManageBilling   Permission = "manage_billing"
	PermManageUsers     Permission = "manage_users"
	PermManageProjects  Permission = "manage_projects"
	PermCreateProjects  Permission = "create_projects"
	PermManageTasks     Permission = "manage_tasks"
	PermViewProjects    Permission = "view_projects"
	PermViewTasks       Permission = "view_tasks"
	PermViewAnalytics   Permission = "view_analytics"

	// Workspace scope
	PermManageWorkspaceSettings Permission = "manage_workspace_settings"
	PermManageWorkspaceMembers  Permission = "manage_workspace_members"
	PermDeleteProjects          Permission = "delete_projects"
	PermManageAllTasks          Permission = "manage_all_tasks"
	PermAssignTasks             Permission = "assign_tasks"
	PermManageOwnTasks          Permission = "manage_own_tasks"
	PermCommentOnTasks          Permission = "comment_on_tasks"

	// Project scope
	PermManageProjectSettings Permission = "manage_project_settings"
	PermManageProjectMembers  Permission = "manage_project_members"
	PermCreateTasks           Permission = "create_tasks"
	PermReviewTasks           Permission = "review_tasks"
)

var organizationPermissions = map[models.OrganizationRole][]Permission{
	models.OrgRoleOwner: {
		PermManageBilling, PermManageUsers, PermManageProjects,
		PermCreateProjects, PermManageTasks, PermViewProjects,
		PermViewTasks, PermViewAnalytics,
	},
	models.OrgRoleAdmin: {
		PermManageUsers, PermManageProjects, PermCreateProjects,
		PermManageTasks, PermViewProjects, PermViewTasks, PermViewAnalytics,
	},
	models.OrgRoleMember: {
		PermCreateProjects, PermManageTasks, PermViewProjects, PermViewTasks,
	},
	models.OrgRoleViewer: {
		PermViewProjects, PermViewTasks,
	},
}

var workspacePermissions = map[models.WorkspaceRole][]Permission{
	models.WorkspaceRoleAdmin: {
		PermManageWorkspaceSettings, PermManageWorkspaceMembers,
		PermCreateProjects, PermDeleteProjects, PermManageAllTasks,
		PermViewProjects, PermViewTasks, PermViewAnalytics,
	},
	models.WorkspaceRoleManager: {
		PermCreateProjects, PermManageProjects, PermAssignTasks,
		PermViewProjects, PermViewTasks, PermViewAnalytics,
	},
	models.WorkspaceRoleMember: {
		PermViewProjects, PermCreateTasks, PermManageOwnTasks,
		PermCommentOnTasks, PermViewTasks,
	},
	models.WorkspaceRoleContributor: {
		PermManageOwnTasks, PermCommentOnTasks, PermViewTasks,
	},
	models.WorkspaceRoleViewer: {
		PermViewProjects, PermViewTasks, PermCommentOnTasks,
	},
}

var projectPermissions = map[models.ProjectRole][]Permission{
	models.ProjectRoleLead: {
		PermManageProjectSettings, PermManageProjectMembers,
		PermCreateTasks, PermAssignTasks, PermManageAllTasks,
		PermReviewTasks, PermViewTasks,
	},
	models.ProjectRoleMember: {
		PermCreateTasks, PermManageOwnTasks, PermCommentOnTasks, PermViewTasks,
	},
	models.ProjectRoleReviewer: {
		PermReviewTasks, PermCommentOnTasks, PermViewTasks,
	},
	models.ProjectRoleObserver: {
		PermViewTasks,
	},
}

// OrganizationRoleHas checks an organization-scope permission.
func OrganizationRoleHas(role models.OrganizationRole, perm Permission) bool {
	return contains(organizationPermissions[role], perm)
}

// WorkspaceRoleHas checks a workspace-scope permission.
func WorkspaceRoleHas(role models.WorkspaceRole, perm Permission) bool {
	return contains(workspacePermissions[role], perm)
}

// ProjectRoleHas checks a project-scope permission.
func ProjectRoleHas(role models.ProjectRole, perm Permission) bool {
	return contains(projectPermissions[role], perm)
}

// IsOrgElevated reports whether an organization role carries admin authority
// over everything nested under the organization.
func IsOrgElevated(role models.OrganizationRole) bool {
	return role == models.OrgRoleOwner || role == models.OrgRoleAdmin
}

// EffectiveWorkspaceRole applies the parent-scope escalation rule: an
// organization owner or admin acts as workspace admin regardless of the
// stored workspace role. The stored role is never mutated.
func EffectiveWorkspaceRole(orgRole models.OrganizationRole, stored models.WorkspaceRole) models.WorkspaceRole {
	if IsOrgElevated(orgRole) {
		return models.WorkspaceRoleAdmin
	}
	return stored
}

func contains(perms []Permission, perm Permission) bool {
	for _, p := range perms {
		if p == perm {
			return true
		}
	}
	return false
}
