package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/authz"
	"github.com/deyby01/nexus-pm-v2/internal/database"
	apierrors "github.com/deyby01/nexus-pm-v2/internal/errors"
	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// RequireWorkspaceAccess resolves workspace access for the :workspaceId
// parameter. Organization owners and admins always pass; other org members
// pass unless the workspace is private and they hold no active workspace
// membership. Non-members of the organization get a 404.
func RequireWorkspaceAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, err := uuid.Parse(c.Param("workspaceId"))
		if err != nil {
			apierrors.BadRequest(c, "Invalid workspace ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var workspace models.Workspace
		if err := database.GetDB().First(&workspace, "id = ?", workspaceID).Error; err != nil {
			apierrors.NotFound(c, "Workspace not found")
			c.Abort()
			return
		}

		role, ok := resolveWorkspaceRole(&workspace, userID)
		if !ok {
			// Return 404 instead of 403 to avoid leaking workspace existence
			apierrors.NotFound(c, "Workspace not found")
			c.Abort()
			return
		}

		c.Set("workspace", workspace)
		c.Set("workspace_role", role)
		c.Next()
	}
}

// RequireWorkspaceRole gates a route on a minimum effective workspace
// permission, on top of RequireWorkspaceAccess.
func RequireWorkspaceRole(perm authz.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get("workspace_role")
		if !exists {
			apierrors.Forbidden(c, "Workspace access required")
			c.Abort()
			return
		}
		role, ok := raw.(models.WorkspaceRole)
		if !ok || !authz.WorkspaceRoleHas(role, perm) {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// resolveWorkspaceRole applies the access resolver against the current
// database state.
func resolveWorkspaceRole(workspace *models.Workspace, userID uuid.UUID) (models.WorkspaceRole, bool) {
	db := database.GetDB()

	var orgMembership models.OrganizationMembership
	err := db.
		Where("organization_id = ? AND user_id = ? AND is_active = ?", workspace.OrganizationID, userID, true).
		First(&orgMembership).Error
	if err != nil {
		return "", false
	}

	if authz.IsOrgElevated(orgMembership.Role) {
		return models.WorkspaceRoleAdmin, true
	}

	var wsMembership models.WorkspaceMembership
	err = db.
		Where("workspace_id = ? AND user_id = ? AND is_active = ?", workspace.ID, userID, true).
		First(&wsMembership).Error
	if err != nil {
		if workspace.IsPrivate {
			return "", false
		}
		return models.WorkspaceRoleViewer, true
	}

	return authz.EffectiveWorkspaceRole(orgMembership.Role, wsMembership.Role), true
}

// GetWorkspace retrieves the workspace resolved by RequireWorkspaceAccess.
func GetWorkspace(c *gin.Context) (models.Workspace, bool) {
	raw, exists := c.Get("workspace")
	if !exists {
		return models.Workspace{}, false
	}
	workspace, ok := raw.(models.Workspace)
	return workspace, ok
}
