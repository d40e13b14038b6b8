package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/database"
	apierrors "github.com/deyby01/nexus-pm-v2/internal/errors"
	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// RequireProjectAccess resolves access for the :projectId parameter. Project
// access delegates entirely to the owning workspace's resolver.
func RequireProjectAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := uuid.Parse(c.Param("projectId"))
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var project models.Project
		if err := database.GetDB().First(&project, "id = ?", projectID).Error; err != nil {
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		var workspace models.Workspace
		if err := database.GetDB().First(&workspace, "id = ?", project.WorkspaceID).Error; err != nil {
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		role, ok := resolveWorkspaceRole(&workspace, userID)
		if !ok {
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		c.Set("project", project)
		c.Set("workspace", workspace)
		c.Set("workspace_role", role)
		c.Next()
	}
}

// GetProject retrieves the project resolved by RequireProjectAccess.
func GetProject(c *gin.Context) (models.Project, bool) {
	raw, exists := c.Get("project")
	if !exists {
		return models.Project{}, false
	}
	project, ok := raw.(models.Project)
	return project, ok
}
