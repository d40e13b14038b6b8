package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/database"
	apierrors "github.com/deyby01/nexus-pm-v2/internal/errors"
	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// RequireTaskAccess resolves access for the :taskId parameter. Task access
// delegates to the owning project's workspace resolver.
func RequireTaskAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := uuid.Parse(c.Param("taskId"))
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, role, ok := ResolveTaskAccess(taskID, userID)
		if !ok {
			// Return 404 instead of 403 to avoid leaking task existence
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		c.Set("task", task)
		c.Set("workspace_role", role)
		c.Next()
	}
}

// ResolveTaskAccess walks task -> project -> workspace and applies the
// workspace resolver. It reports false for nonexistent tasks and denied
// access alike.
func ResolveTaskAccess(taskID, userID uuid.UUID) (models.Task, models.WorkspaceRole, bool) {
	db := database.GetDB()

	var task models.Task
	if err := db.First(&task, "id = ?", taskID).Error; err != nil {
		return models.Task{}, "", false
	}

	var project models.Project
	if err := db.First(&project, "id = ?", task.ProjectID).Error; err != nil {
		return models.Task{}, "", false
	}

	var workspace models.Workspace
	if err := db.First(&workspace, "id = ?", project.WorkspaceID).Error; err != nil {
		return models.Task{}, "", false
	}

	role, ok := resolveWorkspaceRole(&workspace, userID)
	if !ok {
		return models.Task{}, "", false
	}
	return task, role, true
}

// GetTask retrieves the task resolved by RequireTaskAccess.
func GetTask(c *gin.Context) (models.Task, bool) {
	raw, exists := c.Get("task")
	if !exists {
		return models.Task{}, false
	}
	task, ok := raw.(models.Task)
	return task, ok
}
