package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/dto"
	apierrors "github.com/deyby01/nexus-pm-v2/internal/errors"
	"github.com/deyby01/nexus-pm-v2/internal/middleware"
	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/services"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a project in the workspace.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name             string                 `json:"name" binding:"required,min=1,max=200"`
		Description      string                 `json:"description"`
		Priority         models.ProjectPriority `json:"priority"`
		ProjectManagerID *string                `json:"project_manager_id"`
		StartDate        *time.Time             `json:"start_date"`
		DueDate          *time.Time             `json:"due_date"`
		EstimatedHours   *int                   `json:"estimated_hours"`
		Budget           float64                `json:"budget"`
		Tags             []string               `json:"tags"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var managerID *uuid.UUID
	if req.ProjectManagerID != nil {
		id, err := uuid.Parse(*req.ProjectManagerID)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project manager ID")
			return
		}
		managerID = &id
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		WorkspaceID:      workspaceID,
		CreatorID:        userID,
		Name:             req.Name,
		Description:      req.Description,
		Priority:         req.Priority,
		ProjectManagerID: managerID,
		StartDate:        req.StartDate,
		DueDate:          req.DueDate,
		EstimatedHours:   req.EstimatedHours,
		Budget:           req.Budget,
		Tags:             req.Tags,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the workspace's projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}

	projects, err := h.projectService.ListProjects(workspaceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = dto.ToProjectDTO(p)
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

// GetProject returns the project resolved by the access middleware.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(project))
}

// UpdateProject updates project fields.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type UpdateProjectRequest struct {
		Name           *string                 `json:"name"`
		Description    *string                 `json:"description"`
		Status         *models.ProjectStatus   `json:"status"`
		Priority       *models.ProjectPriority `json:"priority"`
		StartDate      *time.Time              `json:"start_date"`
		DueDate        *time.Time              `json:"due_date"`
		EstimatedHours *int                    `json:"estimated_hours"`
		Budget         *float64                `json:"budget"`
		Tags           *[]string               `json:"tags"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(projectID, services.UpdateProjectInput{
		Name:           req.Name,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		Budget:         req.Budget,
		Tags:           req.Tags,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject archives the project and soft-deletes its tasks.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.projectService.DeleteProject(projectID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

// ListMembers returns the active members of the project.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	members, err := h.projectService.ListMembers(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.ProjectMemberDTO, len(members))
	for i, m := range members {
		out[i] = dto.ToProjectMemberDTO(m)
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

// AddMember assigns a user to the project.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}
	assignerID, _ := middleware.GetUserID(c)

	type AddMemberRequest struct {
		UserID string             `json:"user_id" binding:"required,uuid"`
		Role   models.ProjectRole `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	memberID, err := uuid.Parse(req.UserID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	membership, err := h.projectService.AddMember(services.AddProjectMemberInput{
		ProjectID:    projectID,
		UserID:       memberID,
		Role:         req.Role,
		AssignedByID: &assignerID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectMemberDTO(*membership))
}

// GetProgress recomputes and returns the project's completion percentage.
func (h *ProjectHandler) GetProgress(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	progress, err := h.projectService.RecalculateProgress(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress_percentage": progress})
}
