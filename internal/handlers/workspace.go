package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/dto"
	apierrors "github.com/deyby01/nexus-pm-v2/internal/errors"
	"github.com/deyby01/nexus-pm-v2/internal/middleware"
	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/services"
)

// WorkspaceHandler coordinates workspace HTTP handlers.
type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaceService *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
	}
}

// CreateWorkspace creates a workspace in the organization.
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateWorkspaceRequest struct {
		Name          string               `json:"name" binding:"required,min=1,max=100"`
		Description   string               `json:"description"`
		WorkspaceType models.WorkspaceType `json:"workspace_type"`
		IsPrivate     bool                 `json:"is_private"`
		Color         string               `json:"color"`
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.CreateWorkspace(services.CreateWorkspaceInput{
		OrganizationID: orgID,
		CreatorID:      userID,
		Name:           req.Name,
		Description:    req.Description,
		WorkspaceType:  req.WorkspaceType,
		IsPrivate:      req.IsPrivate,
		Color:          req.Color,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(*workspace))
}

// ListWorkspaces returns the organization's workspaces visible to the caller.
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	workspaces, err := h.workspaceService.ListWorkspaces(orgID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.WorkspaceDTO, 0, len(workspaces))
	for _, ws := range workspaces {
		ok, err := h.workspaceService.CanUserAccess(ws.ID, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if ok {
			out = append(out, dto.ToWorkspaceDTO(ws))
		}
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": out})
}

// GetWorkspace returns the workspace resolved by the access middleware.
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(workspace))
}

// UpdateWorkspace updates basic workspace fields.
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}

	type UpdateWorkspaceRequest struct {
		Name        *string                 `json:"name"`
		Description *string                 `json:"description"`
		Status      *models.WorkspaceStatus `json:"status"`
		IsPrivate   *bool                   `json:"is_private"`
		Color       *string                 `json:"color"`
	}

	var req UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.UpdateWorkspace(workspaceID, services.UpdateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		IsPrivate:   req.IsPrivate,
		Color:       req.Color,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*workspace))
}

// DeleteWorkspace archives and soft-deletes the workspace.
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}

	if err := h.workspaceService.DeleteWorkspace(workspaceID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workspace deleted"})
}

// ListMembers returns the active members of the workspace.
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}

	members, err := h.workspaceService.ListMembers(workspaceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.WorkspaceMemberDTO, len(members))
	for i, m := range members {
		out[i] = dto.ToWorkspaceMemberDTO(m)
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

// AddMember adds an organization member to the workspace.
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}
	inviterID, _ := middleware.GetUserID(c)

	type AddMemberRequest struct {
		UserID string               `json:"user_id" binding:"required,uuid"`
		Role   models.WorkspaceRole `json:"role"`
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

	membership, err := h.workspaceService.AddMember(services.AddWorkspaceMemberInput{
		WorkspaceID: workspaceID,
		UserID:      memberID,
		Role:        req.Role,
		InvitedByID: &inviterID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceMemberDTO(*membership))
}

// RemoveMember deactivates a workspace membership.
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return
	}
	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.workspaceService.RemoveMember(workspaceID, memberID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
