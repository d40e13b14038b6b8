package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID             uuid.UUID              `json:"id"`
	Name           string                 `json:"name"`
	Slug           string                 `json:"slug"`
	Description    string                 `json:"description,omitempty"`
	OrganizationID uuid.UUID              `json:"organization_id"`
	WorkspaceType  models.WorkspaceType   `json:"workspace_type"`
	Status         models.WorkspaceStatus `json:"status"`
	IsPrivate      bool                   `json:"is_private"`
	Color          string                 `json:"color,omitempty"`
	ProjectCount   int                    `json:"project_count"`
	MemberCount    int                    `json:"member_count"`
	CreatedAt      time.Time              `json:"created_at"`
}

// WorkspaceMemberDTO represents a workspace membership in API responses
type WorkspaceMemberDTO struct {
	ID       uuid.UUID            `json:"id"`
	Role     models.WorkspaceRole `json:"role"`
	JoinedAt time.Time            `json:"joined_at"`
	User     *UserDTO             `json:"user,omitempty"`
}

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO
func ToWorkspaceDTO(workspace models.Workspace) WorkspaceDTO {
	return WorkspaceDTO{
		ID:             workspace.ID,
		Name:           workspace.Name,
		Slug:           workspace.Slug,
		Description:    workspace.Description,
		OrganizationID: workspace.OrganizationID,
		WorkspaceType:  workspace.WorkspaceType,
		Status:         workspace.Status,
		IsPrivate:      workspace.IsPrivate,
		Color:          workspace.Color,
		ProjectCount:   workspace.ProjectCount,
		MemberCount:    workspace.MemberCount,
		CreatedAt:      workspace.CreatedAt,
	}
}

// ToWorkspaceMemberDTO converts a membership to its response shape.
func ToWorkspaceMemberDTO(m models.WorkspaceMembership) WorkspaceMemberDTO {
	dto := WorkspaceMemberDTO{
		ID:       m.ID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
	if m.User.ID != uuid.Nil {
		user := ToUserDTO(m.User)
		dto.User = &user
	}
	return dto
}
