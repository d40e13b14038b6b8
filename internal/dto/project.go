package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID                 uuid.UUID              `json:"id"`
	Name               string                 `json:"name"`
	Slug               string                 `json:"slug"`
	Description        string                 `json:"description,omitempty"`
	WorkspaceID        uuid.UUID              `json:"workspace_id"`
	Status             models.ProjectStatus   `json:"status"`
	Priority           models.ProjectPriority `json:"priority"`
	ProjectManagerID   *uuid.UUID             `json:"project_manager_id,omitempty"`
	StartDate          *time.Time             `json:"start_date,omitempty"`
	DueDate            *time.Time             `json:"due_date,omitempty"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`
	ProgressPercentage int                    `json:"progress_percentage"`
	Tags               []string               `json:"tags,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
}

// ProjectMemberDTO represents a project membership in API responses
type ProjectMemberDTO struct {
	ID         uuid.UUID          `json:"id"`
	Role       models.ProjectRole `json:"role"`
	AssignedAt time.Time          `json:"assigned_at"`
	User       *UserDTO           `json:"user,omitempty"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:                 project.ID,
		Name:               project.Name,
		Slug:               project.Slug,
		Description:        project.Description,
		WorkspaceID:        project.WorkspaceID,
		Status:             project.Status,
		Priority:           project.Priority,
		ProjectManagerID:   project.ProjectManagerID,
		StartDate:          project.StartDate,
		DueDate:            project.DueDate,
		CompletedAt:        project.CompletedAt,
		ProgressPercentage: project.ProgressPercentage,
		Tags:               project.Tags,
		CreatedAt:          project.CreatedAt,
	}
}

// ToProjectMemberDTO converts a membership to its response shape.
func ToProjectMemberDTO(m models.ProjectMembership) ProjectMemberDTO {
	dto := ProjectMemberDTO{
		ID:         m.ID,
		Role:       m.Role,
		AssignedAt: m.AssignedAt,
	}
	if m.User.ID != uuid.Nil {
		user := ToUserDTO(m.User)
		dto.User = &user
	}
	return dto
}
