package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus tracks project lifecycle states.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
	ProjectArchived  ProjectStatus = "archived"
)

// ProjectPriority levels for resource allocation.
type ProjectPriority string

const (
	ProjectPriorityLow      ProjectPriority = "low"
	ProjectPriorityMedium   ProjectPriority = "medium"
	ProjectPriorityHigh     ProjectPriority = "high"
	ProjectPriorityUrgent   ProjectPriority = "urgent"
	ProjectPriorityCritical ProjectPriority = "critical"
)

// Project is the primary work container within a workspace.
type Project struct {
	ID          uuid.UUID       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(200);not null" json:"name"`
	Slug        string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_projects_ws_slug" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	WorkspaceID uuid.UUID       `gorm:"type:varchar(36);not null;uniqueIndex:idx_projects_ws_slug;index:idx_projects_ws_status" json:"workspace_id"`
	Status      ProjectStatus   `gorm:"type:varchar(20);not null;default:'planning';index:idx_projects_ws_status" json:"status"`
	Priority    ProjectPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`

	ProjectManagerID *uuid.UUID `gorm:"type:varchar(36);index" json:"project_manager_id"`
	CreatedByID      uuid.UUID  `gorm:"type:varchar(36);not null" json:"created_by_id"`

	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`

	EstimatedHours *int    `json:"estimated_hours"`
	Budget         float64 `gorm:"type:decimal(12,2);default:0" json:"budget"`

	// Cached completion percentage (0-100). Derived state; rebuilt from live
	// task counts whenever tasks change.
	ProgressPercentage int `gorm:"not null;default:0" json:"progress_percentage"`

	Tags     StringList      `gorm:"type:text" json:"tags"`
	Settings ProjectSettings `gorm:"type:text" json:"settings"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Workspace      Workspace           `gorm:"foreignKey:WorkspaceID" json:"-"`
	ProjectManager *User               `gorm:"foreignKey:ProjectManagerID" json:"project_manager,omitempty"`
	CreatedBy      User                `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Memberships    []ProjectMembership `gorm:"foreignKey:ProjectID" json:"memberships,omitempty"`
	Tasks          []Task              `gorm:"foreignKey:ProjectID" json:"-"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsOverdue reports whether the project is past its due date and still open.
func (p *Project) IsOverdue(now time.Time) bool {
	if p.DueDate == nil {
		return false
	}
	switch p.Status {
	case ProjectCompleted, ProjectCancelled, ProjectArchived:
		return false
	}
	return now.After(*p.DueDate)
}

// ProjectRole defines project-level roles.
type ProjectRole string

const (
	ProjectRoleLead     ProjectRole = "lead"
	ProjectRoleMember   ProjectRole = "member"
	ProjectRoleReviewer ProjectRole = "reviewer"
	ProjectRoleObserver ProjectRole = "observer"
)

// ProjectMembership assigns a user to a project with a role.
type ProjectMembership struct {
	ID        uuid.UUID   `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    uuid.UUID   `gorm:"type:varchar(36);not null;uniqueIndex:idx_proj_membership_user_proj" json:"user_id"`
	ProjectID uuid.UUID   `gorm:"type:varchar(36);not null;uniqueIndex:idx_proj_membership_user_proj" json:"project_id"`
	Role      ProjectRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	IsActive  bool        `gorm:"not null;default:true" json:"is_active"`

	AssignedAt   time.Time  `json:"assigned_at"`
	AssignedByID *uuid.UUID `gorm:"type:varchar(36)" json:"assigned_by_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (m *ProjectMembership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
