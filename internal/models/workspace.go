package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkspaceStatus tracks workspace lifecycle states.
type WorkspaceStatus string

const (
	WorkspaceActive    WorkspaceStatus = "active"
	WorkspaceArchived  WorkspaceStatus = "archived"
	WorkspaceSuspended WorkspaceStatus = "suspended"
)

// WorkspaceType categorizes the team and drives default settings.
type WorkspaceType string

const (
	WorkspaceDevelopment WorkspaceType = "development"
	WorkspaceMarketing   WorkspaceType = "marketing"
	WorkspaceDesign      WorkspaceType = "design"
	WorkspaceSales       WorkspaceType = "sales"
	WorkspaceSupport     WorkspaceType = "support"
	WorkspaceOperations  WorkspaceType = "operations"
	WorkspaceFinance     WorkspaceType = "finance"
	WorkspaceHR          WorkspaceType = "hr"
	WorkspaceGeneral     WorkspaceType = "general"
	WorkspaceClient      WorkspaceType = "client"
)

// Workspace is the team container between organizations and projects.
type Workspace struct {
	ID             uuid.UUID       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(100);not null" json:"name"`
	Slug           string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_workspaces_org_slug" json:"slug"`
	Description    string          `gorm:"type:text" json:"description"`
	OrganizationID uuid.UUID       `gorm:"type:varchar(36);not null;uniqueIndex:idx_workspaces_org_slug;index:idx_workspaces_org_status" json:"organization_id"`
	WorkspaceType  WorkspaceType   `gorm:"type:varchar(20);not null;default:'general'" json:"workspace_type"`
	Status         WorkspaceStatus `gorm:"type:varchar(20);not null;default:'active';index:idx_workspaces_org_status" json:"status"`
	IsPrivate      bool            `gorm:"not null;default:false" json:"is_private"`
	CreatedByID    uuid.UUID       `gorm:"type:varchar(36);not null" json:"created_by_id"`

	Color string `gorm:"type:varchar(7);default:'#3B82F6'" json:"color"`
	Icon  string `gorm:"type:varchar(50)" json:"icon"`

	Settings WorkspaceSettings `gorm:"type:text" json:"settings"`

	// Cached counters. Derived, recomputable state only; live counts are the
	// source of truth.
	ProjectCount int `gorm:"not null;default:0" json:"project_count"`
	MemberCount  int `gorm:"not null;default:0" json:"member_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization Organization          `gorm:"foreignKey:OrganizationID" json:"-"`
	CreatedBy    User                  `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Memberships  []WorkspaceMembership `gorm:"foreignKey:WorkspaceID" json:"memberships,omitempty"`
	Projects     []Project             `gorm:"foreignKey:WorkspaceID" json:"-"`
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// DefaultSettings returns the per-type defaults for a new workspace.
func DefaultWorkspaceSettings(workspaceType WorkspaceType) WorkspaceSettings {
	switch workspaceType {
	case WorkspaceDevelopment:
		return WorkspaceSettings{
			Version:               1,
			ProjectTemplate:       "agile_scrum",
			EnableTimeTracking:    true,
			EnableCodeIntegration: true,
			DefaultTaskStatuses:   []string{"Backlog", "In Progress", "Code Review", "Testing", "Done"},
		}
	case WorkspaceMarketing:
		return WorkspaceSettings{
			Version:                 1,
			ProjectTemplate:         "campaign",
			EnableAssetManagement:   true,
			EnableApprovalWorkflows: true,
			DefaultTaskStatuses:     []string{"Ideas", "Planning", "In Progress", "Review", "Published"},
		}
	case WorkspaceDesign:
		return WorkspaceSettings{
			Version:               1,
			ProjectTemplate:       "design_sprint",
			EnableAssetManagement: true,
			EnableVersionControl:  true,
			DefaultTaskStatuses:   []string{"Concept", "Design", "Review", "Approved", "Delivered"},
		}
	default:
		return WorkspaceSettings{
			Version:             1,
			ProjectTemplate:     "general",
			EnableTimeTracking:  false,
			DefaultTaskStatuses: []string{"To Do", "In Progress", "Done"},
		}
	}
}

// WorkspaceRole defines team-level roles, more granular than org roles.
type WorkspaceRole string

const (
	WorkspaceRoleAdmin       WorkspaceRole = "admin"
	WorkspaceRoleManager     WorkspaceRole = "manager"
	WorkspaceRoleMember      WorkspaceRole = "member"
	WorkspaceRoleContributor WorkspaceRole = "contributor"
	WorkspaceRoleViewer      WorkspaceRole = "viewer"
)

// WorkspaceMembership connects a user to a workspace. It may only exist while
// the user holds an active membership in the workspace's organization; the
// service layer enforces that invariant on every save.
type WorkspaceMembership struct {
	ID          uuid.UUID     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      uuid.UUID     `gorm:"type:varchar(36);not null;uniqueIndex:idx_ws_membership_user_ws" json:"user_id"`
	WorkspaceID uuid.UUID     `gorm:"type:varchar(36);not null;uniqueIndex:idx_ws_membership_user_ws" json:"workspace_id"`
	Role        WorkspaceRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	IsActive    bool          `gorm:"not null;default:true" json:"is_active"`

	InvitedByID *uuid.UUID `gorm:"type:varchar(36)" json:"invited_by_id"`
	InvitedAt   *time.Time `json:"invited_at"`
	JoinedAt    time.Time  `json:"joined_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
}

func (m *WorkspaceMembership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
