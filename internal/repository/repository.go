package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// Every repository exposes WithTx so a service can run a write and its
// lifecycle side effects inside one transaction.

// UserRepository defines the interface for user data access
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository

	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uuid.UUID) (*models.User, error)

	// FindByEmail finds a user by email (the login key)
	FindByEmail(email string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// SoftDelete marks a user deleted and inactive
	SoftDelete(id uuid.UUID) error

	// Restore reactivates a soft-deleted user
	Restore(id uuid.UUID) error
}

// PlanRepository defines access to the subscription plan catalog.
type PlanRepository interface {
	WithTx(tx *gorm.DB) PlanRepository

	Create(plan *models.SubscriptionPlan) error

	FindByType(planType models.PlanType) (*models.SubscriptionPlan, error)

	FindByID(id uuid.UUID) (*models.SubscriptionPlan, error)

	// CountLiveSubscriptions counts non-terminal subscriptions referencing the
	// plan; plans with live subscriptions are protected from deletion.
	CountLiveSubscriptions(planID uuid.UUID) (int64, error)

	// Delete removes a plan from the catalog
	Delete(id uuid.UUID) error
}

// OrganizationRepository defines the interface for organization data access,
// including subscriptions and the organization-level membership ledger.
type OrganizationRepository interface {
	WithTx(tx *gorm.DB) OrganizationRepository

	Create(org *models.Organization) error

	FindByID(id uuid.UUID) (*models.Organization, error)

	FindBySlug(slug string) (*models.Organization, error)

	// SlugExists reports whether a slug is taken by any organization,
	// including soft-deleted ones (slugs are never recycled).
	SlugExists(slug string) (bool, error)

	Update(org *models.Organization) error

	// SoftDelete marks the organization deleted and cancelled.
	SoftDelete(id uuid.UUID, now time.Time) error

	// CreateSubscription records a new subscription for an organization.
	CreateSubscription(sub *models.Subscription) error

	// CurrentSubscription returns the first non-terminal (active or trialing)
	// subscription by insertion order, or gorm.ErrRecordNotFound.
	CurrentSubscription(orgID uuid.UUID) (*models.Subscription, error)

	UpdateSubscription(sub *models.Subscription) error

	// CancelLiveSubscriptions cancels every active/trialing subscription.
	CancelLiveSubscriptions(orgID uuid.UUID, now time.Time) error

	// AddMember adds a member to an organization
	AddMember(member *models.OrganizationMembership) error

	UpdateMember(member *models.OrganizationMembership) error

	// FindMember finds a membership regardless of active flag
	FindMember(orgID, userID uuid.UUID) (*models.OrganizationMembership, error)

	// FindActiveMember finds an active membership for (org, user)
	FindActiveMember(orgID, userID uuid.UUID) (*models.OrganizationMembership, error)

	// ListMembers lists active members of an organization
	ListMembers(orgID uuid.UUID) ([]models.OrganizationMembership, error)

	// ListMembershipsByUserID lists active memberships for a user
	ListMembershipsByUserID(userID uuid.UUID) ([]models.OrganizationMembership, error)

	// CountActiveMembers counts active memberships in an organization
	CountActiveMembers(orgID uuid.UUID) (int64, error)

	// CountActiveWorkspaces counts non-deleted workspaces in an organization
	CountActiveWorkspaces(orgID uuid.UUID) (int64, error)
}

// WorkspaceRepository defines the interface for workspace data access.
type WorkspaceRepository interface {
	WithTx(tx *gorm.DB) WorkspaceRepository

	Create(workspace *models.Workspace) error

	FindByID(id uuid.UUID, preload ...string) (*models.Workspace, error)

	SlugExists(orgID uuid.UUID, slug string) (bool, error)

	Update(workspace *models.Workspace) error

	// SoftDelete marks the workspace deleted and archived.
	SoftDelete(id uuid.UUID) error

	ListByOrganization(orgID uuid.UUID) ([]models.Workspace, error)

	AddMember(member *models.WorkspaceMembership) error

	UpdateMember(member *models.WorkspaceMembership) error

	// FindMember finds a membership regardless of active flag
	FindMember(workspaceID, userID uuid.UUID) (*models.WorkspaceMembership, error)

	// FindActiveMember finds an active membership for (workspace, user)
	FindActiveMember(workspaceID, userID uuid.UUID) (*models.WorkspaceMembership, error)

	ListMembers(workspaceID uuid.UUID) ([]models.WorkspaceMembership, error)

	CountActiveMembers(workspaceID uuid.UUID) (int64, error)

	CountActiveProjects(workspaceID uuid.UUID) (int64, error)
}

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	WithTx(tx *gorm.DB) ProjectRepository

	Create(project *models.Project) error

	FindByID(id uuid.UUID, preload ...string) (*models.Project, error)

	SlugExists(workspaceID uuid.UUID, slug string) (bool, error)

	Update(project *models.Project) error

	// UpdateProgress writes only the cached progress column.
	UpdateProgress(id uuid.UUID, progress int) error

	// SoftDelete archives the project and soft-deletes its tasks.
	SoftDelete(id uuid.UUID, now time.Time) error

	ListByWorkspace(workspaceID uuid.UUID) ([]models.Project, error)

	AddMember(member *models.ProjectMembership) error

	// FindActiveMember finds an active membership for (project, user)
	FindActiveMember(projectID, userID uuid.UUID) (*models.ProjectMembership, error)

	ListMembers(projectID uuid.UUID) ([]models.ProjectMembership, error)

	// CountTasks returns (total, done) counts of non-deleted tasks.
	CountTasks(projectID uuid.UUID) (total int64, done int64, err error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID  *uuid.UUID
	Status     *models.TaskStatus
	AssigneeID *uuid.UUID
	DueFrom    *time.Time
	DueTo      *time.Time
	Page       int
	PageSize   int
}

// TaskRepository defines the interface for task and dependency data access.
type TaskRepository interface {
	WithTx(tx *gorm.DB) TaskRepository

	Create(task *models.Task) error

	FindByID(id uuid.UUID, preload ...string) (*models.Task, error)

	List(filter TaskFilter) ([]models.Task, int64, error)

	Update(task *models.Task) error

	// SoftDelete removes the task and hard-deletes dependency edges touching it.
	SoftDelete(id uuid.UUID) error

	CreateDependency(dep *models.TaskDependency) error

	DependencyExists(fromID, toID uuid.UUID, depType models.DependencyType) (bool, error)

	// CountUnresolvedBlockers counts non-deleted tasks that block the given
	// task and are not completed or verified.
	CountUnresolvedBlockers(taskID uuid.UUID) (int64, error)

	// ListBlockedDependents returns tasks currently BLOCKED that list the given
	// task as a blocking dependency.
	ListBlockedDependents(taskID uuid.UUID) ([]models.Task, error)

	// DeleteDependenciesTouching removes every edge where the task appears on
	// either side.
	DeleteDependenciesTouching(taskID uuid.UUID) error
}
