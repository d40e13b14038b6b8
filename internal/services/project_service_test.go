package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

func TestProjectService_CreateProject(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPlan(t, models.PlanFree, 2, 10, 5)
	owner := env.createUser(t, "owner@example.com")
	manager := env.createUser(t, "manager@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceDevelopment)

	project, err := env.projects.CreateProject(CreateProjectInput{
		WorkspaceID:      workspace.ID,
		CreatorID:        owner.ID,
		Name:             "Launch Website",
		ProjectManagerID: &manager.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "launch-website", project.Slug)
	require.Equal(t, models.ProjectPlanning, project.Status)

	// Creator and the distinct manager both get LEAD memberships.
	creatorMembership, err := env.projectRepo.FindActiveMember(project.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProjectRoleLead, creatorMembership.Role)

	managerMembership, err := env.projectRepo.FindActiveMember(project.ID, manager.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProjectRoleLead, managerMembership.Role)

	// Settings derive from the workspace's type defaults.
	stored := env.reloadProject(t, project.ID)
	require.Equal(t, "agile_scrum", stored.Settings.Workflow)
	require.True(t, stored.Settings.EnableTimeTracking)
	require.Contains(t, stored.Settings.TaskStatuses, "Testing")

	// The workspace's cached project count is rebuilt from a live count.
	ws, err := env.workspaces.GetWorkspace(workspace.ID)
	require.NoError(t, err)
	require.Equal(t, 1, ws.ProjectCount)
}

func TestProjectService_CreateProject_ManagerSameAsCreator(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPlan(t, models.PlanFree, 2, 10, 5)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)

	project, err := env.projects.CreateProject(CreateProjectInput{
		WorkspaceID:      workspace.ID,
		CreatorID:        owner.ID,
		Name:             "Solo",
		ProjectManagerID: &owner.ID,
	})
	require.NoError(t, err)

	members, err := env.projects.ListMembers(project.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestProjectService_CreateProject_InvalidDates(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)

	start := env.clock.Now().Add(48 * time.Hour)
	due := env.clock.Now().Add(24 * time.Hour)

	_, err := env.projects.CreateProject(CreateProjectInput{
		WorkspaceID: workspace.ID,
		CreatorID:   owner.ID,
		Name:        "Backwards",
		StartDate:   &start,
		DueDate:     &due,
	})
	require.ErrorIs(t, err, ErrInvalidDates)
}

func TestProjectService_CreateProject_LimitExceeded(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t) // max_projects_per_workspace = 1
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)

	env.createProject(t, workspace, owner, "First")

	_, err := env.projects.CreateProject(CreateProjectInput{
		WorkspaceID: workspace.ID,
		CreatorID:   owner.ID,
		Name:        "Second",
	})
	require.ErrorIs(t, err, ErrLimitExceeded)

	count, err := env.workspaceRepo.CountActiveProjects(workspace.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestProjectService_RecalculateProgress(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPlan(t, models.PlanFree, 2, 10, 5)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Progress")

	// A project without tasks sits at zero.
	progress, err := env.projects.RecalculateProgress(project.ID)
	require.NoError(t, err)
	require.Equal(t, 0, progress)

	first := env.createTask(t, project, owner, "One")
	env.createTask(t, project, owner, "Two")
	env.createTask(t, project, owner, "Three")

	_, err = env.tasks.ChangeStatus(first.ID, models.TaskCompleted)
	require.NoError(t, err)

	// 1 of 3 done rounds to 33.
	stored := env.reloadProject(t, project.ID)
	require.Equal(t, 33, stored.ProgressPercentage)

	// Recomputing with unchanged inputs is idempotent.
	progress, err = env.projects.RecalculateProgress(project.ID)
	require.NoError(t, err)
	require.Equal(t, 33, progress)
	require.Equal(t, 33, env.reloadProject(t, project.ID).ProgressPercentage)
}

func TestProjectService_UpdateProject_CompletionTimestamp(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Ship It")

	completed := models.ProjectCompleted
	updated, err := env.projects.UpdateProject(project.ID, UpdateProjectInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	require.WithinDuration(t, env.clock.Now(), *updated.CompletedAt, time.Second)
}

func TestProjectService_DeleteProject(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPlan(t, models.PlanFree, 2, 10, 5)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Doomed")
	task := env.createTask(t, project, owner, "Orphan")

	require.NoError(t, env.projects.DeleteProject(project.ID))

	_, err := env.projects.GetProject(project.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)

	// Tasks are soft-deleted with the project.
	_, err = env.tasks.GetTask(task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)

	ws, err := env.workspaces.GetWorkspace(workspace.ID)
	require.NoError(t, err)
	require.Equal(t, 0, ws.ProjectCount)
}
