package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

func TestTaskService_CreateTask_AutoMembership(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPlan(t, models.PlanFree, 2, 10, 5)
	owner := env.createUser(t, "owner@example.com")
	assignee := env.createUser(t, "dev@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Backend")

	task, err := env.tasks.CreateTask(CreateTaskInput{
		ProjectID:  project.ID,
		CreatorID:  owner.ID,
		Title:      "Wire up sessions",
		AssigneeID: &assignee.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.TaskTodo, task.Status)
	require.Equal(t, models.TaskPriorityMedium, task.Priority)

	// The assignee was not a project member; creating the task enrolled them.
	membership, err := env.projectRepo.FindActiveMember(project.ID, assignee.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProjectRoleMember, membership.Role)

	// The creator already holds a LEAD membership and keeps it.
	creatorMembership, err := env.projectRepo.FindActiveMember(project.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProjectRoleLead, creatorMembership.Role)
}

func TestTaskService_CreateTask_EmptyTitle(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Backend")

	_, err := env.tasks.CreateTask(CreateTaskInput{
		ProjectID: project.ID,
		CreatorID: owner.ID,
		Title:     "   ",
	})
	var rejected *RejectedWriteError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, RejectionInvalidInput, rejected.Code)
}

func TestTaskService_ChangeStatus_Timestamps(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Backend")
	task := env.createTask(t, project, owner, "Implement login")

	started := env.clock.Now()
	task, err := env.tasks.ChangeStatus(task.ID, models.TaskInProgress)
	require.NoError(t, err)
	require.NotNil(t, task.StartedAt)
	require.WithinDuration(t, started, *task.StartedAt, time.Second)

	env.clock.Add(2 * time.Hour)

	task, err = env.tasks.ChangeStatus(task.ID, models.TaskCompleted)
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	require.WithinDuration(t, env.clock.Now(), *task.CompletedAt, time.Second)

	// Reopening and completing again keeps the first timestamps.
	_, err = env.tasks.ChangeStatus(task.ID, models.TaskTodo)
	require.NoError(t, err)
	task, err = env.tasks.ChangeStatus(task.ID, models.TaskCompleted)
	require.NoError(t, err)
	require.WithinDuration(t, started, *task.StartedAt, time.Second)
}

func TestTaskService_ChangeStatus_UpdatesProgress(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Backend")
	first := env.createTask(t, project, owner, "One")
	env.createTask(t, project, owner, "Two")

	_, err := env.tasks.ChangeStatus(first.ID, models.TaskCompleted)
	require.NoError(t, err)
	require.Equal(t, 50, env.reloadProject(t, project.ID).ProgressPercentage)

	_, err = env.tasks.ChangeStatus(first.ID, models.TaskTodo)
	require.NoError(t, err)
	require.Equal(t, 0, env.reloadProject(t, project.ID).ProgressPercentage)
}

func TestTaskService_ChangeStatus_RejectsUnknownStatus(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Backend")
	task := env.createTask(t, project, owner, "One")

	_, err := env.tasks.ChangeStatus(task.ID, models.TaskStatus("bogus"))
	require.Error(t, err)

	var rejection *RejectedWriteError
	require.ErrorAs(t, err, &rejection)
	require.Equal(t, RejectionInvalidInput, rejection.Code)

	// The stored task keeps its previous status.
	require.Equal(t, models.TaskTodo, env.reloadTask(t, task.ID).Status)
}

func TestTaskService_CreateDependency_Rejections(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPlan(t, models.PlanFree, 2, 10, 5)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	projectA := env.createProject(t, workspace, owner, "Alpha")
	projectB := env.createProject(t, workspace, owner, "Beta")
	taskA := env.createTask(t, projectA, owner, "A")
	taskB := env.createTask(t, projectA, owner, "B")
	foreign := env.createTask(t, projectB, owner, "Elsewhere")

	_, err := env.tasks.CreateDependency(CreateDependencyInput{FromTaskID: taskA.ID, ToTaskID: taskA.ID})
	require.ErrorIs(t, err, ErrSelfDependency)

	_, err = env.tasks.CreateDependency(CreateDependencyInput{FromTaskID: taskA.ID, ToTaskID: foreign.ID})
	require.ErrorIs(t, err, ErrCrossProject)

	_, err = env.tasks.CreateDependency(CreateDependencyInput{FromTaskID: taskA.ID, ToTaskID: taskB.ID})
	require.NoError(t, err)

	_, err = env.tasks.CreateDependency(CreateDependencyInput{FromTaskID: taskA.ID, ToTaskID: taskB.ID})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestTaskService_CreateDependency_BlocksTodoTask(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Backend")
	blocker := env.createTask(t, project, owner, "Schema migration")
	dependent := env.createTask(t, project, owner, "Data backfill")
	inFlight := env.createTask(t, project, owner, "Already running")

	_, err := env.tasks.ChangeStatus(inFlight.ID, models.TaskInProgress)
	require.NoError(t, err)

	dep, err := env.tasks.CreateDependency(CreateDependencyInput{
		FromTaskID: blocker.ID,
		ToTaskID:   dependent.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.DependencyBlocks, dep.DependencyType)
	require.Equal(t, models.TaskBlocked, env.reloadTask(t, dependent.ID).Status)

	// A BLOCKS edge onto a task already in progress leaves its status alone.
	_, err = env.tasks.CreateDependency(CreateDependencyInput{
		FromTaskID: blocker.ID,
		ToTaskID:   inFlight.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.TaskInProgress, env.reloadTask(t, inFlight.ID).Status)

	// A RELATED edge never touches status.
	other := env.createTask(t, project, owner, "Docs")
	_, err = env.tasks.CreateDependency(CreateDependencyInput{
		FromTaskID:     blocker.ID,
		ToTaskID:       other.ID,
		DependencyType: models.DependencyRelated,
	})
	require.NoError(t, err)
	require.Equal(t, models.TaskTodo, env.reloadTask(t, other.ID).Status)
}

func TestTaskService_Unblock_WaitsForAllBlockers(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Backend")
	first := env.createTask(t, project, owner, "First blocker")
	second := env.createTask(t, project, owner, "Second blocker")
	dependent := env.createTask(t, project, owner, "Dependent")

	for _, blocker := range []*models.Task{first, second} {
		_, err := env.tasks.CreateDependency(CreateDependencyInput{
			FromTaskID: blocker.ID,
			ToTaskID:   dependent.ID,
		})
		require.NoError(t, err)
	}
	require.Equal(t, models.TaskBlocked, env.reloadTask(t, dependent.ID).Status)

	// One blocker done is not enough.
	_, err := env.tasks.ChangeStatus(first.ID, models.TaskCompleted)
	require.NoError(t, err)
	require.Equal(t, models.TaskBlocked, env.reloadTask(t, dependent.ID).Status)

	blocked, err := env.tasks.IsBlocked(dependent.ID)
	require.NoError(t, err)
	require.True(t, blocked)

	// Completing the last blocker releases the dependent back to TODO.
	_, err = env.tasks.ChangeStatus(second.ID, models.TaskCompleted)
	require.NoError(t, err)
	require.Equal(t, models.TaskTodo, env.reloadTask(t, dependent.ID).Status)

	blocked, err = env.tasks.IsBlocked(dependent.ID)
	require.NoError(t, err)
	require.False(t, blocked)

	canStart, err := env.tasks.CanStart(dependent.ID)
	require.NoError(t, err)
	require.True(t, canStart)
}

func TestTaskService_UpdateTask_AssigneeChange(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	newcomer := env.createUser(t, "newcomer@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Backend")
	task := env.createTask(t, project, owner, "Refactor")

	updated, err := env.tasks.UpdateTask(task.ID, UpdateTaskInput{AssigneeID: &newcomer.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	require.Equal(t, newcomer.ID, *updated.AssigneeID)

	_, err = env.projectRepo.FindActiveMember(project.ID, newcomer.ID)
	require.NoError(t, err)

	updated, err = env.tasks.UpdateTask(task.ID, UpdateTaskInput{ClearAssignee: true})
	require.NoError(t, err)
	require.Nil(t, updated.AssigneeID)
}

func TestTaskService_DeleteTask(t *testing.T) {
	env := setupTestEnv(t)
	env.seedFreePlan(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrganization(t, owner, "Acme")
	workspace := env.createWorkspace(t, org, owner, "Engineering", models.WorkspaceGeneral)
	project := env.createProject(t, workspace, owner, "Backend")
	blocker := env.createTask(t, project, owner, "Blocker")
	dependent := env.createTask(t, project, owner, "Dependent")
	done := env.createTask(t, project, owner, "Done")

	_, err := env.tasks.CreateDependency(CreateDependencyInput{FromTaskID: blocker.ID, ToTaskID: dependent.ID})
	require.NoError(t, err)
	_, err = env.tasks.ChangeStatus(done.ID, models.TaskCompleted)
	require.NoError(t, err)
	require.Equal(t, 33, env.reloadProject(t, project.ID).ProgressPercentage)

	require.NoError(t, env.tasks.DeleteTask(blocker.ID))

	_, err = env.tasks.GetTask(blocker.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)

	// The edge is gone with the blocker, so the dependent has no unresolved
	// blockers left even though its status stays wherever it was.
	count, err := env.taskRepo.CountUnresolvedBlockers(dependent.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	// 1 of 2 remaining tasks done.
	require.Equal(t, 50, env.reloadProject(t, project.ID).ProgressPercentage)
}
