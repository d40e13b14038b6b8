package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/repository"
)

// TaskService owns tasks and their dependency graph. Only BLOCKS edges affect
// scheduling: completing a task re-evaluates its direct blocked dependents,
// and a new BLOCKS edge onto a TODO task moves it to BLOCKED. Unblock
// propagation is single-hop per completion; chains unblock over successive
// completions rather than in one sweep.
type TaskService struct {
	db          *gorm.DB
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	clock       clock.Clock
	logger      *zap.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	db *gorm.DB,
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	clk clock.Clock,
	logger *zap.Logger,
) *TaskService {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		db:          db,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		clock:       clk,
		logger:      logger,
	}
}

// CreateTaskInput represents parameters to create a task.
type CreateTaskInput struct {
	ProjectID          uuid.UUID
	CreatorID          uuid.UUID
	Title              string
	Description        string
	AcceptanceCriteria string
	Priority           models.TaskPriority
	AssigneeID         *uuid.UUID
	DueDate            *time.Time
	EstimatedHours     *float64
	Tags               []string
}

// CreateTask creates a task. The creator, and the assignee when set, are
// auto-enrolled as project MEMBERs unless they already hold an active
// membership. The project's cached progress is rebuilt in the same
// transaction since the new task dilutes the completion ratio.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, rejected(RejectionInvalidInput, "task title cannot be empty")
	}

	if _, err := s.projectRepo.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		Title:              input.Title,
		Description:        input.Description,
		AcceptanceCriteria: input.AcceptanceCriteria,
		ProjectID:          input.ProjectID,
		Status:             models.TaskTodo,
		Priority:           priority,
		AssigneeID:         input.AssigneeID,
		CreatedByID:        input.CreatorID,
		DueDate:            input.DueDate,
		EstimatedHours:     input.EstimatedHours,
		Tags:               input.Tags,
	}

	now := s.clock.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.taskRepo.WithTx(tx)
		projects := s.projectRepo.WithTx(tx)

		if err := tasks.Create(task); err != nil {
			return translateWriteError(err, "failed to create task")
		}

		if err := s.ensureProjectMember(projects, input.ProjectID, input.CreatorID, now); err != nil {
			return err
		}
		if input.AssigneeID != nil && *input.AssigneeID != input.CreatorID {
			if err := s.ensureProjectMember(projects, input.ProjectID, *input.AssigneeID, now); err != nil {
				return err
			}
		}

		_, err := recalculateProgress(projects, input.ProjectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		zap.String("task_id", task.ID.String()),
		zap.String("project_id", input.ProjectID.String()),
		zap.String("action", "task_created"),
	)

	return task, nil
}

// GetTask returns a task by ID.
func (s *TaskService) GetTask(id uuid.UUID, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks returns tasks matching the filter plus the unpaginated total.
func (s *TaskService) ListTasks(filter repository.TaskFilter) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateTaskInput holds mutable task fields. Status changes go through
// ChangeStatus so lifecycle bookkeeping applies.
type UpdateTaskInput struct {
	Title              *string
	Description        *string
	AcceptanceCriteria *string
	Priority           *models.TaskPriority
	AssigneeID         *uuid.UUID
	ClearAssignee      bool
	DueDate            *time.Time
	EstimatedHours     *float64
	ActualHours        *float64
	Tags               *[]string
}

// UpdateTask updates non-status task fields. A newly set assignee is
// auto-enrolled as a project MEMBER.
func (s *TaskService) UpdateTask(id uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, rejected(RejectionInvalidInput, "task title cannot be empty")
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.AcceptanceCriteria != nil {
		task.AcceptanceCriteria = *input.AcceptanceCriteria
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		task.AssigneeID = input.AssigneeID
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.EstimatedHours != nil {
		task.EstimatedHours = input.EstimatedHours
	}
	if input.ActualHours != nil {
		task.ActualHours = *input.ActualHours
	}
	if input.Tags != nil {
		task.Tags = *input.Tags
	}

	now := s.clock.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.WithTx(tx).Update(task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if input.AssigneeID != nil && !input.ClearAssignee {
			return s.ensureProjectMember(s.projectRepo.WithTx(tx), task.ProjectID, *input.AssigneeID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ChangeStatus moves a task to a new status. First entry into IN_PROGRESS
// stamps started_at; first entry into COMPLETED or VERIFIED stamps
// completed_at. The project's cached progress is rebuilt, and when the task
// is done its directly blocked dependents with no other unresolved blockers
// move back to TODO, all within one transaction.
func (s *TaskService) ChangeStatus(id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	if !status.IsValid() {
		return nil, rejected(RejectionInvalidInput, fmt.Sprintf("unknown task status %q", status))
	}

	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	if task.Status == status {
		return task, nil
	}

	now := s.clock.Now()
	task.Status = status
	if status == models.TaskInProgress && task.StartedAt == nil {
		task.StartedAt = &now
	}
	if status.IsDone() && task.CompletedAt == nil {
		task.CompletedAt = &now
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.taskRepo.WithTx(tx)

		if err := tasks.Update(task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		if _, err := recalculateProgress(s.projectRepo.WithTx(tx), task.ProjectID); err != nil {
			return err
		}

		if status.IsDone() {
			return s.unblockDependents(tasks, task.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task status changed",
		zap.String("task_id", task.ID.String()),
		zap.String("status", string(status)),
		zap.String("action", "task_status_changed"),
	)

	return task, nil
}

// unblockDependents re-evaluates tasks directly blocked by the completed
// task. Each dependent with zero remaining unresolved blockers returns to
// TODO. One hop only; further unblocking happens when those tasks complete.
func (s *TaskService) unblockDependents(tasks repository.TaskRepository, completedID uuid.UUID) error {
	dependents, err := tasks.ListBlockedDependents(completedID)
	if err != nil {
		return fmt.Errorf("failed to list blocked dependents: %w", err)
	}

	for i := range dependents {
		dependent := &dependents[i]
		remaining, err := tasks.CountUnresolvedBlockers(dependent.ID)
		if err != nil {
			return fmt.Errorf("failed to count blockers: %w", err)
		}
		if remaining > 0 {
			continue
		}
		dependent.Status = models.TaskTodo
		if err := tasks.Update(dependent); err != nil {
			return fmt.Errorf("failed to unblock task: %w", err)
		}
		s.logger.Info("task unblocked",
			zap.String("task_id", dependent.ID.String()),
			zap.String("completed_task_id", completedID.String()),
			zap.String("action", "task_unblocked"),
		)
	}
	return nil
}

// IsBlocked reports whether a task is blocked: either its status is BLOCKED
// or some non-deleted blocking dependency is not yet done.
func (s *TaskService) IsBlocked(id uuid.UUID) (bool, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return false, err
	}
	if task.Status == models.TaskBlocked {
		return true, nil
	}
	remaining, err := s.taskRepo.CountUnresolvedBlockers(task.ID)
	if err != nil {
		return false, fmt.Errorf("failed to count blockers: %w", err)
	}
	return remaining > 0, nil
}

// CanStart is the scheduling complement of IsBlocked.
func (s *TaskService) CanStart(id uuid.UUID) (bool, error) {
	blocked, err := s.IsBlocked(id)
	if err != nil {
		return false, err
	}
	return !blocked, nil
}

// CreateDependencyInput represents parameters to create a dependency edge.
type CreateDependencyInput struct {
	FromTaskID     uuid.UUID
	ToTaskID       uuid.UUID
	DependencyType models.DependencyType
	CreatedByID    *uuid.UUID
}

// CreateDependency adds a directed edge from one task to another. Self-loops
// and cross-project edges are rejected; duplicate edges of the same type are
// rejected. A new BLOCKS edge onto a TODO task moves that task to BLOCKED in
// the same transaction. Longer cycles are not rejected by construction.
func (s *TaskService) CreateDependency(input CreateDependencyInput) (*models.TaskDependency, error) {
	if input.FromTaskID == input.ToTaskID {
		return nil, rejected(RejectionSelfDependency, "a task cannot depend on itself")
	}

	fromTask, err := s.GetTask(input.FromTaskID)
	if err != nil {
		return nil, err
	}
	toTask, err := s.GetTask(input.ToTaskID)
	if err != nil {
		return nil, err
	}
	if fromTask.ProjectID != toTask.ProjectID {
		return nil, rejected(RejectionCrossProject, "dependencies cannot cross project boundaries")
	}

	depType := input.DependencyType
	if depType == "" {
		depType = models.DependencyBlocks
	}

	exists, err := s.taskRepo.DependencyExists(input.FromTaskID, input.ToTaskID, depType)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing dependency: %w", err)
	}
	if exists {
		return nil, rejected(RejectionDuplicate, "dependency already exists")
	}

	dep := &models.TaskDependency{
		FromTaskID:     input.FromTaskID,
		ToTaskID:       input.ToTaskID,
		DependencyType: depType,
		CreatedByID:    input.CreatedByID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.taskRepo.WithTx(tx)

		if err := tasks.CreateDependency(dep); err != nil {
			return translateWriteError(err, "failed to create dependency")
		}

		if depType == models.DependencyBlocks && toTask.Status == models.TaskTodo {
			toTask.Status = models.TaskBlocked
			if err := tasks.Update(toTask); err != nil {
				return fmt.Errorf("failed to block task: %w", err)
			}
			s.logger.Info("task blocked by new dependency",
				zap.String("task_id", toTask.ID.String()),
				zap.String("blocking_task_id", fromTask.ID.String()),
				zap.String("action", "task_blocked"),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dep, nil
}

// DeleteTask removes the task together with every dependency edge touching
// it, then rebuilds the project's cached progress.
func (s *TaskService) DeleteTask(id uuid.UUID) error {
	task, err := s.GetTask(id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.WithTx(tx).SoftDelete(task.ID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		_, err := recalculateProgress(s.projectRepo.WithTx(tx), task.ProjectID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("task deleted",
		zap.String("task_id", task.ID.String()),
		zap.String("project_id", task.ProjectID.String()),
		zap.String("action", "task_deleted"),
	)
	return nil
}

// ensureProjectMember creates a MEMBER project membership when the user does
// not already hold an active one.
func (s *TaskService) ensureProjectMember(projects repository.ProjectRepository, projectID, userID uuid.UUID, now time.Time) error {
	_, err := projects.FindActiveMember(projectID, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check project membership: %w", err)
	}

	membership := &models.ProjectMembership{
		UserID:     userID,
		ProjectID:  projectID,
		Role:       models.ProjectRoleMember,
		IsActive:   true,
		AssignedAt: now,
	}
	if err := projects.AddMember(membership); err != nil {
		// A racing enrolment is fine; the membership exists either way.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to add project membership: %w", err)
	}
	return nil
}
