package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/repository"
	"github.com/deyby01/nexus-pm-v2/internal/utils"
)

// ProjectService owns project lifecycle: creation gated by the plan's
// projects-per-workspace ceiling, membership assignment, and the cached
// progress percentage rebuilt from live task counts.
type ProjectService struct {
	db            *gorm.DB
	projectRepo   repository.ProjectRepository
	workspaceRepo repository.WorkspaceRepository
	limits        *LimitsService
	clock         clock.Clock
	logger        *zap.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	db *gorm.DB,
	projectRepo repository.ProjectRepository,
	workspaceRepo repository.WorkspaceRepository,
	limits *LimitsService,
	clk clock.Clock,
	logger *zap.Logger,
) *ProjectService {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		db:            db,
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		limits:        limits,
		clock:         clk,
		logger:        logger,
	}
}

// CreateProjectInput represents parameters to create a project.
type CreateProjectInput struct {
	WorkspaceID      uuid.UUID
	CreatorID        uuid.UUID
	Name             string
	Description      string
	Priority         models.ProjectPriority
	ProjectManagerID *uuid.UUID
	StartDate        *time.Time
	DueDate          *time.Time
	EstimatedHours   *int
	Budget           float64
	Tags             []string
}

// CreateProject creates a project in a workspace. Creation is rejected when
// the workspace has reached the plan's projects-per-workspace ceiling or when
// start_date is after due_date. The creator gets a LEAD membership; a distinct
// project manager gets a second LEAD membership. The workspace's cached
// project count is rebuilt from a live count in the same transaction.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, rejected(RejectionInvalidInput, "project name cannot be empty")
	}
	if input.StartDate != nil && input.DueDate != nil && input.StartDate.After(*input.DueDate) {
		return nil, rejected(RejectionInvalidDates, "start date cannot be after due date")
	}

	workspace, err := s.workspaceRepo.FindByID(input.WorkspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	priority := input.Priority
	if priority == "" {
		priority = models.ProjectPriorityMedium
	}

	project := &models.Project{
		Name:             input.Name,
		Description:      input.Description,
		WorkspaceID:      workspace.ID,
		Status:           models.ProjectPlanning,
		Priority:         priority,
		ProjectManagerID: input.ProjectManagerID,
		CreatedByID:      input.CreatorID,
		StartDate:        input.StartDate,
		DueDate:          input.DueDate,
		EstimatedHours:   input.EstimatedHours,
		Budget:           input.Budget,
		Tags:             input.Tags,
	}

	now := s.clock.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		projects := s.projectRepo.WithTx(tx)
		workspaces := s.workspaceRepo.WithTx(tx)

		withinLimit, err := s.limits.WithTx(tx).CheckUsageLimit(workspace.ID, LimitProjectsPerWorkspace)
		if err != nil {
			return fmt.Errorf("failed to check project limit: %w", err)
		}
		if !withinLimit {
			return rejected(RejectionLimitExceeded, "workspace has reached its project limit")
		}

		slug, err := uniqueProjectSlug(projects, workspace.ID, input.Name)
		if err != nil {
			return fmt.Errorf("failed to generate slug: %w", err)
		}
		project.Slug = slug

		if err := projects.Create(project); err != nil {
			return translateWriteError(err, "failed to create project")
		}

		creatorMembership := &models.ProjectMembership{
			UserID:     input.CreatorID,
			ProjectID:  project.ID,
			Role:       models.ProjectRoleLead,
			IsActive:   true,
			AssignedAt: now,
		}
		if err := projects.AddMember(creatorMembership); err != nil {
			return translateWriteError(err, "failed to add creator membership")
		}

		if input.ProjectManagerID != nil && *input.ProjectManagerID != input.CreatorID {
			managerMembership := &models.ProjectMembership{
				UserID:       *input.ProjectManagerID,
				ProjectID:    project.ID,
				Role:         models.ProjectRoleLead,
				IsActive:     true,
				AssignedAt:   now,
				AssignedByID: &input.CreatorID,
			}
			if err := projects.AddMember(managerMembership); err != nil {
				return translateWriteError(err, "failed to add manager membership")
			}
		}

		if project.Settings.IsZero() {
			project.Settings = projectSettingsFromWorkspace(workspace)
			if err := projects.Update(project); err != nil {
				return fmt.Errorf("failed to initialize project settings: %w", err)
			}
		}

		return recomputeProjectCount(workspaces, workspace)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("workspace_id", workspace.ID.String()),
		zap.String("action", "project_created"),
	)

	return project, nil
}

// GetProject returns a project by ID.
func (s *ProjectService) GetProject(id uuid.UUID, preload ...string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ListProjects returns the non-deleted projects of a workspace.
func (s *ProjectService) ListProjects(workspaceID uuid.UUID) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByWorkspace(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// UpdateProjectInput holds mutable project fields.
type UpdateProjectInput struct {
	Name           *string
	Description    *string
	Status         *models.ProjectStatus
	Priority       *models.ProjectPriority
	StartDate      *time.Time
	DueDate        *time.Time
	EstimatedHours *int
	Budget         *float64
	Tags           *[]string
}

// UpdateProject updates project fields. Date ordering is re-validated against
// the resulting pair, and entering COMPLETED stamps completed_at.
func (s *ProjectService) UpdateProject(id uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, rejected(RejectionInvalidInput, "project name cannot be empty")
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Priority != nil {
		project.Priority = *input.Priority
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.DueDate != nil {
		project.DueDate = input.DueDate
	}
	if project.StartDate != nil && project.DueDate != nil && project.StartDate.After(*project.DueDate) {
		return nil, rejected(RejectionInvalidDates, "start date cannot be after due date")
	}
	if input.EstimatedHours != nil {
		project.EstimatedHours = input.EstimatedHours
	}
	if input.Budget != nil {
		project.Budget = *input.Budget
	}
	if input.Tags != nil {
		project.Tags = *input.Tags
	}
	if input.Status != nil && *input.Status != project.Status {
		project.Status = *input.Status
		if *input.Status == models.ProjectCompleted && project.CompletedAt == nil {
			now := s.clock.Now()
			project.CompletedAt = &now
		}
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// DeleteProject archives the project, soft-deletes its tasks, and rebuilds
// the workspace's cached project count, all in one transaction.
func (s *ProjectService) DeleteProject(id uuid.UUID) error {
	project, err := s.GetProject(id)
	if err != nil {
		return err
	}
	workspace, err := s.workspaceRepo.FindByID(project.WorkspaceID)
	if err != nil {
		return fmt.Errorf("failed to find workspace: %w", err)
	}

	now := s.clock.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.projectRepo.WithTx(tx).SoftDelete(project.ID, now); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return recomputeProjectCount(s.workspaceRepo.WithTx(tx), workspace)
	})
	if err != nil {
		return err
	}

	s.logger.Info("project deleted",
		zap.String("project_id", project.ID.String()),
		zap.String("workspace_id", workspace.ID.String()),
		zap.String("action", "project_deleted"),
	)
	return nil
}

// AddProjectMemberInput holds parameters for assigning a project member.
type AddProjectMemberInput struct {
	ProjectID    uuid.UUID
	UserID       uuid.UUID
	Role         models.ProjectRole
	AssignedByID *uuid.UUID
}

// AddMember assigns a user to a project.
func (s *ProjectService) AddMember(input AddProjectMemberInput) (*models.ProjectMembership, error) {
	if _, err := s.GetProject(input.ProjectID); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.ProjectRoleMember
	}

	membership := &models.ProjectMembership{
		UserID:       input.UserID,
		ProjectID:    input.ProjectID,
		Role:         role,
		IsActive:     true,
		AssignedAt:   s.clock.Now(),
		AssignedByID: input.AssignedByID,
	}
	if err := s.projectRepo.AddMember(membership); err != nil {
		return nil, translateWriteError(err, "failed to add project member")
	}
	return membership, nil
}

// ListMembers returns the active members of a project.
func (s *ProjectService) ListMembers(projectID uuid.UUID) ([]models.ProjectMembership, error) {
	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}

// RecalculateProgress rebuilds the project's cached completion percentage
// from live task counts: done tasks over all non-deleted tasks, rounded to
// the nearest integer, zero when the project has no tasks. The cached column
// is written only when the value actually changed.
func (s *ProjectService) RecalculateProgress(projectID uuid.UUID) (int, error) {
	return recalculateProgress(s.projectRepo, projectID)
}

func recalculateProgress(repo repository.ProjectRepository, projectID uuid.UUID) (int, error) {
	project, err := repo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrProjectNotFound
		}
		return 0, fmt.Errorf("failed to find project: %w", err)
	}

	total, done, err := repo.CountTasks(projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	progress := 0
	if total > 0 {
		progress = int(math.Round(float64(done) / float64(total) * 100))
	}

	if progress != project.ProgressPercentage {
		if err := repo.UpdateProgress(projectID, progress); err != nil {
			return 0, fmt.Errorf("failed to update progress: %w", err)
		}
	}
	return progress, nil
}

// recomputeProjectCount refreshes the workspace's cached project counter from
// a live count.
func recomputeProjectCount(repo repository.WorkspaceRepository, workspace *models.Workspace) error {
	count, err := repo.CountActiveProjects(workspace.ID)
	if err != nil {
		return fmt.Errorf("failed to count projects: %w", err)
	}
	workspace.ProjectCount = int(count)
	if err := repo.Update(workspace); err != nil {
		return fmt.Errorf("failed to update project count: %w", err)
	}
	return nil
}

// projectSettingsFromWorkspace derives a new project's settings from the
// owning workspace's type defaults.
func projectSettingsFromWorkspace(workspace *models.Workspace) models.ProjectSettings {
	ws := workspace.Settings
	if ws.IsZero() {
		ws = models.DefaultWorkspaceSettings(workspace.WorkspaceType)
	}
	return models.ProjectSettings{
		Version:            1,
		Workflow:           ws.ProjectTemplate,
		TaskStatuses:       ws.DefaultTaskStatuses,
		EnableTimeTracking: ws.EnableTimeTracking,
		Notifications: models.ProjectNotificationSettings{
			TaskAssignments:  true,
			DueDateReminders: true,
			StatusChanges:    true,
		},
	}
}

// uniqueProjectSlug derives a slug unique within the workspace.
func uniqueProjectSlug(repo repository.ProjectRepository, workspaceID uuid.UUID, name string) (string, error) {
	base := utils.Slugify(name)
	slug := base
	for counter := 1; ; counter++ {
		exists, err := repo.SlugExists(workspaceID, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
