package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) WithTx(tx *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: tx}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uuid.UUID, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// SlugExists checks slug uniqueness within a workspace, deleted included.
func (r *GormProjectRepository) SlugExists(workspaceID uuid.UUID, slug string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.Project{}).
		Where("workspace_id = ? AND slug = ?", workspaceID, slug).
		Count(&count).Error
	return count > 0, err
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// UpdateProgress writes only the cached progress column.
func (r *GormProjectRepository) UpdateProgress(id uuid.UUID, progress int) error {
	return r.db.Model(&models.Project{}).Where("id = ?", id).
		Update("progress_percentage", progress).Error
}

// SoftDelete archives the project and soft-deletes its tasks in one
// transaction.
func (r *GormProjectRepository) SoftDelete(id uuid.UUID, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Project{}).Where("id = ?", id).
			Update("status", models.ProjectArchived).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", id).Error
	})
}

// ListByWorkspace lists non-deleted projects in a workspace
func (r *GormProjectRepository) ListByWorkspace(workspaceID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(member *models.ProjectMembership) error {
	return r.db.Create(member).Error
}

// FindActiveMember finds an active membership for (project, user)
func (r *GormProjectRepository) FindActiveMember(projectID, userID uuid.UUID) (*models.ProjectMembership, error) {
	var member models.ProjectMembership
	err := r.db.Where("project_id = ? AND user_id = ? AND is_active = ?", projectID, userID, true).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all active members of a project
func (r *GormProjectRepository) ListMembers(projectID uuid.UUID) ([]models.ProjectMembership, error) {
	var members []models.ProjectMembership
	err := r.db.Preload("User").
		Where("project_id = ? AND is_active = ?", projectID, true).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// CountTasks returns total and done counts of non-deleted tasks.
func (r *GormProjectRepository) CountTasks(projectID uuid.UUID) (int64, int64, error) {
	var total, done int64

	if err := r.db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	if err := r.db.Model(&models.Task{}).
		Where("project_id = ? AND status IN ?", projectID,
			[]models.TaskStatus{models.TaskCompleted, models.TaskVerified}).
		Count(&done).Error; err != nil {
		return 0, 0, err
	}

	return total, done, nil
}
