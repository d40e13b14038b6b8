package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) WithTx(tx *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: tx}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uuid.UUID, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.DueFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// SoftDelete removes the task and hard-deletes dependency edges touching it.
func (r *GormTaskRepository) SoftDelete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("from_task_id = ? OR to_task_id = ?", id, id).
			Delete(&models.TaskDependency{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, "id = ?", id).Error
	})
}

// CreateDependency creates a dependency edge
func (r *GormTaskRepository) CreateDependency(dep *models.TaskDependency) error {
	return r.db.Create(dep).Error
}

// DependencyExists checks for an existing (from, to, type) edge
func (r *GormTaskRepository) DependencyExists(fromID, toID uuid.UUID, depType models.DependencyType) (bool, error) {
	var count int64
	err := r.db.Model(&models.TaskDependency{}).
		Where("from_task_id = ? AND to_task_id = ? AND dependency_type = ?", fromID, toID, depType).
		Count(&count).Error
	return count > 0, err
}

// CountUnresolvedBlockers counts non-deleted tasks that block the given task
// and are not completed or verified.
func (r *GormTaskRepository) CountUnresolvedBlockers(taskID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Joins("JOIN task_dependencies ON task_dependencies.from_task_id = tasks.id").
		Where("task_dependencies.to_task_id = ?", taskID).
		Where("task_dependencies.dependency_type = ?", models.DependencyBlocks).
		Where("tasks.status NOT IN ?",
			[]models.TaskStatus{models.TaskCompleted, models.TaskVerified}).
		Count(&count).Error
	return count, err
}

// ListBlockedDependents returns tasks currently BLOCKED that list the given
// task as a blocking dependency.
func (r *GormTaskRepository) ListBlockedDependents(taskID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Joins("JOIN task_dependencies ON task_dependencies.to_task_id = tasks.id").
		Where("task_dependencies.from_task_id = ?", taskID).
		Where("task_dependencies.dependency_type = ?", models.DependencyBlocks).
		Where("tasks.status = ?", models.TaskBlocked).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// DeleteDependenciesTouching removes every edge touching the task.
func (r *GormTaskRepository) DeleteDependenciesTouching(taskID uuid.UUID) error {
	return r.db.Where("from_task_id = ? OR to_task_id = ?", taskID, taskID).
		Delete(&models.TaskDependency{}).Error
}
