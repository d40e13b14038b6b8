package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                 uuid.UUID           `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description,omitempty"`
	AcceptanceCriteria string              `json:"acceptance_criteria,omitempty"`
	ProjectID          uuid.UUID           `json:"project_id"`
	Status             models.TaskStatus   `json:"status"`
	Priority           models.TaskPriority `json:"priority"`
	AssigneeID         *uuid.UUID          `json:"assignee_id,omitempty"`
	CreatedByID        uuid.UUID           `json:"created_by_id"`
	DueDate            *time.Time          `json:"due_date,omitempty"`
	StartedAt          *time.Time          `json:"started_at,omitempty"`
	CompletedAt        *time.Time          `json:"completed_at,omitempty"`
	EstimatedHours     *float64            `json:"estimated_hours,omitempty"`
	ActualHours        float64             `json:"actual_hours"`
	Tags               []string            `json:"tags,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Assignee           *UserDTO            `json:"assignee,omitempty"`
	CreatedBy          *UserDTO            `json:"created_by,omitempty"`
}

// TaskDependencyDTO represents a dependency edge in API responses
type TaskDependencyDTO struct {
	ID             uuid.UUID             `json:"id"`
	FromTaskID     uuid.UUID             `json:"from_task_id"`
	ToTaskID       uuid.UUID             `json:"to_task_id"`
	DependencyType models.DependencyType `json:"dependency_type"`
	CreatedAt      time.Time             `json:"created_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		AcceptanceCriteria: task.AcceptanceCriteria,
		ProjectID:          task.ProjectID,
		Status:             task.Status,
		Priority:           task.Priority,
		AssigneeID:         task.AssigneeID,
		CreatedByID:        task.CreatedByID,
		DueDate:            task.DueDate,
		StartedAt:          task.StartedAt,
		CompletedAt:        task.CompletedAt,
		EstimatedHours:     task.EstimatedHours,
		ActualHours:        task.ActualHours,
		Tags:               task.Tags,
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
	}

	// Include assignee and creator if preloaded
	if task.Assignee != nil && task.Assignee.ID != uuid.Nil {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}
	if task.CreatedBy.ID != uuid.Nil {
		createdBy := ToUserDTO(task.CreatedBy)
		dto.CreatedBy = &createdBy
	}

	return dto
}

// ToTaskDependencyDTO converts a TaskDependency model to its response shape.
func ToTaskDependencyDTO(dep models.TaskDependency) TaskDependencyDTO {
	return TaskDependencyDTO{
		ID:             dep.ID,
		FromTaskID:     dep.FromTaskID,
		ToTaskID:       dep.ToTaskID,
		DependencyType: dep.DependencyType,
		CreatedAt:      dep.CreatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
