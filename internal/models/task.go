package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus is an ordered lifecycle with one exception path via BLOCKED.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskInReview   TaskStatus = "in_review"
	TaskBlocked    TaskStatus = "blocked"
	TaskCompleted  TaskStatus = "completed"
	TaskVerified   TaskStatus = "verified"
)

// IsDone reports whether the status counts toward project progress.
func (s TaskStatus) IsDone() bool {
	return s == TaskCompleted || s == TaskVerified
}

// IsValid reports whether the status is one of the six lifecycle values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskInReview, TaskBlocked, TaskCompleted, TaskVerified:
		return true
	}
	return false
}

// TaskPriority levels for work prioritization.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Task is the atomic unit of work within a project.
type Task struct {
	ID                 uuid.UUID    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title              string       `gorm:"type:varchar(200);not null" json:"title"`
	Description        string       `gorm:"type:text" json:"description"`
	AcceptanceCriteria string       `gorm:"type:text" json:"acceptance_criteria"`
	ProjectID          uuid.UUID    `gorm:"type:varchar(36);not null;index:idx_tasks_project_status" json:"project_id"`
	Status             TaskStatus   `gorm:"type:varchar(15);not null;default:'todo';index:idx_tasks_project_status" json:"status"`
	Priority           TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`

	AssigneeID  *uuid.UUID `gorm:"type:varchar(36);index" json:"assignee_id"`
	CreatedByID uuid.UUID  `gorm:"type:varchar(36);not null" json:"created_by_id"`

	DueDate     *time.Time `gorm:"index" json:"due_date"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	EstimatedHours *float64 `gorm:"type:decimal(6,2)" json:"estimated_hours"`
	ActualHours    float64  `gorm:"type:decimal(6,2);not null;default:0" json:"actual_hours"`

	Tags StringList `gorm:"type:text" json:"tags"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project   Project `gorm:"foreignKey:ProjectID" json:"-"`
	Assignee  *User   `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	CreatedBy User    `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`

	OutgoingDependencies []TaskDependency `gorm:"foreignKey:FromTaskID" json:"outgoing_dependencies,omitempty"`
	IncomingDependencies []TaskDependency `gorm:"foreignKey:ToTaskID" json:"incoming_dependencies,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsOverdue reports whether the task is past its due date and still open.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status.IsDone() {
		return false
	}
	return now.After(*t.DueDate)
}

// DependencyType classifies a task dependency edge. Only BLOCKS edges affect
// scheduling; SUBTASK and RELATED are informational.
type DependencyType string

const (
	DependencyBlocks  DependencyType = "blocks"
	DependencySubtask DependencyType = "subtask"
	DependencyRelated DependencyType = "related"
)

// TaskDependency is a directed edge: FromTask blocks (or relates to) ToTask.
// Both ends must belong to the same project and a task cannot depend on
// itself. Longer cycles are not rejected by construction.
type TaskDependency struct {
	ID             uuid.UUID      `gorm:"type:varchar(36);primaryKey" json:"id"`
	FromTaskID     uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_task_dep_edge" json:"from_task_id"`
	ToTaskID       uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_task_dep_edge;index" json:"to_task_id"`
	DependencyType DependencyType `gorm:"type:varchar(10);not null;default:'blocks';uniqueIndex:idx_task_dep_edge" json:"dependency_type"`

	CreatedByID *uuid.UUID `gorm:"type:varchar(36)" json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`

	// Relations
	FromTask Task `gorm:"foreignKey:FromTaskID" json:"from_task,omitempty"`
	ToTask   Task `gorm:"foreignKey:ToTaskID" json:"to_task,omitempty"`
}

func (d *TaskDependency) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
