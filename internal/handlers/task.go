package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/dto"
	apierrors "github.com/deyby01/nexus-pm-v2/internal/errors"
	"github.com/deyby01/nexus-pm-v2/internal/middleware"
	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/repository"
	"github.com/deyby01/nexus-pm-v2/internal/services"
	"github.com/deyby01/nexus-pm-v2/internal/utils"
)

// TaskHandler coordinates task and dependency HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a task in the project.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title              string              `json:"title" binding:"required,min=1,max=200"`
		Description        string              `json:"description"`
		AcceptanceCriteria string              `json:"acceptance_criteria"`
		Priority           models.TaskPriority `json:"priority"`
		AssigneeID         *string             `json:"assignee_id"`
		DueDate            *time.Time          `json:"due_date"`
		EstimatedHours     *float64            `json:"estimated_hours"`
		Tags               []string            `json:"tags"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var assigneeID *uuid.UUID
	if req.AssigneeID != nil {
		id, err := uuid.Parse(*req.AssigneeID)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assignee ID")
			return
		}
		assigneeID = &id
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		ProjectID:          projectID,
		CreatorID:          userID,
		Title:              req.Title,
		Description:        req.Description,
		AcceptanceCriteria: req.AcceptanceCriteria,
		Priority:           req.Priority,
		AssigneeID:         assigneeID,
		DueDate:            req.DueDate,
		EstimatedHours:     req.EstimatedHours,
		Tags:               req.Tags,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns the project's tasks, filterable by status, assignee, and
// due-date window.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.TaskFilter{
		ProjectID: &projectID,
		Page:      params.Page,
		PageSize:  params.Limit,
	}

	if status := c.Query("status"); status != "" {
		st := models.TaskStatus(status)
		filter.Status = &st
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		id, err := uuid.Parse(assignee)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assignee_id")
			return
		}
		filter.AssigneeID = &id
	}
	if from := c.Query("due_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_from")
			return
		}
		filter.DueFrom = &t
	}
	if to := c.Query("due_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_to")
			return
		}
		filter.DueTo = &t
	}

	tasks, total, err := h.taskService.ListTasks(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a task with its assignee and creator.
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(taskID, "Assignee", "CreatedBy")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask updates non-status task fields.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type UpdateTaskRequest struct {
		Title              *string              `json:"title"`
		Description        *string              `json:"description"`
		AcceptanceCriteria *string              `json:"acceptance_criteria"`
		Priority           *models.TaskPriority `json:"priority"`
		AssigneeID         *string              `json:"assignee_id"`
		ClearAssignee      bool                 `json:"clear_assignee"`
		DueDate            *time.Time           `json:"due_date"`
		EstimatedHours     *float64             `json:"estimated_hours"`
		ActualHours        *float64             `json:"actual_hours"`
		Tags               *[]string            `json:"tags"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var assigneeID *uuid.UUID
	if req.AssigneeID != nil {
		id, err := uuid.Parse(*req.AssigneeID)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assignee ID")
			return
		}
		assigneeID = &id
	}

	task, err := h.taskService.UpdateTask(taskID, services.UpdateTaskInput{
		Title:              req.Title,
		Description:        req.Description,
		AcceptanceCriteria: req.AcceptanceCriteria,
		Priority:           req.Priority,
		AssigneeID:         assigneeID,
		ClearAssignee:      req.ClearAssignee,
		DueDate:            req.DueDate,
		EstimatedHours:     req.EstimatedHours,
		ActualHours:        req.ActualHours,
		Tags:               req.Tags,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ChangeStatus moves the task to a new lifecycle status.
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type ChangeStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.ChangeStatus(taskID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes the task and its dependency edges.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// CreateDependency adds a dependency edge between two tasks.
func (h *TaskHandler) CreateDependency(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	type CreateDependencyRequest struct {
		FromTaskID     string                `json:"from_task_id" binding:"required,uuid"`
		ToTaskID       string                `json:"to_task_id" binding:"required,uuid"`
		DependencyType models.DependencyType `json:"dependency_type"`
	}

	var req CreateDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	fromID, err := uuid.Parse(req.FromTaskID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid from_task_id")
		return
	}
	toID, err := uuid.Parse(req.ToTaskID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid to_task_id")
		return
	}

	// The caller must be able to reach both endpoints. Denied or nonexistent
	// tasks look the same.
	for _, id := range []uuid.UUID{fromID, toID} {
		if _, _, ok := middleware.ResolveTaskAccess(id, userID); !ok {
			apierrors.NotFound(c, "Task not found")
			return
		}
	}

	dep, err := h.taskService.CreateDependency(services.CreateDependencyInput{
		FromTaskID:     fromID,
		ToTaskID:       toID,
		DependencyType: req.DependencyType,
		CreatedByID:    &userID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDependencyDTO(*dep))
}

// GetBlockedState reports whether the task can start.
func (h *TaskHandler) GetBlockedState(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	blocked, err := h.taskService.IsBlocked(taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_blocked": blocked,
		"can_start":  !blocked,
	})
}
