package handler

import (
	"errors"
	"net/http"
	"time"

	"taskboard/internal/hub"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskRepo repository.TaskRepositoryInterface
	events   hub.Publisher
}

func NewTaskHandler(taskRepo repository.TaskRepositoryInterface, events hub.Publisher) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo, events: events}
}

// CreateTaskRequest is the payload for creating a task. The responsible
// field accepts the current object list as well as the legacy
// comma-separated string.
type CreateTaskRequest struct {
	Title        string                `json:"title" binding:"required"`
	Description  string                `json:"description" binding:"required"`
	Responsible  model.ResponsibleList `json:"responsible" binding:"required"`
	Project      string                `json:"project"`
	ProjectColor string                `json:"projectColor"`
	Priority     string                `json:"priority"`
	DueDate      *string               `json:"dueDate"`
	AzureLink    string                `json:"azureLink"`
	Attachments  []model.Attachment    `json:"attachments"`
}

// UpdateTaskRequest is a partial field set; nil fields are left untouched.
type UpdateTaskRequest struct {
	Title        *string                `json:"title"`
	Description  *string                `json:"description"`
	Responsible  *model.ResponsibleList `json:"responsible"`
	Project      *string                `json:"project"`
	ProjectColor *string                `json:"projectColor"`
	Priority     *string                `json:"priority"`
	Status       *string                `json:"status"`
	DueDate      *string                `json:"dueDate"`
	AzureLink    *string                `json:"azureLink"`
	Order        *int64                 `json:"order"`
	Attachments  *[]model.Attachment    `json:"attachments"`
}

// GetTasks returns every task; active views filter archived tasks on the
// client.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	tasks, err := h.taskRepo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// GetArchivedTasks returns tasks with status "done".
func (h *TaskHandler) GetArchivedTasks(c *gin.Context) {
	tasks, err := h.taskRepo.GetArchived(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve archived tasks"})
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// Create allocates the next sequential id, persists the task and broadcasts
// taskCreated.
func (h *TaskHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Responsible) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title, description and responsible are required"})
		return
	}

	// The counter increment is atomic on the store side; the insert below is
	// a separate call. A crash in between leaks a counter value, which only
	// costs a gap in the sequence.
	numericID, err := h.taskRepo.NextNumericID(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate task id"})
		return
	}

	now := time.Now()
	task := &model.Task{
		ID:           model.FormatTaskID(numericID),
		NumericID:    numericID,
		Title:        req.Title,
		Description:  req.Description,
		Responsible:  req.Responsible,
		AzureLink:    req.AzureLink,
		Project:      req.Project,
		ProjectColor: req.ProjectColor,
		Priority:     req.Priority,
		Status:       model.StatusTodo,
		CreatedAt:    now.UTC().Format(time.RFC3339),
		CreatedBy:    principal.UserDetails,
		// Negative epoch: new tasks sort before everything already on the
		// board.
		Order:       -now.UnixMilli(),
		DueDate:     req.DueDate,
		Attachments: req.Attachments,
	}
	if task.ProjectColor == "" {
		task.ProjectColor = model.DefaultProjectColor
	}
	if task.Priority == "" {
		task.Priority = model.DefaultPriority
	}
	if task.Attachments == nil {
		task.Attachments = []model.Attachment{}
	}
	task.RecordStatus(model.StatusTodo, now)

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	h.events.Publish(hub.EventTaskCreated, task)
	c.JSON(http.StatusCreated, task)
}

// Update merges a partial field set onto the stored task. Replace is
// last-write-wins; concurrent updates of the same task clobber each other.
func (h *TaskHandler) Update(c *gin.Context) {
	taskID := c.Param("id")

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	now := time.Now()

	// Any non-status change lands in the history under the "edited"
	// sentinel; a status change records the new status itself.
	if req.Title != nil || req.Description != nil || req.Responsible != nil ||
		req.Project != nil || req.ProjectColor != nil || req.Priority != nil ||
		req.DueDate != nil || req.AzureLink != nil || req.Order != nil || req.Attachments != nil {
		task.RecordStatus(model.StatusEdited, now)
	}
	if req.Status != nil && *req.Status != task.Status {
		task.RecordStatus(*req.Status, now)
		task.Status = *req.Status
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Responsible != nil {
		task.Responsible = *req.Responsible
	}
	if req.Project != nil {
		task.Project = *req.Project
	}
	if req.ProjectColor != nil {
		task.ProjectColor = *req.ProjectColor
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.AzureLink != nil {
		task.AzureLink = *req.AzureLink
	}
	if req.Order != nil {
		task.Order = *req.Order
	}
	if req.Attachments != nil {
		task.Attachments = *req.Attachments
	}

	if err := h.taskRepo.Replace(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	h.events.Publish(hub.EventTaskUpdated, task)
	c.JSON(http.StatusOK, task)
}

// Delete removes a task and broadcasts taskDeleted with the id.
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID := c.Param("id")

	if err := h.taskRepo.Delete(c.Request.Context(), taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		}
		return
	}

	h.events.Publish(hub.EventTaskDeleted, taskID)
	c.Status(http.StatusNoContent)
}

// SignalResponsible flags every responsible party of the task with a pending
// alert; names already flagged are not duplicated.
func (h *TaskHandler) SignalResponsible(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	names := task.ResponsibleNames()
	if len(names) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task has no responsible parties to signal"})
		return
	}

	flagged := make(map[string]bool, len(task.PendingAlerts))
	for _, name := range task.PendingAlerts {
		flagged[name] = true
	}
	for _, name := range names {
		if !flagged[name] {
			task.PendingAlerts = append(task.PendingAlerts, name)
			flagged[name] = true
		}
	}

	if err := h.taskRepo.Replace(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	h.events.Publish(hub.EventTaskUpdated, task)
	c.JSON(http.StatusOK, task)
}
