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

type CommentHandler struct {
	taskRepo repository.TaskRepositoryInterface
	events   hub.Publisher
}

func NewCommentHandler(taskRepo repository.TaskRepositoryInterface, events hub.Publisher) *CommentHandler {
	return &CommentHandler{taskRepo: taskRepo, events: events}
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// DeleteCommentRequest addresses the comment by position. Index is a pointer
// so that 0 survives the required check.
type DeleteCommentRequest struct {
	Index *int `json:"index" binding:"required"`
}

// Add appends a comment to the task. The author always comes from the
// verified identity, never from the request body.
func (h *CommentHandler) Add(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment text is required"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	task.Comments = append(task.Comments, model.Comment{
		Text:      req.Text,
		Author:    principal.UserDetails,
		UserID:    principal.UserID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	if err := h.taskRepo.Replace(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comment"})
		return
	}

	h.events.Publish(hub.EventTaskUpdated, task)
	c.JSON(http.StatusOK, task)
}

// Delete removes the comment at the given index.
func (h *CommentHandler) Delete(c *gin.Context) {
	var req DeleteCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment index is required"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	idx := *req.Index
	if idx < 0 || idx >= len(task.Comments) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment not found"})
		return
	}
	task.Comments = append(task.Comments[:idx], task.Comments[idx+1:]...)

	if err := h.taskRepo.Replace(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	h.events.Publish(hub.EventTaskUpdated, task)
	c.JSON(http.StatusOK, task)
}
