package handler

import (
	"net/http"

	"taskboard/internal/hub"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	taskRepo repository.TaskRepositoryInterface
	events   hub.Publisher
}

func NewOrderHandler(taskRepo repository.TaskRepositoryInterface, events hub.Publisher) *OrderHandler {
	return &OrderHandler{taskRepo: taskRepo, events: events}
}

type UpdateProjectColorRequest struct {
	ProjectName string `json:"projectName" binding:"required"`
	NewColor    string `json:"newColor" binding:"required"`
}

// UpdateOrder persists a batch of {id, order} pairs. Ids that no longer
// exist are skipped; a stale drag after a concurrent delete is not an error.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var updates []repository.OrderUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order payload"})
		return
	}

	if err := h.taskRepo.UpdateOrders(c.Request.Context(), updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	h.events.Publish(hub.EventTasksReordered)
	c.JSON(http.StatusOK, gin.H{"message": "Order updated successfully"})
}

// UpdateProjectColor recolors every task of a project in one batch.
func (h *OrderHandler) UpdateProjectColor(c *gin.Context) {
	var req UpdateProjectColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name and color are required"})
		return
	}

	updated, err := h.taskRepo.UpdateProjectColor(c.Request.Context(), req.ProjectName, req.NewColor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project color"})
		return
	}
	if updated == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No tasks found for this project"})
		return
	}

	h.events.Publish(hub.EventTasksReordered)
	c.JSON(http.StatusOK, gin.H{"message": "Project color updated successfully"})
}
