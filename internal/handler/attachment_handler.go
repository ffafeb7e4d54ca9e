package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"taskboard/internal/hub"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/storage"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	taskRepo repository.TaskRepositoryInterface
	blobs    storage.AttachmentStoreInterface
	events   hub.Publisher
}

func NewAttachmentHandler(taskRepo repository.TaskRepositoryInterface, blobs storage.AttachmentStoreInterface, events hub.Publisher) *AttachmentHandler {
	return &AttachmentHandler{taskRepo: taskRepo, blobs: blobs, events: events}
}

type SignedURLRequest struct {
	BlobName string `json:"blobName" binding:"required"`
}

// Upload stores a multipart file under "<taskID>-<filename>" and records it
// on the task.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	task, err := h.taskRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	// filepath.Base strips any path the browser smuggled into the filename.
	blobName := fmt.Sprintf("%s-%s", task.ID, filepath.Base(file.Filename))
	url, err := h.blobs.Upload(c.Request.Context(), blobName, file.Header.Get("Content-Type"), src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store attachment"})
		return
	}

	task.Attachments = append(task.Attachments, model.Attachment{
		Name:       file.Filename,
		URL:        url,
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
	})

	if err := h.taskRepo.Replace(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	h.events.Publish(hub.EventTaskUpdated, task)
	c.JSON(http.StatusOK, task)
}

// Delete removes a blob. Deleting a blob that is already gone still returns
// 204, so retried deletes are safe.
func (h *AttachmentHandler) Delete(c *gin.Context) {
	blobName := c.Param("blobName")
	if blobName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Blob name is required"})
		return
	}

	if err := h.blobs.Delete(c.Request.Context(), blobName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attachment"})
		return
	}

	c.Status(http.StatusNoContent)
}

// SignedURL returns a short-lived download link for a blob.
func (h *AttachmentHandler) SignedURL(c *gin.Context) {
	var req SignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Blob name is required"})
		return
	}

	url, err := h.blobs.SignedURL(req.BlobName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate download link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sasUrl": url})
}
