package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sophrologie-backend/internal/service"
	"sophrologie-backend/pkg/logger"
)

type UploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadImage stores an image and returns its public URL. The optional name
// form field becomes the slugged filename.
// POST /api/v1/admin/uploads
func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	if err := h.uploadService.ValidateImage(file); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, filename, err := h.uploadService.UploadImage(file, c.PostForm("name"))
	if err != nil {
		logger.Error(err, "Failed to store upload", map[string]interface{}{"filename": file.Filename})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url, "filename": filename})
}

// ListImages lists stored uploads, newest first.
// GET /api/v1/admin/uploads
func (h *UploadHandler) ListImages(c *gin.Context) {
	uploads, err := h.uploadService.ListImages()
	if err != nil {
		logger.Error(err, "Failed to list uploads", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list uploads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploads": uploads})
}

// DeleteImage removes a stored upload by URL.
// DELETE /api/v1/admin/uploads
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if !h.uploadService.IsManagedURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a managed upload"})
		return
	}

	if err := h.uploadService.DeleteImage(req.URL); err != nil {
		logger.Error(err, "Failed to delete upload", map[string]interface{}{"url": req.URL})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "upload deleted"})
}
