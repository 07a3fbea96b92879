package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sophrologie-backend/internal/constants"
	"sophrologie-backend/internal/middleware"
	"sophrologie-backend/internal/models"
	"sophrologie-backend/internal/service"
	"sophrologie-backend/pkg/logger"
)

// PageHandler serves the admin page document endpoints: load, save, autosave
// and version history.
type PageHandler struct {
	pageService   *service.PageService
	editorService *service.EditorService
}

func NewPageHandler(pageService *service.PageService, editorService *service.EditorService) *PageHandler {
	return &PageHandler{
		pageService:   pageService,
		editorService: editorService,
	}
}

// ListPages returns all editable pages.
// GET /api/v1/admin/pages
func (h *PageHandler) ListPages(c *gin.Context) {
	pages, err := h.pageService.GetAllPages()
	if err != nil {
		logger.Error(err, "Failed to list pages", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pages": pages, "pageIds": constants.PageIDs()})
}

// GetPage opens (or rejoins) the edit session for a page and returns the
// working document.
// GET /api/v1/admin/pages/:pageId
func (h *PageHandler) GetPage(c *gin.Context) {
	pageID := c.Param("pageId")
	if !constants.IsKnownPageID(pageID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown page"})
		return
	}

	page, err := h.editorService.OpenSession(pageID)
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
			return
		}
		logger.Error(err, "Failed to load page", map[string]interface{}{"page_id": pageID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load page"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

// GetStatus reports the edit session save lifecycle.
// GET /api/v1/admin/pages/:pageId/status
func (h *PageHandler) GetStatus(c *gin.Context) {
	status, err := h.editorService.Status(c.Param("pageId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No edit session for this page"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// SavePage saves the full document. Pass force=true to overwrite a page that
// was modified elsewhere since it was loaded.
// PUT /api/v1/admin/pages/:pageId
func (h *PageHandler) SavePage(c *gin.Context) {
	pageID := c.Param("pageId")

	var req models.SavePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	force := c.Query("force") == "true"

	if _, err := h.editorService.ReplaceContent(pageID, req.Title, req.MetaDescription, req.Sections); err != nil {
		h.respondSaveError(c, pageID, err)
		return
	}

	page, err := h.editorService.Save(pageID, req.CreateVersion, req.VersionComment, currentUserEmail(c), force)
	if err != nil {
		h.respondSaveError(c, pageID, err)
		return
	}

	middleware.CountPageSave("manual")
	c.JSON(http.StatusOK, gin.H{"page": page})
}

// Autosave saves the document without creating a version. Responds with
// saved=false when the content matches the last saved state.
// POST /api/v1/admin/pages/:pageId/autosave
func (h *PageHandler) Autosave(c *gin.Context) {
	pageID := c.Param("pageId")

	var req models.SavePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if _, err := h.editorService.ReplaceContent(pageID, req.Title, req.MetaDescription, req.Sections); err != nil {
		h.respondSaveError(c, pageID, err)
		return
	}

	page, saved, err := h.editorService.Autosave(pageID)
	if err != nil {
		h.respondSaveError(c, pageID, err)
		return
	}

	if saved {
		middleware.CountPageSave("autosave")
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "saved": saved})
}

// ListVersions returns the version history, newest first.
// GET /api/v1/admin/pages/:pageId/history
func (h *PageHandler) ListVersions(c *gin.Context) {
	pageID := c.Param("pageId")

	versions, err := h.pageService.ListVersions(pageID)
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
			return
		}
		logger.Error(err, "Failed to list versions", map[string]interface{}{"page_id": pageID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list versions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

// RestoreVersion restores a snapshot as a new save and returns the restored
// document.
// POST /api/v1/admin/pages/:pageId/restore/:versionNumber
func (h *PageHandler) RestoreVersion(c *gin.Context) {
	pageID := c.Param("pageId")

	versionNumber, err := strconv.Atoi(c.Param("versionNumber"))
	if err != nil || versionNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid version number"})
		return
	}

	var req models.RestoreVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	page, err := h.editorService.RestoreVersion(pageID, versionNumber, req.Comment, currentUserEmail(c))
	if err != nil {
		if errors.Is(err, service.ErrVersionNotFound) || errors.Is(err, service.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Version not found"})
			return
		}
		logger.Error(err, "Failed to restore version", map[string]interface{}{
			"page_id": pageID,
			"version": versionNumber,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore version"})
		return
	}

	middleware.CountPageSave("restore")
	c.JSON(http.StatusOK, gin.H{"page": page})
}

func (h *PageHandler) respondSaveError(c *gin.Context, pageID string, err error) {
	switch {
	case errors.Is(err, service.ErrPageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
	case errors.Is(err, service.ErrPendingUpload):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Des images sont encore en attente de téléversement"})
	case errors.Is(err, service.ErrStaleSave):
		c.JSON(http.StatusConflict, gin.H{
			"error":              "Page was modified elsewhere since it was loaded",
			"confirmationNeeded": true,
		})
	default:
		logger.Error(err, "Failed to save page", map[string]interface{}{"page_id": pageID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save page"})
	}
}
