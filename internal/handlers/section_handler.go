package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sophrologie-backend/internal/constants"
	"sophrologie-backend/internal/models"
	"sophrologie-backend/internal/service"
	"sophrologie-backend/pkg/logger"
)

// SectionHandler exposes the section list operations of an edit session.
// Every operation is total: a stale section id or out-of-range index leaves
// the document unchanged and still returns 200 with the current state, so a
// slightly outdated editor never errors out.
type SectionHandler struct {
	editorService *service.EditorService
}

func NewSectionHandler(editorService *service.EditorService) *SectionHandler {
	return &SectionHandler{editorService: editorService}
}

// AddSection appends a default section of the requested type.
// POST /api/v1/admin/pages/:pageId/sections
func (h *SectionHandler) AddSection(c *gin.Context) {
	var req models.AddSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sectionType := constants.NormalizeSectionType(req.Type)
	if !constants.IsKnownSectionType(sectionType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown section type", "knownTypes": constants.SectionTypes()})
		return
	}

	page, newID, err := h.editorService.Apply(c.Param("pageId"), func(sections models.PageSections) (models.PageSections, string) {
		return service.AddSection(sections, sectionType)
	})
	if err != nil {
		h.respondEditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page, "sectionId": newID})
}

// UpdateField sets one field addressed by dotted path, e.g. "image.alt".
// PATCH /api/v1/admin/pages/:pageId/sections/:sectionId
func (h *SectionHandler) UpdateField(c *gin.Context) {
	var req models.UpdateSectionFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var value interface{}
	if len(req.Value) > 0 {
		if err := json.Unmarshal(req.Value, &value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field value"})
			return
		}
	}

	sectionID := c.Param("sectionId")
	page, _, err := h.editorService.Apply(c.Param("pageId"), func(sections models.PageSections) (models.PageSections, string) {
		return service.UpdateField(sections, sectionID, req.Path, value), ""
	})
	if err != nil {
		h.respondEditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

// UpdateItemField sets one field of one element of an array-valued field.
// PATCH /api/v1/admin/pages/:pageId/sections/:sectionId/items
func (h *SectionHandler) UpdateItemField(c *gin.Context) {
	var req models.UpdateItemFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var value interface{}
	if len(req.Value) > 0 {
		if err := json.Unmarshal(req.Value, &value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field value"})
			return
		}
	}

	sectionID := c.Param("sectionId")
	page, _, err := h.editorService.Apply(c.Param("pageId"), func(sections models.PageSections) (models.PageSections, string) {
		return service.UpdateItemField(sections, sectionID, req.Field, req.Index, req.ItemField, value), ""
	})
	if err != nil {
		h.respondEditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

// AddItem appends an empty element to an array-valued field.
// POST /api/v1/admin/pages/:pageId/sections/:sectionId/items
func (h *SectionHandler) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sectionID := c.Param("sectionId")
	page, _, err := h.editorService.Apply(c.Param("pageId"), func(sections models.PageSections) (models.PageSections, string) {
		return service.AddItem(sections, sectionID, req.Field, nil), ""
	})
	if err != nil {
		h.respondEditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

// RemoveItem deletes one element of an array-valued field.
// DELETE /api/v1/admin/pages/:pageId/sections/:sectionId/items
func (h *SectionHandler) RemoveItem(c *gin.Context) {
	var req struct {
		Field string `json:"field" binding:"required"`
		Index int    `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sectionID := c.Param("sectionId")
	page, _, err := h.editorService.Apply(c.Param("pageId"), func(sections models.PageSections) (models.PageSections, string) {
		return service.RemoveItem(sections, sectionID, req.Field, req.Index), ""
	})
	if err != nil {
		h.respondEditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

// DeleteSection removes a section. Deleting an unknown id is a no-op.
// DELETE /api/v1/admin/pages/:pageId/sections/:sectionId
func (h *SectionHandler) DeleteSection(c *gin.Context) {
	sectionID := c.Param("sectionId")
	page, _, err := h.editorService.Apply(c.Param("pageId"), func(sections models.PageSections) (models.PageSections, string) {
		return service.DeleteSection(sections, sectionID), ""
	})
	if err != nil {
		h.respondEditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

// DuplicateSection deep-copies a section right after the original.
// POST /api/v1/admin/pages/:pageId/sections/:sectionId/duplicate
func (h *SectionHandler) DuplicateSection(c *gin.Context) {
	sectionID := c.Param("sectionId")
	page, newID, err := h.editorService.Apply(c.Param("pageId"), func(sections models.PageSections) (models.PageSections, string) {
		return service.DuplicateSection(sections, sectionID)
	})
	if err != nil {
		h.respondEditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page, "sectionId": newID})
}

// ReorderSections moves a section between two array positions.
// POST /api/v1/admin/pages/:pageId/sections/reorder
func (h *SectionHandler) ReorderSections(c *gin.Context) {
	var req models.ReorderSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	page, _, err := h.editorService.Apply(c.Param("pageId"), func(sections models.PageSections) (models.PageSections, string) {
		return service.Reorder(sections, req.FromIndex, req.ToIndex), ""
	})
	if err != nil {
		h.respondEditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

// SetVisibility toggles a section's visibility without removing it.
// PATCH /api/v1/admin/pages/:pageId/sections/:sectionId/visibility
func (h *SectionHandler) SetVisibility(c *gin.Context) {
	var req models.SetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sectionID := c.Param("sectionId")
	page, _, err := h.editorService.Apply(c.Param("pageId"), func(sections models.PageSections) (models.PageSections, string) {
		return service.SetVisible(sections, sectionID, *req.Visible), ""
	})
	if err != nil {
		h.respondEditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

func (h *SectionHandler) respondEditError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrPageNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
		return
	}
	logger.Error(err, "Section operation failed", map[string]interface{}{"page_id": c.Param("pageId")})
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Section operation failed"})
}
