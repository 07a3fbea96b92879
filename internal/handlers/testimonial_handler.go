package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sophrologie-backend/internal/models"
	"sophrologie-backend/internal/service"
	"sophrologie-backend/pkg/logger"
)

type TestimonialHandler struct {
	testimonialService *service.TestimonialService
}

func NewTestimonialHandler(testimonialService *service.TestimonialService) *TestimonialHandler {
	return &TestimonialHandler{testimonialService: testimonialService}
}

// Submit receives a visitor testimonial. It goes into the moderation queue
// and is not public until approved.
// POST /api/v1/temoignage
func (h *TestimonialHandler) Submit(c *gin.Context) {
	var req models.SubmitTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	testimonial, err := h.testimonialService.Submit(req)
	if err != nil {
		logger.Error(err, "Failed to submit testimonial", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit testimonial"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Merci pour votre témoignage, il sera publié après validation.",
		"id":      testimonial.ID,
	})
}

// ListApproved returns the approved testimonials for public display.
// GET /api/v1/temoignage
func (h *TestimonialHandler) ListApproved(c *gin.Context) {
	testimonials, err := h.testimonialService.GetApproved()
	if err != nil {
		logger.Error(err, "Failed to list testimonials", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list testimonials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"testimonials": testimonials})
}

// ListAll returns every testimonial including pending ones.
// GET /api/v1/admin/testimonials
func (h *TestimonialHandler) ListAll(c *gin.Context) {
	testimonials, err := h.testimonialService.GetAll()
	if err != nil {
		logger.Error(err, "Failed to list testimonials", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list testimonials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"testimonials": testimonials})
}

// SetApproved approves or unapproves one testimonial.
// PATCH /api/v1/admin/testimonials/:id
func (h *TestimonialHandler) SetApproved(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid testimonial id"})
		return
	}

	var req struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	testimonial, err := h.testimonialService.SetApproved(uint(id), *req.Approved)
	if err != nil {
		if errors.Is(err, service.ErrTestimonialNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Testimonial not found"})
			return
		}
		logger.Error(err, "Failed to update testimonial", map[string]interface{}{"id": id})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update testimonial"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"testimonial": testimonial})
}

// Delete removes one testimonial.
// DELETE /api/v1/admin/testimonials/:id
func (h *TestimonialHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid testimonial id"})
		return
	}

	if err := h.testimonialService.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrTestimonialNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Testimonial not found"})
			return
		}
		logger.Error(err, "Failed to delete testimonial", map[string]interface{}{"id": id})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete testimonial"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "testimonial deleted"})
}
