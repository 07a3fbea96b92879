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

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Submit receives a contact form message.
// POST /api/v1/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	message, err := h.contactService.Submit(req)
	if err != nil {
		logger.Error(err, "Failed to submit contact message", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Votre message a bien été envoyé.",
		"id":      message.ID,
	})
}

// ListAll returns the contact inbox.
// GET /api/v1/admin/contact
func (h *ContactHandler) ListAll(c *gin.Context) {
	messages, err := h.contactService.GetAll()
	if err != nil {
		logger.Error(err, "Failed to list contact messages", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// MarkRead marks one message as read.
// PATCH /api/v1/admin/contact/:id
func (h *ContactHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message id"})
		return
	}

	message, err := h.contactService.MarkRead(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrContactMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}
		logger.Error(err, "Failed to update contact message", map[string]interface{}{"id": id})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Delete removes one message.
// DELETE /api/v1/admin/contact/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message id"})
		return
	}

	if err := h.contactService.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrContactMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}
		logger.Error(err, "Failed to delete contact message", map[string]interface{}{"id": id})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}
