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

type AppointmentHandler struct {
	appointmentService *service.AppointmentService
}

func NewAppointmentHandler(appointmentService *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// Submit receives an appointment request from the booking fallback form.
// POST /api/v1/rendez-vous
func (h *AppointmentHandler) Submit(c *gin.Context) {
	var req models.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	appointment, err := h.appointmentService.Submit(req)
	if err != nil {
		logger.Error(err, "Failed to submit appointment request", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit appointment request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Votre demande de rendez-vous a bien été envoyée.",
		"id":      appointment.ID,
	})
}

// ListAll returns all appointment requests.
// GET /api/v1/admin/appointments
func (h *AppointmentHandler) ListAll(c *gin.Context) {
	appointments, err := h.appointmentService.GetAll()
	if err != nil {
		logger.Error(err, "Failed to list appointment requests", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list appointment requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

// MarkHandled marks one request as handled.
// PATCH /api/v1/admin/appointments/:id
func (h *AppointmentHandler) MarkHandled(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment id"})
		return
	}

	appointment, err := h.appointmentService.MarkHandled(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment request not found"})
			return
		}
		logger.Error(err, "Failed to update appointment request", map[string]interface{}{"id": id})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update appointment request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointment": appointment})
}

// Delete removes one request.
// DELETE /api/v1/admin/appointments/:id
func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment id"})
		return
	}

	if err := h.appointmentService.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment request not found"})
			return
		}
		logger.Error(err, "Failed to delete appointment request", map[string]interface{}{"id": id})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete appointment request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "appointment request deleted"})
}
