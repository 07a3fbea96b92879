package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"sophrologie-backend/internal/models"
	"sophrologie-backend/internal/repository"
	"sophrologie-backend/pkg/logger"
)

var ErrAppointmentNotFound = errors.New("appointment request not found")

// AppointmentService stores appointment requests coming from the booking
// widget fallback form.
type AppointmentService struct {
	repo  repository.AppointmentRepository
	email *EmailService
}

func NewAppointmentService(repo repository.AppointmentRepository, email *EmailService) *AppointmentService {
	return &AppointmentService{
		repo:  repo,
		email: email,
	}
}

func (s *AppointmentService) Submit(req models.CreateAppointmentRequest) (*models.AppointmentRequest, error) {
	appointment := &models.AppointmentRequest{
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		PreferredDate: strings.TrimSpace(req.PreferredDate),
		Message:       strings.TrimSpace(req.Message),
	}

	if err := s.repo.Create(appointment); err != nil {
		return nil, fmt.Errorf("failed to store appointment request: %w", err)
	}

	if err := s.email.NotifyPractitioner(
		"Nouvelle demande de rendez-vous",
		fmt.Sprintf("De : %s <%s>\nTéléphone : %s\nDate souhaitée : %s\n\n%s",
			appointment.Name, appointment.Email, appointment.Phone, appointment.PreferredDate, appointment.Message),
	); err != nil {
		logger.Warn("Failed to send appointment notification", map[string]interface{}{"id": appointment.ID})
	}

	return appointment, nil
}

func (s *AppointmentService) GetAll() ([]models.AppointmentRequest, error) {
	return s.repo.GetAll()
}

func (s *AppointmentService) MarkHandled(id uint) (*models.AppointmentRequest, error) {
	appointment, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	appointment.Handled = true
	if err := s.repo.Update(appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *AppointmentService) Delete(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAppointmentNotFound
		}
		return err
	}
	return s.repo.Delete(id)
}
