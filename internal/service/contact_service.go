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

var ErrContactMessageNotFound = errors.New("contact message not found")

// ContactService stores inbound contact form messages and notifies the
// practitioner by email.
type ContactService struct {
	repo  repository.ContactRepository
	email *EmailService
}

func NewContactService(repo repository.ContactRepository, email *EmailService) *ContactService {
	return &ContactService{
		repo:  repo,
		email: email,
	}
}

func (s *ContactService) Submit(req models.ContactRequest) (*models.ContactMessage, error) {
	message := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}

	if err := s.repo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}

	subject := message.Subject
	if subject == "" {
		subject = "Nouveau message de contact"
	}
	if err := s.email.NotifyPractitioner(
		subject,
		fmt.Sprintf("De : %s <%s>\nTéléphone : %s\n\n%s", message.Name, message.Email, message.Phone, message.Message),
	); err != nil {
		logger.Warn("Failed to send contact notification", map[string]interface{}{"id": message.ID})
	}

	return message, nil
}

func (s *ContactService) GetAll() ([]models.ContactMessage, error) {
	return s.repo.GetAll()
}

func (s *ContactService) MarkRead(id uint) (*models.ContactMessage, error) {
	message, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactMessageNotFound
		}
		return nil, err
	}

	message.Read = true
	if err := s.repo.Update(message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *ContactService) Delete(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactMessageNotFound
		}
		return err
	}
	return s.repo.Delete(id)
}
