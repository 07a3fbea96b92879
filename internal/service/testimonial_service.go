package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"sophrologie-backend/internal/models"
	"sophrologie-backend/internal/repository"
	"sophrologie-backend/pkg/cache"
	"sophrologie-backend/pkg/logger"
)

var ErrTestimonialNotFound = errors.New("testimonial not found")

// TestimonialService handles visitor submissions and their moderation. Only
// approved testimonials are ever exposed publicly, and the public listing
// never includes submitter emails.
type TestimonialService struct {
	repo  repository.TestimonialRepository
	cache *cache.Cache
	email *EmailService
}

func NewTestimonialService(repo repository.TestimonialRepository, cache *cache.Cache, email *EmailService) *TestimonialService {
	return &TestimonialService{
		repo:  repo,
		cache: cache,
		email: email,
	}
}

func (s *TestimonialService) Submit(req models.SubmitTestimonialRequest) (*models.Testimonial, error) {
	testimonial := &models.Testimonial{
		Author:   strings.TrimSpace(req.Author),
		Email:    strings.TrimSpace(req.Email),
		Message:  strings.TrimSpace(req.Message),
		Rating:   req.Rating,
		Approved: false,
	}

	if err := s.repo.Create(testimonial); err != nil {
		return nil, fmt.Errorf("failed to store testimonial: %w", err)
	}

	if err := s.email.NotifyPractitioner(
		"Nouveau témoignage en attente de validation",
		fmt.Sprintf("De : %s\n\n%s", testimonial.Author, testimonial.Message),
	); err != nil {
		logger.Warn("Failed to send testimonial notification", map[string]interface{}{"id": testimonial.ID})
	}

	return testimonial, nil
}

func (s *TestimonialService) GetApproved() ([]models.Testimonial, error) {
	var cached []models.Testimonial
	if err := s.cache.GetCachedApprovedTestimonials(&cached); err == nil {
		return cached, nil
	}

	testimonials, err := s.repo.GetApproved()
	if err != nil {
		return nil, err
	}

	if err := s.cache.CacheApprovedTestimonials(testimonials); err != nil {
		logger.Warn("Failed to cache testimonials", nil)
	}

	return testimonials, nil
}

func (s *TestimonialService) GetAll() ([]models.Testimonial, error) {
	return s.repo.GetAll()
}

func (s *TestimonialService) SetApproved(id uint, approved bool) (*models.Testimonial, error) {
	testimonial, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestimonialNotFound
		}
		return nil, err
	}

	testimonial.Approved = approved
	if err := s.repo.Update(testimonial); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateTestimonialsCache(); err != nil {
		logger.Warn("Failed to invalidate testimonials cache", nil)
	}

	return testimonial, nil
}

func (s *TestimonialService) Delete(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTestimonialNotFound
		}
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if err := s.cache.InvalidateTestimonialsCache(); err != nil {
		logger.Warn("Failed to invalidate testimonials cache", nil)
	}

	return nil
}
