package repository

import (
	"sophrologie-backend/internal/models"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(request *models.AppointmentRequest) error
	Update(request *models.AppointmentRequest) error
	Delete(id uint) error
	GetByID(id uint) (*models.AppointmentRequest, error)
	GetAll() ([]models.AppointmentRequest, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(request *models.AppointmentRequest) error {
	return r.db.Create(request).Error
}

func (r *appointmentRepository) Update(request *models.AppointmentRequest) error {
	return r.db.Save(request).Error
}

func (r *appointmentRepository) Delete(id uint) error {
	return r.db.Delete(&models.AppointmentRequest{}, id).Error
}

func (r *appointmentRepository) GetByID(id uint) (*models.AppointmentRequest, error) {
	var request models.AppointmentRequest
	if err := r.db.First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *appointmentRepository) GetAll() ([]models.AppointmentRequest, error) {
	var requests []models.AppointmentRequest
	if err := r.db.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
