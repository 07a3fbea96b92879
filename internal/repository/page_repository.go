package repository

import (
	"sophrologie-backend/internal/models"

	"gorm.io/gorm"
)

type PageRepository interface {
	Create(page *models.Page) error
	Update(page *models.Page) error
	GetByPageID(pageID string) (*models.Page, error)
	GetAll() ([]models.Page, error)
	GetAllPublished() ([]models.Page, error)
	ExistsByPageID(pageID string) (bool, error)
}

type pageRepository struct {
	db *gorm.DB
}

func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

func (r *pageRepository) Create(page *models.Page) error {
	return r.db.Create(page).Error
}

func (r *pageRepository) Update(page *models.Page) error {
	return r.db.Save(page).Error
}

func (r *pageRepository) GetByPageID(pageID string) (*models.Page, error) {
	var page models.Page
	if err := r.db.Where("page_id = ?", pageID).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) GetAll() ([]models.Page, error) {
	var pages []models.Page
	if err := r.db.Order("page_id ASC").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *pageRepository) GetAllPublished() ([]models.Page, error) {
	var pages []models.Page
	if err := r.db.Where("status = ?", "published").
		Order("page_id ASC").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *pageRepository) ExistsByPageID(pageID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Page{}).Where("page_id = ?", pageID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
