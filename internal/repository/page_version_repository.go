package repository

import (
	"sophrologie-backend/internal/models"

	"gorm.io/gorm"
)

type PageVersionRepository interface {
	Create(version *models.PageVersion) error
	GetByPageID(pageID string) ([]models.PageVersion, error)
	GetByVersionNumber(pageID string, versionNumber int) (*models.PageVersion, error)
	LatestVersionNumber(pageID string) (int, error)
	PruneOlderThan(pageID string, keep int) (int64, error)
}

type pageVersionRepository struct {
	db *gorm.DB
}

func NewPageVersionRepository(db *gorm.DB) PageVersionRepository {
	return &pageVersionRepository{db: db}
}

func (r *pageVersionRepository) Create(version *models.PageVersion) error {
	return r.db.Create(version).Error
}

// GetByPageID returns snapshots newest-first.
func (r *pageVersionRepository) GetByPageID(pageID string) ([]models.PageVersion, error) {
	var versions []models.PageVersion
	if err := r.db.Where("page_id = ?", pageID).
		Order("version_number DESC").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *pageVersionRepository) GetByVersionNumber(pageID string, versionNumber int) (*models.PageVersion, error) {
	var version models.PageVersion
	if err := r.db.Where("page_id = ? AND version_number = ?", pageID, versionNumber).
		First(&version).Error; err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *pageVersionRepository) LatestVersionNumber(pageID string) (int, error) {
	var latest int
	err := r.db.Model(&models.PageVersion{}).
		Where("page_id = ?", pageID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&latest).Error
	if err != nil {
		return 0, err
	}
	return latest, nil
}

// PruneOlderThan deletes all but the newest keep snapshots of a page and
// returns how many rows were removed.
func (r *pageVersionRepository) PruneOlderThan(pageID string, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}

	latest, err := r.LatestVersionNumber(pageID)
	if err != nil {
		return 0, err
	}

	cutoff := latest - keep
	if cutoff <= 0 {
		return 0, nil
	}

	result := r.db.Where("page_id = ? AND version_number <= ?", pageID, cutoff).
		Delete(&models.PageVersion{})
	return result.RowsAffected, result.Error
}
