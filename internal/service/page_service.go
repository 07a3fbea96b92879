package service

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"sophrologie-backend/internal/constants"
	"sophrologie-backend/internal/models"
	"sophrologie-backend/internal/repository"
	"sophrologie-backend/pkg/cache"
	"sophrologie-backend/pkg/logger"
)

// PageService owns page documents and their version history. All writes go
// through SavePage so versioning, normalization and cache invalidation cannot
// be bypassed.
type PageService struct {
	pageRepo    repository.PageRepository
	versionRepo repository.PageVersionRepository
	cache       *cache.Cache
}

func NewPageService(pageRepo repository.PageRepository, versionRepo repository.PageVersionRepository, cache *cache.Cache) *PageService {
	return &PageService{
		pageRepo:    pageRepo,
		versionRepo: versionRepo,
		cache:       cache,
	}
}

func (s *PageService) GetPage(pageID string) (*models.Page, error) {
	var cached models.Page
	if err := s.cache.GetCachedPage(pageID, &cached); err == nil {
		return &cached, nil
	}

	page, err := s.pageRepo.GetByPageID(pageID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to load page %s: %w", pageID, err)
	}

	// Order values in storage may predate an operation that renumbered in
	// memory only, so array position is re-derived on every load.
	page.Sections = NormalizeSections(page.Sections)

	if err := s.cache.CachePage(pageID, page); err != nil {
		logger.Warn("Failed to cache page", map[string]interface{}{"page_id": pageID})
	}

	return page, nil
}

func (s *PageService) GetAllPages() ([]models.Page, error) {
	return s.pageRepo.GetAll()
}

func (s *PageService) GetPublishedPages() ([]models.Page, error) {
	return s.pageRepo.GetAllPublished()
}

// SavePage replaces the page document. When req.CreateVersion is set a
// snapshot of the new content is appended to the history before the page row
// is updated.
func (s *PageService) SavePage(pageID string, req *models.SavePageRequest, savedBy string) (*models.Page, error) {
	if !constants.IsKnownPageID(pageID) {
		return nil, ErrPageNotFound
	}

	page, err := s.pageRepo.GetByPageID(pageID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to load page %s: %w", pageID, err)
	}

	sections := NormalizeSections(req.Sections)

	page.Title = req.Title
	page.MetaDescription = req.MetaDescription
	page.Sections = sections
	page.LastModified = time.Now()
	if req.Status != "" {
		page.Status = req.Status
	}

	if req.CreateVersion {
		latest, err := s.versionRepo.LatestVersionNumber(pageID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve version number for %s: %w", pageID, err)
		}

		version := &models.PageVersion{
			PageID:          pageID,
			VersionNumber:   latest + 1,
			Comment:         req.VersionComment,
			CreatedBy:       savedBy,
			Title:           page.Title,
			MetaDescription: page.MetaDescription,
			Sections:        sections.Clone(),
			SectionsCount:   len(sections),
		}
		if err := s.versionRepo.Create(version); err != nil {
			return nil, fmt.Errorf("failed to create version for %s: %w", pageID, err)
		}
		page.CurrentVersion = version.VersionNumber
	}

	if err := s.pageRepo.Update(page); err != nil {
		return nil, fmt.Errorf("failed to save page %s: %w", pageID, err)
	}

	if err := s.cache.InvalidatePage(pageID); err != nil {
		logger.Warn("Failed to invalidate page cache", map[string]interface{}{"page_id": pageID})
	}

	logger.Info("Page saved", map[string]interface{}{
		"page_id":        pageID,
		"sections":       len(sections),
		"create_version": req.CreateVersion,
	})

	return page, nil
}

func (s *PageService) ListVersions(pageID string) ([]models.PageVersionSummary, error) {
	if _, err := s.GetPage(pageID); err != nil {
		return nil, err
	}

	versions, err := s.versionRepo.GetByPageID(pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions for %s: %w", pageID, err)
	}

	summaries := make([]models.PageVersionSummary, 0, len(versions))
	for _, v := range versions {
		summaries = append(summaries, models.PageVersionSummary{
			VersionNumber: v.VersionNumber,
			CreatedAt:     v.CreatedAt,
			Comment:       v.Comment,
			SectionsCount: v.SectionsCount,
			CreatedBy:     v.CreatedBy,
		})
	}
	return summaries, nil
}

// RestoreVersion writes a historical snapshot back through the ordinary save
// path, so a restore shows up in the history as a new version rather than
// rewriting it.
func (s *PageService) RestoreVersion(pageID string, versionNumber int, comment, restoredBy string) (*models.Page, error) {
	version, err := s.versionRepo.GetByVersionNumber(pageID, versionNumber)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrVersionNotFound
		}
		return nil, fmt.Errorf("failed to load version %d of %s: %w", versionNumber, pageID, err)
	}

	if comment == "" {
		comment = fmt.Sprintf("Restored from version %d", versionNumber)
	}

	req := &models.SavePageRequest{
		Title:           version.Title,
		MetaDescription: version.MetaDescription,
		Sections:        version.Sections.Clone(),
		CreateVersion:   true,
		VersionComment:  comment,
	}

	return s.SavePage(pageID, req, restoredBy)
}
