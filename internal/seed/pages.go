package seed

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"gorm.io/gorm"

	"sophrologie-backend/internal/constants"
	"sophrologie-backend/internal/models"
	"sophrologie-backend/internal/repository"
	"sophrologie-backend/internal/service"
	"sophrologie-backend/pkg/logger"
)

//go:embed data/pages/*.json
var defaultPagesFS embed.FS

type pageDefinition struct {
	PageID          string           `json:"pageId"`
	Title           string           `json:"title"`
	MetaDescription string           `json:"metaDescription"`
	Status          string           `json:"status"`
	Sections        []models.Section `json:"sections"`
}

// EnsureDefaultPages loads embedded page definitions and makes sure every
// logical page exists in the database. Existing pages are never overwritten.
func EnsureDefaultPages(pageRepo repository.PageRepository) {
	entries, err := fs.ReadDir(defaultPagesFS, "data/pages")
	if err != nil {
		logger.Error(err, "Failed to read embedded page definitions", nil)
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		data, err := defaultPagesFS.ReadFile(fmt.Sprintf("data/pages/%s", name))
		if err != nil {
			logger.Error(err, "Failed to read embedded page file", map[string]interface{}{"file": name})
			continue
		}

		definition, err := parsePageDefinition(data)
		if err != nil {
			logger.Error(err, "Failed to parse embedded page file", map[string]interface{}{"file": name})
			continue
		}

		ensurePage(pageRepo, definition, name)
	}
}

func ensurePage(pageRepo repository.PageRepository, definition pageDefinition, source string) {
	if !constants.IsKnownPageID(definition.PageID) {
		logger.Warn("Skipping page definition with unknown page id", map[string]interface{}{
			"page_id": definition.PageID,
			"source":  source,
		})
		return
	}

	if _, err := pageRepo.GetByPageID(definition.PageID); err == nil {
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error(err, "Failed to verify default page", map[string]interface{}{"page_id": definition.PageID})
		return
	}

	status := definition.Status
	if status == "" {
		status = constants.PageStatusPublished
	}

	page := &models.Page{
		PageID:          definition.PageID,
		Title:           definition.Title,
		MetaDescription: definition.MetaDescription,
		Sections:        service.NormalizeSections(definition.Sections),
		Status:          status,
		LastModified:    time.Now(),
	}

	if err := pageRepo.Create(page); err != nil {
		logger.Error(err, "Failed to create default page", map[string]interface{}{"page_id": definition.PageID})
		return
	}

	logger.Info("Seeded default page", map[string]interface{}{
		"page_id":  definition.PageID,
		"sections": len(page.Sections),
		"source":   source,
	})
}

func parsePageDefinition(data []byte) (pageDefinition, error) {
	var definition pageDefinition
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return definition, errors.New("empty page definition")
	}
	if err := json.Unmarshal(trimmed, &definition); err != nil {
		return definition, err
	}
	return definition, nil
}
