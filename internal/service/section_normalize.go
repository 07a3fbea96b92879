package service

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"sophrologie-backend/internal/constants"
	"sophrologie-backend/internal/models"
)

// NormalizeSection fills the defaults a renderer relies on: a stable id, a
// normalised type tag, settings with an explicit visible flag, and non-nil
// payload collections for the types that carry them. It never fails; unknown
// type tags pass through untouched and degrade to a placeholder at render
// time.
func NormalizeSection(section models.Section) models.Section {
	section.Type = constants.NormalizeSectionType(section.Type)

	if strings.TrimSpace(section.ID) == "" {
		section.ID = uuid.New().String()
	}

	if section.Settings == nil {
		section.Settings = &models.SectionSettings{}
	}
	if section.Settings.Visible == nil {
		visible := true
		section.Settings.Visible = &visible
	}
	if section.Settings.Alignment == "" {
		section.Settings.Alignment = constants.DefaultAlignment
	}

	switch section.Type {
	case constants.SectionHero, constants.SectionImageText:
		if section.Image == nil {
			section.Image = &models.SectionImage{}
		}
	case constants.SectionCardGrid, constants.SectionPricingTable:
		if section.Items == nil {
			section.Items = []models.SectionItem{}
		}
	case constants.SectionCTA:
		if section.Buttons == nil {
			section.Buttons = []models.SectionButton{}
		}
		for i := range section.Buttons {
			section.Buttons[i].Style = constants.NormalizeButtonStyle(section.Buttons[i].Style)
		}
	case constants.SectionListSections:
		if section.Groups == nil {
			section.Groups = []models.SectionGroup{}
		}
		for i := range section.Groups {
			if section.Groups[i].Items == nil {
				section.Groups[i].Items = []string{}
			}
		}
	case constants.SectionTestimonialList:
		if section.StaticTestimonials == nil {
			section.StaticTestimonials = []models.TestimonialEntry{}
		}
	}

	// Automatic sections mount an externally-owned widget; any payload that
	// sneaks in through a raw document save is dropped.
	if constants.IsAutomaticSectionType(section.Type) {
		section.Subtitle = ""
		section.Content = ""
		section.Image = nil
		section.Items = nil
		section.Buttons = nil
		section.Groups = nil
		section.StaticTestimonials = nil
		section.FetchFromAPI = false
	}

	return section
}

// NormalizeSections prepares a section list loaded from storage or submitted
// by a client: every section is normalised, duplicate ids are replaced, the
// list is sorted by its persisted order values, and Order is renumbered to a
// dense 0..n-1 permutation. Array position is authoritative from here on.
func NormalizeSections(sections []models.Section) models.PageSections {
	if len(sections) == 0 {
		return models.PageSections{}
	}

	prepared := make(models.PageSections, 0, len(sections))
	seen := make(map[string]bool, len(sections))

	for _, section := range sections {
		normalized := NormalizeSection(section)
		if seen[normalized.ID] {
			normalized.ID = uuid.New().String()
		}
		seen[normalized.ID] = true
		prepared = append(prepared, normalized)
	}

	sort.SliceStable(prepared, func(i, j int) bool {
		return prepared[i].Order < prepared[j].Order
	})

	return renumberSections(prepared)
}

// renumberSections makes Order mirror array position. Called after every
// structural mutation so persisted order values are always dense.
func renumberSections(sections models.PageSections) models.PageSections {
	for i := range sections {
		sections[i].Order = i
	}
	return sections
}

// DefaultSection builds the normalized empty section the builder inserts for
// a given type.
func DefaultSection(sectionType string) models.Section {
	return NormalizeSection(models.Section{
		ID:   uuid.New().String(),
		Type: sectionType,
	})
}
