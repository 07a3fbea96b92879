package service

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"sophrologie-backend/internal/models"
)

// Section list operations. Every function is a total, copy-on-write
// transformation: the input list is never mutated, a stale section id or an
// out-of-range index returns the input unchanged, and the Order fields of the
// result always form a dense 0..n-1 permutation matching array position. The
// editor UI may call these with ids from a slightly stale snapshot while a
// save is in flight, so nothing here is allowed to fail.

// AddSection appends a normalized default section of the given type and
// returns the new list together with the new section's id.
func AddSection(sections models.PageSections, sectionType string) (models.PageSections, string) {
	section := DefaultSection(sectionType)

	for hasSectionID(sections, section.ID) {
		section.ID = uuid.New().String()
	}

	result := sections.Clone()
	section.Order = len(result)
	result = append(result, section)
	return result, section.ID
}

// UpdateField sets one field of a section addressed by dotted path, e.g.
// "title" or "image.alt". Each path segment is merged into its parent object,
// so setting image.alt leaves image.url untouched. Identity fields cannot be
// addressed.
func UpdateField(sections models.PageSections, sectionID, path string, value interface{}) models.PageSections {
	index := sectionIndex(sections, sectionID)
	if index < 0 || !isEditablePath(path) {
		return sections
	}

	updated, ok := applyFieldPath(sections[index], path, value)
	if !ok {
		return sections
	}

	result := sections.Clone()
	result[index] = updated
	return result
}

// UpdateItemField sets one field of one element of an array-valued section
// field (items, buttons, staticTestimonials, sections).
func UpdateItemField(sections models.PageSections, sectionID, arrayField string, itemIndex int, itemField string, value interface{}) models.PageSections {
	index := sectionIndex(sections, sectionID)
	if index < 0 || !isItemArrayField(arrayField) || !isEditablePath(itemField) {
		return sections
	}

	updated, ok := applyItemFieldPath(sections[index], arrayField, itemIndex, itemField, value)
	if !ok {
		return sections
	}

	result := sections.Clone()
	result[index] = updated
	return result
}

// AddItem appends an element to an array-valued section field. A nil item
// appends the empty default for that field.
func AddItem(sections models.PageSections, sectionID, arrayField string, item interface{}) models.PageSections {
	index := sectionIndex(sections, sectionID)
	if index < 0 || !isItemArrayField(arrayField) {
		return sections
	}

	result := sections.Clone()
	section := &result[index]

	switch arrayField {
	case "items":
		appended := models.SectionItem{}
		if item != nil && !decodeInto(item, &appended) {
			return sections
		}
		section.Items = append(section.Items, appended)
	case "buttons":
		appended := models.SectionButton{URL: "#"}
		if item != nil && !decodeInto(item, &appended) {
			return sections
		}
		section.Buttons = append(section.Buttons, appended)
	case "staticTestimonials":
		appended := models.TestimonialEntry{}
		if item != nil && !decodeInto(item, &appended) {
			return sections
		}
		section.StaticTestimonials = append(section.StaticTestimonials, appended)
	case "sections":
		appended := models.SectionGroup{Items: []string{}}
		if item != nil && !decodeInto(item, &appended) {
			return sections
		}
		section.Groups = append(section.Groups, appended)
	}

	return result
}

// RemoveItem deletes one element of an array-valued section field. Items
// carry no order field, so nothing is renumbered.
func RemoveItem(sections models.PageSections, sectionID, arrayField string, itemIndex int) models.PageSections {
	index := sectionIndex(sections, sectionID)
	if index < 0 || itemIndex < 0 {
		return sections
	}

	result := sections.Clone()
	section := &result[index]

	switch arrayField {
	case "items":
		if itemIndex >= len(section.Items) {
			return sections
		}
		section.Items = append(section.Items[:itemIndex], section.Items[itemIndex+1:]...)
	case "buttons":
		if itemIndex >= len(section.Buttons) {
			return sections
		}
		section.Buttons = append(section.Buttons[:itemIndex], section.Buttons[itemIndex+1:]...)
	case "staticTestimonials":
		if itemIndex >= len(section.StaticTestimonials) {
			return sections
		}
		section.StaticTestimonials = append(section.StaticTestimonials[:itemIndex], section.StaticTestimonials[itemIndex+1:]...)
	case "sections":
		if itemIndex >= len(section.Groups) {
			return sections
		}
		section.Groups = append(section.Groups[:itemIndex], section.Groups[itemIndex+1:]...)
	default:
		return sections
	}

	return result
}

// DeleteSection removes exactly the section with the given id and renumbers
// the remainder. Deleting an id twice is a no-op the second time.
func DeleteSection(sections models.PageSections, sectionID string) models.PageSections {
	index := sectionIndex(sections, sectionID)
	if index < 0 {
		return sections
	}

	result := make(models.PageSections, 0, len(sections)-1)
	for i, section := range sections {
		if i == index {
			continue
		}
		result = append(result, section.Clone())
	}

	return renumberSections(result)
}

// DuplicateSection deep-copies a section under a fresh id, inserts the copy
// immediately after the source and renumbers. The copy shares no slices or
// nested objects with the original.
func DuplicateSection(sections models.PageSections, sectionID string) (models.PageSections, string) {
	index := sectionIndex(sections, sectionID)
	if index < 0 {
		return sections, ""
	}

	duplicate := sections[index].Clone()
	duplicate.ID = uuid.New().String()
	for hasSectionID(sections, duplicate.ID) {
		duplicate.ID = uuid.New().String()
	}

	result := make(models.PageSections, 0, len(sections)+1)
	for i, section := range sections {
		result = append(result, section.Clone())
		if i == index {
			result = append(result, duplicate)
		}
	}

	return renumberSections(result), duplicate.ID
}

// Reorder moves the section at fromIndex to toIndex in array terms and
// renumbers. Drag-and-drop frontends adapt their drop events to this call.
func Reorder(sections models.PageSections, fromIndex, toIndex int) models.PageSections {
	if fromIndex < 0 || fromIndex >= len(sections) || toIndex < 0 || toIndex >= len(sections) {
		return sections
	}
	if fromIndex == toIndex {
		return sections
	}

	result := sections.Clone()
	moved := result[fromIndex]
	result = append(result[:fromIndex], result[fromIndex+1:]...)

	tail := make(models.PageSections, 0, len(sections))
	tail = append(tail, result[:toIndex]...)
	tail = append(tail, moved)
	tail = append(tail, result[toIndex:]...)

	return renumberSections(tail)
}

// SetVisible toggles settings.visible. A hidden section stays in the
// document; only public rendering skips it.
func SetVisible(sections models.PageSections, sectionID string, visible bool) models.PageSections {
	index := sectionIndex(sections, sectionID)
	if index < 0 {
		return sections
	}

	result := sections.Clone()
	section := &result[index]
	if section.Settings == nil {
		section.Settings = &models.SectionSettings{}
	}
	section.Settings.Visible = &visible
	return result
}

func sectionIndex(sections models.PageSections, sectionID string) int {
	for i := range sections {
		if sections[i].ID == sectionID {
			return i
		}
	}
	return -1
}

func hasSectionID(sections models.PageSections, sectionID string) bool {
	return sectionIndex(sections, sectionID) >= 0
}

func isItemArrayField(field string) bool {
	switch field {
	case "items", "buttons", "staticTestimonials", "sections":
		return true
	default:
		return false
	}
}

// isEditablePath rejects identity and structural fields; those change only
// through the dedicated operations.
func isEditablePath(path string) bool {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return false
	}
	switch strings.SplitN(trimmed, ".", 2)[0] {
	case "id", "type", "order":
		return false
	default:
		return true
	}
}

// applyFieldPath sets a dotted path on a section through a JSON map round
// trip. Only the leaf is written, so siblings of every path segment survive.
func applyFieldPath(section models.Section, path string, value interface{}) (models.Section, bool) {
	raw, err := json.Marshal(section)
	if err != nil {
		return section, false
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return section, false
	}

	setPath(doc, strings.Split(path, "."), value)

	return decodeSection(doc, section)
}

func applyItemFieldPath(section models.Section, arrayField string, itemIndex int, itemField string, value interface{}) (models.Section, bool) {
	raw, err := json.Marshal(section)
	if err != nil {
		return section, false
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return section, false
	}

	array, ok := doc[arrayField].([]interface{})
	if !ok || itemIndex < 0 || itemIndex >= len(array) {
		return section, false
	}

	item, ok := array[itemIndex].(map[string]interface{})
	if !ok {
		return section, false
	}

	setPath(item, strings.Split(itemField, "."), value)
	array[itemIndex] = item
	doc[arrayField] = array

	return decodeSection(doc, section)
}

func setPath(doc map[string]interface{}, segments []string, value interface{}) {
	current := doc
	for _, segment := range segments[:len(segments)-1] {
		child, ok := current[segment].(map[string]interface{})
		if !ok {
			child = map[string]interface{}{}
			current[segment] = child
		}
		current = child
	}
	current[segments[len(segments)-1]] = value
}

// decodeSection turns the edited map back into a Section, keeping the
// original on any decoding failure so a bad value can never corrupt the list.
func decodeSection(doc map[string]interface{}, original models.Section) (models.Section, bool) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return original, false
	}

	var updated models.Section
	if err := json.Unmarshal(raw, &updated); err != nil {
		return original, false
	}

	updated.ID = original.ID
	updated.Type = original.Type
	updated.Order = original.Order
	return updated, true
}

func decodeInto(value interface{}, dest interface{}) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}
