package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Section is one typed, orderable block of page content. The union is
// discriminated on Type; only the fields relevant to a given type are
// populated, the rest stay at their zero value and are omitted from JSON.
//
// Order mirrors the section's array position and is renumbered to a dense
// 0..n-1 permutation after every structural mutation. Array position is the
// source of truth; the persisted Order values are never trusted on load.
type Section struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Order int    `json:"order"`

	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Content  string `json:"content,omitempty"`

	Image   *SectionImage   `json:"image,omitempty"`
	Items   []SectionItem   `json:"items,omitempty"`
	Buttons []SectionButton `json:"buttons,omitempty"`
	Groups  []SectionGroup  `json:"sections,omitempty"`

	StaticTestimonials []TestimonialEntry `json:"staticTestimonials,omitempty"`
	FetchFromAPI       bool               `json:"fetchFromApi,omitempty"`

	Settings *SectionSettings `json:"settings,omitempty"`
}

type SectionImage struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// SectionItem is one entry of a card-grid or pricing-table section. Items
// have no order field; array position is their only order.
type SectionItem struct {
	Title    string        `json:"title"`
	Content  string        `json:"content"`
	Price    string        `json:"price,omitempty"`
	Duration string        `json:"duration,omitempty"`
	Image    *SectionImage `json:"image,omitempty"`
}

type SectionButton struct {
	Text  string `json:"text"`
	URL   string `json:"url"`
	Style string `json:"style,omitempty"`
}

// SectionGroup is one titled sub-list of a list-sections section.
type SectionGroup struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// TestimonialEntry is a statically embedded testimonial inside a
// testimonial-list section, as opposed to one fetched from the API.
type TestimonialEntry struct {
	Author  string `json:"author"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

type SectionSettings struct {
	Visible         *bool  `json:"visible,omitempty"`
	Alignment       string `json:"alignment,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
}

// IsVisible treats a missing settings object or visible flag as visible.
// Hiding a section never deletes it; it is only excluded from public rendering.
func (s *Section) IsVisible() bool {
	if s.Settings == nil || s.Settings.Visible == nil {
		return true
	}
	return *s.Settings.Visible
}

// Clone returns a deep copy sharing no slices or nested objects with the
// receiver. Duplicated sections must never alias the original's payload.
func (s Section) Clone() Section {
	data, err := json.Marshal(s)
	if err != nil {
		return s
	}
	var copied Section
	if err := json.Unmarshal(data, &copied); err != nil {
		return s
	}
	return copied
}

// PageSections is the ordered section list of one page, stored as a single
// jsonb column.
type PageSections []Section

func (ps *PageSections) Scan(value interface{}) error {
	if value == nil {
		*ps = PageSections{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan PageSections")
	}

	return json.Unmarshal(bytes, ps)
}

func (ps PageSections) Value() (driver.Value, error) {
	if len(ps) == 0 {
		return nil, nil
	}
	return json.Marshal(ps)
}

// Clone deep-copies every section in the list.
func (ps PageSections) Clone() PageSections {
	if ps == nil {
		return nil
	}
	copied := make(PageSections, 0, len(ps))
	for _, section := range ps {
		copied = append(copied, section.Clone())
	}
	return copied
}

// Equal compares two section lists by content, not by reference. The
// persistence coordinator uses this to skip redundant autosaves.
func (ps PageSections) Equal(other PageSections) bool {
	a, err := json.Marshal(ps)
	if err != nil {
		return false
	}
	b, err := json.Marshal(other)
	if err != nil {
		return false
	}
	return string(a) == string(b)
}
