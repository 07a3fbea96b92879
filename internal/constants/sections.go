package constants

import "strings"

// Section type tags. The set is closed: every tag here has a renderer and an
// editable-field definition. Unknown tags are retained in stored documents and
// rendered as an unsupported-section placeholder.
const (
	SectionHero            = "hero"
	SectionText            = "text"
	SectionImageText       = "image-text"
	SectionCardGrid        = "card-grid"
	SectionPricingTable    = "pricing-table"
	SectionCTA             = "cta"
	SectionListSections    = "list-sections"
	SectionTestimonialList = "testimonial-list"

	// Automatic sections render an externally-owned widget and carry no
	// editable payload.
	SectionContactInfo       = "contact-info"
	SectionTestimonialForm   = "testimonial-form"
	SectionAppointmentWidget = "appointment-widget"
	SectionMap               = "map"
)

// Logical page identifiers. Pages are seeded once and never created through
// the editor; the editor only mutates their section lists.
const (
	PageHome         = "home"
	PageAbout        = "about"
	PagePricing      = "pricing"
	PageAppointment  = "appointment"
	PageTestimonials = "testimonials"
	PageContact      = "contact"
	PageEthics       = "ethics"
)

const (
	// PageStatusDraft keeps a page out of public rendering.
	PageStatusDraft = "draft"
	// PageStatusPublished makes a page publicly visible at its path.
	PageStatusPublished = "published"
)

const (
	// DefaultButtonStyle is applied to CTA buttons with no explicit style.
	DefaultButtonStyle = "primary"
	// SecondaryButtonStyle is the only other accepted CTA button style.
	SecondaryButtonStyle = "secondary"

	// DefaultAlignment is applied to sections with no explicit alignment.
	DefaultAlignment = "left"
)

const (
	// DefaultAutosaveDelaySeconds is how long an edit session stays quiet
	// before a debounced autosave fires. Every mutation restarts the timer.
	DefaultAutosaveDelaySeconds = 15
)

// AuthTokenCookieName is the fallback cookie checked when no bearer header is
// present.
const AuthTokenCookieName = "auth_token"

var sectionTypes = []string{
	SectionHero,
	SectionText,
	SectionImageText,
	SectionCardGrid,
	SectionPricingTable,
	SectionCTA,
	SectionListSections,
	SectionTestimonialList,
	SectionContactInfo,
	SectionTestimonialForm,
	SectionAppointmentWidget,
	SectionMap,
}

var automaticSectionTypes = map[string]bool{
	SectionContactInfo:       true,
	SectionTestimonialForm:   true,
	SectionAppointmentWidget: true,
	SectionMap:               true,
}

var pageIDs = []string{
	PageHome,
	PageAbout,
	PagePricing,
	PageAppointment,
	PageTestimonials,
	PageContact,
	PageEthics,
}

// SectionTypes returns the known section type tags.
// A copy of the slice is returned to prevent external mutation of the internal list.
func SectionTypes() []string {
	types := make([]string, len(sectionTypes))
	copy(types, sectionTypes)
	return types
}

// PageIDs returns the fixed set of logical page identifiers.
// A copy of the slice is returned to prevent external mutation of the internal list.
func PageIDs() []string {
	ids := make([]string, len(pageIDs))
	copy(ids, pageIDs)
	return ids
}

// IsKnownSectionType reports whether the tag has a dedicated renderer.
func IsKnownSectionType(sectionType string) bool {
	normalized := NormalizeSectionType(sectionType)
	for _, t := range sectionTypes {
		if t == normalized {
			return true
		}
	}
	return false
}

// IsAutomaticSectionType reports whether the tag renders an externally-owned
// widget with no editable payload.
func IsAutomaticSectionType(sectionType string) bool {
	return automaticSectionTypes[NormalizeSectionType(sectionType)]
}

// IsKnownPageID reports whether the identifier is one of the seeded logical pages.
func IsKnownPageID(pageID string) bool {
	normalized := strings.TrimSpace(strings.ToLower(pageID))
	for _, id := range pageIDs {
		if id == normalized {
			return true
		}
	}
	return false
}

// NormalizeSectionType lowercases and trims a tag without validating it.
func NormalizeSectionType(sectionType string) string {
	return strings.TrimSpace(strings.ToLower(sectionType))
}

// NormalizeButtonStyle returns a known button style or the default.
func NormalizeButtonStyle(style string) string {
	trimmed := strings.TrimSpace(strings.ToLower(style))
	switch trimmed {
	case DefaultButtonStyle, SecondaryButtonStyle:
		return trimmed
	default:
		return DefaultButtonStyle
	}
}
