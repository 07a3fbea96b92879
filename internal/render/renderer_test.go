package render

import (
	"strings"
	"testing"

	"sophrologie-backend/internal/constants"
	"sophrologie-backend/internal/models"
)

func visible(v bool) *models.SectionSettings {
	return &models.SectionSettings{Visible: &v}
}

func TestRenderSectionHiddenInPublicOnly(t *testing.T) {
	r := NewRenderer()
	section := models.Section{
		ID:       "sec-1",
		Type:     constants.SectionText,
		Title:    "Caché",
		Settings: visible(false),
	}

	if html := r.RenderSection(ModePublic, section); html != "" {
		t.Fatalf("hidden section rendered publicly: %q", html)
	}

	preview := r.RenderSection(ModeEditPreview, section)
	if preview == "" {
		t.Fatal("hidden section missing from edit preview")
	}
	if !strings.Contains(preview, "section--hidden") {
		t.Fatalf("preview missing hidden marker: %q", preview)
	}
}

func TestRenderSectionEditPreviewDataAttributes(t *testing.T) {
	r := NewRenderer()
	section := models.Section{ID: "sec-2", Type: constants.SectionText, Order: 3}

	preview := r.RenderSection(ModeEditPreview, section)
	for _, attr := range []string{
		`data-section-id="sec-2"`,
		`data-section-type="text"`,
		`data-section-order="3"`,
	} {
		if !strings.Contains(preview, attr) {
			t.Fatalf("preview missing %s: %q", attr, preview)
		}
	}

	public := r.RenderSection(ModePublic, section)
	if strings.Contains(public, "data-section-id") {
		t.Fatalf("public output carries editor attributes: %q", public)
	}
}

func TestRenderUnknownTypePlaceholder(t *testing.T) {
	r := NewRenderer()
	section := models.Section{ID: "sec-3", Type: "video-embed"}

	html := r.RenderSection(ModePublic, section)
	if !strings.Contains(html, "section-placeholder") {
		t.Fatalf("no placeholder for unknown type: %q", html)
	}
	if !strings.Contains(html, "Type de section inconnu : video-embed") {
		t.Fatalf("placeholder does not name the type: %q", html)
	}
}

func TestRenderHeroEscapesContent(t *testing.T) {
	r := NewRenderer()
	section := models.Section{
		ID:    "sec-4",
		Type:  constants.SectionHero,
		Title: `<script>alert("x")</script>`,
		Image: &models.SectionImage{URL: `/uploads/a.jpg" onerror="x`, Alt: "Cabinet"},
	}

	html := r.RenderSection(ModePublic, section)
	if strings.Contains(html, "<script>") {
		t.Fatalf("script tag survived: %q", html)
	}
	if strings.Contains(html, `onerror="x`) {
		t.Fatalf("attribute injection survived: %q", html)
	}
}

func TestRenderButtonsDefaultURL(t *testing.T) {
	r := NewRenderer()
	section := models.Section{
		ID:   "sec-5",
		Type: constants.SectionCTA,
		Buttons: []models.SectionButton{
			{Text: "Prendre rendez-vous"},
			{Text: "Tarifs", URL: "/tarifs", Style: "secondary"},
		},
	}

	html := r.RenderSection(ModePublic, section)
	if !strings.Contains(html, `href="#"`) {
		t.Fatalf("empty url not defaulted to #: %q", html)
	}
	if !strings.Contains(html, `button--secondary`) {
		t.Fatalf("secondary style lost: %q", html)
	}
	if !strings.Contains(html, `button--primary`) {
		t.Fatalf("default style missing: %q", html)
	}
}

func TestRenderTextSplitsParagraphs(t *testing.T) {
	r := NewRenderer()
	section := models.Section{
		ID:      "sec-6",
		Type:    constants.SectionText,
		Content: "Premier paragraphe.\n\nDeuxième paragraphe.",
	}

	html := r.RenderSection(ModePublic, section)
	if got := strings.Count(html, `<p class="text-block__paragraph">`); got != 2 {
		t.Fatalf("paragraph count = %d, want 2: %q", got, html)
	}
}

func TestRenderEmptyCardGridKeepsShell(t *testing.T) {
	r := NewRenderer()
	section := models.Section{ID: "sec-7", Type: constants.SectionCardGrid, Items: []models.SectionItem{}}

	html := r.RenderSection(ModePublic, section)
	if !strings.Contains(html, `card-grid__cards`) {
		t.Fatalf("empty grid lost its shell: %q", html)
	}
}

func TestRenderAutomaticSectionsMountWidget(t *testing.T) {
	r := NewRenderer()

	for _, sectionType := range []string{
		constants.SectionContactInfo,
		constants.SectionTestimonialForm,
		constants.SectionAppointmentWidget,
		constants.SectionMap,
	} {
		section := models.Section{ID: "auto", Type: sectionType}
		html := r.RenderSection(ModePublic, section)
		if !strings.Contains(html, `data-widget="`+sectionType+`"`) {
			t.Fatalf("%s did not render a widget mount: %q", sectionType, html)
		}
	}
}

func TestRenderTestimonialListFetchFromAPI(t *testing.T) {
	r := NewRenderer()
	section := models.Section{
		ID:           "sec-8",
		Type:         constants.SectionTestimonialList,
		FetchFromAPI: true,
		StaticTestimonials: []models.TestimonialEntry{
			{Author: "Marie", Date: "2026-01-12", Message: "Très apaisant."},
		},
	}

	html := r.RenderSection(ModePublic, section)
	if !strings.Contains(html, `data-testimonials-src="/api/v1/temoignage"`) {
		t.Fatalf("fetch marker missing: %q", html)
	}
	if !strings.Contains(html, "Très apaisant.") {
		t.Fatalf("static fallback missing: %q", html)
	}
}

func TestRenderPageConcatenatesInOrder(t *testing.T) {
	r := NewRenderer()
	page := &models.Page{
		Sections: models.PageSections{
			{ID: "a", Type: constants.SectionHero, Title: "Un"},
			{ID: "b", Type: constants.SectionText, Title: "Deux"},
		},
	}

	html := r.RenderPage(ModePublic, page)
	if strings.Index(html, "Un") > strings.Index(html, "Deux") {
		t.Fatalf("sections rendered out of order: %q", html)
	}
	if got := strings.Count(html, "<section "); got != 2 {
		t.Fatalf("section count = %d, want 2", got)
	}
}

func TestRenderPageNil(t *testing.T) {
	r := NewRenderer()
	if html := r.RenderPage(ModePublic, nil); html != "" {
		t.Fatalf("nil page rendered %q", html)
	}
}

func TestRenderSectionInlineStyle(t *testing.T) {
	r := NewRenderer()
	section := models.Section{
		ID:   "sec-9",
		Type: constants.SectionText,
		Settings: &models.SectionSettings{
			BackgroundColor: "#f5efe6",
			TextColor:       "#333333",
		},
	}

	html := r.RenderSection(ModePublic, section)
	if !strings.Contains(html, `style="background-color:#f5efe6;color:#333333"`) {
		t.Fatalf("inline style missing: %q", html)
	}
}
