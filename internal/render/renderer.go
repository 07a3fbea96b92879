package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"sophrologie-backend/internal/constants"
	"sophrologie-backend/internal/models"
)

// Mode selects the rendering audience. Public output drops hidden sections;
// edit preview keeps them, dims them and annotates every section with the
// data attributes the editor overlay hooks into.
type Mode string

const (
	ModePublic      Mode = "public"
	ModeEditPreview Mode = "editPreview"
)

type SectionRenderer func(r *Renderer, mode Mode, section models.Section) string

// Renderer turns a section document into HTML. Rendering is pure: the same
// document and mode always produce the same markup, and no renderer can fail.
type Renderer struct {
	sanitizer *bluemonday.Policy
	renderers map[string]SectionRenderer
}

func NewRenderer() *Renderer {
	r := &Renderer{
		sanitizer: bluemonday.UGCPolicy(),
		renderers: make(map[string]SectionRenderer),
	}
	r.registerDefaultRenderers()
	return r
}

func (r *Renderer) RegisterRenderer(sectionType string, renderer SectionRenderer) {
	if sectionType == "" || renderer == nil {
		return
	}
	r.renderers[sectionType] = renderer
}

func (r *Renderer) registerDefaultRenderers() {
	r.RegisterRenderer(constants.SectionHero, renderHero)
	r.RegisterRenderer(constants.SectionText, renderText)
	r.RegisterRenderer(constants.SectionImageText, renderImageText)
	r.RegisterRenderer(constants.SectionCardGrid, renderCardGrid)
	r.RegisterRenderer(constants.SectionPricingTable, renderPricingTable)
	r.RegisterRenderer(constants.SectionCTA, renderCTA)
	r.RegisterRenderer(constants.SectionListSections, renderListSections)
	r.RegisterRenderer(constants.SectionTestimonialList, renderTestimonialList)
	r.RegisterRenderer(constants.SectionContactInfo, renderMount)
	r.RegisterRenderer(constants.SectionTestimonialForm, renderMount)
	r.RegisterRenderer(constants.SectionAppointmentWidget, renderMount)
	r.RegisterRenderer(constants.SectionMap, renderMount)
}

// RenderPage renders every section of the document in array order.
func (r *Renderer) RenderPage(mode Mode, page *models.Page) string {
	if page == nil {
		return ""
	}

	var sb strings.Builder
	for _, section := range page.Sections {
		sb.WriteString(r.RenderSection(mode, section))
	}
	return sb.String()
}

// RenderSection wraps one section's body in its container element. Hidden
// sections disappear entirely from public output but stay in edit preview so
// they can be toggled back.
func (r *Renderer) RenderSection(mode Mode, section models.Section) string {
	if mode == ModePublic && !section.IsVisible() {
		return ""
	}

	renderer, known := r.renderers[section.Type]
	body := ""
	if known {
		body = renderer(r, mode, section)
	} else {
		body = renderPlaceholder(section)
	}

	classes := []string{"section", "section--" + sanitizeTypeClass(section.Type)}
	if section.Settings != nil && section.Settings.Alignment != "" {
		classes = append(classes, "section--align-"+template.HTMLEscapeString(section.Settings.Alignment))
	}
	if mode == ModeEditPreview && !section.IsVisible() {
		classes = append(classes, "section--hidden")
	}

	var sb strings.Builder
	sb.WriteString(`<section class="` + strings.Join(classes, " ") + `"`)
	sb.WriteString(` id="section-` + template.HTMLEscapeString(section.ID) + `"`)
	if mode == ModeEditPreview {
		sb.WriteString(` data-section-id="` + template.HTMLEscapeString(section.ID) + `"`)
		sb.WriteString(` data-section-type="` + template.HTMLEscapeString(section.Type) + `"`)
		sb.WriteString(fmt.Sprintf(` data-section-order="%d"`, section.Order))
	}
	if style := inlineStyle(section.Settings); style != "" {
		sb.WriteString(` style="` + style + `"`)
	}
	sb.WriteString(`>`)
	sb.WriteString(body)
	sb.WriteString(`</section>`)
	return sb.String()
}

func renderHero(r *Renderer, mode Mode, section models.Section) string {
	var sb strings.Builder
	sb.WriteString(`<div class="hero">`)

	if section.Image != nil && section.Image.URL != "" {
		sb.WriteString(`<img class="hero__image" src="` + template.HTMLEscapeString(section.Image.URL) +
			`" alt="` + template.HTMLEscapeString(section.Image.Alt) + `" />`)
	}

	sb.WriteString(`<div class="hero__content">`)
	if section.Title != "" {
		sb.WriteString(`<h1 class="hero__title">` + template.HTMLEscapeString(section.Title) + `</h1>`)
	}
	if section.Subtitle != "" {
		sb.WriteString(`<p class="hero__subtitle">` + template.HTMLEscapeString(section.Subtitle) + `</p>`)
	}
	sb.WriteString(renderButtons(section.Buttons, "hero"))
	sb.WriteString(`</div></div>`)
	return sb.String()
}

func renderText(r *Renderer, mode Mode, section models.Section) string {
	var sb strings.Builder
	sb.WriteString(`<div class="text-block">`)
	if section.Title != "" {
		sb.WriteString(`<h2 class="text-block__title">` + template.HTMLEscapeString(section.Title) + `</h2>`)
	}
	sb.WriteString(renderParagraphs(r, section.Content, "text-block"))
	sb.WriteString(`</div>`)
	return sb.String()
}

func renderImageText(r *Renderer, mode Mode, section models.Section) string {
	var sb strings.Builder
	sb.WriteString(`<div class="image-text">`)

	if section.Image != nil && section.Image.URL != "" {
		sb.WriteString(`<figure class="image-text__figure">`)
		sb.WriteString(`<img class="image-text__image" src="` + template.HTMLEscapeString(section.Image.URL) +
			`" alt="` + template.HTMLEscapeString(section.Image.Alt) + `" />`)
		sb.WriteString(`</figure>`)
	}

	sb.WriteString(`<div class="image-text__body">`)
	if section.Title != "" {
		sb.WriteString(`<h2 class="image-text__title">` + template.HTMLEscapeString(section.Title) + `</h2>`)
	}
	sb.WriteString(renderParagraphs(r, section.Content, "image-text"))
	sb.WriteString(`</div></div>`)
	return sb.String()
}

func renderCardGrid(r *Renderer, mode Mode, section models.Section) string {
	var sb strings.Builder
	sb.WriteString(`<div class="card-grid">`)
	if section.Title != "" {
		sb.WriteString(`<h2 class="card-grid__title">` + template.HTMLEscapeString(section.Title) + `</h2>`)
	}

	// An empty grid still renders its shell so the editor has a drop target.
	sb.WriteString(`<div class="card-grid__cards">`)
	for _, item := range section.Items {
		sb.WriteString(`<article class="card">`)
		if item.Image != nil && item.Image.URL != "" {
			sb.WriteString(`<img class="card__image" src="` + template.HTMLEscapeString(item.Image.URL) +
				`" alt="` + template.HTMLEscapeString(item.Image.Alt) + `" />`)
		}
		if item.Title != "" {
			sb.WriteString(`<h3 class="card__title">` + template.HTMLEscapeString(item.Title) + `</h3>`)
		}
		if item.Content != "" {
			sb.WriteString(`<p class="card__content">` + r.sanitizer.Sanitize(item.Content) + `</p>`)
		}
		sb.WriteString(`</article>`)
	}
	sb.WriteString(`</div></div>`)
	return sb.String()
}

func renderPricingTable(r *Renderer, mode Mode, section models.Section) string {
	var sb strings.Builder
	sb.WriteString(`<div class="pricing">`)
	if section.Title != "" {
		sb.WriteString(`<h2 class="pricing__title">` + template.HTMLEscapeString(section.Title) + `</h2>`)
	}

	sb.WriteString(`<div class="pricing__rows">`)
	for _, item := range section.Items {
		sb.WriteString(`<div class="pricing__row">`)
		sb.WriteString(`<span class="pricing__label">` + template.HTMLEscapeString(item.Title) + `</span>`)
		if item.Duration != "" {
			sb.WriteString(`<span class="pricing__duration">` + template.HTMLEscapeString(item.Duration) + `</span>`)
		}
		sb.WriteString(`<span class="pricing__price">` + template.HTMLEscapeString(item.Price) + `</span>`)
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div></div>`)
	return sb.String()
}

func renderCTA(r *Renderer, mode Mode, section models.Section) string {
	var sb strings.Builder
	sb.WriteString(`<div class="cta">`)
	if section.Title != "" {
		sb.WriteString(`<h2 class="cta__title">` + template.HTMLEscapeString(section.Title) + `</h2>`)
	}
	if section.Content != "" {
		sb.WriteString(`<p class="cta__content">` + r.sanitizer.Sanitize(section.Content) + `</p>`)
	}
	sb.WriteString(renderButtons(section.Buttons, "cta"))
	sb.WriteString(`</div>`)
	return sb.String()
}

func renderListSections(r *Renderer, mode Mode, section models.Section) string {
	var sb strings.Builder
	sb.WriteString(`<div class="list-sections">`)
	if section.Title != "" {
		sb.WriteString(`<h2 class="list-sections__title">` + template.HTMLEscapeString(section.Title) + `</h2>`)
	}

	for _, group := range section.Groups {
		sb.WriteString(`<div class="list-sections__group">`)
		if group.Title != "" {
			sb.WriteString(`<h3 class="list-sections__group-title">` + template.HTMLEscapeString(group.Title) + `</h3>`)
		}
		sb.WriteString(`<ul class="list-sections__list">`)
		for _, item := range group.Items {
			trimmed := strings.TrimSpace(item)
			if trimmed == "" {
				continue
			}
			sb.WriteString(`<li class="list-sections__item">` + r.sanitizer.Sanitize(trimmed) + `</li>`)
		}
		sb.WriteString(`</ul></div>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func renderTestimonialList(r *Renderer, mode Mode, section models.Section) string {
	var sb strings.Builder
	sb.WriteString(`<div class="testimonials"`)
	if section.FetchFromAPI {
		// The static entries below are the fallback until the client swap
		// replaces the container content with approved testimonials.
		sb.WriteString(` data-testimonials-src="/api/v1/temoignage"`)
	}
	sb.WriteString(`>`)

	if section.Title != "" {
		sb.WriteString(`<h2 class="testimonials__title">` + template.HTMLEscapeString(section.Title) + `</h2>`)
	}

	sb.WriteString(`<div class="testimonials__list">`)
	for _, entry := range section.StaticTestimonials {
		sb.WriteString(`<blockquote class="testimonial">`)
		sb.WriteString(`<p class="testimonial__message">` + r.sanitizer.Sanitize(entry.Message) + `</p>`)
		sb.WriteString(`<footer class="testimonial__footer">`)
		sb.WriteString(`<cite class="testimonial__author">` + template.HTMLEscapeString(entry.Author) + `</cite>`)
		if entry.Date != "" {
			sb.WriteString(`<span class="testimonial__date">` + template.HTMLEscapeString(entry.Date) + `</span>`)
		}
		sb.WriteString(`</footer></blockquote>`)
	}
	sb.WriteString(`</div></div>`)
	return sb.String()
}

// renderMount emits the container the client-side widget hydrates. Automatic
// sections carry no editable payload, so the body is just the mount point.
func renderMount(r *Renderer, mode Mode, section models.Section) string {
	return `<div class="widget-mount" data-widget="` + template.HTMLEscapeString(section.Type) + `"></div>`
}

// renderPlaceholder stands in for a section type this build does not know,
// naming the type so a newer document survives a round trip visibly intact.
func renderPlaceholder(section models.Section) string {
	return `<div class="section-placeholder">Type de section inconnu : ` +
		template.HTMLEscapeString(section.Type) + `</div>`
}

func renderButtons(buttons []models.SectionButton, prefix string) string {
	if len(buttons) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<div class="` + prefix + `__buttons">`)
	for _, button := range buttons {
		url := strings.TrimSpace(button.URL)
		if url == "" {
			url = "#"
		}
		style := constants.NormalizeButtonStyle(button.Style)
		sb.WriteString(`<a class="button button--` + template.HTMLEscapeString(style) + `" href="` +
			template.HTMLEscapeString(url) + `">` + template.HTMLEscapeString(button.Text) + `</a>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// renderParagraphs splits plain text content on newlines into paragraphs,
// dropping blank lines.
func renderParagraphs(r *Renderer, content, prefix string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	var sb strings.Builder
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sb.WriteString(`<p class="` + prefix + `__paragraph">` + r.sanitizer.Sanitize(line) + `</p>`)
	}
	return sb.String()
}

func inlineStyle(settings *models.SectionSettings) string {
	if settings == nil {
		return ""
	}

	var styles []string
	if settings.BackgroundColor != "" {
		styles = append(styles, "background-color:"+template.HTMLEscapeString(settings.BackgroundColor))
	}
	if settings.TextColor != "" {
		styles = append(styles, "color:"+template.HTMLEscapeString(settings.TextColor))
	}
	return strings.Join(styles, ";")
}

func sanitizeTypeClass(sectionType string) string {
	var sb strings.Builder
	for _, ch := range sectionType {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '-':
			sb.WriteRune(ch)
		default:
			sb.WriteRune('-')
		}
	}
	return sb.String()
}
