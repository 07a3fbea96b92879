package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sophrologie-backend/internal/config"
	"sophrologie-backend/internal/constants"
	"sophrologie-backend/internal/render"
	"sophrologie-backend/internal/service"
	"sophrologie-backend/pkg/cache"
	"sophrologie-backend/pkg/logger"
)

// pageRoutes maps public URL paths to page ids.
var pageRoutes = map[string]string{
	"/":            constants.PageHome,
	"/a-propos":    constants.PageAbout,
	"/tarifs":      constants.PagePricing,
	"/rendez-vous": constants.PageAppointment,
	"/temoignages": constants.PageTestimonials,
	"/contact":     constants.PageContact,
	"/deontologie": constants.PageEthics,
}

const layoutTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | {{.SiteName}}</title>
{{if .MetaDescription}}<meta name="description" content="{{.MetaDescription}}">{{end}}
<link rel="canonical" href="{{.CanonicalURL}}">
<link rel="stylesheet" href="/static/css/site.css">
</head>
<body>
<main class="page page--{{.PageID}}">
{{.Body}}
</main>
<script src="/static/js/site.js" defer></script>
</body>
</html>`

// PublicHandler serves the rendered public site plus sitemap and robots.
type PublicHandler struct {
	cfg         *config.Config
	pageService *service.PageService
	renderer    *render.Renderer
	cache       *cache.Cache
	layout      *template.Template
}

func NewPublicHandler(cfg *config.Config, pageService *service.PageService, renderer *render.Renderer, cache *cache.Cache) *PublicHandler {
	return &PublicHandler{
		cfg:         cfg,
		pageService: pageService,
		renderer:    renderer,
		cache:       cache,
		layout:      template.Must(template.New("layout").Parse(layoutTemplate)),
	}
}

// Register attaches one route per public page.
func (h *PublicHandler) Register(router *gin.Engine) {
	for path, pageID := range pageRoutes {
		router.GET(path, h.servePage(pageID, path))
	}
	router.GET("/sitemap.xml", h.Sitemap)
	router.GET("/robots.txt", h.Robots)
}

func (h *PublicHandler) servePage(pageID, path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if html, err := h.cache.GetCachedRenderedPage(pageID); err == nil {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
			return
		}

		page, err := h.pageService.GetPage(pageID)
		if err != nil {
			logger.Error(err, "Failed to render public page", map[string]interface{}{"page_id": pageID})
			c.String(http.StatusNotFound, "Page introuvable")
			return
		}
		if page.Status != constants.PageStatusPublished {
			c.String(http.StatusNotFound, "Page introuvable")
			return
		}

		body := h.renderer.RenderPage(render.ModePublic, page)

		var sb strings.Builder
		err = h.layout.Execute(&sb, map[string]interface{}{
			"Title":           page.Title,
			"MetaDescription": page.MetaDescription,
			"SiteName":        h.cfg.SiteName,
			"CanonicalURL":    strings.TrimRight(h.cfg.SiteURL, "/") + path,
			"PageID":          page.PageID,
			"Body":            template.HTML(body),
		})
		if err != nil {
			logger.Error(err, "Failed to render layout", map[string]interface{}{"page_id": pageID})
			c.String(http.StatusInternalServerError, "Erreur interne")
			return
		}

		html := sb.String()
		if err := h.cache.CacheRenderedPage(pageID, html); err != nil {
			logger.Warn("Failed to cache rendered page", map[string]interface{}{"page_id": pageID})
		}

		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	}
}

// Preview renders the working copy of a page in edit preview mode.
// GET /api/v1/admin/pages/:pageId/preview
func (h *PublicHandler) Preview(editorService *service.EditorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		pageID := c.Param("pageId")

		page, err := editorService.OpenSession(pageID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
			return
		}

		body := h.renderer.RenderPage(render.ModeEditPreview, page)
		c.JSON(http.StatusOK, gin.H{"html": body})
	}
}

// Sitemap lists the published pages.
// GET /sitemap.xml
func (h *PublicHandler) Sitemap(c *gin.Context) {
	pages, err := h.pageService.GetPublishedPages()
	if err != nil {
		logger.Error(err, "Failed to build sitemap", nil)
		c.String(http.StatusInternalServerError, "")
		return
	}

	base := strings.TrimRight(h.cfg.SiteURL, "/")

	pathsByID := make(map[string]string, len(pageRoutes))
	for path, pageID := range pageRoutes {
		pathsByID[pageID] = path
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sb.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, page := range pages {
		path, ok := pathsByID[page.PageID]
		if !ok {
			continue
		}
		sb.WriteString("<url><loc>" + base + path + "</loc>")
		sb.WriteString("<lastmod>" + page.LastModified.Format("2006-01-02") + "</lastmod></url>")
	}
	sb.WriteString(`</urlset>`)

	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(sb.String()))
}

// Robots allows crawling of the public site and blocks the API.
// GET /robots.txt
func (h *PublicHandler) Robots(c *gin.Context) {
	base := strings.TrimRight(h.cfg.SiteURL, "/")
	body := fmt.Sprintf("User-agent: *\nDisallow: /api/\nSitemap: %s/sitemap.xml\n", base)
	c.String(http.StatusOK, body)
}
