package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sophrologie-backend/internal/background"
	"sophrologie-backend/internal/config"
	"sophrologie-backend/internal/handlers"
	"sophrologie-backend/internal/middleware"
	"sophrologie-backend/internal/models"
	"sophrologie-backend/internal/render"
	"sophrologie-backend/internal/repository"
	"sophrologie-backend/internal/seed"
	"sophrologie-backend/internal/service"
	"sophrologie-backend/pkg/cache"
	"sophrologie-backend/pkg/logger"
)

type Application struct {
	cfg *config.Config

	db    *gorm.DB
	cache *cache.Cache

	repositories repositoryContainer
	services     serviceContainer
	handlers     handlerContainer

	renderer         *render.Renderer
	rateLimitManager *middleware.RateLimitManager
	scheduler        *background.Scheduler
	router           *gin.Engine
	server           *http.Server
}

type repositoryContainer struct {
	Page        repository.PageRepository
	PageVersion repository.PageVersionRepository
	Testimonial repository.TestimonialRepository
	Contact     repository.ContactRepository
	Appointment repository.AppointmentRepository
	User        repository.UserRepository
}

type serviceContainer struct {
	Auth        *service.AuthService
	Email       *service.EmailService
	Page        *service.PageService
	Editor      *service.EditorService
	Testimonial *service.TestimonialService
	Contact     *service.ContactService
	Appointment *service.AppointmentService
	Upload      *service.UploadService
}

type handlerContainer struct {
	Auth        *handlers.AuthHandler
	Page        *handlers.PageHandler
	Section     *handlers.SectionHandler
	Testimonial *handlers.TestimonialHandler
	Contact     *handlers.ContactHandler
	Appointment *handlers.AppointmentHandler
	Upload      *handlers.UploadHandler
	Public      *handlers.PublicHandler
}

func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &Application{cfg: cfg}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.runMigrations(); err != nil {
		return nil, err
	}

	if err := app.createIndexes(); err != nil {
		return nil, err
	}

	if err := app.initCache(); err != nil {
		return nil, err
	}

	app.initRepositories()
	app.initServices()

	seed.EnsureDefaultPages(app.repositories.Page)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := app.services.Auth.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error(err, "Failed to ensure admin account", nil)
		}
	}

	app.renderer = render.NewRenderer()
	app.rateLimitManager = middleware.NewRateLimitManager(context.Background())

	app.scheduler = background.NewScheduler(background.SchedulerConfig{WorkerCount: 2})
	app.scheduler.Start(context.Background())
	app.scheduleMaintenance()

	app.initHandlers()
	app.initRouter()

	app.server = &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        app.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return app, nil
}

func (a *Application) Run() error {
	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
	})

	return a.server.ListenAndServe()
}

func (a *Application) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}

	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(ctx); err != nil {
			logger.Error(err, "Failed to shut down background scheduler", nil)
		}
	}

	if a.rateLimitManager != nil {
		if err := a.rateLimitManager.Shutdown(); err != nil {
			logger.Error(err, "Failed to shut down rate limiter", nil)
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return nil
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) initDatabase() error {
	logger.Info("Connecting to database", nil)

	db, err := gorm.Open(postgres.Open(a.cfg.DatabaseURL), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	a.db = db
	return nil
}

func (a *Application) runMigrations() error {
	if a.db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Running database migrations", nil)

	if err := a.db.AutoMigrate(
		&models.User{},
		&models.Page{},
		&models.PageVersion{},
		&models.Testimonial{},
		&models.ContactMessage{},
		&models.AppointmentRequest{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database migration completed", nil)
	return nil
}

func (a *Application) createIndexes() error {
	if a.db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_pages_status ON pages(status) WHERE status = 'published'",
		"CREATE INDEX IF NOT EXISTS idx_pages_sections ON pages USING GIN (sections)",
		"CREATE INDEX IF NOT EXISTS idx_testimonials_approved ON testimonials(approved) WHERE approved = true",
		"CREATE INDEX IF NOT EXISTS idx_contact_messages_read ON contact_messages(read) WHERE read = false",
		"CREATE INDEX IF NOT EXISTS idx_appointment_requests_handled ON appointment_requests(handled) WHERE handled = false",
	}

	for _, stmt := range statements {
		if err := a.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func (a *Application) initCache() error {
	c, err := cache.NewCache(a.cfg.RedisURL, a.cfg.EnableCache && a.cfg.EnableRedis)
	if err != nil {
		// The site works without Redis, just slower.
		logger.Error(err, "Failed to connect to Redis, continuing without cache", nil)
		c, _ = cache.NewCache("", false)
	}
	a.cache = c
	return nil
}

func (a *Application) initRepositories() {
	a.repositories = repositoryContainer{
		Page:        repository.NewPageRepository(a.db),
		PageVersion: repository.NewPageVersionRepository(a.db),
		Testimonial: repository.NewTestimonialRepository(a.db),
		Contact:     repository.NewContactRepository(a.db),
		Appointment: repository.NewAppointmentRepository(a.db),
		User:        repository.NewUserRepository(a.db),
	}
}

func (a *Application) initServices() {
	email := service.NewEmailService(a.cfg)
	pageService := service.NewPageService(a.repositories.Page, a.repositories.PageVersion, a.cache)

	a.services = serviceContainer{
		Auth:        service.NewAuthService(a.repositories.User, a.cfg.JWTSecret),
		Email:       email,
		Page:        pageService,
		Editor:      service.NewEditorService(pageService, time.Duration(a.cfg.AutosaveDelaySeconds)*time.Second),
		Testimonial: service.NewTestimonialService(a.repositories.Testimonial, a.cache, email),
		Contact:     service.NewContactService(a.repositories.Contact, email),
		Appointment: service.NewAppointmentService(a.repositories.Appointment, email),
		Upload:      service.NewUploadService(a.cfg.UploadDir),
	}
}

func (a *Application) scheduleMaintenance() {
	jobs := []struct {
		interval time.Duration
		job      background.Job
	}{
		{24 * time.Hour, background.PruneVersionsJob(a.repositories.PageVersion, a.cfg.VersionHistoryLimit)},
		{15 * time.Minute, background.WarmPageCacheJob(a.services.Page)},
	}

	for _, j := range jobs {
		if err := a.scheduler.ScheduleEvery(j.interval, j.job); err != nil {
			logger.Error(err, "Failed to schedule maintenance job", map[string]interface{}{"job": j.job.Name})
		}
	}
}

func (a *Application) initHandlers() {
	a.handlers = handlerContainer{
		Auth:        handlers.NewAuthHandler(a.services.Auth, a.cfg.IsProduction()),
		Page:        handlers.NewPageHandler(a.services.Page, a.services.Editor),
		Section:     handlers.NewSectionHandler(a.services.Editor),
		Testimonial: handlers.NewTestimonialHandler(a.services.Testimonial),
		Contact:     handlers.NewContactHandler(a.services.Contact),
		Appointment: handlers.NewAppointmentHandler(a.services.Appointment),
		Upload:      handlers.NewUploadHandler(a.services.Upload),
		Public:      handlers.NewPublicHandler(a.cfg, a.services.Page, a.renderer, a.cache),
	}
}

func (a *Application) initRouter() {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.GinLogger())
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware(a.cfg, a.rateLimitManager))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.Static("/static", "./static")
	router.Static("/uploads", a.cfg.UploadDir)
	router.StaticFile("/favicon.ico", "./static/favicon.ico")

	a.handlers.Public.Register(router)

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("")
		{
			public.POST("/login", a.handlers.Auth.Login)
			public.POST("/logout", a.handlers.Auth.Logout)

			public.GET("/temoignage", a.handlers.Testimonial.ListApproved)

			forms := public.Group("")
			forms.Use(middleware.FormRateLimitMiddleware(a.rateLimitManager))
			{
				forms.POST("/temoignage", a.handlers.Testimonial.Submit)
				forms.POST("/contact", a.handlers.Contact.Submit)
				forms.POST("/rendez-vous", a.handlers.Appointment.Submit)
			}
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(a.cfg.JWTSecret))
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/me", a.handlers.Auth.Me)
			admin.POST("/password", a.handlers.Auth.ChangePassword)

			admin.GET("/pages", a.handlers.Page.ListPages)
			admin.GET("/pages/:pageId", a.handlers.Page.GetPage)
			admin.PUT("/pages/:pageId", a.handlers.Page.SavePage)
			admin.GET("/pages/:pageId/status", a.handlers.Page.GetStatus)
			admin.POST("/pages/:pageId/autosave", a.handlers.Page.Autosave)
			admin.GET("/pages/:pageId/history", a.handlers.Page.ListVersions)
			admin.POST("/pages/:pageId/restore/:versionNumber", a.handlers.Page.RestoreVersion)
			admin.GET("/pages/:pageId/preview", a.handlers.Public.Preview(a.services.Editor))

			admin.POST("/pages/:pageId/sections", a.handlers.Section.AddSection)
			admin.POST("/pages/:pageId/sections/reorder", a.handlers.Section.ReorderSections)
			admin.PATCH("/pages/:pageId/sections/:sectionId", a.handlers.Section.UpdateField)
			admin.DELETE("/pages/:pageId/sections/:sectionId", a.handlers.Section.DeleteSection)
			admin.POST("/pages/:pageId/sections/:sectionId/duplicate", a.handlers.Section.DuplicateSection)
			admin.PATCH("/pages/:pageId/sections/:sectionId/visibility", a.handlers.Section.SetVisibility)
			admin.POST("/pages/:pageId/sections/:sectionId/items", a.handlers.Section.AddItem)
			admin.PATCH("/pages/:pageId/sections/:sectionId/items", a.handlers.Section.UpdateItemField)
			admin.DELETE("/pages/:pageId/sections/:sectionId/items", a.handlers.Section.RemoveItem)

			admin.GET("/testimonials", a.handlers.Testimonial.ListAll)
			admin.PATCH("/testimonials/:id", a.handlers.Testimonial.SetApproved)
			admin.DELETE("/testimonials/:id", a.handlers.Testimonial.Delete)

			admin.GET("/contact", a.handlers.Contact.ListAll)
			admin.PATCH("/contact/:id", a.handlers.Contact.MarkRead)
			admin.DELETE("/contact/:id", a.handlers.Contact.Delete)

			admin.GET("/appointments", a.handlers.Appointment.ListAll)
			admin.PATCH("/appointments/:id", a.handlers.Appointment.MarkHandled)
			admin.DELETE("/appointments/:id", a.handlers.Appointment.Delete)

			admin.POST("/uploads", a.handlers.Upload.UploadImage)
			admin.GET("/uploads", a.handlers.Upload.ListImages)
			admin.DELETE("/uploads", a.handlers.Upload.DeleteImage)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Route not found",
				"path":  c.Request.URL.Path,
			})
		} else {
			c.String(http.StatusNotFound, "Page introuvable")
		}
	})

	a.router = router
}
