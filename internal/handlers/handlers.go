package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"spclub/api/internal/config"
	"spclub/api/internal/middleware"
	"spclub/api/internal/models"
	"spclub/api/internal/notify"
	"spclub/api/internal/repository"
	"spclub/api/internal/service"
	"spclub/api/internal/storage"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	authService   *service.AuthService
	sessions      *service.SessionService
	registrations *service.RegistrationService
	uploads       *service.UploadService
	news          *repository.NewsRepository
	newsletter    *repository.NewsletterRepository
	contacts      *repository.ContactRepository
	db            *pgxpool.Pool
	cache         *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	adminRepo := repository.NewAdminRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)

	sessions := service.NewSessionService(sessionRepo, cfg.Security, log)
	auth := service.NewAuthService(adminRepo, sessions, cfg.Security, log)
	mailer := notify.NewMailer(cfg.SMTP, log)
	registrations := service.NewRegistrationService(registrationRepo, mailer, log)
	uploads := service.NewUploadService(store, cfg.Storage, log)

	return HandlerSet{
		log:           log,
		cfg:           cfg,
		authService:   auth,
		sessions:      sessions,
		registrations: registrations,
		uploads:       uploads,
		news:          repository.NewNewsRepository(db),
		newsletter:    repository.NewNewsletterRepository(db),
		contacts:      repository.NewContactRepository(db),
		db:            db,
		cache:         cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	loginLimit, submitLimit := h.cfg.RateLimit.LoginPerMin, h.cfg.RateLimit.SubmitPerMin
	if !h.cfg.RateLimit.Enabled {
		loginLimit, submitLimit = 0, 0
	}

	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/signup", h.Signup)
		auth.POST("/login",
			middleware.RateLimit(h.cache, "login", loginLimit),
			h.Login,
		)

		protected := v1.Group("/auth")
		protected.Use(middleware.Auth(h.cfg.Security.JWTSecret, h.sessions))
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.Me)
		protected.GET("/sessions", h.ListSessions)
		protected.DELETE("/sessions/:deviceId", h.RevokeSession)
		protected.PUT("/profile", h.UpdateProfile)
	}

	v1.POST("/registrations",
		middleware.RateLimit(h.cache, "submit", submitLimit),
		h.SubmitRegistration,
	)

	v1.POST("/newsletter/subscribe", h.Subscribe)
	v1.POST("/contact", h.SubmitContact)

	v1.GET("/news", h.ListPublishedNews)
	v1.GET("/news/:id", h.GetNews)

	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(h.cfg.Security.JWTSecret, h.sessions))
	{
		admin.GET("/registrations", h.ListRegistrations)
		admin.GET("/registrations/:id", h.GetRegistration)
		admin.PUT("/registrations/:id/approve",
			middleware.RequirePermission(models.CapabilityApprove), h.ApproveRegistration)
		admin.PUT("/registrations/:id/reject",
			middleware.RequirePermission(models.CapabilityReject), h.RejectRegistration)
		admin.DELETE("/registrations/:id",
			middleware.RequirePermission(models.CapabilityDelete), h.DeleteRegistration)

		admin.GET("/stats", h.Stats)

		admin.GET("/admins",
			middleware.RequirePermission(models.CapabilityManageAdmins), h.ListAdmins)
		admin.PUT("/admins/:id/active",
			middleware.RequirePermission(models.CapabilityManageAdmins), h.SetAdminActive)

		admin.GET("/news", h.ListAllNews)
		admin.POST("/news", h.CreateNews)
		admin.PUT("/news/:id", h.UpdateNews)
		admin.DELETE("/news/:id", h.DeleteNews)

		admin.GET("/newsletter", h.ListSubscriptions)
		admin.PATCH("/newsletter/:id", h.CompleteSubscription)
		admin.DELETE("/newsletter/:id", h.DeleteSubscription)

		admin.GET("/contact", h.ListContacts)
	}
}
