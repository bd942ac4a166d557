// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "kbomate/docs" // swagger docs
	"kbomate/internal/cache"
	"kbomate/internal/config"
	"kbomate/internal/database"
	"kbomate/internal/external"
	"kbomate/internal/featureflags"
	"kbomate/internal/middleware"
	"kbomate/internal/models"
	"kbomate/internal/notifications"
	"kbomate/internal/repository"
	"kbomate/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	userRepo       repository.UserRepository
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager

	authService         *service.AuthService
	userService         *service.UserService
	announcementService *service.AnnouncementService
	bannerService       *service.BannerService
	reportService       *service.ReportService
	adminUserService    *service.AdminUserService
	roleService         *service.RoleService
	dashboardService    *service.DashboardService
	mateService         *service.MateService
	commentService      *service.MateCommentService
	imageService        *service.ImageService
	weatherService      *service.WeatherService
	summaryService      *service.SummaryService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	stadiums, err := external.Stadiums()
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	banRepo := repository.NewBanRepository(db)
	postRepo := repository.NewMatePostRepository(db)
	commentRepo := repository.NewMateCommentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	pageRoleRepo := repository.NewPageRoleRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("kbomate-api"),
		userRepo:       userRepo,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	// Without Redis the notifier is nil and publishing is a no-op.
	var events service.EventPublisher = (*notifications.Notifier)(nil)
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
		events = server.notifier
	}

	google := external.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	server.authService = service.NewAuthService(userRepo, banRepo, google, redisClient,
		cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	server.userService = service.NewUserService(userRepo, teamRepo)
	server.announcementService = service.NewAnnouncementService(repository.NewAnnouncementRepository(db), events)
	server.bannerService = service.NewBannerService(repository.NewBannerRepository(db))
	server.reportService = service.NewReportService(reportRepo, postRepo, commentRepo, userRepo)
	server.adminUserService = service.NewAdminUserService(userRepo, postRepo, reportRepo, banRepo)
	server.roleService = service.NewRoleService(userRepo, pageRoleRepo)
	server.dashboardService = service.NewDashboardService(userRepo, postRepo, reportRepo, banRepo)
	server.mateService = service.NewMateService(postRepo, commentRepo, teamRepo)
	server.commentService = service.NewMateCommentService(commentRepo, postRepo, events)
	server.imageService = service.NewImageService(external.NewImgBBUploader(cfg.ImgBBAPIKey), cfg)
	server.weatherService = service.NewWeatherService(
		external.NewWeatherClient(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey), stadiums)
	server.summaryService = service.NewSummaryService(
		external.NewTranscriptClient(cfg.TranscriptAPIURL),
		external.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel),
		summaryRepo, postRepo, commentRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span per request; sets traceID for ContextMiddleware
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "KBO Mate Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Locally stored mate images
	app.Static(service.UploadsURLPrefix, s.imageService.UploadDir(), fiber.Static{MaxAge: 86400})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.SignUp)
	auth.Post("/signin", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "signin"), s.SignIn)
	auth.Post("/signout", s.AuthRequired(), s.SignOut)
	auth.Get("/session", s.GetSession)
	auth.Get("/oauth/:provider", s.OAuthStart)
	auth.Get("/oauth/:provider/callback", s.OAuthCallback)

	// Public reads
	api.Get("/teams", s.GetTeams)
	api.Get("/announcements/active", s.GetActiveAnnouncements)
	api.Get("/banners/active", s.GetActiveBanners)

	weather := api.Group("/weather")
	weather.Get("/stadiums", s.GetStadiums)
	weather.Get("/:city/hourly", s.GetHourlyWeather)
	weather.Get("/:city", s.GetCurrentWeather)

	api.Post("/youtube-transcript", middleware.RateLimit(
		s.redis, 20, time.Minute, "transcript"), s.YouTubeTranscript)

	publicMate := api.Group("/mate/posts")
	publicMate.Get("/", s.ListMatePosts)
	publicMate.Get("/:id/comments", s.ListMateComments)
	publicMate.Get("/:id/summary", s.GetCommentSummary)
	publicMate.Get("/:id", s.GetMatePost)

	// Websocket routes are registered before the protected group so a ticket is
	// consumed by exactly one AuthRequired.
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	api.Get("/ws", s.AuthRequired(), s.WebsocketHandler())

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)

	mate := protected.Group("/mate")
	mate.Post("/images", middleware.RateLimit(
		s.redis, 10, 10*time.Minute, "mate_image"), s.UploadMateImage)
	posts := mate.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "mate_post"), s.CreateMatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "mate_comment"), s.CreateMateComment)
	posts.Post("/:id/summary", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "comment_summary"), s.SummarizeMateComments)
	posts.Put("/:id", s.UpdateMatePost)
	posts.Delete("/:id", s.DeleteMatePost)
	comments := mate.Group("/comments")
	comments.Put("/:id", s.UpdateMateComment)
	comments.Delete("/:id", s.DeleteMateComment)

	protected.Post("/reports", middleware.RateLimit(
		s.redis, 10, 10*time.Minute, "report"), s.CreateReport)

	protected.Post("/youtube/summary", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "youtube_summary"), s.SummarizeYouTube)

	// Admin routes
	admin := protected.Group("/admin", s.StaffRequired())
	admin.Get("/pages", s.GetMyAdminPages)
	admin.Get("/feature-flags", s.AdminRequired(), s.GetFeatureFlags)

	admin.Get("/dashboard", s.PageAccessRequired(models.PageDashboard), s.GetDashboard)

	reports := admin.Group("/reports", s.PageAccessRequired(models.PageReports))
	reports.Get("/", s.ListReports)
	reports.Get("/heatmap", s.GetReportHeatmap)
	reports.Patch("/:id/status", s.UpdateReportStatus)
	reports.Delete("/:id", s.DeleteReport)

	members := admin.Group("/users", s.PageAccessRequired(models.PageUsers))
	members.Get("/", s.ListMembers)
	members.Get("/:id", s.GetMemberDetail)
	members.Post("/:id/bans", s.BanMember)
	members.Delete("/bans/:banId", s.UnbanMember)

	roles := admin.Group("/roles", s.PageAccessRequired(models.PageRoles))
	roles.Get("/", s.ListStaff)
	roles.Put("/", s.AdminRequired(), s.SaveRoles)
	roles.Get("/pages", s.GetPageRoles)
	roles.Put("/pages", s.AdminRequired(), s.SavePageRoles)

	announcements := admin.Group("/announcements", s.PageAccessRequired(models.PageAnnouncements))
	announcements.Get("/", s.ListAnnouncements)
	announcements.Post("/", s.SaveAnnouncement)
	announcements.Put("/:id", s.SaveAnnouncement)
	announcements.Delete("/:id", s.DeleteAnnouncement)

	banners := admin.Group("/banners", s.PageAccessRequired(models.PageBanners))
	banners.Get("/", s.ListBanners)
	banners.Post("/", s.SaveBanner)
	banners.Put("/:id", s.SaveBanner)
	banners.Delete("/:id", s.DeleteBanner)
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Sessions, tickets and rate limits live in Redis
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "kbomate",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// setIdentity stores the caller in locals and in the request context for logging.
func setIdentity(c *fiber.Ctx, userID uint, role models.Role) {
	c.Locals("userID", userID)
	c.Locals("role", string(role))
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.RoleKey, string(role))
	c.SetUserContext(ctx)
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isWSPath := strings.HasPrefix(c.Path(), "/api/ws")

		// 1. Try WebSocket ticket first (short-lived, single-use)
		if ticket := c.Query("ticket"); ticket != "" {
			if userID, ok := s.authService.ConsumeWSTicket(c.UserContext(), ticket); ok {
				role, err := s.userRepo.GetRole(c.UserContext(), userID)
				if err != nil {
					return respondError(c, models.NewUnauthorizedError("Unknown user"))
				}
				setIdentity(c, userID, role)
				return c.Next()
			}
			if isWSPath {
				return respondError(c, models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		// Browsers cannot set headers on a websocket upgrade.
		if isWSPath && c.Path() != "/api/ws/ticket" {
			return respondError(c, models.NewUnauthorizedError("WebSocket ticket required"))
		}

		// 2. Fall back to the bearer token
		tokenString, err := middleware.BearerToken(c)
		if err != nil {
			return respondError(c, models.NewUnauthorizedError("Authorization required"))
		}
		claims, err := s.authService.ParseToken(c.UserContext(), tokenString)
		if err != nil {
			return respondError(c, err)
		}

		c.Locals("jti", claims.JTI)
		c.Locals("tokenExpiresAt", claims.ExpiresAt)
		setIdentity(c, claims.UserID, models.Role(claims.Role))
		return c.Next()
	}
}

// freshRole re-reads the caller's role so demotions apply before the token expires.
func (s *Server) freshRole(c *fiber.Ctx) (models.Role, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return "", models.NewUnauthorizedError("Authorization required")
	}
	role, err := s.userRepo.GetRole(c.UserContext(), userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return "", models.NewUnauthorizedError("Account no longer exists")
		}
		return "", err
	}
	setIdentity(c, userID, role)
	return role, nil
}

// StaffRequired admits admins and moderators.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) StaffRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := s.freshRole(c)
		if err != nil {
			return respondError(c, err)
		}
		if !role.IsStaff() {
			return respondError(c, models.NewForbiddenError("Staff access required"))
		}
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := s.freshRole(c)
		if err != nil {
			return respondError(c, err)
		}
		if role != models.RoleAdmin {
			return respondError(c, models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// PageAccessRequired checks admin_page_roles for the caller's role. Admins always pass.
// Must be placed after StaffRequired, which refreshes the role.
func (s *Server) PageAccessRequired(pageKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := models.Role(currentRole(c))
		ok, err := s.roleService.CanAccessPage(c.UserContext(), role, pageKey)
		if err != nil {
			return respondError(c, err)
		}
		if !ok {
			return respondError(c, models.NewForbiddenError("No access to the "+pageKey+" page"))
		}
		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:   "KBO Mate API",
		BodyLimit: bodyLimit(s.config),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the hub to the Redis subscriber if available
	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring", "hub", s.hub.Name(), "error", err)
			}
		}()
	}

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// bodyLimit leaves room for multipart overhead above the image cap.
func bodyLimit(cfg *config.Config) int {
	mb := cfg.ImageMaxUploadSizeMB
	if mb <= 0 {
		mb = service.DefaultImageMaxUploadSizeMB
	}
	return (mb + 1) * 1024 * 1024
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the wiring goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", "hub", s.hub.Name(), "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
