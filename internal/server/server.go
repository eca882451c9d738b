// Package server contains the HTTP handlers and routing for the classifieds API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/config"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/featureflags"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/observability"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/redisstore"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config            *config.Config
	db                *gorm.DB
	redis             *redis.Client
	app               *fiber.App
	promMiddleware    *fiberprometheus.FiberPrometheus
	featureFlags      *featureflags.Manager
	tokens            middleware.TokenConfig
	revoker           *redisstore.TokenRevoker
	images            *service.ImageStore
	authService       *service.AuthService
	adService         *service.AdService
	commentService    *service.CommentService
	userService       *service.UserService
	managementService *service.ManagementService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; rate limiting then fails open and logout cannot revoke.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images *service.ImageStore) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}
	if images == nil {
		return nil, errors.New("server requires an image store")
	}

	repos := repository.New(db)
	tx := repository.NewTransactor(db)
	hasher := service.NewBcryptHasher()
	flags := featureflags.NewManager(cfg.FeatureFlags, featureflags.Defaults(cfg.IsDevelopment()))

	ads := service.NewAdService(repos, tx, images, cfg.ImageBaseURL)
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		featureFlags:   flags,
		tokens: middleware.TokenConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			TTL:      time.Duration(cfg.JWTTTLHours) * time.Hour,
		},
		revoker:           redisstore.NewTokenRevoker(redisClient),
		images:            images,
		authService:       service.NewAuthService(repos, tx, hasher, flags),
		adService:         ads,
		commentService:    service.NewCommentService(repos, cfg.ImageBaseURL),
		userService:       service.NewUserService(repos, hasher, images, cfg.ImageBaseURL),
		managementService: service.NewManagementService(repos, tx, ads, images),
	}
	return s, nil
}

// NewApp builds the fiber application with middleware and routes attached.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Resale Hub API",
		BodyLimit:    int(s.config.MaxImageBytes()) + 1<<20,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escaped a handler, including fiber's own.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if models.StatusFor(err) >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error",
			slog.String("path", c.Path()), slog.String("error", err.Error()))
	}
	return models.RespondWithError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers. Images are embedded cross-origin by the frontend.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	app.Use(middleware.ResolvePrincipal(middleware.AuthConfig{
		Tokens:     s.tokens,
		Resolver:   s.authService,
		Revoked:    s.revoker,
		AllowBasic: s.featureFlags.Enabled(featureflags.BasicAuth),
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static("/images", s.images.Root(), fiber.Static{
		Browse: false,
		MaxAge: s.config.ImageCacheSeconds,
	})

	authLimit := func(name string) fiber.Handler {
		return middleware.RateLimit(middleware.RateLimitConfig{
			Redis:  s.redis,
			Env:    s.config.Env,
			Name:   name,
			Limit:  s.config.RateLimitAuthPerMinute,
			Window: time.Minute,
			Policy: middleware.FailOpen,
		})
	}
	app.Post("/login", authLimit("login"), s.Login)
	app.Post("/register", authLimit("register"), s.Register)
	app.Post("/logout", middleware.AuthRequired(), s.Logout)

	users := app.Group("/users", middleware.AuthRequired())
	users.Get("/me", s.GetMe)
	users.Patch("/me", s.UpdateMe)
	users.Patch("/me/image", s.UpdateMyImage)
	users.Post("/set_password", s.SetPassword)

	// Only the listing is public.
	auth := middleware.AuthRequired()
	ads := app.Group("/ads")
	ads.Get("/", s.ListAds)
	ads.Post("/", auth, s.CreateAd)
	// Define /me BEFORE generic /:id route
	ads.Get("/me", auth, s.ListMyAds)
	ads.Get("/:id/comments", auth, s.ListComments)
	ads.Post("/:id/comments", auth, s.AddComment)
	ads.Patch("/:id/comments/:commentId", auth, s.UpdateComment)
	ads.Delete("/:id/comments/:commentId", auth, s.DeleteComment)
	ads.Patch("/:id/image", auth, s.UpdateAdImage)
	ads.Get("/:id", auth, s.GetAd)
	ads.Patch("/:id", auth, s.UpdateAd)
	ads.Delete("/:id", auth, s.DeleteAd)

	management := app.Group("/management", middleware.AuthRequired())
	management.Get("/metric", s.GetMetric)
	management.Delete("/soft_delete_user/:id", s.SoftDeleteUser)
	management.Delete("/hard_delete_user/:id", s.HardDeleteUser)
}

// Start builds the app and blocks serving on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server and closes the database and redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
