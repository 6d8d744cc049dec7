// Package server contains the HTTP handlers for the Friendmarket API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "friendmarket/docs" // swagger docs
	"friendmarket/internal/cache"
	"friendmarket/internal/config"
	"friendmarket/internal/database"
	"friendmarket/internal/featureflags"
	"friendmarket/internal/imaging"
	"friendmarket/internal/mail"
	"friendmarket/internal/middleware"
	"friendmarket/internal/models"
	"friendmarket/internal/notifications"
	"friendmarket/internal/push"
	"friendmarket/internal/repository"
	"friendmarket/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// mailTimeout bounds one background email delivery.
const mailTimeout = 30 * time.Second

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo      repository.UserRepository
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	friendRepo    repository.FriendRepository
	taxonomyRepo  repository.TaxonomyRepository
	recipientRepo repository.RecipientRepository

	notifier     *notifications.Notifier
	featureFlags *featureflags.Manager
	dispatcher   *push.Dispatcher
	mailer       *mail.Background
	images       *imaging.Store

	authService     *service.AuthService
	userService     *service.UserService
	friendService   *service.FriendService
	postService     *service.PostService
	noteService     *service.NoteService
	commentService  *service.CommentService
	taxonomyService *service.TaxonomyService
	imageService    *service.ImageService
}

// Deps overrides the outbound integrations. Nil fields fall back to the
// config-driven defaults.
type Deps struct {
	PushSender push.Sender
	Mailer     mail.Mailer
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// A nil client disables caching, rate limiting and in-app events.
	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	return NewServerWithOptions(cfg, db, redisClient, Deps{})
}

// NewServerWithOptions is NewServerWithDeps with injectable push and mail
// backends.
func NewServerWithOptions(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if db == nil {
		return nil, errors.New("database is required")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("friendmarket-api"),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		friendRepo:     repository.NewFriendRepository(db),
		taxonomyRepo:   repository.NewTaxonomyRepository(db),
		recipientRepo:  repository.NewRecipientRepository(db),
		notifier:       notifications.NewNotifier(redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		images:         imaging.NewStore(cfg),
	}

	sender := deps.PushSender
	if sender == nil {
		sender = push.NewFCMSender(cfg)
	}
	mailer := deps.Mailer
	if mailer == nil {
		mailer = mail.New(cfg)
	}
	s.dispatcher = push.NewDispatcher(s.recipientRepo, sender, s.notifier, s.featureFlags)
	s.mailer = mail.NewBackground(mailer, mailTimeout)

	s.authService = service.NewAuthService(s.userRepo, cfg, redisClient, s.mailer, s.featureFlags)
	s.userService = service.NewUserService(s.userRepo)
	s.friendService = service.NewFriendService(s.friendRepo, s.userRepo)
	s.postService = service.NewPostService(s.postRepo, s.commentRepo, s.taxonomyRepo, s.dispatcher)
	s.noteService = service.NewNoteService(s.postService)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.dispatcher)
	s.taxonomyService = service.NewTaxonomyService(s.taxonomyRepo)
	s.imageService = service.NewImageService(s.images, s.userRepo, s.postRepo)

	return s, nil
}

// Dispatcher exposes the push dispatcher for commands sharing the wiring.
func (s *Server) Dispatcher() *push.Dispatcher {
	return s.dispatcher
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(middleware.TracingMiddleware())

	app.Use(helmet.New(helmet.Config{
		// media is served cross-origin to the mobile and web clients
		CrossOriginResourcePolicy: "cross-origin",
	}))

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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    totalCountHeader,
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	perMinute := s.config.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 120
	}
	app.Use(limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.IsTest()
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

// authLimit builds the per-route limiter for credential endpoints. It is a
// no-op in development and test or without Redis.
func (s *Server) authLimit(name string, limit int, window time.Duration) fiber.Handler {
	return middleware.RateLimit(s.redis, middleware.RateLimitConfig{
		Name:     name,
		Limit:    limit,
		Window:   window,
		Policy:   middleware.FailOpen,
		Disabled: s.redis == nil || s.config.IsTest() || s.config.Env == "development",
	})
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	mediaURL := s.config.MediaURL
	if mediaURL == "" {
		mediaURL = imaging.DefaultMediaURL
	}
	app.Static(mediaURL, s.images.Dir())

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/registration", s.authLimit("registration", 5, 10*time.Minute), s.Register)
	auth.Post("/login", s.authLimit("login", 10, 5*time.Minute), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Post("/password/reset", s.authLimit("password_reset", 3, 10*time.Minute), s.ResetPassword)

	protected := api.Group("", s.AuthRequired())

	protected.Get("/features", s.GetFeatureFlags)

	profile := protected.Group("/profile")
	profile.Get("/", s.GetMyProfile)
	profile.Put("/", s.UpdateMyProfile)
	profile.Patch("/", s.UpdateMyProfile)
	profile.Post("/photo", s.UploadProfilePhoto)
	profile.Get("/questions", s.GetMyQuestions)
	profile.Get("/notes", s.GetMyNotes)
	profile.Get("/follows", s.GetMyFollows)

	users := protected.Group("/users")
	users.Get("/", s.GetUsers)
	users.Get("/:user", s.GetUser)

	friends := protected.Group("/friends")
	friends.Get("/", s.GetFriends)
	friends.Post("/:id/follow", s.FollowFriend)
	friends.Delete("/:id/follow", s.UnfollowFriend)

	protected.Get("/feed", s.GetPosts)
	protected.Post("/feed", s.CreatePost)

	posts := protected.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", s.CreatePost)
	// Define specific /:post/:resource routes BEFORE generic /:post route
	posts.Post("/:post/image", s.UploadPostImage)
	posts.Get("/:post/extended", s.GetPostExtended)
	posts.Get("/:post/similar", s.GetSimilarPosts)
	posts.Post("/:post/attach", s.AttachNotes)
	posts.Post("/:post/like", s.LikePost)
	posts.Delete("/:post/like", s.UnlikePost)
	posts.Post("/:post/follow", s.FollowPost)
	posts.Delete("/:post/follow", s.UnfollowPost)

	posts.Get("/:post/notes", s.GetNotes)
	posts.Post("/:post/notes", s.CreateNote)
	posts.Post("/:post/notes/:id/best", s.SetBestNote)
	posts.Delete("/:post/notes/:id/best", s.ClearBestNote)
	posts.Get("/:post/notes/:id", s.GetNote)
	posts.Put("/:post/notes/:id", s.UpdateNote)
	posts.Patch("/:post/notes/:id", s.UpdateNote)

	posts.Get("/:post/comments", s.GetComments)
	posts.Post("/:post/comments", s.CreateComment)
	posts.Post("/:post/comments/:id/reply", s.ReplyComment)
	posts.Get("/:post/comments/:id", s.GetComment)
	posts.Put("/:post/comments/:id", s.UpdateComment)
	posts.Patch("/:post/comments/:id", s.UpdateComment)
	posts.Delete("/:post/comments/:id", s.DeleteComment)

	// Generic /:post routes (for item detail, update, delete)
	posts.Get("/:post", s.GetPost)
	posts.Put("/:post", s.UpdatePost)
	posts.Patch("/:post", s.UpdatePost)
	posts.Delete("/:post", s.DeletePost)

	protected.Get("/tags", s.GetTags)
	protected.Get("/cities", s.GetCities)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis only counts when
// it is configured.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := middleware.Authenticate(c, s.config.JWTSecret, s.redis); err != nil {
			msg := "Invalid or expired token"
			switch {
			case middleware.BearerToken(c) == "":
				msg = "Authorization required"
			case errors.Is(err, middleware.ErrRevokedToken):
				msg = "Token has been revoked"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}
		return c.Next()
	}
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "Friendmarket API",
		BodyLimit: int(s.images.MaxBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, err)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.config.Debug && s.notifier.Enabled() {
		err := s.notifier.StartPatternSubscriber(s.shutdownCtx, func(channel, payload string) {
			middleware.Logger.Debug("in-app event", slog.String("channel", channel), slog.String("payload", payload))
		})
		if err != nil {
			middleware.Logger.Warn("failed to start event subscriber", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// drain waits for in-flight pushes and emails.
func (s *Server) drain() {
	s.dispatcher.Wait()
	s.mailer.Wait()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	done := make(chan struct{})
	go func() {
		s.drain()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		middleware.Logger.Warn("shutdown deadline hit with background deliveries pending")
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

	middleware.Logger.Info("server shutdown complete")
	return nil
}
