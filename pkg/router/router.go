package router

import (
	"context"
	"slices"
	"time"

	"ai-agent-character-demo/client/internal/notify"
	"ai-agent-character-demo/client/internal/server"
	"ai-agent-character-demo/client/internal/session"
	"ai-agent-character-demo/client/pkg/config"
	"ai-agent-character-demo/client/pkg/di"
	"ai-agent-character-demo/client/pkg/errors"
	"ai-agent-character-demo/client/pkg/logger"
	"ai-agent-character-demo/client/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Track server start time for uptime calculations
var startTime = time.Now()

// Router is the main router for the companion server
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
}

// New creates a new router with the given container. ctx bounds the
// rate limiter's background cleanup.
func New(ctx context.Context, container *di.Container) *Router {
	// Use the container's logger
	logger.SetGlobal(container.Logger)

	cfg := container.Config

	// Configure Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Request IDs first so the logger and the backend calls share them
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(logger.Middleware(container.Logger))

	// Add custom error handler middleware
	engine.Use(errors.ErrorHandler())

	// Add custom recovery middleware with structured logging instead of default
	engine.Use(errors.RecoveryWithLogger())

	rateLimiter := middleware.NewRateLimiter(container.Logger, middleware.RateLimiterOptions{
		Limit:          rate.Limit(cfg.Server.RateLimit),
		Burst:          cfg.Server.RateLimitBurst,
		ExpiryDuration: time.Hour,
	})
	engine.Use(rateLimiter.Middleware(ctx))

	engine.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
	}
}

// SetupRoutes registers all companion routes
func (r *Router) SetupRoutes() error {
	r.setupHealthRoutes()
	r.setupDocsRoutes()

	if r.Container.Registry != nil {
		r.Engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.Container.Registry, promhttp.HandlerOpts{})))
	}

	if r.Container.Hub != nil {
		r.Engine.GET("/ws", func(c *gin.Context) {
			notify.ServeWs(r.Container.Hub, c)
		})
	}

	validation, err := r.openAPIValidation()
	if err != nil {
		return err
	}

	sess := r.Container.Session
	sessionHandler := server.NewSessionHandler(sess)
	characterHandler := server.NewCharacterHandler(r.Container.API.Characters, r.Container.Notifier)
	var nav session.Navigator
	if r.Container.Hub != nil {
		nav = r.Container.Hub
	}
	chatHandler := server.NewChatHandler(r.Container.API.Chat, r.Container.Notifier, nav, time.Local)

	apiRoutes := r.Engine.Group("/api", validation)

	// Public routes
	sessionRoutes := apiRoutes.Group("/session")
	{
		sessionRoutes.GET("", sessionHandler.Get)
		sessionRoutes.POST("/login", sessionHandler.Login)
		sessionRoutes.POST("/signup", sessionHandler.Signup)
		sessionRoutes.DELETE("", sessionHandler.Logout)
	}

	// Protected routes (require a signed-in session)
	protectedRoutes := apiRoutes.Group("/")
	protectedRoutes.Use(server.RequireSession(sess))
	{
		characterRoutes := protectedRoutes.Group("/characters")
		{
			characterRoutes.GET("", characterHandler.ListCharacters)
			characterRoutes.POST("", characterHandler.CreateCharacter)
			characterRoutes.POST("/generate", characterHandler.GenerateCharacter)
			characterRoutes.GET("/:id", characterHandler.GetCharacter)
			characterRoutes.PUT("/:id", characterHandler.UpdateCharacter)
			characterRoutes.DELETE("/:id", characterHandler.DeleteCharacter)
			characterRoutes.PATCH("/:id/avatar", characterHandler.UpdateAvatar)
		}

		protectedRoutes.GET("/conversations", chatHandler.ListConversations)
		protectedRoutes.POST("/conversations", chatHandler.StartConversation)

		chatRoutes := protectedRoutes.Group("/chat")
		{
			chatRoutes.GET("/:id", chatHandler.GetThread)
			chatRoutes.POST("/:id/messages", chatHandler.SendMessage)
		}
	}

	return nil
}

// corsMiddleware allows the configured origins, including WebSocket upgrade headers.
// An empty list allows no cross-origin callers; "*" must be configured explicitly.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	allowAll := slices.Contains(allowed, "*")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case allowAll && origin == "":
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowAll || slices.Contains(allowed, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-Request-ID, Origin, Upgrade, Connection, Cache-Control")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Upgrade, Connection")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
