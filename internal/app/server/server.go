package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/buildtrack/buildtrack/internal/app/config"
	"github.com/buildtrack/buildtrack/internal/app/handlers"
	"github.com/buildtrack/buildtrack/internal/app/middleware"
	appservices "github.com/buildtrack/buildtrack/internal/app/services"
	"github.com/buildtrack/buildtrack/pkg/logger"
)

// Version is reported by the status endpoint.
const Version = "1.0.0"

type Server struct {
	config   *config.Config
	logger   *logger.Logger
	router   *gin.Engine
	server   *http.Server
	services *appservices.ServiceManager
}

// New creates a new server instance
func New(cfg *config.Config, log *logger.Logger, sm *appservices.ServiceManager) *Server {
	// Configure Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()

	handlerConfig := handlers.NewHandlerConfig()
	if cfg.Limits.MaxFileSize > 0 {
		handlerConfig.MaxFileSize = cfg.Limits.MaxFileSize
	}
	router.MaxMultipartMemory = handlerConfig.MaxMultipartMemory

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(corsMiddleware(cfg))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.RateLimit(sm.CacheService, cfg.Limits.RateLimit, cfg.Limits.RateLimitWindow, log))

	server := &Server{
		config:   cfg,
		logger:   log,
		router:   router,
		services: sm,
	}

	// Setup routes
	server.setupRoutes(handlers.NewBaseHandler(handlerConfig, log))

	return server
}

// Router exposes the HTTP handler, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.config.Server.Host + ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}

	if closeErr := s.services.Close(); closeErr != nil {
		s.logger.Error("Error closing services", "error", closeErr)
	}

	return err
}

// setupRoutes configures all application routes
func (s *Server) setupRoutes(base *handlers.BaseHandler) {
	sm := s.services
	cookies := middleware.CookieConfig{
		Domain: s.config.JWT.CookieDomain,
		Secure: s.config.JWT.CookieSecure,
	}

	authHandler := handlers.NewAuthHandler(base, sm.AuthService, cookies)
	documentHandler := handlers.NewDocumentHandler(base, sm.DocumentService)

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	// API v1 group
	v1 := s.router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.GET("/status", s.systemStatus)
			authHandler.RegisterRoutes(public)
			documentHandler.RegisterPublicRoutes(public)

			// Only the local backend signs URLs that point back at the API.
			if store, ok := sm.Storage.(handlers.SignedFileStore); ok {
				handlers.NewFileHandler(base, store).RegisterRoutes(public)
			}
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(sm.AuthService, cookies))
		{
			authHandler.RegisterProtectedRoutes(protected)
			handlers.NewUserHandler(base, sm.UserService).RegisterRoutes(protected)
			handlers.NewPropertyHandler(base, sm.PropertyService).RegisterRoutes(protected)
			handlers.NewMilestoneHandler(base, sm.MilestoneService).RegisterRoutes(protected)
			handlers.NewVendorHandler(base, sm.VendorService).RegisterRoutes(protected)
			handlers.NewBudgetHandler(base, sm.BudgetService).RegisterRoutes(protected)
			handlers.NewRFQHandler(base, sm.RFQService).RegisterRoutes(protected)
			handlers.NewPermitHandler(base, sm.PermitService).RegisterRoutes(protected)
			handlers.NewRiskHandler(base, sm.RiskService).RegisterRoutes(protected)
			handlers.NewDiscussionHandler(base, sm.DiscussionService).RegisterRoutes(protected)
			handlers.NewActivityHandler(base, sm.ActivityService).RegisterRoutes(protected)
			documentHandler.RegisterRoutes(protected)
		}
	}
}

// Health check handler
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": s.config.Environment,
	})
}

// System status handler
func (s *Server) systemStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := s.services.Repositories.HealthCheck(ctx); err != nil {
		dbStatus = "unhealthy"
	}
	cacheStatus := "healthy"
	if err := s.services.CacheService.Ping(ctx); err != nil {
		cacheStatus = "unhealthy"
	}

	status, code := "ok", http.StatusOK
	if dbStatus != "healthy" {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  dbStatus,
		"cache":     cacheStatus,
		"timestamp": time.Now().UTC(),
		"version":   Version,
	})
}

// corsMiddleware configures CORS
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "X-Access-Token"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}

	return cors.New(corsConfig)
}
