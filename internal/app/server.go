// File: internal/app/server.go
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel_agent_backend/internal/auth"
	"travel_agent_backend/internal/backup"
	"travel_agent_backend/internal/chat"
	"travel_agent_backend/internal/config"
	"travel_agent_backend/internal/firebase"
	"travel_agent_backend/internal/health"
	"travel_agent_backend/internal/itinerary"
	"travel_agent_backend/internal/jobs"
	"travel_agent_backend/internal/middleware"
	"travel_agent_backend/internal/migration"
	"travel_agent_backend/internal/platform/elasticsearch"
	"travel_agent_backend/internal/travelapi"
	"travel_agent_backend/internal/user"
)

// Handlers groups every HTTP handler the server mounts.
type Handlers struct {
	Auth      *auth.Handler
	User      *user.Handler
	Itinerary *itinerary.Handler
	Chat      *chat.Handler
	Travel    *travelapi.Handler
	Migration *migration.Handler
	Backup    *backup.Handler
	Health    *health.Handler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Exposed for startup tasks in main.
	AppLogger *zap.Logger
	ESClient  *elasticsearch.ESClientWrapper

	backupJob *jobs.BackupJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	backupJob *jobs.BackupJob,
	firebaseService *firebase.FirebaseService,
	userService user.Service,
	esClient *elasticsearch.ESClientWrapper,
) (*Server, error) {
	if firebaseService == nil {
		return nil, errors.New("firebase service is required to verify ID tokens")
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, logger))

	authMW := middleware.AuthMiddleware(firebaseService, user.NewResolver(userService, logger), logger.Named("AuthMiddleware"))

	// --- Setup Routes ---
	v1 := router.Group("/api/v1")
	handlers.Health.RegisterRoutes(router, v1, authMW)
	handlers.Auth.RegisterRoutes(v1, authMW)
	handlers.User.RegisterRoutes(v1, authMW)
	handlers.Itinerary.RegisterRoutes(v1, authMW)
	handlers.Chat.RegisterRoutes(v1, authMW)
	handlers.Travel.RegisterRoutes(v1, authMW)
	handlers.Migration.RegisterRoutes(v1, authMW)
	handlers.Backup.RegisterRoutes(v1, authMW)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		cfg:        cfg,
		logger:     logger,
		AppLogger:  logger,
		ESClient:   esClient,
		backupJob:  backupJob,
	}, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		// Credentials cannot be combined with a wildcard origin.
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	return corsConfig
}

// Router returns the configured gin engine.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if s.backupJob != nil {
		if err := s.backupJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start backup job", zap.Error(err))
		}
	} else {
		s.logger.Info("Backup job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the scheduler first so no backup starts while requests drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.backupJob != nil {
		s.backupJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
