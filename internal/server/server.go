// Package server serves the remote config console
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/branchd-dev/remotecfg/internal/apiclient"
	"github.com/branchd-dev/remotecfg/internal/auth"
	"github.com/branchd-dev/remotecfg/internal/config"
	"github.com/branchd-dev/remotecfg/internal/remoteconfig"
	"github.com/branchd-dev/remotecfg/internal/sessions"
	"github.com/branchd-dev/remotecfg/internal/users"
	"github.com/branchd-dev/remotecfg/internal/views"
	"github.com/branchd-dev/remotecfg/internal/workers"
)

// Authenticator exchanges credentials for an API token
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*apiclient.LoginResponse, error)
}

// Server represents the HTTP server
type Server struct {
	router       *gin.Engine
	db           *gorm.DB
	config       *config.Config
	logger       zerolog.Logger
	sessions     *sessions.Store
	signer       *auth.Signer
	authn        Authenticator
	remoteConfig *remoteconfig.Service
	users        *users.Service
	version      string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := sessions.OpenDatabase(cfg.Database.URL, zlog)
	if err != nil {
		return nil, err
	}

	return newWithDatabase(cfg, zlog, version, db)
}

func newWithDatabase(cfg *config.Config, zlog zerolog.Logger, version string, db *gorm.DB) (*Server, error) {
	store := sessions.NewStore(db)

	// Load the cookie signing secret (generated on first start when not configured)
	secret, err := store.SigningSecret(context.Background(), cfg.Session.Secret)
	if err != nil {
		return nil, err
	}
	if cfg.Session.Secret == "" {
		zlog.Debug().Msg("Using session secret persisted in database")
	}

	api := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout)
	api.SetLoginPath(cfg.API.LoginPath)

	server := &Server{
		db:           db,
		config:       cfg,
		logger:       zlog,
		sessions:     store,
		signer:       auth.NewSigner(secret),
		authn:        api,
		remoteConfig: remoteconfig.NewService(api, zlog),
		users:        users.NewService(api, zlog),
		version:      version,
	}

	if err := server.setupRouter(); err != nil {
		return nil, err
	}

	return server, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() error {
	gin.SetMode(gin.ReleaseMode)

	renderer, err := views.New()
	if err != nil {
		return err
	}

	s.router = gin.New()
	s.router.HTMLRender = renderer

	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, dashboardPath)
	})

	// Public pages
	s.router.GET(loginPath, s.loginPage)
	s.router.POST(loginPath, s.login)
	s.router.POST(logoutPath, s.logout)
	s.router.GET(unauthorizedPath, s.unauthorizedPage)

	// Pages for any signed-in user
	dashboard := s.router.Group(dashboardPath)
	dashboard.Use(RequireSession(s.sessions, s.signer, s.config.Session, s.logger))
	{
		dashboard.GET("", s.dashboardPage)
		dashboard.POST("/config", s.updateConfig)

		// User management (admin only)
		userRoutes := dashboard.Group("/users")
		userRoutes.Use(RequireAdmin(s.logger))
		{
			userRoutes.GET("", s.usersPage)
			userRoutes.POST("", s.createUser)
		}
	}

	// JSON endpoints for scripts and embedding pages
	api := s.router.Group("/api")
	if len(s.config.HTTP.CORSAllowedOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.HTTP.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length", requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	api.Use(RequireSessionJSON(s.sessions, s.signer, s.config.Session, s.logger))
	{
		api.GET("/session", s.getSession)
		api.GET("/config", s.getConfigSnapshot)
	}

	return nil
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "remotecfg-console",
		"version":   s.version,
	})
}

// forgetSessions drops per-session caches for purged sessions
func (s *Server) forgetSessions(ids []string) {
	s.users.Forget(ids...)
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and the session purger, and blocks until
// SIGINT or SIGTERM
func (s *Server) Start() error {
	addr := s.config.HTTP.Addr

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	purger, err := workers.StartSessionPurger(s.sessions, s.config.Session.PurgeSchedule, s.forgetSessions, s.logger)
	if err != nil {
		return fmt.Errorf("failed to start session purger: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Str("api", s.config.API.BaseURL).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		<-purger.Stop().Done()
		return err
	}

	// Let a running purge finish
	<-purger.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		} else {
			s.logger.Info().Msg("Database closed successfully")
		}
	}

	return nil
}
