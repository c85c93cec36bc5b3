// Package api exposes the HTTP surface: image analysis, history review,
// clinical summary, and health.
package api

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/skin-wellness-navigator/internal/clinical"
	"github.com/skin-wellness-navigator/internal/domain"
	"github.com/skin-wellness-navigator/internal/health"
	"github.com/skin-wellness-navigator/internal/history"
	"github.com/skin-wellness-navigator/internal/middleware"
	"github.com/skin-wellness-navigator/internal/service"
)

// HealthMonitor is the resource view the HTTP layer consumes.
type HealthMonitor interface {
	Check(ctx context.Context) error
	Snapshot(ctx context.Context) health.Metrics
	Uptime() time.Duration
}

// Deps carries everything the server needs. Store and Dataset may be nil;
// the corresponding endpoints degrade gracefully.
type Deps struct {
	Config   *domain.Config
	Analyzer *service.Analyzer
	Monitor  HealthMonitor
	Store    history.Store
	Dataset  *clinical.Dataset
	Logger   *logrus.Logger
}

// Server represents the HTTP server
type Server struct {
	deps   Deps
	router *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(deps Deps) *Server {
	// Set Gin mode based on environment
	if deps.Config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())

	if deps.Config.RateLimit.Enabled {
		router.Use(middleware.NewRateLimiter(deps.Config.RateLimit).Handler())
	}

	server := &Server{
		deps:   deps,
		router: router,
	}

	server.setupRoutes()

	return server
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.deps.Config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	if dir := s.deps.Config.Server.StaticDir; dir != "" {
		s.router.StaticFile("/", filepath.Join(dir, "index.html"))
		s.router.Static("/static", dir)
	}

	api := s.router.Group("/api")
	{
		// Headroom past the vision deadline covers upload parsing and
		// the fallback path.
		analyzeTimeout := s.deps.Config.Vision.Timeout + 10*time.Second
		api.POST("/analyze", middleware.RequestTimeout(analyzeTimeout), s.handleAnalyze)
		api.GET("/health", s.handleHealth)
		api.GET("/history", s.handleHistory)
		api.GET("/clinical/summary", s.handleClinicalSummary)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Correlation-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
