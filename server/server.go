package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fieldforge/jobsync/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

// Server is the company backend for jobsync clients.
type Server struct {
	db        *sql.DB
	echo      *echo.Echo
	cron      *cron.Cron
	uploadDir string
}

// Options tunes a server instance.
type Options struct {
	UploadDir string // where uploaded images land; defaults to ./uploads
}

// New creates a server against a Postgres database.
func New(dbURL string, opts Options) (*Server, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	uploadDir := opts.UploadDir
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	s := &Server{
		db:        db,
		uploadDir: uploadDir,
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		return nil, err
	}

	s.setupEcho()
	s.setupCron()

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Custom logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("duration", time.Since(start).String()))

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// Uploaded images
	e.Static("/uploads", s.uploadDir)

	// API v1
	api := e.Group("/api/v1")

	// Auth endpoints (public)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)

	protected.POST("/projects", s.handleProjectCreate)
	protected.PATCH("/projects/:id/fields", s.handleProjectFields)

	protected.POST("/tasks", s.handleTaskCreate)
	protected.PATCH("/tasks/:id/fields", s.handleTaskFields)
	protected.DELETE("/tasks/:id", s.handleTaskDelete)

	protected.POST("/events", s.handleEventCreate)
	protected.PATCH("/events/:id/fields", s.handleEventFields)
	protected.DELETE("/events/:id", s.handleEventDelete)

	protected.GET("/companies/:id", s.handleCompanyGet)
	protected.GET("/companies/:id/users", s.handleCompanyUsers)
	protected.GET("/companies/:id/task-types", s.handleCompanyTaskTypes)
	protected.GET("/users/:id", s.handleUserGet)

	protected.POST("/images", s.handleImageUpload)

	s.echo = e
}

// setupCron schedules the hourly purge of expired sessions.
func (s *Server) setupCron() {
	c := cron.New()
	_, err := c.AddFunc("@hourly", func() {
		n, err := s.cleanupExpiredSessions()
		if err != nil {
			logger.Error("Session cleanup failed", logger.F("error", err))
			return
		}
		if n > 0 {
			logger.Info("Expired sessions purged", logger.F("count", n))
		}
	})
	if err != nil {
		logger.Error("Failed to schedule session cleanup", logger.F("error", err))
		return
	}
	c.Start()
	s.cron = c
}

// Close stops background jobs and closes the database connection.
func (s *Server) Close() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
