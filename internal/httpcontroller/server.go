// Package httpcontroller serves the JSON API: venue, artist and show
// browsing, show notes, profiles, auth and the ingest trigger.
package httpcontroller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gignote/gignote-go/internal/conf"
	"github.com/gignote/gignote-go/internal/datastore"
	"github.com/gignote/gignote-go/internal/imagestore"
	"github.com/gignote/gignote-go/internal/ingest"
	"github.com/gignote/gignote-go/internal/logging"
	"github.com/gignote/gignote-go/internal/observability"
	"github.com/gignote/gignote-go/internal/security"
)

// Server ties the echo instance to the datastore and the supporting
// services and owns route registration.
type Server struct {
	Echo     *echo.Echo
	DS       datastore.Interface
	Settings *conf.Settings
	Security *security.Manager
	Images   *imagestore.Store
	Ingest   *ingest.Service

	metrics     *observability.Metrics
	webLogger   *slog.Logger
	webLogClose func() error
}

// New creates the HTTP server with middleware and routes configured.
func New(settings *conf.Settings, ds datastore.Interface, sec *security.Manager,
	images *imagestore.Store, ingestService *ingest.Service, metrics *observability.Metrics) *Server {

	s := &Server{
		Echo:     echo.New(),
		DS:       ds,
		Settings: settings,
		Security: sec,
		Images:   images,
		Ingest:   ingestService,
		metrics:  metrics,
	}
	s.Echo.HideBanner = true

	logger, closeFunc, err := logging.NewFileLogger("logs/web.log", "web", slog.LevelInfo)
	if err != nil {
		logging.ForService("web").Warn("Failed to create web log file, logging to default logger", "error", err)
		logger = logging.ForService("web")
		closeFunc = func() error { return nil }
	}
	s.webLogger = logger
	s.webLogClose = closeFunc

	s.initMiddleware()
	s.initRoutes()
	return s
}

// initMiddleware configures the echo middleware chain.
func (s *Server) initMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.Secure())
	s.Echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 6}))
	s.Echo.Use(s.requestLoggerMiddleware())
}

// requestLoggerMiddleware logs each request and records HTTP metrics.
func (s *Server) requestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			elapsed := time.Since(start)
			status := c.Response().Status
			route := c.Path()

			if s.metrics != nil && s.metrics.HTTP != nil {
				s.metrics.HTTP.RecordRequest(c.Request().Method, route, strconv.Itoa(status), elapsed.Seconds())
			}
			s.webLogger.Info("Request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"duration_ms", elapsed.Milliseconds(),
				"ip", c.RealIP(),
			)
			return nil
		}
	}
}

// initRoutes registers all API routes.
func (s *Server) initRoutes() {
	api := s.Echo.Group("/api/v1")

	// Public reads
	api.GET("/venues", s.ListVenues)
	api.GET("/venues/:id", s.GetVenue)
	api.GET("/venues/:id/shows", s.GetVenueShows)
	api.GET("/artists", s.ListArtists)
	api.GET("/artists/:id", s.GetArtist)
	api.GET("/artists/:id/shows", s.GetArtistShows)
	api.GET("/shows", s.ListShows)
	api.GET("/shows/:id", s.GetShow)
	api.GET("/shows/:id/notes", s.GetShowNotes)
	api.GET("/notes", s.ListNotes)
	api.GET("/notes/latest", s.GetLatestNotes)
	api.GET("/notes/:id", s.GetNote)
	api.GET("/notes/:id/photo", s.GetNotePhoto)

	// Session required
	api.POST("/shows/:id/notes", s.CreateNote, s.requireAuth)
	api.PUT("/notes/:id", s.UpdateNote, s.requireAuth)
	api.DELETE("/notes/:id", s.DeleteNote, s.requireAuth)
	api.GET("/profile", s.GetProfile, s.requireAuth)
	api.PUT("/profile", s.UpdateProfile, s.requireAuth)
	api.GET("/profile/avatar", s.GetAvatar, s.requireAuth)

	// Auth
	api.POST("/auth/register", s.Register)
	api.POST("/auth/login", s.Login)
	api.POST("/auth/logout", s.Logout)
	api.GET("/auth/:provider", s.SocialLogin)
	api.GET("/auth/:provider/callback", s.SocialCallback)

	// Admin / scheduler
	api.POST("/admin/populate", s.Populate)

	if s.metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
}

// requireAuth rejects requests that do not carry a valid session.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Security.IsAuthenticated(c) {
			return s.HandleError(c, nil, "Authentication required", http.StatusUnauthorized)
		}
		return next(c)
	}
}

// Start runs the server on the configured port, blocking until shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.Settings.WebServer.Port)
	s.webLogger.Info("Starting web server", "address", addr)
	if err := s.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and closes the log file.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	if s.webLogClose != nil {
		_ = s.webLogClose()
	}
	return err
}
