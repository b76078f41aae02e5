// Package api provides the HTTP API server and handlers for the Lumen application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lumenapp/lumen-server/internal/activity"
	"github.com/lumenapp/lumen-server/internal/backup"
	"github.com/lumenapp/lumen-server/internal/http/response"
	"github.com/lumenapp/lumen-server/internal/media/images"
	"github.com/lumenapp/lumen-server/internal/ratelimit"
	"github.com/lumenapp/lumen-server/internal/service"
	"github.com/lumenapp/lumen-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	library   *service.Library
	blobs     *images.Storage
	codec     *backup.Codec
	feed      *activity.Log
	validator *validation.Validator
	router    *chi.Mux
	limiter   *ratelimit.Limiter
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// feed may be nil when the activity log is disabled.
func NewServer(library *service.Library, blobs *images.Storage, codec *backup.Codec, feed *activity.Log, logger *slog.Logger) *Server {
	s := &Server{
		library:   library,
		blobs:     blobs,
		codec:     codec,
		feed:      feed,
		validator: validation.New(),
		router:    chi.NewRouter(),
		limiter:   ratelimit.New(50, 100),
		logger:    logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.limiter.Middleware)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/photos", func(r chi.Router) {
			r.Get("/", s.handleListPhotos)
			r.Post("/", s.handleImportPhotos)
			r.Post("/bulk-delete", s.handleBulkDeletePhotos)
			r.Post("/move", s.handleMovePhotos)
			r.Post("/copy", s.handleCopyPhotos)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPhoto)
				r.Patch("/", s.handleUpdatePhoto)
				r.Delete("/", s.handleDeletePhoto)
				r.Get("/file", s.handleGetPhotoFile)
				r.Post("/favorite", s.handleToggleFavorite)
				r.Post("/tags", s.handleAddTags)
				r.Delete("/tags/{name}", s.handleRemoveTag)
				r.Post("/autotag", s.handleAutotag)
			})
		})

		r.Route("/albums", func(r chi.Router) {
			r.Get("/", s.handleListAlbums)
			r.Post("/", s.handleCreateAlbum)
			r.Get("/{id}", s.handleGetAlbum)
			r.Patch("/{id}", s.handleUpdateAlbum)
			r.Delete("/{id}", s.handleDeleteAlbum)
			r.Post("/{id}/photos", s.handleAddPhotosToAlbum)
			r.Delete("/{id}/photos/{photoID}", s.handleRemovePhotoFromAlbum)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleListTags)
			r.Post("/", s.handleCreateTag)
			r.Patch("/{id}", s.handleUpdateTag)
			r.Delete("/{id}", s.handleDeleteTag)
		})

		r.Route("/backup", func(r chi.Router) {
			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)
		})

		r.Get("/activity", s.handleActivity)
		r.Get("/stats", s.handleStats)
		r.Post("/clear", s.handleClear)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
