// Package api provides the HTTP API server and handlers for the Shelfmark application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shelfmark/shelfmark-server/internal/http/response"
	"github.com/shelfmark/shelfmark-server/internal/ratelimit"
	"github.com/shelfmark/shelfmark-server/internal/service"
	"github.com/shelfmark/shelfmark-server/internal/store"
	"github.com/shelfmark/shelfmark-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          store.Store
	bookService    *service.BookService
	libraryService *service.LibraryService
	shelfService   *service.ShelfService
	socialService  *service.SocialService
	validator      *validation.Validator
	resolveLimiter *ratelimit.KeyedLimiter
	router         *chi.Mux
	logger         *slog.Logger
	corsOrigins    []string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	s store.Store,
	bookService *service.BookService,
	libraryService *service.LibraryService,
	shelfService *service.ShelfService,
	socialService *service.SocialService,
	resolveLimiter *ratelimit.KeyedLimiter,
	corsOrigins []string,
	logger *slog.Logger,
) *Server {
	srv := &Server{
		store:          s,
		bookService:    bookService,
		libraryService: libraryService,
		shelfService:   shelfService,
		socialService:  socialService,
		validator:      validation.New(),
		resolveLimiter: resolveLimiter,
		router:         chi.NewRouter(),
		logger:         logger,
		corsOrigins:    corsOrigins,
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Books (catalog). Resolution fans out to external catalogs, so it
		// carries a per-client rate limit on top of auth.
		r.Route("/books", func(r chi.Router) {
			r.Use(s.requireUser)
			r.With(RateLimitMiddleware(s.resolveLimiter, s.logger)).
				Get("/resolve/{isbn}", s.handleResolveBook)
			r.Get("/{id}", s.handleGetBook)
			r.Patch("/{id}", s.handleUpdateBook)
		})

		// Personal library.
		r.Route("/library", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/", s.handleListLibrary)
			r.Post("/", s.handleAddToLibrary)
			r.Get("/{entryID}", s.handleGetLibraryEntry)
			r.Patch("/{entryID}/read", s.handleSetReadStatus)
			r.Delete("/isbn/{isbn}", s.handleRemoveFromLibrary)
		})

		// Shelves.
		r.Route("/shelves", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Post("/", s.handleCreateShelf)
			r.Get("/", s.handleListShelves)
			r.Get("/{id}", s.handleGetShelf)
			r.Patch("/{id}", s.handleRenameShelf)
			r.Patch("/{id}/visibility", s.handleSetShelfVisibility)
			r.Delete("/{id}", s.handleDeleteShelf)
			r.Post("/{id}/entries", s.handleAddShelfEntry)
			r.Delete("/{id}/entries/{entryID}", s.handleRemoveShelfEntry)
			r.Put("/{id}/order", s.handleReorderShelf)
		})

		// Social graph.
		r.Route("/social", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/following", s.handleListFollowing)
			r.Get("/followers", s.handleListFollowers)
			r.Get("/blocked", s.handleListBlocked)
			r.Post("/follow/{userID}", s.handleFollow)
			r.Delete("/follow/{userID}", s.handleUnfollow)
			r.Post("/block/{userID}", s.handleBlock)
			r.Delete("/block/{userID}", s.handleUnblock)
		})

		// Public views of another user.
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/shelves", s.handleListUserPublicShelves)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
