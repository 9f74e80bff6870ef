package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/meur/tierzen/internal/board"
	"github.com/meur/tierzen/internal/editor"
	"github.com/meur/tierzen/internal/models"
	"github.com/meur/tierzen/internal/storage"
)

// Options configure the API server
type Options struct {
	AllowedOrigins []string
	Deadband       float64
}

// Server holds the HTTP server dependencies
type Server struct {
	store   *storage.Store
	editors *editor.Registry
	router  chi.Router
	origins []string
}

// New creates a new API server
func New(store *storage.Store, opts Options) *Server {
	s := &Server{
		store:   store,
		editors: editor.NewRegistry(store, editor.Options{Deadband: opts.Deadband}),
		router:  chi.NewRouter(),
		origins: opts.AllowedOrigins,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Router exposes the router so callers can mount extra handlers
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Templates
		r.Get("/templates", s.handleGetTemplates)
		r.Get("/templates/{templateID}", s.handleGetTemplate)

		// Boards
		r.Get("/boards", s.handleListBoards)
		r.Post("/boards", s.handleCreateBoard)
		r.Route("/boards/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetBoard)
			r.Delete("/", s.handleDeleteBoard)
			r.Put("/mode", s.handleSetMode)
			r.Post("/reset", s.handleReset)

			// Tiers
			r.Post("/tiers", s.handleAddTier)
			r.Put("/tiers/{tierID}", s.handleUpdateTier)
			r.Delete("/tiers/{tierID}", s.handleDeleteTier)
			r.Post("/tiers/{tierID}/move", s.handleMoveTier)

			// Items
			r.Post("/items", s.handleAddItem)
			r.Put("/items/{itemID}", s.handleUpdateItem)
			r.Delete("/items/{itemID}", s.handleDeleteItem)
			r.Put("/items/{itemID}/error", s.handleItemError)

			// Drag and drop
			r.Get("/drag", s.handleGetDrag)
			r.Post("/drag", s.handleBeginDrag)
			r.Post("/drag/move", s.handleMoveDrag)
			r.Post("/drag/drop", s.handleDrop)
			r.Post("/drag/cancel", s.handleCancelDrag)

			// Export
			r.Get("/export.xml", s.handleExportXML)
			r.Get("/export.png", s.handleExportPNG)
		})

		// Share links
		r.Get("/s/{code}", s.handleGetBoardByCode)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondFailure maps domain errors to status codes. Anything unexpected is
// logged and reported as a 500 with the given message.
func respondFailure(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, editor.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "Board not found")
	case errors.Is(err, board.ErrTierNotFound):
		respondError(w, http.StatusNotFound, "Tier not found")
	case errors.Is(err, board.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "Item not found")
	case errors.Is(err, models.ErrNameRequired):
		respondError(w, http.StatusBadRequest, "Item name is required")
	default:
		log.Error().Err(err).Msg(message)
		respondError(w, http.StatusInternalServerError, message)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
