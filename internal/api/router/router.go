package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MyatBhoneThet/ai-receptionist/internal/http/handlers"
	httpmiddleware "github.com/MyatBhoneThet/ai-receptionist/internal/http/middleware"
	"github.com/MyatBhoneThet/ai-receptionist/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *handlers.ChatHandler
	BookingsHandler    *handlers.BookingsHandler
	HealthHandler      *handlers.HealthHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.HandleHealth)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.ChatHandler != nil {
		r.Post("/chat", cfg.ChatHandler.HandleChat)
	}
	if cfg.BookingsHandler != nil {
		// One wildcard name for the whole segment: GET interprets it as a
		// session id, PATCH/DELETE as a booking id.
		r.Route("/bookings", func(b chi.Router) {
			b.Get("/{id}", cfg.BookingsHandler.List)
			b.Patch("/{id}", cfg.BookingsHandler.Patch)
			b.Delete("/{id}", cfg.BookingsHandler.Cancel)
		})
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Route not found"})
	})

	return r
}
