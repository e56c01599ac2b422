package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tavolo-pos/api/internal/catalog"
	"github.com/tavolo-pos/api/internal/config"
	"github.com/tavolo-pos/api/internal/handler"
	mw "github.com/tavolo-pos/api/internal/middleware"
	"github.com/tavolo-pos/api/internal/session"
	"github.com/tavolo-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, menu *catalog.Menu, sessions *session.Manager, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Menu is served read-only so terminals can render the product grid
	menuHandler := handler.NewMenuHandler(menu)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/menu", menuHandler.RegisterRoutes)

		sessionHandler := handler.NewSessionHandler(sessions, menu, hub)
		r.Route("/sessions", sessionHandler.RegisterRoutes)
	})

	return r
}
