package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	mW "github.com/ruralpay/ledger/internal/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterConfig struct {
	AuthEnabled bool
	JWTSecret   string
	SwaggerURL  string
}

// NewRouter wires middleware, health, swagger and the /api/v1 ledger routes.
func NewRouter(ledger *LedgerHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	if cfg.SwaggerURL != "" {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(cfg.SwaggerURL)))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthEnabled {
			r.Use(mW.AuthMiddleware(cfg.JWTSecret))
		}
		ledger.Routes(r)
	})

	return r
}
