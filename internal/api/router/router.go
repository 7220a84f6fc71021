// Package router assembles the HTTP surface: the public quote chat, the
// Prometheus endpoint, and the JWT-protected admin lead routes.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/homequote/homequote/internal/chat"
	httpmiddleware "github.com/homequote/homequote/internal/http/middleware"
	"github.com/homequote/homequote/internal/leads"
	"github.com/homequote/homequote/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *chat.Handler
	LeadsHandler       *leads.Handler
	MetricsHandler     http.Handler
	MetricsSummary     http.HandlerFunc
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// ChatRatePerSecond throttles the public chat endpoints per IP.
	// Zero disables the limiter.
	ChatRatePerSecond float64
	ChatRateBurst     int
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

	r.Get("/health", handleHealth)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.ChatHandler != nil {
		r.Route("/chat", func(public chi.Router) {
			if cfg.ChatRatePerSecond > 0 {
				public.Use(httpmiddleware.RateLimit(cfg.ChatRatePerSecond, cfg.ChatRateBurst))
			}
			public.Get("/ws", cfg.ChatHandler.HandleWebSocket)
			public.Post("/start", cfg.ChatHandler.HandleStart)
			public.Post("/select-service", cfg.ChatHandler.HandleSelectService)
			public.Post("/answer", cfg.ChatHandler.HandleAnswer)
			public.Post("/action", cfg.ChatHandler.HandleAction)
			public.Get("/transcript", cfg.ChatHandler.HandleTranscript)
		})
	}

	if cfg.LeadsHandler != nil || cfg.MetricsSummary != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.MetricsSummary != nil {
				admin.Get("/metrics-summary", cfg.MetricsSummary)
			}
			if cfg.LeadsHandler != nil {
				admin.Get("/leads", cfg.LeadsHandler.List)
				admin.Get("/leads/export", cfg.LeadsHandler.Export)
				admin.Get("/leads/{leadID}", cfg.LeadsHandler.Get)
				admin.Delete("/leads/{leadID}", cfg.LeadsHandler.Delete)
			}
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
