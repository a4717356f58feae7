package api

import (
	"net/http"

	"github.com/altafino/report-courier/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the API router.
func SetupRoutes(h *Handlers, cfg *types.Config) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if cfg.Security.CORS.Enabled {
		methods := cfg.Security.CORS.AllowedMethods
		if len(methods) == 0 {
			methods = []string{"GET", "POST", "PUT", "OPTIONS"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
			AllowedMethods: methods,
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	healthPath := cfg.Monitoring.HealthCheckPath
	if healthPath == "" {
		healthPath = "/health"
	}
	r.Get(healthPath, h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		if len(cfg.Security.APIKeys) > 0 {
			r.Use(apiKeyAuth(cfg.Security.APIKeys))
		}

		r.Get("/status", h.Status)
		r.Post("/scan", h.TriggerScan)
		r.Put("/scan/config", h.UpdateScanConfig)

		r.Get("/recipients", h.ListRecipients)
		r.Put("/recipients", h.PutRecipients)
		r.Post("/recipients/import", h.ImportRecipients)
		r.Get("/recipients/{sigla}", h.GetRecipient)
		r.Post("/recipients/{sigla}/send", h.Send)
		r.Post("/recipients/{sigla}/reset", h.Reset)

		r.Get("/sendlog", h.SendLog)
	})

	return r
}

// apiKeyAuth rejects requests without one of the configured keys in
// the X-API-Key header.
func apiKeyAuth(keys []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		allowed[k] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[r.Header.Get("X-API-Key")]; !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
