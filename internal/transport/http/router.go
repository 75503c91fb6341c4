package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tabcast/internal/config"
	apierrors "tabcast/internal/errors"
	"tabcast/internal/middleware"
	"tabcast/internal/services"
)

// RouterConfig collects everything the router needs.
type RouterConfig struct {
	Service  *services.AnalysisService
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Version  string
}

// NewRouter assembles the full middleware chain and route tree.
func NewRouter(rc RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(rc.Logger))
	r.Use(middleware.Recoverer(rc.Logger))
	r.Use(middleware.SecurityHeaders)
	if rc.Config.Security.EnableCORS {
		r.Use(middleware.CORS(rc.Config.Security.AllowedOrigins))
	}
	if rl := rc.Config.Security.RateLimit; rl.Enabled() {
		r.Use(middleware.NewRateLimiter(rl.RPS, rl.Burst, rc.Logger).Handler)
	}

	analyze := NewAnalyzeHandler(rc.Service, rc.Config.Upload, rc.Logger)
	health := NewHealthHandler(rc.Logger, rc.Version)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Mount("/analyze", analyze.Routes())
		r.Get("/health", health.HealthCheck)
		r.Get("/version", health.Version)
	})

	if rc.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rc.Registry, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, apierrors.ErrNotFound)
	})

	return r
}
