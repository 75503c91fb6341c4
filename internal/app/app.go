package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"tabcast/internal/config"
	"tabcast/internal/forecast"
	"tabcast/internal/infrastructure"
	"tabcast/internal/services"
	transporthttp "tabcast/internal/transport/http"
)

const (
	// AppName is the service name used in logs and health responses.
	AppName = "tabcast"
	// Version is stamped at build time with -ldflags.
	Version = "dev"
)

// Application owns the wired service graph and the HTTP server lifecycle.
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Service  *services.AnalysisService
	Server   *http.Server
}

// NewApplication loads configuration and wires every component.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service := services.NewAnalysisService(logger, services.AnalysisConfig{
		Horizons: []forecast.Horizon{
			{Name: "short", Days: cfg.Forecast.ShortDays},
			{Name: "medium", Days: cfg.Forecast.MediumDays},
			{Name: "long", Days: cfg.Forecast.LongDays},
		},
		BatchConcurrency: cfg.Upload.BatchConcurrency,
		Metrics:          services.NewMetrics(registry),
	})

	router := transporthttp.NewRouter(transporthttp.RouterConfig{
		Service:  service,
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Version:  Version,
	})

	return &Application{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Service:  service,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// Start begins serving. The cancel func is invoked on a listener failure
// so that Run can unwind instead of hanging on the signal wait.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("log_level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()
}

// Stop gracefully shuts the server down within the configured timeout.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run serves until interrupted, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	a.Start(ctx, cancel)

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
