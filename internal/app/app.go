// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/RKPYI/novel-scraper/internal/config"
	"github.com/RKPYI/novel-scraper/internal/logging"
	"github.com/RKPYI/novel-scraper/internal/scraper"
	"github.com/RKPYI/novel-scraper/internal/storage/noop"
	"github.com/RKPYI/novel-scraper/internal/storage/postgres"
)

// App holds the shared, long-lived services: the logger and the persistence
// gateway. It is initialized once at startup and passed to the commands that
// need it.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	store  scraper.Store
	closer func()
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger instance.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Store returns the configured persistence gateway.
func (a *App) Store() scraper.Store {
	return a.store
}

// New creates and initializes an App from configuration. It fails fast when
// any critical service cannot be reached.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, closer: func() {}}

	switch cfg.DB.Provider {
	case "postgres":
		logger.Info("connecting to postgres")
		store, err := postgres.NewStore(ctx, postgres.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize postgres store: %w", err)
		}
		a.store = store
		a.closer = store.Close
	case "noop":
		logger.Info("using in-memory store, nothing will be persisted")
		a.store = noop.New()
	default:
		return nil, fmt.Errorf("unknown db provider: %s", cfg.DB.Provider)
	}

	if addr := cfg.Metrics.ListenAddr; addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("starting metrics listener", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics listener failed", zap.Error(err))
			}
		}()
	}

	return a, nil
}

// Close gracefully shuts down the App's services. It is called by a Cobra
// hook after the command finishes.
func (a *App) Close() {
	a.logger.Info("shutting down")
	a.closer()
	// Best effort: stderr sync fails on some platforms.
	_ = a.logger.Sync()
}
