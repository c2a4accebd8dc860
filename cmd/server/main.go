package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"targetkit/internal/platform/config"
	"targetkit/internal/platform/logger"
	httptransport "targetkit/internal/transport/http"
	"targetkit/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.close()

	log.Info("initializing targetkit",
		"addr", cfg.Addr,
		"ledger_backend", cfg.Ledger.Backend,
		"workspaces", len(app.catalog.All()),
		"has_target_config", cfg.Target.HasConfig(),
		"login_enabled", cfg.Auth.Enabled(),
	)
	if missing := cfg.Target.MissingFields(); len(missing) > 0 {
		log.Warn("upstream credentials incomplete", "missing_fields", missing)
	}

	router := httptransport.NewRouter(httptransport.Dependencies{
		Config:     cfg,
		Logger:     log,
		Health:     app.health,
		Settings:   app.settings,
		Offers:     app.offers,
		Activities: app.activities,
		Login:      app.login,
		Sessions:   app.sessions,
		Latency:    request.NewMetrics(prometheus.DefaultRegisterer),
		Metrics:    promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
