package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/wolfman30/clinicdesk/internal/config"
	httpmiddleware "github.com/wolfman30/clinicdesk/internal/http/middleware"
	"github.com/wolfman30/clinicdesk/internal/mockapi"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinicdesk development backend",
		"env", cfg.Env,
		"port", cfg.Port,
		"base_path", appconfig.BasePath(),
	)

	handler, stop := setupServer(cfg, logger, time.Now)
	defer stop()

	if cfg.JWTSecret != "" {
		token, err := httpmiddleware.SignToken(cfg.JWTSecret, "user-1", 24*time.Hour)
		if err != nil {
			logger.Error("failed to sign dev token", "error", err)
			os.Exit(1)
		}
		logger.Info("bearer auth enabled; dev token for user-1 issued", "token", token)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + cfg.MockLatency,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupServer seeds a fresh store and builds the router. The returned stop
// func releases the rate limiter's janitor.
func setupServer(cfg *appconfig.Config, logger *logging.Logger, now func() time.Time) (http.Handler, func()) {
	store := mockapi.NewStore()
	mockapi.Seed(store, now())

	var limiter *httpmiddleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	handler := mockapi.NewRouter(mockapi.Config{
		Store:          store,
		Logger:         logger,
		BasePath:       appconfig.BasePath(),
		CORSOrigins:    cfg.CORSOrigins,
		JWTSecret:      cfg.JWTSecret,
		RateLimiter:    limiter,
		MetricsHandler: setupMetrics(),
		Latency:        cfg.MockLatency,
		Now:            now,
	})
	return handler, func() {
		if limiter != nil {
			limiter.Stop()
		}
	}
}

func setupMetrics() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
