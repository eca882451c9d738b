// Command server runs the Resale Hub HTTP API.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/bootstrap"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/config"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/observability"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	shutdownTracing, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	rt, err := bootstrap.InitRuntime(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	// Create server with dependency injection
	srv, err := server.NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Images)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("Server resource shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("Tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
