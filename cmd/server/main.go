// Command main is the entry point for the postboard API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postboard/internal/bootstrap"
	"postboard/internal/config"
	"postboard/internal/middleware"
	"postboard/internal/observability"
	"postboard/internal/server"
)

// @title Postboard API
// @version 1.0
// @description Blog post CRUD API with filtered, paginated listing

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "postboard-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		middleware.Logger.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	db, redisClient, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		middleware.Logger.Error("Failed to initialize runtime", "error", err)
		os.Exit(1)
	}

	srv, err := server.NewServerWithDeps(cfg, db, redisClient)
	if err != nil {
		middleware.Logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run returns after the HTTP server, DB pool and Redis client are closed.
	runErr := srv.Run(ctx, 10*time.Second)
	if runErr != nil {
		middleware.Logger.Error("Server resource shutdown error", "error", runErr)
	}

	tracingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(tracingCtx); err != nil {
		middleware.Logger.Error("Tracer shutdown error", "error", err)
	}

	if runErr != nil {
		stop()
		cancel()
		os.Exit(1)
	}
}
