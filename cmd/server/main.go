// Command server runs the club board API.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubboard/internal/config"
	"clubboard/internal/observability"
	"clubboard/internal/server"
	"clubboard/internal/workers"
)

// @title Club Board API
// @version 1.0
// @description Member profiles and a recruiting board for a music club
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@clubboard.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.GlobalLogger = observability.NewLogger(os.Stdout, cfg.Env)
	slog.SetDefault(observability.GlobalLogger.Logger)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "clubboard-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.TracingOTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	purger, err := workers.StartPurgeScheduler(jobsCtx, srv.Profiles(), cfg.SoftDeleteRetention, cfg.PurgeInterval)
	if err != nil {
		log.Fatalf("Failed to schedule profile purge: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		stopJobs()
		if purger != nil {
			if err := purger.Shutdown(); err != nil {
				log.Printf("Scheduler shutdown error: %v", err)
			}
		}
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server resource shutdown error: %v", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
