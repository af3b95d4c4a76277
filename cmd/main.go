/*
Package main is the entry point for the mentorlink gateway.

It loads configuration, initializes logging, wires the backend client, the
relay hub and optional avatar storage into the router, and shuts everything
down gracefully on SIGINT/SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mentorlink/internal/app/backend"
	"mentorlink/internal/app/relay"
	"mentorlink/internal/app/storage"
	"mentorlink/internal/configs"
	"mentorlink/internal/handler"
	"mentorlink/internal/pkg/logx"
)

func main() {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("backend_url", cfg.BackendURL).
		Dur("gateway_timeout", cfg.GatewayTimeout).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("storage_enabled", cfg.StorageEnabled()).
		Bool("relay_verifies_tokens", cfg.RelayJWTSecret != "").
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &handler.AppDeps{
		Config:  cfg,
		Backend: backend.NewClient(cfg.BackendURL, cfg.GatewayTimeout),
		Relay:   relay.NewManager(),
	}

	if cfg.StorageEnabled() {
		svc, err := storage.NewService(storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			AssetBaseURL:      cfg.AssetBaseURL,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize storage service")
		}
		deps.Storage = svc
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info("Gateway starting", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	// Hijacked relay connections are not tracked by Shutdown; close them first.
	deps.Relay.Shutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
