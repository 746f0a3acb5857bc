package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ledgerbot/internal/agent"
	"ledgerbot/internal/backend"
	"ledgerbot/internal/config"
	"ledgerbot/internal/events"
	apphttp "ledgerbot/internal/http"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Ledger backend (global connection handles, reused across requests)
	be, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize ledger backend", "error", err, "backend", cfg.Backend)
		os.Exit(1)
	}
	if be.Cleanup != nil {
		defer func() {
			if err := be.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}()
	}

	// Model client
	extractor, err := agent.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Error("Failed to initialize model client", "error", err)
		os.Exit(1)
	}

	// Optional transaction-event notifier
	var notifier apphttp.TransactionNotifier
	if cfg.AMQPURL != "" {
		pub, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("Failed to initialize AMQP notifier, continuing without events", "error", err)
		} else {
			defer pub.Close()
			notifier = pub
			logger.Info("Initialized AMQP notifier", "exchange", cfg.AMQPExchange)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, extractor, be.Store, notifier, cfg)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting ledgerbot server", "port", cfg.Port, "backend", cfg.Backend, "model", cfg.GeminiModel)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
