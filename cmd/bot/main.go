package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-sneakers-store/internal/app"
	"github.com/ariefcatur/go-sneakers-store/internal/bot"
	"github.com/ariefcatur/go-sneakers-store/internal/config"
	"github.com/ariefcatur/go-sneakers-store/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if cfg.TelegramToken == "" {
		err = errors.Join(err, errors.New("TELEGRAM_TOKEN environment variable is required"))
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.ServiceName += "-bot"

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OtelEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Fatal("tracing", zap.Error(err))
	}

	core, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}

	b, err := bot.New(cfg.TelegramToken, &bot.Handler{Catalog: core.Catalog, Orders: core.Service, Log: logger}, logger)
	if err != nil {
		core.Close()
		logger.Fatal("bot", zap.Error(err))
	}
	if err := b.Run(ctx); err != nil {
		logger.Error("bot stopped", zap.Error(err))
	}
	logger.Info("shutting down")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	core.Close()
	if err := shutdownTracing(ctx2); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}
