package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-sneakers-store/internal/app"
	"github.com/ariefcatur/go-sneakers-store/internal/config"
	"github.com/ariefcatur/go-sneakers-store/internal/httpx"
	"github.com/ariefcatur/go-sneakers-store/internal/observability"
	"github.com/ariefcatur/go-sneakers-store/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OtelEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Fatal("tracing", zap.Error(err))
	}

	core, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}

	router := httpx.NewRouter(logger, core.DB)
	(&httpx.SneakersHandler{Catalog: core.Catalog, Log: logger}).Register(router)
	oh := &httpx.OrdersHandler{Orders: core.Service, Reader: core.Orders, Log: logger}
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		oh.Idem = &redisx.Idempotency{RDB: rdb}
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	core.Close()
	if err := shutdownTracing(ctx2); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}
