package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	PrintVersion()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	boot := initLogger("info")
	cfg := loadConfig(boot)
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	backend := openBackend(ctx, cfg, logger)
	store := initStore(backend, cfg, logger)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("backend_close_error", zap.Error(err))
		}
	}()

	checker := initHealthChecker(backend, logger)
	mux := registerRoutes(store, checker, cfg, logger)

	runServer(ctx, mux, cfg, logger)
}
