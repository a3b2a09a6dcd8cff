package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/shuliakovsky/signal-directory/pkg/api"
	"github.com/shuliakovsky/signal-directory/pkg/config"
)

func runServer(ctx context.Context, mux *http.ServeMux, cfg config.Config, logger *zap.Logger) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("Listen failed", zap.String("addr", addr), zap.Error(err))
	}
	ln = netutil.LimitListener(ln, cfg.MaxConns)

	srv := &http.Server{
		Handler:           api.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("addr", addr), zap.Int("max_conns", cfg.MaxConns))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server down", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited gracefully")
}
