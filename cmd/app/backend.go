package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shuliakovsky/signal-directory/pkg/config"
	"github.com/shuliakovsky/signal-directory/pkg/kv"
	"github.com/shuliakovsky/signal-directory/pkg/secrets"
	"github.com/shuliakovsky/signal-directory/pkg/sessions"
)

func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) kv.Backend {
	instanceID := uuid.NewString()

	switch cfg.Backend {
	case config.BackendRedis:
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		r, err := kv.DialRedis(dialCtx, cfg.RedisURL, cfg.Namespace)
		if err != nil {
			logger.Fatal("backend_connect_error",
				zap.String("url", secrets.RedactURL(cfg.RedisURL)),
				zap.Error(err))
		}
		logger.Info("backend_connected",
			zap.String("instance", instanceID),
			zap.String("backend", cfg.Backend),
			zap.String("url", secrets.RedactURL(cfg.RedisURL)),
			zap.String("namespace", cfg.Namespace))
		return r
	default:
		logger.Warn("backend_in_memory",
			zap.String("instance", instanceID),
			zap.String("note", "sessions are lost on restart and not shared between instances"))
		return kv.NewMemory()
	}
}

func initStore(backend kv.Backend, cfg config.Config, logger *zap.Logger) *sessions.Store {
	return sessions.NewStore(backend, sessions.Options{
		MaxAttempts: cfg.JoinMaxAttempts,
		BaseBackoff: cfg.JoinBaseBackoff,
		MaxBackoff:  cfg.JoinMaxBackoff,
		Logger:      logger.Named("store"),
	})
}
