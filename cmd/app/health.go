package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/signal-directory/pkg/health"
)

func initHealthChecker(backend health.Pinger, logger *zap.Logger) *health.Checker {
	return health.New(2*time.Second, backend, logger.Named("health"))
}
