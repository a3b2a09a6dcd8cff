package main

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/shuliakovsky/signal-directory/pkg/api"
	"github.com/shuliakovsky/signal-directory/pkg/config"
	"github.com/shuliakovsky/signal-directory/pkg/docs"
	"github.com/shuliakovsky/signal-directory/pkg/health"
	"github.com/shuliakovsky/signal-directory/pkg/metrics"
)

func registerRoutes(store api.SessionStore, checker *health.Checker, cfg config.Config, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	sessionsAPI := api.NewSessions(store, logger.Named("api"))
	sessionsAPI.Timeout = cfg.RequestTimeout
	sessionsAPI.MaxBody = cfg.MaxBodyBytes
	sessionsAPI.ValidateSDP = cfg.ValidateSDP

	wsAPI := api.NewWS(store, cfg.WatchInterval, cfg.MaxWatchers, logger.Named("ws"))
	wsAPI.Timeout = cfg.RequestTimeout

	// Core control endpoints
	mux.HandleFunc("GET /healthz", checker.Handler())

	// Swagger
	docs.SetHost(cfg.SwaggerHost, cfg.Host, cfg.Port)
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/swagger.json"),
		httpSwagger.InstanceName("swagger"),
	))
	mux.HandleFunc("GET /swagger/swagger.json", docs.JSONHandler)

	// Metrics
	metrics.Init()
	mux.Handle("GET /metrics", metrics.Handler())

	// Sessions
	api.Mount(mux, sessionsAPI, wsAPI)

	logger.Info("routes_registered", zap.Bool("validate_sdp", cfg.ValidateSDP))
	return mux
}
